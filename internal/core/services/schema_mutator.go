package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/schemasync/internal/core/domain"
	"github.com/custodia-labs/schemasync/internal/core/ports/driven"
	"github.com/custodia-labs/schemasync/internal/logger"
	"github.com/custodia-labs/schemasync/internal/schemacodec"
)

// Schema mutation commands.
const (
	cmdAddField        = "add-field"
	cmdReplaceField    = "replace-field"
	cmdDeleteField     = "delete-field"
	cmdAddCopyField    = "add-copy-field"
	cmdDeleteCopyField = "delete-copy-field"
)

// SchemaMutator submits schema changes and reports engine rejections.
// Each command is a separate round-trip; nothing is retried.
type SchemaMutator struct {
	transport driven.SchemaTransport
}

// NewSchemaMutator creates a mutator over the given transport.
func NewSchemaMutator(transport driven.SchemaTransport) *SchemaMutator {
	return &SchemaMutator{transport: transport}
}

// AddField adds the field, then one copy-field per copy-to target in order.
//
// The steps are not atomic. If a copy-field is rejected, the field and any
// copy-fields submitted before it stay in the schema; the returned error names
// the step that failed.
func (m *SchemaMutator) AddField(ctx context.Context, collection string, field domain.FieldDefinition) error {
	if err := requireField(field); err != nil {
		return err
	}

	if err := m.submit(ctx, collection, cmdAddField, field.Name(), schemacodec.FieldAttributes(field)); err != nil {
		return err
	}

	for _, cf := range field.CopyFieldDefinitions() {
		if err := m.AddCopyField(ctx, collection, cf); err != nil {
			logger.Warn("Field %s added but copy field %s failed; no rollback", field.Name(), cf)
			return err
		}
	}
	return nil
}

// ReplaceField replaces an existing field's attributes. Copy-to targets are not submitted.
func (m *SchemaMutator) ReplaceField(ctx context.Context, collection string, field domain.FieldDefinition) error {
	if err := requireField(field); err != nil {
		return err
	}
	return m.submit(ctx, collection, cmdReplaceField, field.Name(), schemacodec.FieldAttributes(field))
}

// AddCopyField adds a copy-field.
func (m *SchemaMutator) AddCopyField(ctx context.Context, collection string, cf domain.CopyFieldDefinition) error {
	if err := requireCopyField(cf); err != nil {
		return err
	}
	return m.submit(ctx, collection, cmdAddCopyField, cf.String(), map[string]any{
		schemacodec.KeySource: cf.Source(),
		schemacodec.KeyDest:   []string{cf.Destination()},
	})
}

// RemoveCopyField removes a copy-field.
func (m *SchemaMutator) RemoveCopyField(ctx context.Context, collection string, cf domain.CopyFieldDefinition) error {
	if err := requireCopyField(cf); err != nil {
		return err
	}
	return m.submit(ctx, collection, cmdDeleteCopyField, cf.String(), map[string]any{
		schemacodec.KeySource: cf.Source(),
		schemacodec.KeyDest:   cf.Destination(),
	})
}

// RemoveField removes a field by name.
func (m *SchemaMutator) RemoveField(ctx context.Context, collection, name string) error {
	if name == "" {
		return &domain.ValidationError{Entity: "field", Attribute: "name", Reason: "must not be empty"}
	}
	return m.submit(ctx, collection, cmdDeleteField, name, map[string]any{
		schemacodec.KeyName: name,
	})
}

// submit sends a single command and maps any failure to a SchemaModificationError.
func (m *SchemaMutator) submit(ctx context.Context, collection, command, target string, attrs map[string]any) error {
	logger.Debug("Submitting %s %s to %s", command, target, collection)

	modErr := &domain.SchemaModificationError{
		Collection: collection,
		Command:    command,
		Target:     target,
	}

	if m.transport == nil {
		modErr.Err = domain.ErrEngineUnavailable
		return modErr
	}

	payload, err := json.Marshal(map[string]any{command: attrs})
	if err != nil {
		modErr.Err = fmt.Errorf("marshal command: %w", err)
		return modErr
	}

	resp, err := m.transport.Update(ctx, collection, payload)
	if err != nil {
		logger.Warn("%s %s failed: %v", command, target, err)
		modErr.Err = err
		return modErr
	}

	if !resp.OK() || hasRejection(resp.Body) {
		modErr.StatusCode = resp.StatusCode
		modErr.Messages = rejectionMessages(resp.Body)
		logger.Warn("%s %s rejected: %v", command, target, modErr.Messages)
		return modErr
	}

	logger.Debug("%s %s accepted", command, target)
	return nil
}

func requireField(field domain.FieldDefinition) error {
	if field.Name() == "" {
		return &domain.ValidationError{Entity: "field", Attribute: "name", Reason: "must not be empty"}
	}
	if field.Type() == "" {
		return &domain.ValidationError{Entity: "field " + field.Name(), Attribute: "type", Reason: "must not be empty"}
	}
	return nil
}

func requireCopyField(cf domain.CopyFieldDefinition) error {
	if cf.Source() == "" || cf.Destination() == "" {
		return &domain.ValidationError{Entity: "copy field", Attribute: "source/dest", Reason: "must not be empty"}
	}
	return nil
}
