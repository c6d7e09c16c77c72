package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/schemasync/internal/core/domain"
	"github.com/custodia-labs/schemasync/internal/core/ports/driven"
	"github.com/custodia-labs/schemasync/internal/logger"
	"github.com/custodia-labs/schemasync/internal/schemacodec"
)

// Schema endpoint paths, relative to /{collection}/schema.
const (
	pathSchema  = ""
	pathName    = "/name"
	pathVersion = "/version"
)

// SchemaReader fetches schema state from the engine.
type SchemaReader struct {
	transport driven.SchemaTransport
}

// NewSchemaReader creates a reader over the given transport.
func NewSchemaReader(transport driven.SchemaTransport) *SchemaReader {
	return &SchemaReader{transport: transport}
}

// SchemaName returns the declared schema name of the collection.
func (r *SchemaReader) SchemaName(ctx context.Context, collection string) (string, error) {
	const op = "read schema name"

	var resp struct {
		Name *string `json:"name"`
	}
	if err := r.fetch(ctx, collection, pathName, op, &resp); err != nil {
		return "", err
	}
	if resp.Name == nil {
		return "", accessError(collection, op, 0, errors.New("response has no name"))
	}

	logger.Debug("Schema name for %s: %s", collection, *resp.Name)
	return *resp.Name, nil
}

// SchemaVersion returns the engine-reported schema version of the collection.
func (r *SchemaReader) SchemaVersion(ctx context.Context, collection string) (float64, error) {
	const op = "read schema version"

	var resp struct {
		Version *float64 `json:"version"`
	}
	if err := r.fetch(ctx, collection, pathVersion, op, &resp); err != nil {
		return 0, err
	}
	if resp.Version == nil {
		return 0, accessError(collection, op, 0, errors.New("response has no version"))
	}

	logger.Debug("Schema version for %s: %g", collection, *resp.Version)
	return *resp.Version, nil
}

// ReadSchema fetches the full schema in a single request.
// Unknown attributes in the response are ignored.
func (r *SchemaReader) ReadSchema(ctx context.Context, collection string) (domain.SchemaDefinition, error) {
	const op = "read schema"
	logger.Section("Read Schema")

	body, err := r.get(ctx, collection, pathSchema, op)
	if err != nil {
		return domain.SchemaDefinition{}, err
	}

	schema, err := schemacodec.Decode(body)
	if err != nil {
		logger.Warn("Schema parse failed: %v", err)
		return domain.SchemaDefinition{}, accessError(collection, op, 0, err)
	}

	logger.Debug("Parsed schema %q v%g: %d fields, %d copy fields",
		schema.Name(), schema.Version(), len(schema.FieldNames()), len(schema.CopyFields()))
	return schema, nil
}

// fetch reads path and decodes the JSON body into v.
func (r *SchemaReader) fetch(ctx context.Context, collection, path, op string, v any) error {
	body, err := r.get(ctx, collection, path, op)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return accessError(collection, op, 0, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// get performs the read and maps every failure to a SchemaAccessError.
func (r *SchemaReader) get(ctx context.Context, collection, path, op string) ([]byte, error) {
	if r.transport == nil {
		return nil, accessError(collection, op, 0, domain.ErrEngineUnavailable)
	}

	resp, err := r.transport.Read(ctx, collection, path)
	if err != nil {
		logger.Warn("%s failed: %v", op, err)
		return nil, accessError(collection, op, 0, err)
	}
	if !resp.OK() {
		messages := rejectionMessages(resp.Body)
		logger.Warn("%s returned status %d: %v", op, resp.StatusCode, messages)
		return nil, accessError(collection, op, resp.StatusCode, joinMessages(messages))
	}
	return resp.Body, nil
}

func accessError(collection, op string, status int, err error) *domain.SchemaAccessError {
	return &domain.SchemaAccessError{
		Collection: collection,
		Operation:  op,
		StatusCode: status,
		Err:        err,
	}
}
