package services

import (
	"context"

	"github.com/custodia-labs/schemasync/internal/core/domain"
	"github.com/custodia-labs/schemasync/internal/core/ports/driven"
	"github.com/custodia-labs/schemasync/internal/core/ports/driving"
)

// Ensure SchemaOperations implements the interface.
var _ driving.SchemaOperations = (*SchemaOperations)(nil)

// SchemaOperations binds schema reads and mutations to one collection.
// It holds no schema state; every read goes to the engine.
type SchemaOperations struct {
	collection string
	reader     *SchemaReader
	mutator    *SchemaMutator
}

// NewSchemaOperations creates operations for collection over transport.
func NewSchemaOperations(collection string, transport driven.SchemaTransport) *SchemaOperations {
	return &SchemaOperations{
		collection: collection,
		reader:     NewSchemaReader(transport),
		mutator:    NewSchemaMutator(transport),
	}
}

// Collection returns the bound collection name.
func (o *SchemaOperations) Collection() string {
	return o.collection
}

// SchemaName returns the schema's declared name.
func (o *SchemaOperations) SchemaName(ctx context.Context) (string, error) {
	return o.reader.SchemaName(ctx, o.collection)
}

// SchemaVersion returns the engine-reported schema version.
func (o *SchemaOperations) SchemaVersion(ctx context.Context) (float64, error) {
	return o.reader.SchemaVersion(ctx, o.collection)
}

// ReadSchema fetches a fresh snapshot.
func (o *SchemaOperations) ReadSchema(ctx context.Context) (domain.SchemaDefinition, error) {
	return o.reader.ReadSchema(ctx, o.collection)
}

// AddField adds a field and one copy-field per copy-to target.
func (o *SchemaOperations) AddField(ctx context.Context, field domain.FieldDefinition) error {
	return o.mutator.AddField(ctx, o.collection, field)
}

// AddCopyField adds a copy-field.
func (o *SchemaOperations) AddCopyField(ctx context.Context, copyField domain.CopyFieldDefinition) error {
	return o.mutator.AddCopyField(ctx, o.collection, copyField)
}

// RemoveField removes a field by name.
func (o *SchemaOperations) RemoveField(ctx context.Context, name string) error {
	return o.mutator.RemoveField(ctx, o.collection, name)
}

// ReplaceField replaces an existing field's attributes.
func (o *SchemaOperations) ReplaceField(ctx context.Context, field domain.FieldDefinition) error {
	return o.mutator.ReplaceField(ctx, o.collection, field)
}

// RemoveCopyField removes a copy-field.
func (o *SchemaOperations) RemoveCopyField(ctx context.Context, copyField domain.CopyFieldDefinition) error {
	return o.mutator.RemoveCopyField(ctx, o.collection, copyField)
}
