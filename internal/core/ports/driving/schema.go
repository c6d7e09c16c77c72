package driving

import (
	"context"

	"github.com/custodia-labs/schemasync/internal/core/domain"
)

// SchemaOperations exposes schema reads and mutations for one bound collection.
// Every call is synchronous and independent; nothing is cached between calls.
type SchemaOperations interface {
	// Collection returns the bound collection name.
	Collection() string

	// SchemaName returns the schema's declared name.
	SchemaName(ctx context.Context) (string, error)

	// SchemaVersion returns the engine-reported schema version.
	SchemaVersion(ctx context.Context) (float64, error)

	// ReadSchema fetches a fresh snapshot of the schema.
	ReadSchema(ctx context.Context) (domain.SchemaDefinition, error)

	// AddField adds a field and one copy-field per copy-to target.
	AddField(ctx context.Context, field domain.FieldDefinition) error

	// AddCopyField adds a copy-field.
	AddCopyField(ctx context.Context, copyField domain.CopyFieldDefinition) error

	// RemoveField removes a field by name.
	RemoveField(ctx context.Context, name string) error
}
