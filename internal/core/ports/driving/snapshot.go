package driving

import (
	"context"

	"github.com/custodia-labs/schemasync/internal/core/domain"
)

// SnapshotService captures and compares schema snapshots.
type SnapshotService interface {
	// Capture reads the live schema and stores it.
	Capture(ctx context.Context, note string) (*domain.SchemaSnapshot, error)

	// Get retrieves a stored snapshot.
	Get(ctx context.Context, id string) (*domain.SchemaSnapshot, error)

	// List returns stored snapshots of the bound collection, newest first.
	List(ctx context.Context) ([]domain.SchemaSnapshot, error)

	// Delete removes a stored snapshot.
	Delete(ctx context.Context, id string) error

	// Diff computes the changes from the live schema back to a stored snapshot.
	Diff(ctx context.Context, id string) (domain.SchemaDiff, error)
}
