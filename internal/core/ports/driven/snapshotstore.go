package driven

import (
	"context"

	"github.com/custodia-labs/schemasync/internal/core/domain"
)

// SnapshotStore persists captured schema snapshots.
type SnapshotStore interface {
	// Save stores a snapshot.
	Save(ctx context.Context, snapshot domain.SchemaSnapshot) error

	// Get retrieves a snapshot by ID.
	// Returns domain.ErrNotFound if the snapshot does not exist.
	Get(ctx context.Context, id string) (*domain.SchemaSnapshot, error)

	// List returns the snapshots of a collection, newest first.
	// An empty collection lists snapshots of every collection.
	List(ctx context.Context, collection string) ([]domain.SchemaSnapshot, error)

	// Delete removes a snapshot.
	// Returns domain.ErrNotFound if the snapshot does not exist.
	Delete(ctx context.Context, id string) error
}
