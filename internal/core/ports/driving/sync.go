package driving

import (
	"context"

	"github.com/custodia-labs/schemasync/internal/core/domain"
)

// SyncOptions controls schema synchronisation.
type SyncOptions struct {
	// Prune removes live fields and copy-fields absent from the desired schema.
	// System fields (e.g. "_version_") are never pruned.
	Prune bool
}

// SchemaSynchronizer converges a live schema towards a desired one.
type SchemaSynchronizer interface {
	// Plan reads the live schema and computes the changes needed.
	Plan(ctx context.Context, desired domain.SchemaDefinition, opts SyncOptions) (domain.SchemaDiff, error)

	// Apply submits the changes in dependency order and returns how many succeeded.
	Apply(ctx context.Context, diff domain.SchemaDiff) (int, error)
}
