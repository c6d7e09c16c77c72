package mcp

import (
	"github.com/custodia-labs/schemasync/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Schema reads and mutates the bound collection's schema.
	Schema driving.SchemaOperations

	// Snapshots lists stored schema snapshots.
	Snapshots driving.SnapshotService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Schema == nil {
		return ErrMissingSchemaOperations
	}
	// Snapshots are optional; the snapshots resource is empty without them.
	return nil
}
