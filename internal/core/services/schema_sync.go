package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/schemasync/internal/core/domain"
	"github.com/custodia-labs/schemasync/internal/core/ports/driving"
	"github.com/custodia-labs/schemasync/internal/logger"
)

// Ensure SchemaSynchronizer implements the interface.
var _ driving.SchemaSynchronizer = (*SchemaSynchronizer)(nil)

// SyncError reports a synchronisation that stopped part way.
type SyncError struct {
	// Applied is the number of changes that succeeded before the failure.
	Applied int

	// Step describes the change that failed.
	Step string

	// Err is the underlying mutation error.
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync stopped after %d change(s) at %s: %v", e.Applied, e.Step, e.Err)
}

// Unwrap returns the underlying mutation error.
func (e *SyncError) Unwrap() error { return e.Err }

// SchemaSynchronizer converges the bound collection's schema towards a desired schema.
type SchemaSynchronizer struct {
	ops *SchemaOperations
}

// NewSchemaSynchronizer creates a synchronizer over ops.
func NewSchemaSynchronizer(ops *SchemaOperations) *SchemaSynchronizer {
	return &SchemaSynchronizer{ops: ops}
}

// Plan reads the live schema and diffs it against desired.
// Without Prune the plan is purely additive.
func (s *SchemaSynchronizer) Plan(
	ctx context.Context, desired domain.SchemaDefinition, opts driving.SyncOptions,
) (domain.SchemaDiff, error) {
	logger.Section("Sync Plan")

	live, err := s.ops.ReadSchema(ctx)
	if err != nil {
		return domain.SchemaDiff{}, fmt.Errorf("plan sync: %w", err)
	}

	diff := domain.DiffSchemas(live, desired)
	if opts.Prune {
		diff = diff.WithoutSystemRemovals(live.UniqueKey())
	} else {
		diff = diff.WithoutRemovals()
	}

	logger.Info("Sync plan for %s: %s", s.ops.Collection(), diff.Summary())
	return diff, nil
}

// Apply submits the diff. Copy-fields are removed before fields and added
// after them, so no command references a field that does not exist yet.
// It stops at the first failure; earlier changes are not rolled back.
func (s *SchemaSynchronizer) Apply(ctx context.Context, diff domain.SchemaDiff) (int, error) {
	logger.Section("Sync Apply")

	applied := 0
	step := func(desc string, fn func() error) error {
		logger.Debug("Applying %s", desc)
		if err := fn(); err != nil {
			return &SyncError{Applied: applied, Step: desc, Err: err}
		}
		applied++
		return nil
	}

	for _, cf := range diff.RemoveCopyFields {
		if err := step("remove copy field "+cf.String(), func() error {
			return s.ops.RemoveCopyField(ctx, cf)
		}); err != nil {
			return applied, err
		}
	}
	for _, name := range diff.RemoveFields {
		if err := step("remove field "+name, func() error {
			return s.ops.RemoveField(ctx, name)
		}); err != nil {
			return applied, err
		}
	}
	for _, f := range diff.AddFields {
		if err := step("add field "+f.Name(), func() error {
			return s.ops.AddField(ctx, f)
		}); err != nil {
			return applied, err
		}
	}
	for _, f := range diff.ReplaceFields {
		if err := step("replace field "+f.Name(), func() error {
			return s.ops.ReplaceField(ctx, f)
		}); err != nil {
			return applied, err
		}
	}
	for _, cf := range diff.AddCopyFields {
		if err := step("add copy field "+cf.String(), func() error {
			return s.ops.AddCopyField(ctx, cf)
		}); err != nil {
			return applied, err
		}
	}

	logger.Info("Applied %d change(s) to %s", applied, s.ops.Collection())
	return applied, nil
}
