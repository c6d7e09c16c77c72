package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/schemasync/internal/core/domain"
	"github.com/custodia-labs/schemasync/internal/core/ports/driven"
	"github.com/custodia-labs/schemasync/internal/core/ports/driving"
	"github.com/custodia-labs/schemasync/internal/logger"
)

// Ensure SnapshotService implements the interface.
var _ driving.SnapshotService = (*SnapshotService)(nil)

// SnapshotService captures schemas of the bound collection into a SnapshotStore.
type SnapshotService struct {
	ops   driving.SchemaOperations
	store driven.SnapshotStore
	now   func() time.Time
}

// NewSnapshotService creates a snapshot service.
func NewSnapshotService(ops driving.SchemaOperations, store driven.SnapshotStore) *SnapshotService {
	return &SnapshotService{
		ops:   ops,
		store: store,
		now:   time.Now,
	}
}

// Capture reads the live schema and stores it under a new ID.
func (s *SnapshotService) Capture(ctx context.Context, note string) (*domain.SchemaSnapshot, error) {
	if s.store == nil {
		return nil, errors.New("snapshot store unavailable")
	}

	schema, err := s.ops.ReadSchema(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture snapshot: %w", err)
	}

	snapshot := domain.SchemaSnapshot{
		ID:         uuid.New().String(),
		Collection: s.ops.Collection(),
		Note:       strings.TrimSpace(note),
		CapturedAt: s.now().UTC(),
		Schema:     schema,
	}
	if err := s.store.Save(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}

	logger.Info("Captured snapshot %s of %s (%d fields)", snapshot.ID, snapshot.Collection, len(schema.FieldNames()))
	return &snapshot, nil
}

// Get retrieves a stored snapshot.
func (s *SnapshotService) Get(ctx context.Context, id string) (*domain.SchemaSnapshot, error) {
	if s.store == nil {
		return nil, errors.New("snapshot store unavailable")
	}
	if id == "" {
		return nil, fmt.Errorf("%w: snapshot id is required", domain.ErrInvalidInput)
	}
	return s.store.Get(ctx, id)
}

// List returns the bound collection's snapshots, newest first.
func (s *SnapshotService) List(ctx context.Context) ([]domain.SchemaSnapshot, error) {
	if s.store == nil {
		return nil, errors.New("snapshot store unavailable")
	}
	return s.store.List(ctx, s.ops.Collection())
}

// Delete removes a stored snapshot.
func (s *SnapshotService) Delete(ctx context.Context, id string) error {
	if s.store == nil {
		return errors.New("snapshot store unavailable")
	}
	if id == "" {
		return fmt.Errorf("%w: snapshot id is required", domain.ErrInvalidInput)
	}
	return s.store.Delete(ctx, id)
}

// Diff computes the changes that would restore the stored snapshot on the live schema.
func (s *SnapshotService) Diff(ctx context.Context, id string) (domain.SchemaDiff, error) {
	snapshot, err := s.Get(ctx, id)
	if err != nil {
		return domain.SchemaDiff{}, err
	}

	live, err := s.ops.ReadSchema(ctx)
	if err != nil {
		return domain.SchemaDiff{}, fmt.Errorf("diff snapshot: %w", err)
	}

	diff := domain.DiffSchemas(live, snapshot.Schema)
	logger.Debug("Snapshot %s vs live: %s", id, diff.Summary())
	return diff, nil
}
