package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/schemasync/internal/core/domain"
	"github.com/custodia-labs/schemasync/internal/core/ports/driven"
)

// Ensure SnapshotStore implements the interface.
var _ driven.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore is an in-memory implementation of driven.SnapshotStore.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]domain.SchemaSnapshot
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		snapshots: make(map[string]domain.SchemaSnapshot),
	}
}

// Save stores or replaces a snapshot.
func (s *SnapshotStore) Save(_ context.Context, snapshot domain.SchemaSnapshot) error {
	if snapshot.ID == "" {
		return fmt.Errorf("%w: snapshot id is required", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snapshot.ID] = snapshot
	return nil
}

// Get retrieves a snapshot by ID.
func (s *SnapshotStore) Get(_ context.Context, id string) (*domain.SchemaSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, ok := s.snapshots[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &snapshot, nil
}

// List returns snapshots of collection, newest first. An empty collection lists all.
func (s *SnapshotStore) List(_ context.Context, collection string) ([]domain.SchemaSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.SchemaSnapshot, 0, len(s.snapshots))
	for _, snapshot := range s.snapshots {
		if collection == "" || snapshot.Collection == collection {
			result = append(result, snapshot)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CapturedAt.Equal(result[j].CapturedAt) {
			return result[i].CapturedAt.After(result[j].CapturedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Delete removes a snapshot.
func (s *SnapshotStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snapshots[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.snapshots, id)
	return nil
}
