package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/schemasync/internal/core/domain"
	"github.com/custodia-labs/schemasync/internal/core/ports/driven"
)

// mockTransport replays canned responses and records every request.
type mockTransport struct {
	mu       sync.Mutex
	readFn   func(collection, path string) (*driven.SchemaResponse, error)
	updateFn func(collection string, payload []byte) (*driven.SchemaResponse, error)
	reads    []string
	updates  []string
}

func (m *mockTransport) Read(_ context.Context, collection, path string) (*driven.SchemaResponse, error) {
	m.mu.Lock()
	m.reads = append(m.reads, collection+path)
	m.mu.Unlock()
	if m.readFn == nil {
		return &driven.SchemaResponse{StatusCode: 200, Body: []byte(`{}`)}, nil
	}
	return m.readFn(collection, path)
}

func (m *mockTransport) Update(_ context.Context, collection string, payload []byte) (*driven.SchemaResponse, error) {
	m.mu.Lock()
	m.updates = append(m.updates, string(payload))
	m.mu.Unlock()
	if m.updateFn == nil {
		return &driven.SchemaResponse{StatusCode: 200, Body: []byte(`{"responseHeader":{"status":0}}`)}, nil
	}
	return m.updateFn(collection, payload)
}

func (m *mockTransport) Close() error { return nil }

func respond(status int, body string) func(string, string) (*driven.SchemaResponse, error) {
	return func(string, string) (*driven.SchemaResponse, error) {
		return &driven.SchemaResponse{StatusCode: status, Body: []byte(body)}, nil
	}
}

func fail(err error) func(string, string) (*driven.SchemaResponse, error) {
	return func(string, string) (*driven.SchemaResponse, error) {
		return nil, err
	}
}

// mockSnapshotStore is a SnapshotStore whose operations can be made to fail.
type mockSnapshotStore struct {
	mu        sync.Mutex
	snapshots map[string]domain.SchemaSnapshot
	saveErr   error
}

func newMockSnapshotStore() *mockSnapshotStore {
	return &mockSnapshotStore{snapshots: make(map[string]domain.SchemaSnapshot)}
}

func (m *mockSnapshotStore) Save(_ context.Context, s domain.SchemaSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snapshots[s.ID] = s
	return nil
}

func (m *mockSnapshotStore) Get(_ context.Context, id string) (*domain.SchemaSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snapshots[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (m *mockSnapshotStore) List(_ context.Context, collection string) ([]domain.SchemaSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.SchemaSnapshot
	for _, s := range m.snapshots {
		if collection == "" || s.Collection == collection {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSnapshotStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.snapshots[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.snapshots, id)
	return nil
}
