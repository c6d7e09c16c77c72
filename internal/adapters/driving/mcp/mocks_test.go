package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/schemasync/internal/adapters/driven/embedded"
	"github.com/custodia-labs/schemasync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/schemasync/internal/core/domain"
	"github.com/custodia-labs/schemasync/internal/core/services"
)

// mockSchemaOperations is a mock implementation of driving.SchemaOperations
// whose every call fails with err.
type mockSchemaOperations struct {
	err error
}

func (m *mockSchemaOperations) Collection() string { return "films" }

func (m *mockSchemaOperations) SchemaName(_ context.Context) (string, error) {
	return "", m.err
}

func (m *mockSchemaOperations) SchemaVersion(_ context.Context) (float64, error) {
	return 0, m.err
}

func (m *mockSchemaOperations) ReadSchema(_ context.Context) (domain.SchemaDefinition, error) {
	return domain.SchemaDefinition{}, m.err
}

func (m *mockSchemaOperations) AddField(_ context.Context, _ domain.FieldDefinition) error {
	return m.err
}

func (m *mockSchemaOperations) AddCopyField(_ context.Context, _ domain.CopyFieldDefinition) error {
	return m.err
}

func (m *mockSchemaOperations) RemoveField(_ context.Context, _ string) error {
	return m.err
}

// newTestServer builds a server over a fresh embedded engine.
func newTestServer(t *testing.T) (*Server, *Ports) {
	t.Helper()
	ops := services.NewSchemaOperations("films", embedded.NewEngine(embedded.DefaultSeed()))
	ports := &Ports{
		Schema:    ops,
		Snapshots: services.NewSnapshotService(ops, memory.NewSnapshotStore()),
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server, ports
}

func ptr[T any](v T) *T { return &v }
