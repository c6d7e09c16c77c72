package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/schemasync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/schemasync/internal/core/domain"
)

func TestSnapshotService_CaptureAndGet(t *testing.T) {
	ops := newTestOperations(t)
	service := NewSnapshotService(ops, memory.NewSnapshotStore())
	fixed := time.Date(2026, 5, 4, 3, 2, 1, 0, time.FixedZone("X", 3600))
	service.now = func() time.Time { return fixed }
	ctx := context.Background()

	snapshot, err := service.Capture(ctx, "  before migration  ")
	require.NoError(t, err)
	assert.NotEmpty(t, snapshot.ID)
	assert.Equal(t, testCollection, snapshot.Collection)
	assert.Equal(t, "before migration", snapshot.Note)
	assert.Equal(t, time.UTC, snapshot.CapturedAt.Location())
	assert.True(t, fixed.Equal(snapshot.CapturedAt))

	got, err := service.Get(ctx, snapshot.ID)
	require.NoError(t, err)
	assert.True(t, snapshot.Schema.Equal(got.Schema))
}

func TestSnapshotService_ListAndDelete(t *testing.T) {
	ops := newTestOperations(t)
	service := NewSnapshotService(ops, memory.NewSnapshotStore())
	ctx := context.Background()

	first, err := service.Capture(ctx, "one")
	require.NoError(t, err)
	_, err = service.Capture(ctx, "two")
	require.NoError(t, err)

	list, err := service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, service.Delete(ctx, first.ID))
	_, err = service.Get(ctx, first.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSnapshotService_Diff(t *testing.T) {
	ops := newTestOperations(t)
	service := NewSnapshotService(ops, memory.NewSnapshotStore())
	ctx := context.Background()

	snapshot, err := service.Capture(ctx, "")
	require.NoError(t, err)

	diff, err := service.Diff(ctx, snapshot.ID)
	require.NoError(t, err)
	assert.True(t, diff.IsEmpty())

	require.NoError(t, ops.AddField(ctx, domain.NewFieldDefinition().Named("added_s").TypedAs("string").MustCreate()))

	diff, err = service.Diff(ctx, snapshot.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"added_s"}, diff.RemoveFields)
}

func TestSnapshotService_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("no store", func(t *testing.T) {
		service := NewSnapshotService(newTestOperations(t), nil)
		_, err := service.Capture(ctx, "")
		assert.Error(t, err)
		_, err = service.List(ctx)
		assert.Error(t, err)
		assert.Error(t, service.Delete(ctx, "x"))
	})

	t.Run("empty id", func(t *testing.T) {
		service := NewSnapshotService(newTestOperations(t), memory.NewSnapshotStore())
		_, err := service.Get(ctx, "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.ErrorIs(t, service.Delete(ctx, ""), domain.ErrInvalidInput)
	})

	t.Run("read failure", func(t *testing.T) {
		service := NewSnapshotService(NewSchemaOperations("films", nil), memory.NewSnapshotStore())
		_, err := service.Capture(ctx, "")
		assert.True(t, domain.IsSchemaAccess(err))
	})

	t.Run("save failure", func(t *testing.T) {
		store := newMockSnapshotStore()
		store.saveErr = errors.New("disk full")
		service := NewSnapshotService(newTestOperations(t), store)
		_, err := service.Capture(ctx, "")
		assert.ErrorContains(t, err, "disk full")
	})

	t.Run("diff unknown snapshot", func(t *testing.T) {
		service := NewSnapshotService(newTestOperations(t), memory.NewSnapshotStore())
		_, err := service.Diff(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
