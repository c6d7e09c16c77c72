package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/schemasync/internal/core/domain"
)

func snapshot(id, collection string, at time.Time) domain.SchemaSnapshot {
	schema, _ := domain.NewSchemaDefinition(collection, 1.6, nil, nil)
	return domain.SchemaSnapshot{ID: id, Collection: collection, CapturedAt: at, Schema: schema}
}

func TestSnapshotStore_SaveGetDelete(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, snapshot("s1", "films", time.Now())))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "films", got.Collection)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "s1"), domain.ErrNotFound)
}

func TestSnapshotStore_Save_RequiresID(t *testing.T) {
	store := NewSnapshotStore()
	err := store.Save(context.Background(), snapshot("", "films", time.Now()))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSnapshotStore_List(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, snapshot("old", "films", base)))
	require.NoError(t, store.Save(ctx, snapshot("new", "films", base.Add(time.Hour))))
	require.NoError(t, store.Save(ctx, snapshot("other", "books", base.Add(time.Minute))))

	films, err := store.List(ctx, "films")
	require.NoError(t, err)
	require.Len(t, films, 2)
	assert.Equal(t, "new", films[0].ID)
	assert.Equal(t, "old", films[1].ID)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSnapshotStore_ConcurrentAccess(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n))
			_ = store.Save(ctx, snapshot(id, "films", time.Now()))
			_, _ = store.Get(ctx, id)
			_, _ = store.List(ctx, "films")
		}(i)
	}
	wg.Wait()

	list, err := store.List(ctx, "films")
	require.NoError(t, err)
	assert.Len(t, list, 20)
}
