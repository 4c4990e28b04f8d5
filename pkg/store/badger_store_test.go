package store

import (
	"context"
	"os"
	"testing"

	"github.com/rzbill/cse/pkg/log"
	"github.com/rzbill/cse/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a test BadgerDB store in a temporary directory.
func setupTestStore(t *testing.T) (*BadgerStore, string, func()) {
	dir, err := os.MkdirTemp("", "badger-test")
	if err != nil {
		t.Fatalf("Failed to create temporary directory: %v", err)
	}

	store := NewBadgerStore(log.NewTestLogger())
	if err := store.Open(dir); err != nil {
		os.RemoveAll(dir)
		t.Fatalf("Failed to open BadgerDB store: %v", err)
	}

	cleanup := func() {
		store.Close()
		os.RemoveAll(dir)
	}
	return store, dir, cleanup
}

// TestBadgerStoreCRUD tests basic CRUD operations.
func TestBadgerStoreCRUD(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	entity := newV2Entity("alpha", "acme")
	entity.ID = NewEntityID(entity.TypeRef())

	require.NoError(t, store.Create(ctx, entity))
	assert.Error(t, store.Create(ctx, entity), "duplicate create must fail")

	got, err := store.Get(ctx, entity.ID)
	require.NoError(t, err)
	assert.Equal(t, entity, got)

	entity.Entity.(*types.V2Entity).Spec.Topology.Workers.Count = 4
	require.NoError(t, store.Update(ctx, entity))

	got, err = store.Get(ctx, entity.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Entity.(*types.V2Entity).Spec.Topology.Workers.Count)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, store.Delete(ctx, entity.ID))
	_, err = store.Get(ctx, entity.ID)
	assert.True(t, types.IsEntityNotFound(err))
	assert.True(t, types.IsEntityNotFound(store.Delete(ctx, entity.ID)))
	assert.True(t, types.IsEntityNotFound(store.Update(ctx, entity)))
}

// TestBadgerStoreVersioning tests that every write is kept in the history.
func TestBadgerStoreVersioning(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	entity := newV1Entity("legacy")
	entity.ID = NewEntityID(entity.TypeRef())

	require.NoError(t, store.Create(ctx, entity))
	for _, count := range []int{2, 3} {
		entity.Entity.(*types.V1Entity).Spec.Workers.Count = count
		require.NoError(t, store.Update(ctx, entity))
	}

	history, err := store.GetHistory(ctx, entity.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 3, history[0].Entity.Entity.(*types.V1Entity).Spec.Workers.Count)
	assert.Equal(t, 1, history[2].Entity.Entity.(*types.V1Entity).Spec.Workers.Count)
	assert.True(t, history[0].Timestamp.After(history[2].Timestamp) || history[0].Timestamp.Equal(history[2].Timestamp))

	// history survives delete
	require.NoError(t, store.Delete(ctx, entity.ID))
	history, err = store.GetHistory(ctx, entity.ID)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

// TestBadgerStoreReopen tests that entities survive closing the database.
func TestBadgerStoreReopen(t *testing.T) {
	store, dir, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	entity := newV2Entity("alpha", "acme")
	entity.ID = NewEntityID(entity.TypeRef())
	require.NoError(t, store.Create(ctx, entity))
	require.NoError(t, store.Close())

	require.NoError(t, store.Open(dir))
	got, err := store.Get(ctx, entity.ID)
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.Name)
}

// TestBadgerStoreWithClient runs the paging client against BadgerDB.
func TestBadgerStoreWithClient(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	client := NewClient(store, WithPageSize(1), WithLogger(log.NewTestLogger()))
	for _, name := range []string{"b", "a", "c"} {
		_, err := client.Create(ctx, newV2Entity(name, "acme"))
		require.NoError(t, err)
	}

	var names []string
	for entity, err := range client.ListByType(ctx, types.NativeClusterType(types.Generation2), nil) {
		require.NoError(t, err)
		names = append(names, entity.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}
