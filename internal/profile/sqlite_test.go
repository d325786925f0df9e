package profile

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tonifyerrors "tonify/internal/errors"
	"tonify/internal/ports"
	"tonify/internal/trait"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "profiles.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	created, err := store.Create(ctx, "owner-1", sampleFields("My Tone"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)
	assert.True(t, got.Traits.Equal(created.Traits))
	assert.Equal(t, created.Examples, got.Examples)
	assert.True(t, got.CreatedAt.Equal(created.CreatedAt))

	newTraits := trait.Vector{Humor: 0.9}
	updated, err := store.Update(ctx, created.ID, ports.ProfileUpdate{Traits: &newTraits})
	require.NoError(t, err)
	assert.True(t, updated.Traits.Equal(newTraits))
	assert.Equal(t, created.Name, updated.Name)

	require.NoError(t, store.Delete(ctx, created.ID))
	_, err = store.Get(ctx, created.ID)
	assert.True(t, tonifyerrors.IsNotFound(err))
}

func TestSQLiteStoreNotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	_, err := store.Get(ctx, "missing")
	assert.True(t, tonifyerrors.IsNotFound(err))

	_, err = store.Update(ctx, "missing", ports.ProfileUpdate{})
	assert.True(t, tonifyerrors.IsNotFound(err))

	assert.True(t, tonifyerrors.IsNotFound(store.Delete(ctx, "missing")))
}

func TestSQLiteStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	// Inject a deterministic clock so ordering is by timestamp, not luck.
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	step := 0
	store.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Second)
	}

	var ids []string
	for i := 0; i < 3; i++ {
		created, err := store.Create(ctx, "owner-1", sampleFields(fmt.Sprintf("tone-%d", i)))
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}
	_, err := store.Create(ctx, "owner-2", sampleFields("other"))
	require.NoError(t, err)

	listed, err := store.List(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, ids[2], listed[0].ID)
	assert.Equal(t, ids[1], listed[1].ID)
	assert.Equal(t, ids[0], listed[2].ID)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "profiles.db")

	store, err := NewSQLiteStore(path, nil)
	require.NoError(t, err)
	created, err := store.Create(ctx, "owner-1", sampleFields("durable"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path, nil)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, err := reopened.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "durable", got.Name)
}
