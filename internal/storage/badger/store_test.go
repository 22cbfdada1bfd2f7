package badger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/networth/internal/common"
	"github.com/bobmcallan/networth/internal/models"
)

func newTestStore(t *testing.T, dir string) *Store {
	t.Helper()
	store, err := NewStore(common.NewSilentLogger(), filepath.Join(dir, "badger"))
	require.NoError(t, err)
	return store
}

func TestStore_CloseNilDB(t *testing.T) {
	store := &Store{}
	assert.NoError(t, store.Close())
}

func TestSnapshotStorage_RoundTrip(t *testing.T) {
	store := newTestStore(t, t.TempDir())
	snaps := NewSnapshotStorage(store, common.NewSilentLogger())
	t.Cleanup(func() { snaps.Close() })
	ctx := context.Background()

	got, err := snaps.Get(ctx, "file:missing.csv")
	require.NoError(t, err)
	assert.Nil(t, got)

	fetched := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, snaps.Put(ctx, &models.SheetSnapshot{
		SourceID:  "url:https://example.test/export",
		Body:      []byte("date,total\n"),
		FetchedAt: fetched,
	}))

	got, err = snaps.Get(ctx, "url:https://example.test/export")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "date,total\n", string(got.Body))
	assert.True(t, got.FetchedAt.Equal(fetched))

	require.NoError(t, snaps.Delete(ctx, "url:https://example.test/export"))
	got, err = snaps.Get(ctx, "url:https://example.test/export")
	require.NoError(t, err)
	assert.Nil(t, got)

	// deleting twice is fine
	require.NoError(t, snaps.Delete(ctx, "url:https://example.test/export"))
}

func TestSnapshotStorage_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first := NewSnapshotStorage(newTestStore(t, dir), common.NewSilentLogger())
	require.NoError(t, first.Put(ctx, &models.SheetSnapshot{SourceID: "file:a.csv", Body: []byte("x"), FetchedAt: time.Now()}))
	require.NoError(t, first.Close())

	second := NewSnapshotStorage(newTestStore(t, dir), common.NewSilentLogger())
	t.Cleanup(func() { second.Close() })
	got, err := second.Get(ctx, "file:a.csv")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "x", string(got.Body))
}

func TestSnapshotStorage_PutNil(t *testing.T) {
	snaps := NewSnapshotStorage(newTestStore(t, t.TempDir()), common.NewSilentLogger())
	t.Cleanup(func() { snaps.Close() })
	assert.Error(t, snaps.Put(context.Background(), nil))
}
