package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetstore-backend/internal/domains/asset/model"
)

type fakeLister struct {
	assets []model.Asset
	err    error
	calls  int
}

func (f *fakeLister) ListAssets(ctx context.Context) ([]model.Asset, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Asset, len(f.assets))
	copy(out, f.assets)
	return out, nil
}

func downloadedAsset(title, fileType string, downloads int) model.Asset {
	a := model.Asset{
		ID:            uuid.New(),
		Title:         title,
		FileType:      fileType,
		DownloadCount: downloads,
		IsPublished:   true,
	}
	a.Ingest()
	return a
}

// blockingLister stalls its first call until released; later calls
// return immediately with a different result.
type blockingLister struct {
	first   []model.Asset
	rest    []model.Asset
	entered chan struct{}
	release chan struct{}
}

func newBlockingLister(first, rest []model.Asset) *blockingLister {
	return &blockingLister{
		first:   first,
		rest:    rest,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (l *blockingLister) ListAssets(ctx context.Context) ([]model.Asset, error) {
	select {
	case <-l.entered:
		return l.rest, nil
	default:
		close(l.entered)
		<-l.release
		return l.first, nil
	}
}

func TestRefreshPopulatesSnapshotAndStats(t *testing.T) {
	audio := downloadedAsset("Ambient Dreams", "audio/mp3", 5)
	image := downloadedAsset("Abstract Geometry", "image/png", 10)
	lister := &fakeLister{assets: []model.Asset{audio, image}}
	store := NewStore(lister)

	require.NoError(t, store.Refresh(context.Background()))

	snapshot, stats := store.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, 2, stats.TotalCount)
	assert.Equal(t, 1, stats.AudioCount)
	assert.Equal(t, 1, stats.ImageCount)
	assert.Equal(t, 15, stats.TotalDownloads)
	require.NotNil(t, stats.TopAsset)
	assert.Equal(t, image.ID, stats.TopAsset.ID)
}

func TestRefreshIsIdempotent(t *testing.T) {
	lister := &fakeLister{assets: []model.Asset{
		downloadedAsset("One", "audio/mp3", 1),
		downloadedAsset("Two", "image/png", 2),
	}}
	store := NewStore(lister)

	require.NoError(t, store.Refresh(context.Background()))
	firstSnapshot, firstStats := store.Snapshot()

	require.NoError(t, store.Refresh(context.Background()))
	secondSnapshot, secondStats := store.Snapshot()

	assert.Equal(t, firstSnapshot, secondSnapshot)
	assert.Equal(t, firstStats, secondStats)
	assert.Equal(t, 2, lister.calls)
}

func TestRefreshDiscardsOutOfOrderCompletion(t *testing.T) {
	stale := downloadedAsset("Old Snapshot", "audio/mp3", 1)
	fresh := downloadedAsset("New Snapshot", "image/png", 9)
	lister := newBlockingLister([]model.Asset{stale}, []model.Asset{fresh})
	store := NewStore(lister)

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- store.Refresh(context.Background())
	}()
	<-lister.entered

	// A later-issued refresh completes while the first is still in
	// flight.
	require.NoError(t, store.Refresh(context.Background()))

	close(lister.release)
	require.NoError(t, <-firstDone)

	// The stale first result must not overwrite the newer snapshot.
	snapshot, stats := store.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, fresh.ID, snapshot[0].ID)
	assert.Equal(t, 9, stats.TotalDownloads)
	require.NotNil(t, stats.TopAsset)
	assert.Equal(t, fresh.ID, stats.TopAsset.ID)
}

func TestRefreshFailureRetainsPreviousState(t *testing.T) {
	asset := downloadedAsset("Keep Me", "audio/mp3", 3)
	lister := &fakeLister{assets: []model.Asset{asset}}
	store := NewStore(lister)

	require.NoError(t, store.Refresh(context.Background()))

	lister.err = errors.New("connection reset")
	err := store.Refresh(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrCatalogFetch)

	snapshot, stats := store.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, asset.ID, snapshot[0].ID)
	assert.Equal(t, 3, stats.TotalDownloads)
	assert.True(t, store.Loaded())
}

func TestEmptyCatalogHasNoTopAsset(t *testing.T) {
	store := NewStore(&fakeLister{})

	require.NoError(t, store.Refresh(context.Background()))

	_, stats := store.Snapshot()
	assert.Equal(t, 0, stats.TotalCount)
	assert.Nil(t, stats.TopAsset)
}

func TestTopAssetTieBreakIsFirstEncountered(t *testing.T) {
	first := downloadedAsset("First", "audio/mp3", 7)
	second := downloadedAsset("Second", "image/png", 7)
	lister := &fakeLister{assets: []model.Asset{first, second}}
	store := NewStore(lister)

	require.NoError(t, store.Refresh(context.Background()))

	stats := store.Stats()
	require.NotNil(t, stats.TopAsset)
	assert.Equal(t, first.ID, stats.TopAsset.ID)
}

func TestPrependPutsNewAssetFirstAndUpdatesStats(t *testing.T) {
	existing := downloadedAsset("Existing", "image/png", 4)
	store := NewStore(&fakeLister{assets: []model.Asset{existing}})
	require.NoError(t, store.Refresh(context.Background()))

	created := downloadedAsset("Fresh Upload", "audio/mp3", 0)
	store.Prepend(created)

	snapshot, stats := store.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, created.ID, snapshot[0].ID)
	assert.Equal(t, 2, stats.TotalCount)
	assert.Equal(t, 1, stats.AudioCount)
	assert.Equal(t, 4, stats.TotalDownloads)
}

func TestReplaceKeepsOrderAndRecomputesStats(t *testing.T) {
	a := downloadedAsset("A", "audio/mp3", 1)
	b := downloadedAsset("B", "image/png", 2)
	store := NewStore(&fakeLister{assets: []model.Asset{a, b}})
	require.NoError(t, store.Refresh(context.Background()))

	updated := a
	updated.Title = "A Renamed"
	updated.DownloadCount = 9
	require.True(t, store.Replace(updated))

	snapshot, stats := store.Snapshot()
	assert.Equal(t, updated.ID, snapshot[0].ID)
	assert.Equal(t, "A Renamed", snapshot[0].Title)
	assert.Equal(t, 11, stats.TotalDownloads)
	require.NotNil(t, stats.TopAsset)
	assert.Equal(t, a.ID, stats.TopAsset.ID)
}

func TestReplaceUnknownIDReturnsFalse(t *testing.T) {
	store := NewStore(&fakeLister{})
	require.NoError(t, store.Refresh(context.Background()))

	assert.False(t, store.Replace(downloadedAsset("Ghost", "audio/mp3", 0)))
}

func TestRemoveDeletesEntryAndRecomputesStats(t *testing.T) {
	a := downloadedAsset("A", "audio/mp3", 5)
	b := downloadedAsset("B", "image/png", 10)
	store := NewStore(&fakeLister{assets: []model.Asset{a, b}})
	require.NoError(t, store.Refresh(context.Background()))

	removed, ok := store.Remove(b.ID)
	require.True(t, ok)
	assert.Equal(t, b.ID, removed.ID)

	snapshot, stats := store.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, 5, stats.TotalDownloads)
	assert.Equal(t, 0, stats.ImageCount)
	require.NotNil(t, stats.TopAsset)
	assert.Equal(t, a.ID, stats.TopAsset.ID)
}

func TestRemoveUnknownIDLeavesCatalogUnchanged(t *testing.T) {
	a := downloadedAsset("A", "audio/mp3", 5)
	store := NewStore(&fakeLister{assets: []model.Asset{a}})
	require.NoError(t, store.Refresh(context.Background()))

	_, ok := store.Remove(uuid.New())
	assert.False(t, ok)

	snapshot, stats := store.Snapshot()
	assert.Len(t, snapshot, 1)
	assert.Equal(t, 1, stats.TotalCount)
}

func TestSnapshotReturnsCopy(t *testing.T) {
	a := downloadedAsset("A", "audio/mp3", 5)
	store := NewStore(&fakeLister{assets: []model.Asset{a}})
	require.NoError(t, store.Refresh(context.Background()))

	snapshot, _ := store.Snapshot()
	snapshot[0].Title = "Mutated"

	fresh, _ := store.Snapshot()
	assert.Equal(t, "A", fresh[0].Title)
}
