package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetstore-backend/internal/domains/asset/catalog"
	"assetstore-backend/internal/domains/asset/model"
)

const testMaxFileSize = 50 << 20

// fakeRepo keeps rows in memory and honors the optimistic lock.
type fakeRepo struct {
	rows      map[uuid.UUID]model.Asset
	order     []uuid.UUID
	insertErr error
	deleteErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[uuid.UUID]model.Asset{}}
}

func (f *fakeRepo) ListAssets(ctx context.Context) ([]model.Asset, error) {
	assets := make([]model.Asset, 0, len(f.order))
	for _, id := range f.order {
		assets = append(assets, f.rows[id])
	}
	return assets, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Asset, error) {
	a, ok := f.rows[id]
	if !ok {
		return nil, model.ErrAssetNotFound
	}
	return &a, nil
}

func (f *fakeRepo) Insert(ctx context.Context, asset *model.Asset) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.rows[asset.ID] = *asset
	f.order = append([]uuid.UUID{asset.ID}, f.order...)
	return nil
}

func (f *fakeRepo) Update(ctx context.Context, asset *model.Asset, expectedVersion int) error {
	current, ok := f.rows[asset.ID]
	if !ok {
		return model.ErrAssetNotFound
	}
	if current.Version != expectedVersion {
		return model.ErrVersionConflict
	}
	asset.Version = expectedVersion + 1
	asset.UpdatedAt = time.Now()
	f.rows[asset.ID] = *asset
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.rows[id]; !ok {
		return model.ErrAssetNotFound
	}
	delete(f.rows, id)
	for i, rid := range f.order {
		if rid == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeRepo) ListFilePaths(ctx context.Context) ([]string, error) {
	paths := []string{}
	for _, a := range f.rows {
		paths = append(paths, a.FilePath)
	}
	return paths, nil
}

type fakeBlobs struct {
	uploads   map[string][]byte
	uploadErr error
	deleteErr error
	deleted   []string
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{uploads: map[string][]byte{}}
}

func (f *fakeBlobs) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads[key] = data
	return "http://storage.local/" + key, nil
}

func (f *fakeBlobs) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return f.deleteErr
}

func newTestService(t *testing.T, repo *fakeRepo, blobs *fakeBlobs) (AssetService, *catalog.Store) {
	t.Helper()
	store := catalog.NewStore(repo)
	require.NoError(t, store.Refresh(context.Background()))
	return NewAssetService(repo, store, blobs, nil, testMaxFileSize), store
}

func seedAsset(t *testing.T, repo *fakeRepo, title, fileType string, downloads int) model.Asset {
	t.Helper()
	size := int64(1024)
	a := model.Asset{
		ID:            uuid.New(),
		Title:         title,
		FileType:      fileType,
		FileSize:      &size,
		FilePath:      "seed-" + title,
		IsPublished:   true,
		DownloadCount: downloads,
		Version:       1,
		UploadedBy:    uuid.New(),
	}
	a.Ingest()
	require.NoError(t, repo.Insert(context.Background(), &a))
	return a
}

func pngUpload() model.FileUpload {
	return model.FileUpload{
		Filename:    "texture.png",
		ContentType: "image/png",
		Data:        []byte("png-bytes"),
	}
}

func TestCreateAppearsAtHeadAndUpdatesStats(t *testing.T) {
	repo := newFakeRepo()
	seedAsset(t, repo, "Old Track", "audio/mp3", 5)
	svc, store := newTestService(t, repo, newFakeBlobs())

	created, err := svc.Create(context.Background(), uuid.New(), model.CreateAssetRequest{
		Title:       "New Texture",
		IsPublished: true,
	}, pngUpload())
	require.NoError(t, err)
	assert.Equal(t, model.MediaKindImage, created.MediaKind)
	assert.Equal(t, 1, created.Version)

	snapshot, stats := store.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, created.ID, snapshot[0].ID)
	assert.Equal(t, 2, stats.TotalCount)
	assert.Equal(t, 1, stats.ImageCount)
	assert.Equal(t, 1, stats.AudioCount)
}

func TestCreateRequiresAuthentication(t *testing.T) {
	repo := newFakeRepo()
	svc, store := newTestService(t, repo, newFakeBlobs())

	_, err := svc.Create(context.Background(), uuid.Nil, model.CreateAssetRequest{Title: "X"}, pngUpload())
	assert.ErrorIs(t, err, model.ErrNotAuthenticated)

	snapshot, _ := store.Snapshot()
	assert.Empty(t, snapshot)
}

func TestCreateRejectsUnsupportedFileType(t *testing.T) {
	repo := newFakeRepo()
	blobs := newFakeBlobs()
	svc, _ := newTestService(t, repo, blobs)

	_, err := svc.Create(context.Background(), uuid.New(), model.CreateAssetRequest{Title: "Doc"}, model.FileUpload{
		Filename:    "notes.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF"),
	})
	assert.ErrorIs(t, err, model.ErrUnsupportedFileType)
	assert.Empty(t, blobs.uploads)
}

func TestFailedUploadLeavesCatalogUntouched(t *testing.T) {
	repo := newFakeRepo()
	seedAsset(t, repo, "Existing", "audio/mp3", 3)
	blobs := newFakeBlobs()
	blobs.uploadErr = errors.New("storage unavailable")
	svc, store := newTestService(t, repo, blobs)

	before, beforeStats := store.Snapshot()

	_, err := svc.Create(context.Background(), uuid.New(), model.CreateAssetRequest{Title: "Doomed"}, pngUpload())
	require.Error(t, err)

	after, afterStats := store.Snapshot()
	assert.Equal(t, before, after)
	assert.Equal(t, beforeStats, afterStats)
}

func TestFailedInsertLeavesCatalogUntouched(t *testing.T) {
	repo := newFakeRepo()
	seedAsset(t, repo, "Existing", "audio/mp3", 3)
	blobs := newFakeBlobs()
	svc, store := newTestService(t, repo, blobs)
	repo.insertErr = errors.New("constraint violation")

	_, err := svc.Create(context.Background(), uuid.New(), model.CreateAssetRequest{Title: "Doomed"}, pngUpload())
	require.Error(t, err)

	snapshot, stats := store.Snapshot()
	assert.Len(t, snapshot, 1)
	assert.Equal(t, 1, stats.TotalCount)
	// The orphaned blob stays in storage for the cleanup job.
	assert.Len(t, blobs.uploads, 1)
}

func TestUpdateSwapsCatalogEntryInPlace(t *testing.T) {
	repo := newFakeRepo()
	first := seedAsset(t, repo, "B Side", "audio/mp3", 1)
	second := seedAsset(t, repo, "A Side", "audio/mp3", 2)
	svc, store := newTestService(t, repo, newFakeBlobs())

	newTitle := "A Side (Remastered)"
	updated, err := svc.Update(context.Background(), second.ID, model.UpdateAssetRequest{
		Title:   &newTitle,
		Version: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)

	snapshot, _ := store.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, second.ID, snapshot[0].ID)
	assert.Equal(t, newTitle, snapshot[0].Title)
	assert.Equal(t, first.ID, snapshot[1].ID)
}

func TestSequentialUpdatesApplyInOrder(t *testing.T) {
	repo := newFakeRepo()
	asset := seedAsset(t, repo, "Draft", "audio/mp3", 0)
	svc, store := newTestService(t, repo, newFakeBlobs())

	titleA := "A"
	first, err := svc.Update(context.Background(), asset.ID, model.UpdateAssetRequest{
		Title:   &titleA,
		Version: 1,
	})
	require.NoError(t, err)

	titleB := "B"
	second, err := svc.Update(context.Background(), asset.ID, model.UpdateAssetRequest{
		Title:   &titleB,
		Version: first.Version,
	})
	require.NoError(t, err)

	entry, ok := store.Get(asset.ID)
	require.True(t, ok)
	assert.Equal(t, "B", entry.Title)
	assert.Equal(t, 3, entry.Version)
	assert.False(t, second.UpdatedAt.Before(first.UpdatedAt))
}

func TestUpdateStaleVersionConflicts(t *testing.T) {
	repo := newFakeRepo()
	asset := seedAsset(t, repo, "Contested", "image/png", 0)
	svc, _ := newTestService(t, repo, newFakeBlobs())

	published := false
	_, err := svc.Update(context.Background(), asset.ID, model.UpdateAssetRequest{
		IsPublished: &published,
		Version:     1,
	})
	require.NoError(t, err)

	// Second writer still holds version 1.
	title := "Late Edit"
	_, err = svc.Update(context.Background(), asset.ID, model.UpdateAssetRequest{
		Title:   &title,
		Version: 1,
	})
	assert.ErrorIs(t, err, model.ErrVersionConflict)
}

func TestUpdateUnknownAssetReturnsNotFound(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(t, repo, newFakeBlobs())

	title := "Ghost"
	_, err := svc.Update(context.Background(), uuid.New(), model.UpdateAssetRequest{
		Title:   &title,
		Version: 1,
	})
	assert.ErrorIs(t, err, model.ErrAssetNotFound)
}

func TestDeleteRemovesRowBlobAndCatalogEntry(t *testing.T) {
	repo := newFakeRepo()
	asset := seedAsset(t, repo, "Removable", "image/png", 4)
	blobs := newFakeBlobs()
	svc, store := newTestService(t, repo, blobs)

	require.NoError(t, svc.Delete(context.Background(), asset.ID))

	_, ok := store.Get(asset.ID)
	assert.False(t, ok)
	assert.Contains(t, blobs.deleted, asset.FilePath)
	_, err := repo.GetByID(context.Background(), asset.ID)
	assert.ErrorIs(t, err, model.ErrAssetNotFound)

	_, stats := store.Snapshot()
	assert.Equal(t, 0, stats.TotalCount)
	assert.Equal(t, 0, stats.TotalDownloads)
}

func TestDeleteProceedsWhenBlobDeleteFails(t *testing.T) {
	repo := newFakeRepo()
	asset := seedAsset(t, repo, "Sticky Blob", "audio/mp3", 1)
	blobs := newFakeBlobs()
	blobs.deleteErr = errors.New("object locked")
	svc, store := newTestService(t, repo, blobs)

	require.NoError(t, svc.Delete(context.Background(), asset.ID))

	_, ok := store.Get(asset.ID)
	assert.False(t, ok)
}

func TestDeleteUnknownAssetReturnsNotFound(t *testing.T) {
	repo := newFakeRepo()
	seedAsset(t, repo, "Bystander", "audio/mp3", 1)
	svc, store := newTestService(t, repo, newFakeBlobs())

	err := svc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, model.ErrAssetNotFound)

	snapshot, _ := store.Snapshot()
	assert.Len(t, snapshot, 1)
}

func TestDeleteRowFailureKeepsCatalogEntry(t *testing.T) {
	repo := newFakeRepo()
	asset := seedAsset(t, repo, "Protected", "audio/mp3", 1)
	svc, store := newTestService(t, repo, newFakeBlobs())
	repo.deleteErr = errors.New("foreign key violation")

	err := svc.Delete(context.Background(), asset.ID)
	require.Error(t, err)

	_, ok := store.Get(asset.ID)
	assert.True(t, ok)
}

func TestListAppliesFilterToSnapshot(t *testing.T) {
	repo := newFakeRepo()
	seedAsset(t, repo, "Ambient Dreams", "audio/mp3", 5)
	seedAsset(t, repo, "Abstract Geometry", "image/png", 10)
	svc, _ := newTestService(t, repo, newFakeBlobs())

	results, err := svc.List(context.Background(), model.FilterQuery{MediaKind: model.FilterMediaAudio})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Ambient Dreams", results[0].Title)
}

func TestFeaturedOrdersByDownloadsAndCaps(t *testing.T) {
	repo := newFakeRepo()
	seedAsset(t, repo, "Bronze", "audio/mp3", 1)
	seedAsset(t, repo, "Gold", "image/png", 30)
	seedAsset(t, repo, "Silver", "audio/mp3", 20)
	draft := seedAsset(t, repo, "Hidden Gem", "image/png", 99)
	draft.IsPublished = false
	repo.rows[draft.ID] = draft
	svc, store := newTestService(t, repo, newFakeBlobs())
	require.NoError(t, store.Refresh(context.Background()))

	featured, err := svc.Featured(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, featured, 2)
	assert.Equal(t, "Gold", featured[0].Title)
	assert.Equal(t, "Silver", featured[1].Title)
}

func TestStatsInvariantTotalDownloadsEqualsSum(t *testing.T) {
	repo := newFakeRepo()
	seedAsset(t, repo, "One", "audio/mp3", 5)
	seedAsset(t, repo, "Two", "image/png", 10)
	svc, store := newTestService(t, repo, newFakeBlobs())

	created, err := svc.Create(context.Background(), uuid.New(), model.CreateAssetRequest{Title: "Three"}, pngUpload())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), created.ID))

	snapshot, stats := store.Snapshot()
	sum := 0
	for _, a := range snapshot {
		sum += a.DownloadCount
	}
	assert.Equal(t, sum, stats.TotalDownloads)
	assert.Equal(t, len(snapshot), stats.TotalCount)
}
