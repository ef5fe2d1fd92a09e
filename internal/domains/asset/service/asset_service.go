package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"assetstore-backend/internal/domains/asset/catalog"
	"assetstore-backend/internal/domains/asset/model"
	"assetstore-backend/internal/domains/asset/repository"
	"assetstore-backend/internal/shared"
	"assetstore-backend/internal/shared/utils"
	"assetstore-backend/pkg/logger"
)

type assetService struct {
	repo        repository.AssetRepository
	store       *catalog.Store
	blobs       BlobStorage
	tasks       TaskEnqueuer
	maxFileSize int64
}

// NewAssetService - Constructor
func NewAssetService(
	repo repository.AssetRepository,
	store *catalog.Store,
	blobs BlobStorage,
	tasks TaskEnqueuer,
	maxFileSize int64,
) AssetService {
	return &assetService{
		repo:        repo,
		store:       store,
		blobs:       blobs,
		tasks:       tasks,
		maxFileSize: maxFileSize,
	}
}

// ========================================
// READS (catalog snapshot)
// ========================================

func (s *assetService) List(ctx context.Context, q model.FilterQuery) ([]model.Asset, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	snapshot, _ := s.store.Snapshot()
	return catalog.Filter(snapshot, q), nil
}

// Featured returns the most downloaded published assets.
func (s *assetService) Featured(ctx context.Context, limit int) ([]model.Asset, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	snapshot, _ := s.store.Snapshot()
	published := catalog.Filter(snapshot, model.FilterQuery{Status: model.FilterStatusPublished})

	sort.SliceStable(published, func(i, j int) bool {
		return published[i].DownloadCount > published[j].DownloadCount
	})

	if limit > 0 && len(published) > limit {
		published = published[:limit]
	}
	return published, nil
}

func (s *assetService) Get(ctx context.Context, id uuid.UUID) (*model.Asset, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	asset, ok := s.store.Get(id)
	if !ok {
		return nil, model.ErrAssetNotFound
	}
	return &asset, nil
}

func (s *assetService) Stats(ctx context.Context) (model.CatalogStats, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return model.CatalogStats{}, err
	}
	return s.store.Stats(), nil
}

func (s *assetService) Refresh(ctx context.Context) error {
	return s.store.Refresh(ctx)
}

func (s *assetService) ensureLoaded(ctx context.Context) error {
	if s.store.Loaded() {
		return nil
	}
	return s.store.Refresh(ctx)
}

// ========================================
// MUTATIONS (write-through, then sync)
// ========================================

// Create uploads the payload to blob storage, inserts the metadata
// row, and only then prepends the asset to the catalog. The catalog is
// never updated on a failed write.
func (s *assetService) Create(ctx context.Context, userID uuid.UUID, req model.CreateAssetRequest, file model.FileUpload) (*model.Asset, error) {
	if userID == uuid.Nil {
		return nil, model.ErrNotAuthenticated
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(file.ContentType, "audio/") && !strings.HasPrefix(file.ContentType, "image/") {
		return nil, model.ErrUnsupportedFileType
	}
	if int64(len(file.Data)) > s.maxFileSize {
		return nil, model.ErrFileTooLarge
	}

	key, err := utils.GenerateStorageKey(file.Filename)
	if err != nil {
		return nil, fmt.Errorf("generate storage key: %w", err)
	}

	if _, err := s.blobs.Upload(ctx, key, file.Data, file.ContentType); err != nil {
		return nil, fmt.Errorf("upload asset file: %w", err)
	}

	now := time.Now()
	size := int64(len(file.Data))
	asset := &model.Asset{
		ID:          uuid.New(),
		Title:       req.Title,
		Tags:        req.Tags,
		FileType:    file.ContentType,
		FileSize:    &size,
		FilePath:    key,
		IsPublished: req.IsPublished,
		Version:     1,
		UploadedBy:  userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Description != "" {
		asset.Description = &req.Description
	}
	if req.Category != "" {
		asset.Category = &req.Category
	}
	asset.Ingest()

	// The uploaded blob is not rolled back on insert failure; the
	// scheduled orphan cleanup job reclaims it.
	if err := s.repo.Insert(ctx, asset); err != nil {
		return nil, err
	}

	s.store.Prepend(*asset)

	if asset.MediaKind == model.MediaKindImage {
		s.enqueueImageProcessing(ctx, asset)
	}

	logger.Info("asset created", map[string]interface{}{
		"asset_id":  asset.ID.String(),
		"file_type": asset.FileType,
		"file_size": size,
	})

	return asset, nil
}

// Update applies a partial update with optimistic locking and swaps
// the catalog entry in place after the row is confirmed written.
func (s *assetService) Update(ctx context.Context, id uuid.UUID, req model.UpdateAssetRequest) (*model.Asset, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	asset, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		asset.Title = *req.Title
	}
	if req.Description != nil {
		asset.Description = req.Description
	}
	if req.Category != nil {
		if *req.Category == "" {
			asset.Category = nil
		} else {
			asset.Category = req.Category
		}
	}
	if req.Tags != nil {
		asset.Tags = req.Tags
	}
	if req.IsPublished != nil {
		asset.IsPublished = *req.IsPublished
	}

	if err := s.repo.Update(ctx, asset, req.Version); err != nil {
		return nil, err
	}
	asset.Ingest()

	if !s.store.Replace(*asset) {
		// Snapshot drifted from the store; resync the whole catalog.
		if err := s.store.Refresh(ctx); err != nil {
			logger.Error("catalog resync after update failed", err)
		}
	}

	return asset, nil
}

// Delete removes the blob (best effort), deletes the row, and drops
// the catalog entry. A blob storage failure does not block the delete;
// the row delete is the authoritative step.
func (s *assetService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	asset, ok := s.store.Get(id)
	if !ok {
		return model.ErrAssetNotFound
	}

	if asset.FilePath != "" {
		if err := s.blobs.Delete(ctx, asset.FilePath); err != nil {
			logger.Warn("asset blob delete failed, continuing", err)
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.store.Remove(id)

	logger.Info("asset deleted", map[string]interface{}{
		"asset_id": id.String(),
	})
	return nil
}

// enqueueImageProcessing schedules thumbnail generation. Failures are
// logged and swallowed: the original upload is already live.
func (s *assetService) enqueueImageProcessing(ctx context.Context, asset *model.Asset) {
	if s.tasks == nil {
		return
	}

	payload, err := json.Marshal(shared.ProcessAssetImagePayload{
		AssetID:  asset.ID.String(),
		FilePath: asset.FilePath,
	})
	if err != nil {
		return
	}

	task := asynq.NewTask(shared.TypeProcessAssetImage, payload)
	if _, err := s.tasks.EnqueueContext(ctx, task, asynq.MaxRetry(3), asynq.Queue("default")); err != nil {
		logger.Warn("enqueue image processing failed", err)
	}
}
