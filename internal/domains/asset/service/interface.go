package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"assetstore-backend/internal/domains/asset/model"
)

// AssetService coordinates the external store, the blob storage and
// the in-memory catalog. All reads are served from the catalog
// snapshot; mutations write through to the store first and only sync
// the snapshot after the write is confirmed.
type AssetService interface {
	List(ctx context.Context, q model.FilterQuery) ([]model.Asset, error)
	Featured(ctx context.Context, limit int) ([]model.Asset, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Asset, error)
	Stats(ctx context.Context) (model.CatalogStats, error)
	Refresh(ctx context.Context) error

	Create(ctx context.Context, userID uuid.UUID, req model.CreateAssetRequest, file model.FileUpload) (*model.Asset, error)
	Update(ctx context.Context, id uuid.UUID, req model.UpdateAssetRequest) (*model.Asset, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// BlobStorage is the subset of the object store the service needs.
type BlobStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// TaskEnqueuer matches *asynq.Client.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
