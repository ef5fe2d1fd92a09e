package repository

import (
	"context"

	"github.com/google/uuid"

	"assetstore-backend/internal/domains/asset/model"
)

// AssetRepository - Persistence layer for the assets table
type AssetRepository interface {
	ListAssets(ctx context.Context) ([]model.Asset, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Asset, error)
	Insert(ctx context.Context, asset *model.Asset) error
	Update(ctx context.Context, asset *model.Asset, expectedVersion int) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListFilePaths(ctx context.Context) ([]string, error)
}
