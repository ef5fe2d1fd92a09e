package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"assetstore-backend/internal/domains/asset/model"
	"assetstore-backend/pkg/logger"
)

const assetColumns = `
	id, title, description, category, tags, file_type, file_size, file_path,
	is_published, download_count, version, uploaded_by, created_at, updated_at
`

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository - Constructor
func NewPostgresRepository(pool *pgxpool.Pool) AssetRepository {
	return &postgresRepository{pool: pool}
}

// ListAssets - Full catalog, newest first
func (r *postgresRepository) ListAssets(ctx context.Context) ([]model.Asset, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM assets
		ORDER BY created_at DESC
	`, assetColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		logger.Error("list assets query failed", err)
		return nil, fmt.Errorf("list assets query failed: %w", err)
	}
	defer rows.Close()

	assets := []model.Asset{}
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, *asset)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return assets, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Asset, error) {
	query := fmt.Sprintf(`SELECT %s FROM assets WHERE id = $1`, assetColumns)

	row := r.pool.QueryRow(ctx, query, id)
	asset, err := scanAsset(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrAssetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	return asset, nil
}

func (r *postgresRepository) Insert(ctx context.Context, asset *model.Asset) error {
	query := `
		INSERT INTO assets (
			id, title, description, category, tags, file_type, file_size, file_path,
			is_published, download_count, version, uploaded_by, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13, $14
		)
	`

	_, err := r.pool.Exec(ctx, query,
		asset.ID, asset.Title, asset.Description, asset.Category, pq.Array(asset.Tags),
		asset.FileType, asset.FileSize, asset.FilePath,
		asset.IsPublished, asset.DownloadCount, asset.Version, asset.UploadedBy,
		asset.CreatedAt, asset.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert asset: %w", err)
	}

	return nil
}

// Update - Write the full row with optimistic locking on version
func (r *postgresRepository) Update(ctx context.Context, asset *model.Asset, expectedVersion int) error {
	query := `
		UPDATE assets
		SET title = $1, description = $2, category = $3, tags = $4,
		    is_published = $5, download_count = $6, version = $7, updated_at = $8
		WHERE id = $9 AND version = $10
	`

	asset.Version = expectedVersion + 1
	asset.UpdatedAt = time.Now()

	result, err := r.pool.Exec(ctx, query,
		asset.Title, asset.Description, asset.Category, pq.Array(asset.Tags),
		asset.IsPublished, asset.DownloadCount, asset.Version, asset.UpdatedAt,
		asset.ID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Distinguish a missing row from a stale version
		exists, err := r.exists(ctx, asset.ID)
		if err != nil {
			return err
		}
		if !exists {
			return model.ErrAssetNotFound
		}
		return model.ErrVersionConflict
	}

	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrAssetNotFound
	}

	return nil
}

// ListFilePaths - Every storage key referenced by the assets table
func (r *postgresRepository) ListFilePaths(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT file_path FROM assets`)
	if err != nil {
		return nil, fmt.Errorf("list file paths query failed: %w", err)
	}
	defer rows.Close()

	paths := []string{}
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("scan file path: %w", err)
		}
		paths = append(paths, path)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return paths, nil
}

func (r *postgresRepository) exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM assets WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check asset: %w", err)
	}
	return exists, nil
}

func scanAsset(row pgx.Row) (*model.Asset, error) {
	var asset model.Asset
	err := row.Scan(
		&asset.ID, &asset.Title, &asset.Description, &asset.Category, &asset.Tags,
		&asset.FileType, &asset.FileSize, &asset.FilePath,
		&asset.IsPublished, &asset.DownloadCount, &asset.Version, &asset.UploadedBy,
		&asset.CreatedAt, &asset.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	asset.Ingest()
	return &asset, nil
}
