package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"assetstore-backend/internal/domains/download"
	"assetstore-backend/pkg/database"
	"assetstore-backend/pkg/logger"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository - Constructor
func NewPostgresRepository(pool *pgxpool.Pool) download.Repository {
	return &postgresRepository{pool: pool}
}

// RecordDownload inserts the download row and bumps the asset counter
// atomically, so the count and the activity log never drift apart.
func (r *postgresRepository) RecordDownload(ctx context.Context, d *download.Download) (int, error) {
	var newCount int

	err := database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO downloads (id, asset_id, user_id, ip_address, user_agent, downloaded_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, d.ID, d.AssetID, d.UserID, d.IPAddress, d.UserAgent, d.DownloadedAt)
		if err != nil {
			return fmt.Errorf("insert download: %w", err)
		}

		err = tx.QueryRow(ctx, `
			UPDATE assets
			SET download_count = download_count + 1
			WHERE id = $1
			RETURNING download_count
		`, d.AssetID).Scan(&newCount)
		if err != nil {
			return fmt.Errorf("increment download count: %w", err)
		}

		return nil
	})
	if err != nil {
		logger.Error("record download failed", err)
		return 0, err
	}

	return newCount, nil
}

func (r *postgresRepository) ListActivity(ctx context.Context, since time.Time) ([]download.ActivityRecord, error) {
	query := `
		SELECT d.id, d.asset_id, a.title, a.file_type, a.category,
		       u.full_name, u.email, d.ip_address, d.downloaded_at
		FROM downloads d
		JOIN assets a ON d.asset_id = a.id
		LEFT JOIN users u ON d.user_id = u.id
		WHERE d.downloaded_at >= $1
		ORDER BY d.downloaded_at DESC
	`

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		logger.Error("list activity query failed", err)
		return nil, fmt.Errorf("list activity query failed: %w", err)
	}
	defer rows.Close()

	records := []download.ActivityRecord{}
	for rows.Next() {
		var rec download.ActivityRecord
		err := rows.Scan(
			&rec.ID, &rec.AssetID, &rec.AssetTitle, &rec.FileType, &rec.Category,
			&rec.UserFullName, &rec.UserEmail, &rec.IPAddress, &rec.DownloadedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan activity record: %w", err)
		}
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return records, nil
}
