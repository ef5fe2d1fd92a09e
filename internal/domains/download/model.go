package download

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Download is one row in the downloads table. UserID is nil for
// anonymous downloads.
type Download struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	AssetID      uuid.UUID  `db:"asset_id" json:"asset_id"`
	UserID       *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	IPAddress    string     `db:"ip_address" json:"ip_address"`
	UserAgent    string     `db:"user_agent" json:"user_agent"`
	DownloadedAt time.Time  `db:"downloaded_at" json:"downloaded_at"`
}

// ActivityRecord is one download joined with asset and user metadata
// for the admin activity view.
type ActivityRecord struct {
	ID           uuid.UUID `json:"id"`
	AssetID      uuid.UUID `json:"asset_id"`
	AssetTitle   string    `json:"asset_title"`
	FileType     string    `json:"file_type"`
	Category     *string   `json:"category"`
	UserFullName *string   `json:"user_full_name"`
	UserEmail    *string   `json:"user_email"`
	IPAddress    string    `json:"ip_address"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

// TopAssetStat names the most downloaded asset within a period.
type TopAssetStat struct {
	Title     string `json:"title"`
	Downloads int    `json:"downloads"`
}

// ActivityStats aggregates the activity view for the admin dashboard.
type ActivityStats struct {
	TotalDownloads int           `json:"total_downloads"`
	UniqueUsers    int           `json:"unique_users"`
	TodayDownloads int           `json:"today_downloads"`
	TopAsset       *TopAssetStat `json:"top_asset,omitempty"`
}

// ActivityReport is the cached admin activity payload.
type ActivityReport struct {
	Stats   ActivityStats    `json:"stats"`
	Records []ActivityRecord `json:"records"`
}

// AssetFile is the payload handed back to the HTTP layer for
// streaming.
type AssetFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Repository persists download rows and serves the activity view.
type Repository interface {
	// RecordDownload inserts the row and increments the asset's
	// download_count in one transaction. Returns the new count.
	RecordDownload(ctx context.Context, d *Download) (int, error)

	// ListActivity returns downloads since the cutoff, newest first.
	ListActivity(ctx context.Context, since time.Time) ([]ActivityRecord, error)
}

// Service is the business contract for downloads and activity
// reporting.
type Service interface {
	Download(ctx context.Context, assetID uuid.UUID, userID *uuid.UUID, ip, userAgent string) (*AssetFile, error)
	Activity(ctx context.Context, periodDays int) (*ActivityReport, error)
	ExportActivity(ctx context.Context, periodDays int) ([]byte, error)
}
