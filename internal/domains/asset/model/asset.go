package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// MediaKind is the coarse classification of an asset, derived once at
// ingestion from the MIME type prefix instead of re-parsing the string
// on every filter pass.
type MediaKind string

const (
	MediaKindAudio MediaKind = "audio"
	MediaKindImage MediaKind = "image"
	MediaKindOther MediaKind = "other"
)

func MediaKindFromFileType(fileType string) MediaKind {
	switch {
	case strings.HasPrefix(fileType, "audio/"):
		return MediaKindAudio
	case strings.HasPrefix(fileType, "image/"):
		return MediaKindImage
	default:
		return MediaKindOther
	}
}

// Categories offered by the upload form. Stored as free-form text;
// validated against this set on create/update.
var AllowedCategories = []string{
	"audio-electronic",
	"audio-ambient",
	"audio-cinematic",
	"audio-rock",
	"image-abstract",
	"image-nature",
	"image-technology",
	"image-photography",
}

func IsValidCategory(category string) bool {
	for _, c := range AllowedCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Asset represents one downloadable audio or image file plus metadata.
type Asset struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	Title       string         `json:"title" db:"title"`
	Description *string        `json:"description" db:"description"`
	Category    *string        `json:"category" db:"category"`
	Tags        pq.StringArray `json:"tags" db:"tags"`

	// File metadata. MediaKind is derived from FileType at ingestion
	// and never stored.
	FileType  string    `json:"file_type" db:"file_type"`
	MediaKind MediaKind `json:"media_kind" db:"-"`
	FileSize  *int64    `json:"file_size" db:"file_size"`
	FilePath  string    `json:"-" db:"file_path"` // storage key, not user-visible

	IsPublished   bool `json:"is_published" db:"is_published"`
	DownloadCount int  `json:"download_count" db:"download_count"`

	// Version backs optimistic locking on updates.
	Version int `json:"version" db:"version"`

	UploadedBy uuid.UUID `json:"uploaded_by" db:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Ingest fills derived fields after a row scan.
func (a *Asset) Ingest() {
	a.MediaKind = MediaKindFromFileType(a.FileType)
}

// CatalogStats is derived from the current catalog snapshot, never
// persisted.
type CatalogStats struct {
	TotalCount     int    `json:"total_count"`
	ImageCount     int    `json:"image_count"`
	AudioCount     int    `json:"audio_count"`
	TotalDownloads int    `json:"total_downloads"`
	TopAsset       *Asset `json:"top_asset,omitempty"`
}
