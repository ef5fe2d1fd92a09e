package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"assetstore-backend/internal/domains/asset/catalog"
	assetmodel "assetstore-backend/internal/domains/asset/model"
	"assetstore-backend/internal/domains/download"
	"assetstore-backend/pkg/cache"
	"assetstore-backend/pkg/logger"
)

const (
	defaultPeriodDays = 7
	maxPeriodDays     = 90
	reportCacheTTL    = time.Minute
)

// BlobDownloader is the subset of the object store the service needs.
type BlobDownloader interface {
	Download(ctx context.Context, key string) ([]byte, error)
}

type downloadService struct {
	repo  download.Repository
	store *catalog.Store
	blobs BlobDownloader
	cache cache.Cache
}

// NewDownloadService - Constructor
func NewDownloadService(repo download.Repository, store *catalog.Store, blobs BlobDownloader, cache cache.Cache) download.Service {
	return &downloadService{
		repo:  repo,
		store: store,
		blobs: blobs,
		cache: cache,
	}
}

// Download streams a published asset and records the download. The
// catalog entry's counter is synced from the confirmed row count.
func (s *downloadService) Download(ctx context.Context, assetID uuid.UUID, userID *uuid.UUID, ip, userAgent string) (*download.AssetFile, error) {
	// The startup warm is non-fatal, so the catalog may still be cold
	// on the first download.
	if !s.store.Loaded() {
		if err := s.store.Refresh(ctx); err != nil {
			return nil, err
		}
	}

	asset, ok := s.store.Get(assetID)
	if !ok || !asset.IsPublished {
		return nil, assetmodel.ErrAssetNotFound
	}

	data, err := s.blobs.Download(ctx, asset.FilePath)
	if err != nil {
		return nil, fmt.Errorf("download asset blob: %w", err)
	}

	newCount, err := s.repo.RecordDownload(ctx, &download.Download{
		ID:           uuid.New(),
		AssetID:      assetID,
		UserID:       userID,
		IPAddress:    ip,
		UserAgent:    userAgent,
		DownloadedAt: time.Now(),
	})
	if err != nil {
		// The user already has the bytes; losing one count entry is
		// preferable to failing the download.
		logger.Error("record download failed, serving file anyway", err)
	} else {
		asset.DownloadCount = newCount
		s.store.Replace(asset)
		s.invalidateReports(ctx)
	}

	return &download.AssetFile{
		Filename:    asset.Title + filepath.Ext(asset.FilePath),
		ContentType: asset.FileType,
		Data:        data,
	}, nil
}

// Activity returns the admin activity report, cache-aside with a
// short TTL since the dashboard polls it.
func (s *downloadService) Activity(ctx context.Context, periodDays int) (*download.ActivityReport, error) {
	periodDays = clampPeriod(periodDays)
	cacheKey := fmt.Sprintf("activity:report:%dd", periodDays)

	var cached download.ActivityReport
	if found, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
		logger.Warn("activity report cache read failed", err)
	} else if found {
		return &cached, nil
	}

	since := time.Now().AddDate(0, 0, -periodDays)
	records, err := s.repo.ListActivity(ctx, since)
	if err != nil {
		return nil, err
	}

	report := &download.ActivityReport{
		Stats:   computeActivityStats(records, time.Now()),
		Records: records,
	}

	if err := s.cache.Set(ctx, cacheKey, report, reportCacheTTL); err != nil {
		logger.Warn("activity report cache write failed", err)
	}

	return report, nil
}

// ExportActivity renders the activity report as an XLSX workbook.
func (s *downloadService) ExportActivity(ctx context.Context, periodDays int) ([]byte, error) {
	report, err := s.Activity(ctx, periodDays)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Downloads"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Downloaded At", "Asset", "File Type", "Category", "User", "Email", "IP Address"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, rec := range report.Records {
		values := []interface{}{
			rec.DownloadedAt.Format(time.RFC3339),
			rec.AssetTitle,
			rec.FileType,
			strOrDash(rec.Category),
			strOrDash(rec.UserFullName),
			strOrDash(rec.UserEmail),
			rec.IPAddress,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *downloadService) invalidateReports(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, "activity:report:*"); err != nil {
		logger.Warn("activity report cache invalidation failed", err)
	}
}

// computeActivityStats derives the dashboard aggregates from one pass
// over the records. Anonymous downloads are deduplicated by IP.
func computeActivityStats(records []download.ActivityRecord, now time.Time) download.ActivityStats {
	stats := download.ActivityStats{TotalDownloads: len(records)}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	users := map[string]struct{}{}
	perAsset := map[string]int{}

	for _, rec := range records {
		if rec.UserEmail != nil {
			users["u:"+*rec.UserEmail] = struct{}{}
		} else {
			users["ip:"+rec.IPAddress] = struct{}{}
		}

		if !rec.DownloadedAt.Before(midnight) {
			stats.TodayDownloads++
		}

		perAsset[rec.AssetTitle]++
		if stats.TopAsset == nil || perAsset[rec.AssetTitle] > stats.TopAsset.Downloads {
			stats.TopAsset = &download.TopAssetStat{
				Title:     rec.AssetTitle,
				Downloads: perAsset[rec.AssetTitle],
			}
		}
	}

	stats.UniqueUsers = len(users)
	return stats
}

func clampPeriod(days int) int {
	if days <= 0 {
		return defaultPeriodDays
	}
	if days > maxPeriodDays {
		return maxPeriodDays
	}
	return days
}

func strOrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
