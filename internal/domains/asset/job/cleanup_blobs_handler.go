package job

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"assetstore-backend/internal/domains/asset/repository"
	"assetstore-backend/internal/infrastructure/storage"
	"assetstore-backend/pkg/logger"
)

// Blobs younger than this are never reclaimed, so an upload whose
// metadata row has not committed yet is not swept out from under the
// writer.
const orphanGracePeriod = time.Hour

var variantNames = []string{"medium", "thumbnail"}

// CleanupOrphanedBlobsHandler reclaims objects in the bucket that no
// assets row references. Orphans appear when an upload succeeds but
// the metadata insert fails, and when a delete removes the row but the
// blob delete fails.
type CleanupOrphanedBlobsHandler struct {
	repo  repository.AssetRepository
	blobs *storage.MinIOStorage
}

func NewCleanupOrphanedBlobsHandler(repo repository.AssetRepository, blobs *storage.MinIOStorage) *CleanupOrphanedBlobsHandler {
	return &CleanupOrphanedBlobsHandler{
		repo:  repo,
		blobs: blobs,
	}
}

func (h *CleanupOrphanedBlobsHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	referenced, err := h.referencedKeys(ctx)
	if err != nil {
		logger.Error("List referenced file paths failed", err)
		return err
	}

	stored, err := h.blobs.ListKeys(ctx, "")
	if err != nil {
		logger.Error("List bucket keys failed", err)
		return err
	}

	orphans := []string{}
	for _, key := range stored {
		if _, ok := referenced[key]; ok {
			continue
		}
		if withinGracePeriod(key) {
			continue
		}
		orphans = append(orphans, key)
	}

	if len(orphans) == 0 {
		log.Info().Msg("No orphaned blobs found")
		return nil
	}

	if err := h.blobs.RemoveObjects(ctx, orphans); err != nil {
		logger.Error("Remove orphaned blobs failed", err)
		return err
	}

	log.Info().
		Int("removed", len(orphans)).
		Msg("Orphaned blobs reclaimed")

	return nil
}

// referencedKeys is the set of live storage keys: every file_path in
// the assets table plus its resized variants.
func (h *CleanupOrphanedBlobsHandler) referencedKeys(ctx context.Context) (map[string]struct{}, error) {
	paths, err := h.repo.ListFilePaths(ctx)
	if err != nil {
		return nil, err
	}

	keys := make(map[string]struct{}, len(paths)*(len(variantNames)+1))
	for _, path := range paths {
		keys[path] = struct{}{}
		for _, variant := range variantNames {
			keys[VariantKey(variant, path)] = struct{}{}
		}
	}
	return keys, nil
}

// withinGracePeriod parses the unix-millisecond prefix that storage
// keys carry and reports whether the object is too fresh to reclaim.
// Keys without a parsable prefix are treated as fresh and skipped.
func withinGracePeriod(key string) bool {
	base := key
	if i := strings.LastIndex(key, "/"); i >= 0 {
		base = key[i+1:]
	}

	dash := strings.Index(base, "-")
	if dash <= 0 {
		return true
	}

	millis, err := strconv.ParseInt(base[:dash], 10, 64)
	if err != nil {
		return true
	}

	return time.Since(time.UnixMilli(millis)) < orphanGracePeriod
}
