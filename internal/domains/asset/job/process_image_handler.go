package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"assetstore-backend/internal/infrastructure/storage"
	"assetstore-backend/internal/shared"
	"assetstore-backend/pkg/logger"
)

// ProcessImageHandler generates resized JPEG variants for an uploaded
// image asset and stores them under thumbs/<variant>/<key>.
type ProcessImageHandler struct {
	blobs     *storage.MinIOStorage
	processor *storage.ImageProcessor
}

func NewProcessImageHandler(blobs *storage.MinIOStorage, processor *storage.ImageProcessor) *ProcessImageHandler {
	return &ProcessImageHandler{
		blobs:     blobs,
		processor: processor,
	}
}

func (h *ProcessImageHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.ProcessAssetImagePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Error("Unmarshal process image payload failed", err)
		return err
	}

	log.Info().
		Str("asset_id", payload.AssetID).
		Str("file_path", payload.FilePath).
		Msg("Generating image variants")

	data, err := h.blobs.Download(ctx, payload.FilePath)
	if err != nil {
		logger.Error("Download original image failed", err)
		return err
	}

	if err := h.processor.ValidateImage(data); err != nil {
		// Not retryable; the original is never going to decode.
		logger.Error("Uploaded file is not a processable image", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	variants, err := h.processor.ProcessImage(data)
	if err != nil {
		logger.Error("Process image failed", err)
		return err
	}

	for name, bytes := range variants {
		key := VariantKey(name, payload.FilePath)
		if _, err := h.blobs.Upload(ctx, key, bytes, "image/jpeg"); err != nil {
			logger.Error("Upload image variant failed", err)
			return err
		}
	}

	log.Info().
		Str("asset_id", payload.AssetID).
		Int("variants", len(variants)).
		Msg("Image variants stored")

	return nil
}

// VariantKey maps an original storage key to the key of one resized
// variant.
func VariantKey(variant, originalKey string) string {
	return fmt.Sprintf("thumbs/%s/%s", variant, originalKey)
}
