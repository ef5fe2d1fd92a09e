package job

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"assetstore-backend/internal/domains/user"
	"assetstore-backend/pkg/logger"
)

type CleanupExpiredTokensPayload struct {
	Date time.Time `json:"date,omitempty"`
}

// CleanupExpiredTokenHandler clears stale verification and reset
// tokens on a schedule so abandoned signups do not hold live tokens.
type CleanupExpiredTokenHandler struct {
	userRepo user.Repository
}

func NewCleanupExpiredTokenHandler(userRepo user.Repository) *CleanupExpiredTokenHandler {
	return &CleanupExpiredTokenHandler{
		userRepo: userRepo,
	}
}

func (h *CleanupExpiredTokenHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload CleanupExpiredTokensPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Error("unmarshal cleanup payload failed", err)
		return err
	}

	cleanupDate := time.Now()
	if !payload.Date.IsZero() {
		cleanupDate = payload.Date
	}

	log.Info().
		Time("cleanup_date", cleanupDate).
		Msg("Starting cleanup of expired tokens")

	// Verification tokens live 24h.
	verificationCutoff := cleanupDate.Add(-24 * time.Hour)
	deletedVerify, err := h.userRepo.DeleteExpiredVerifyTokens(ctx, verificationCutoff)
	if err != nil {
		logger.Error("delete expired verification tokens failed", err)
		return err
	}

	// Reset tokens carry their own expiry.
	deletedReset, err := h.userRepo.DeleteExpiredResetTokens(ctx, cleanupDate)
	if err != nil {
		logger.Error("delete expired reset tokens failed", err)
		return err
	}

	log.Info().
		Int("verification_tokens_deleted", deletedVerify).
		Int("reset_tokens_deleted", deletedReset).
		Msg("Expired token cleanup finished")

	return nil
}
