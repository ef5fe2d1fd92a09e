package main

import (
	"github.com/hibiken/asynq"

	assetJob "assetstore-backend/internal/domains/asset/job"
	userJob "assetstore-backend/internal/domains/user/job"
	"assetstore-backend/internal/infrastructure/email"
	emailjob "assetstore-backend/internal/infrastructure/email/job"
	"assetstore-backend/internal/infrastructure/storage"
	"assetstore-backend/internal/shared"
	"assetstore-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	// Email handlers
	emailVerification *emailjob.EmailVerificationHandler
	resetPassword     *emailjob.ResetPasswordEmailHandler

	// Asset handlers
	processImage *assetJob.ProcessImageHandler
	cleanupBlobs *assetJob.CleanupOrphanedBlobsHandler

	// Maintenance handlers
	cleanupTokens *userJob.CleanupExpiredTokenHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container, cfg *Config) *HandlerRegistry {
	emailSvc := email.NewSMTPEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailFrom)

	return &HandlerRegistry{
		emailVerification: emailjob.NewEmailVerificationHandler(emailSvc),
		resetPassword:     emailjob.NewResetPasswordEmailHandler(emailSvc),

		processImage: assetJob.NewProcessImageHandler(c.Blobs, storage.NewImageProcessor()),
		cleanupBlobs: assetJob.NewCleanupOrphanedBlobsHandler(c.AssetRepo, c.Blobs),

		cleanupTokens: userJob.NewCleanupExpiredTokenHandler(c.UserRepo),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	// Email tasks
	mux.HandleFunc(shared.TypeSendVerificationEmail, h.emailVerification.ProcessTask)
	mux.HandleFunc(shared.TypeSendResetEmail, h.resetPassword.ProcessTask)

	// Asset tasks
	mux.HandleFunc(shared.TypeProcessAssetImage, h.processImage.ProcessTask)
	mux.HandleFunc(shared.TypeCleanupOrphanedBlobs, h.cleanupBlobs.ProcessTask)

	// Maintenance tasks
	mux.HandleFunc(shared.TypeCleanupExpiredTokens, h.cleanupTokens.ProcessTask)
}
