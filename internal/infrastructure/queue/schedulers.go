package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"assetstore-backend/internal/domains/user/job"
	"assetstore-backend/internal/shared"
	"assetstore-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddress string) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddress},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{scheduler: scheduler}
}

func (s *Scheduler) RegisterCleanupJobs() error {
	if err := s.registerCleanupExpiredTokensJob(); err != nil {
		return err
	}

	if err := s.registerCleanupOrphanedBlobsJob(); err != nil {
		return err
	}

	return nil
}

// ================================================
// JOB 1: Cleanup Expired Tokens (Hourly)
// ================================================
func (s *Scheduler) registerCleanupExpiredTokensJob() error {
	payload, err := json.Marshal(job.CleanupExpiredTokensPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeCleanupExpiredTokens, payload)

	_, err = s.scheduler.Register(
		"0 * * * *", // hourly at minute 0
		task,
		asynq.Queue("low"),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register CleanupExpiredTokens job", err)
		return err
	}

	logger.Info("✓ Registered CleanupExpiredTokens: hourly", map[string]interface{}{})
	return nil
}

// ================================================
// JOB 2: Cleanup Orphaned Blobs (Daily at 3 AM)
// ================================================
func (s *Scheduler) registerCleanupOrphanedBlobsJob() error {
	task := asynq.NewTask(shared.TypeCleanupOrphanedBlobs, nil)

	_, err := s.scheduler.Register(
		"0 3 * * *", // daily at 3 AM
		task,
		asynq.Queue("low"),
		asynq.MaxRetry(1),
		asynq.Timeout(15*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register CleanupOrphanedBlobs job", err)
		return err
	}

	logger.Info("✓ Registered CleanupOrphanedBlobs: daily at 3 AM", map[string]interface{}{})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
