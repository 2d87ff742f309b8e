package jobs

import (
	"fmt"
	"log/slog"

	"storefront/internal/core/application/notify"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	abandonedCartJob *AbandonedCartJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(recoveryService *notify.RecoveryService, logger *slog.Logger) *JobManager {
	return &JobManager{
		abandonedCartJob: NewAbandonedCartJob(recoveryService, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.abandonedCartJob.Start(); err != nil {
		return fmt.Errorf("failed to start abandoned cart job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.abandonedCartJob.Stop()
}
