package jobs

import (
	"context"
	"log/slog"

	"storefront/internal/core/application/notify"

	"github.com/robfig/cron/v3"
)

// abandonedCartSchedule runs the recovery sweep at the top of every hour.
// Reminder pacing is enforced per cart by the reminder counter, so a tighter
// schedule would not send more messages, only notice abandonment sooner.
const abandonedCartSchedule = "0 * * * *"

// AbandonedCartJob periodically sweeps for abandoned carts and dispatches
// recovery reminders.
type AbandonedCartJob struct {
	service *notify.RecoveryService
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewAbandonedCartJob creates the hourly abandoned-cart recovery job.
func NewAbandonedCartJob(service *notify.RecoveryService, logger *slog.Logger) *AbandonedCartJob {
	return &AbandonedCartJob{
		service: service,
		cron:    cron.New(),
		logger:  logger.With("component", "abandoned_cart_job"),
	}
}

// Start begins the hourly recovery sweep.
func (j *AbandonedCartJob) Start() error {
	_, err := j.cron.AddFunc(abandonedCartSchedule, func() {
		ctx := context.Background()
		if err := j.service.Run(ctx); err != nil {
			j.logger.ErrorContext(ctx, "Abandoned cart sweep failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Abandoned cart job started (running hourly)")
	return nil
}

// Stop stops the job.
func (j *AbandonedCartJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Abandoned cart job stopped")
}
