package commands

import (
	"context"
	"log/slog"
	"time"
)

// ResendNotificationCommandHandler resets a failed notification record to
// Pending and hands it back to the dispatcher for another attempt. Records in
// any other status are rejected with a transition error.
type ResendNotificationCommandHandler struct {
	uowFactory NotificationUoWFactory
	notifier   Notifier
	logger     *slog.Logger
}

// NewResendNotificationCommandHandler creates a handler for notification resends.
func NewResendNotificationCommandHandler(
	uowFactory NotificationUoWFactory,
	notifier Notifier,
	logger *slog.Logger,
) ResendNotificationCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return ResendNotificationCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		logger:     logger.With("component", "resend_notification"),
	}
}

// Handle processes the resend command.
// Moves the failed record back to Pending, persists it, and schedules the
// new attempt after commit.
func (h ResendNotificationCommandHandler) Handle(ctx context.Context, cmd ResendNotificationCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	record, err := uow.NotificationRepository().Get(ctx, cmd.RecordID())
	if err != nil {
		return err
	}

	if err = record.ResetForResend(time.Now()); err != nil {
		return err
	}

	if err = uow.NotificationRepository().Update(ctx, record); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.notifier.Redeliver(ctx, record)
	return nil
}
