package commands

import (
	"context"
	"time"
)

// ConfirmNotificationCommandHandler marks a sent notification record as
// Delivered on the provider's asynchronous confirmation. Records that were
// never sent cannot become delivered.
type ConfirmNotificationCommandHandler struct {
	uowFactory NotificationUoWFactory
}

// NewConfirmNotificationCommandHandler creates a handler for provider
// delivery confirmations.
func NewConfirmNotificationCommandHandler(uowFactory NotificationUoWFactory) ConfirmNotificationCommandHandler {
	return ConfirmNotificationCommandHandler{uowFactory: uowFactory}
}

// Handle processes the delivery confirmation command.
func (h ConfirmNotificationCommandHandler) Handle(ctx context.Context, cmd ConfirmNotificationCommand) error {
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

	if err = record.MarkDelivered(time.Now()); err != nil {
		return err
	}

	if err = uow.NotificationRepository().Update(ctx, record); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
