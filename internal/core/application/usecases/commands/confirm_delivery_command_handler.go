package commands

import (
	"context"
	"log/slog"
	"time"

	"storefront/internal/core/domain/model/notification"
	"storefront/internal/core/domain/model/order"
	"storefront/internal/core/ports"
	"storefront/internal/pkg/errs"
)

// ConfirmDeliveryCommandHandler stamps the one-shot deliveredAt timestamp on
// an order the customer reports received. Valid from Shipped or Delivered;
// if the operator had not yet marked the order Delivered, the confirmation
// advances the status too. A second confirmation is rejected.
//
// Orders belonging to a different customer are reported as not found rather
// than forbidden, to avoid confirming order ids to strangers.
type ConfirmDeliveryCommandHandler struct {
	uowFactory FulfillmentUoWFactory
	identity   ports.IdentityProvider
	notifier   Notifier
	publisher  ports.EventPublisher
	logger     *slog.Logger
}

// NewConfirmDeliveryCommandHandler creates a handler for customer delivery confirmations.
func NewConfirmDeliveryCommandHandler(
	uowFactory FulfillmentUoWFactory,
	identity ports.IdentityProvider,
	notifier Notifier,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) ConfirmDeliveryCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return ConfirmDeliveryCommandHandler{
		uowFactory: uowFactory,
		identity:   identity,
		notifier:   notifier,
		publisher:  publisher,
		logger:     logger.With("component", "confirm_delivery"),
	}
}

// Handle processes the confirm-delivery command.
// Verifies ownership, applies the one-shot confirmation, and dispatches
// ORDER_DELIVERED only when the confirmation moved the status (the operator
// path already notified otherwise).
func (h ConfirmDeliveryCommandHandler) Handle(ctx context.Context, cmd ConfirmDeliveryCommand) error {
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

	targetOrder, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if targetOrder.CustomerID() != cmd.CustomerID() {
		return errs.NewObjectNotFoundError("order", cmd.OrderID().String())
	}

	prior := targetOrder.Status()
	if err = targetOrder.ConfirmDelivery(time.Now()); err != nil {
		return err
	}

	if err = uow.OrderRepository().Update(ctx, targetOrder); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if prior != order.Delivered {
		publishOrderTransition(ctx, h.publisher, h.logger, targetOrder, prior, notification.OrderDelivered)
		dispatchOrderNotification(ctx, h.identity, h.notifier, h.logger, targetOrder,
			notification.OrderDelivered, nil)
	}

	return nil
}
