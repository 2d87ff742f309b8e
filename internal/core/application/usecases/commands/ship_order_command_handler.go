package commands

import (
	"context"
	"log/slog"

	"storefront/internal/core/application/notify"
	"storefront/internal/core/domain/model/notification"
	"storefront/internal/core/ports"
)

// ShipOrderCommandHandler moves a Processing order to Shipped, recording the
// carrier tracking number, and tells the customer the order is on its way.
type ShipOrderCommandHandler struct {
	uowFactory FulfillmentUoWFactory
	identity   ports.IdentityProvider
	notifier   Notifier
	publisher  ports.EventPublisher
	logger     *slog.Logger
}

// NewShipOrderCommandHandler creates a handler for shipping operations.
func NewShipOrderCommandHandler(
	uowFactory FulfillmentUoWFactory,
	identity ports.IdentityProvider,
	notifier Notifier,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) ShipOrderCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return ShipOrderCommandHandler{
		uowFactory: uowFactory,
		identity:   identity,
		notifier:   notifier,
		publisher:  publisher,
		logger:     logger.With("component", "ship_order"),
	}
}

// Handle processes the ship command.
// Applies the Shipped transition with the tracking number, persists the order,
// publishes the transition event, and dispatches ORDER_SHIPPED.
func (h ShipOrderCommandHandler) Handle(ctx context.Context, cmd ShipOrderCommand) error {
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

	prior := targetOrder.Status()
	if err = targetOrder.Ship(cmd.TrackingNumber()); err != nil {
		return err
	}

	if err = uow.OrderRepository().Update(ctx, targetOrder); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	publishOrderTransition(ctx, h.publisher, h.logger, targetOrder, prior, notification.OrderShipped)
	dispatchOrderNotification(ctx, h.identity, h.notifier, h.logger, targetOrder,
		notification.OrderShipped, map[string]string{
			notify.ParamTrackingNumber: cmd.TrackingNumber(),
		})

	return nil
}
