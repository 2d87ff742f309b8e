package commands

import (
	"context"
	"log/slog"
	"time"

	"storefront/internal/core/application/notify"
	"storefront/internal/core/domain/model/notification"
	"storefront/internal/core/domain/model/order"
	"storefront/internal/core/ports"
)

// UpdateOrderStatusCommandHandler applies operator-driven fulfillment
// transitions. Invalid transitions (backward moves, cancelling a delivered
// order, touching a terminal order) are rejected by the order state machine
// and leave the order unchanged.
//
// Marking an order Delivered here changes the status only; the deliveredAt
// timestamp is reserved for the customer's own confirm-delivery action.
type UpdateOrderStatusCommandHandler struct {
	uowFactory FulfillmentUoWFactory
	identity   ports.IdentityProvider
	notifier   Notifier
	publisher  ports.EventPublisher
	logger     *slog.Logger
}

// NewUpdateOrderStatusCommandHandler creates a handler for operator status updates.
func NewUpdateOrderStatusCommandHandler(
	uowFactory FulfillmentUoWFactory,
	identity ports.IdentityProvider,
	notifier Notifier,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) UpdateOrderStatusCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return UpdateOrderStatusCommandHandler{
		uowFactory: uowFactory,
		identity:   identity,
		notifier:   notifier,
		publisher:  publisher,
		logger:     logger.With("component", "order_status"),
	}
}

// Handle processes the status update command.
// Applies the matching transition on the order state machine, persists the
// change, publishes the transition event, and dispatches ORDER_DELIVERED when
// the order just became Delivered.
func (h UpdateOrderStatusCommandHandler) Handle(ctx context.Context, cmd UpdateOrderStatusCommand) error {
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
	if err = applyTransition(targetOrder, cmd.Target()); err != nil {
		return err
	}

	if err = uow.OrderRepository().Update(ctx, targetOrder); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	var eventType notification.EventType
	if cmd.Target() == order.Delivered {
		eventType = notification.OrderDelivered
	}

	publishOrderTransition(ctx, h.publisher, h.logger, targetOrder, prior, eventType)

	if eventType != "" {
		dispatchOrderNotification(ctx, h.identity, h.notifier, h.logger, targetOrder, eventType, nil)
	}

	return nil
}

func applyTransition(targetOrder *order.Order, target order.Status) error {
	switch target {
	case order.Confirmed:
		return targetOrder.Confirm()
	case order.Processing:
		return targetOrder.StartProcessing()
	case order.Delivered:
		return targetOrder.MarkDelivered()
	case order.Cancelled:
		return targetOrder.Cancel()
	default:
		return ErrStatusNotOperatorSettable
	}
}

// publishOrderTransition publishes one accepted fulfillment transition to the
// broker. Failures are logged; the transition is already durable.
func publishOrderTransition(
	ctx context.Context,
	publisher ports.EventPublisher,
	logger *slog.Logger,
	targetOrder *order.Order,
	prior order.Status,
	eventType notification.EventType,
) {
	event := ports.TransitionEvent{
		OrderID:    targetOrder.ID().String(),
		Entity:     "order",
		From:       prior.String(),
		To:         targetOrder.Status().String(),
		EventType:  string(eventType),
		OccurredAt: time.Now().UTC(),
	}
	if err := publisher.PublishTransition(ctx, event); err != nil {
		logger.Warn("failed to publish order transition event",
			"order_id", event.OrderID, "from", event.From, "to", event.To, "error", err)
	}
}

// dispatchOrderNotification resolves the order's customer and fans the event
// out. extraParams overlays the standard order params.
func dispatchOrderNotification(
	ctx context.Context,
	identity ports.IdentityProvider,
	notifier Notifier,
	logger *slog.Logger,
	targetOrder *order.Order,
	eventType notification.EventType,
	extraParams map[string]string,
) {
	customer, err := identity.Lookup(ctx, targetOrder.CustomerID())
	if err != nil {
		logger.Warn("no contact details for customer, notification skipped",
			"customer_id", targetOrder.CustomerID(), "error", err)
		return
	}

	params := map[string]string{
		notify.ParamOrderNumber: targetOrder.Number(),
		notify.ParamTotal:       targetOrder.Total().StringFixed(2),
	}
	for k, v := range extraParams {
		params[k] = v
	}

	notifier.Dispatch(ctx, notify.Event{
		Type:      eventType,
		OrderID:   ptrUUID(targetOrder.ID()),
		Recipient: customer,
		Params:    params,
	})
}
