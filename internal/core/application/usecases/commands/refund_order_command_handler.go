package commands

import (
	"context"
	"log/slog"
	"time"

	"storefront/internal/core/ports"
)

// RefundOrderCommandHandler moves an order and its payment to Refunded in one
// transaction. The payment state machine only permits Refund from Paid, which
// is what gates the whole operation: refunding an unpaid order is rejected
// before the order is touched.
type RefundOrderCommandHandler struct {
	uowFactory FulfillmentUoWFactory
	publisher  ports.EventPublisher
	logger     *slog.Logger
}

// NewRefundOrderCommandHandler creates a handler for refund operations.
func NewRefundOrderCommandHandler(
	uowFactory FulfillmentUoWFactory,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) RefundOrderCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return RefundOrderCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger.With("component", "refund_order"),
	}
}

// Handle processes the refund command.
// Refunds the payment first (enforcing the Paid gate), then the order, and
// persists both within the same transaction.
func (h RefundOrderCommandHandler) Handle(ctx context.Context, cmd RefundOrderCommand) error {
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

	targetPayment, err := uow.PaymentRepository().GetByOrderID(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	priorOrder := targetOrder.Status()
	priorPayment := targetPayment.Status()

	if err = targetPayment.Refund(); err != nil {
		return err
	}
	if err = targetOrder.Refund(); err != nil {
		return err
	}

	if err = uow.PaymentRepository().Update(ctx, targetPayment); err != nil {
		return err
	}
	if err = uow.OrderRepository().Update(ctx, targetOrder); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	publishOrderTransition(ctx, h.publisher, h.logger, targetOrder, priorOrder, "")

	paymentEvent := ports.TransitionEvent{
		OrderID:    targetOrder.ID().String(),
		Entity:     "payment",
		From:       priorPayment.String(),
		To:         targetPayment.Status().String(),
		OccurredAt: time.Now().UTC(),
	}
	if err = h.publisher.PublishTransition(ctx, paymentEvent); err != nil {
		h.logger.Warn("failed to publish payment transition event",
			"order_id", paymentEvent.OrderID, "error", err)
	}

	return nil
}
