package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"storefront/internal/core/application/notify"
	"storefront/internal/core/domain/model/cart"
	"storefront/internal/core/domain/model/notification"
	"storefront/internal/core/domain/model/order"
	"storefront/internal/core/domain/model/payment"
	"storefront/internal/core/ports"
	"storefront/internal/pkg/errs"
)

// PaymentCallbackCommandHandler applies an authenticated gateway callback to
// the payment it targets. The decision is made against the payment's current
// status, not the callbacks' arrival order:
//
//   - duplicate same-status callbacks are acknowledged as no-ops, with no
//     duplicate notification and no event;
//   - stale or backward callbacks are rejected with a transition error and
//     leave the payment untouched;
//   - an accepted PAID callback additionally clears the customer's cart (the
//     online half of the cart-clearing rule) and dispatches PAYMENT_RECEIVED;
//     an accepted FAILED callback dispatches PAYMENT_FAILED.
type PaymentCallbackCommandHandler struct {
	uowFactory CallbackUoWFactory
	sessions   ports.CartSessionStore
	identity   ports.IdentityProvider
	notifier   Notifier
	publisher  ports.EventPublisher
	logger     *slog.Logger
}

// NewPaymentCallbackCommandHandler creates a handler for gateway callbacks.
func NewPaymentCallbackCommandHandler(
	uowFactory CallbackUoWFactory,
	sessions ports.CartSessionStore,
	identity ports.IdentityProvider,
	notifier Notifier,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) PaymentCallbackCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return PaymentCallbackCommandHandler{
		uowFactory: uowFactory,
		sessions:   sessions,
		identity:   identity,
		notifier:   notifier,
		publisher:  publisher,
		logger:     logger.With("component", "payment_callback"),
	}
}

// Handle processes a gateway callback command.
// Looks the payment up by external reference, verifies the amount, applies
// the reported status against the payment state machine, and on an accepted
// transition persists the change, publishes the transition event, and
// dispatches exactly one notification.
func (h PaymentCallbackCommandHandler) Handle(ctx context.Context, cmd PaymentCallbackCommand) error {
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

	targetPayment, err := uow.PaymentRepository().GetByExternalReference(ctx, cmd.ExternalReference())
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return errs.NewCallbackRejectedErrorWithCause(
				cmd.ExternalReference(), "unknown external reference", err)
		}
		return err
	}

	if err = targetPayment.VerifyAmount(cmd.Amount()); err != nil {
		return err
	}

	prior := targetPayment.Status()
	applied, err := targetPayment.ApplyGatewayStatus(cmd.Reported(), cmd.ReceiptNumber(), time.Now())
	if err != nil {
		return err
	}
	if !applied {
		h.logger.Info("duplicate gateway callback ignored",
			"external_reference", cmd.ExternalReference(), "status", cmd.Reported().String())
		return nil
	}

	if err = uow.PaymentRepository().Update(ctx, targetPayment); err != nil {
		return err
	}

	pairedOrder, err := uow.OrderRepository().Get(ctx, targetPayment.OrderID())
	if err != nil {
		return err
	}

	var clearedCart *cart.Cart
	if targetPayment.Status() == payment.Paid {
		if clearedCart, err = h.clearCart(ctx, uow, pairedOrder.CustomerID()); err != nil {
			return err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.afterCommit(ctx, pairedOrder, targetPayment, prior, clearedCart)
	return nil
}

// clearCart empties the customer's active cart inside the callback's
// transaction, leaving saved-for-later entries alone. A customer without a
// durable cart is fine: the order may have been placed from a session that
// never mirrored.
func (h PaymentCallbackCommandHandler) clearCart(
	ctx context.Context, uow CallbackUoW, customerID string,
) (*cart.Cart, error) {
	shoppingCart, err := uow.CartRepository().Get(ctx, customerID)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return nil, nil
		}
		return nil, err
	}

	shoppingCart.ClearActive()
	if err = uow.CartRepository().Save(ctx, shoppingCart); err != nil {
		return nil, err
	}

	return shoppingCart, nil
}

func (h PaymentCallbackCommandHandler) afterCommit(
	ctx context.Context,
	pairedOrder *order.Order,
	targetPayment *payment.Payment,
	prior payment.Status,
	clearedCart *cart.Cart,
) {
	var eventType notification.EventType
	switch targetPayment.Status() {
	case payment.Paid:
		eventType = notification.PaymentReceived
	case payment.Failed:
		eventType = notification.PaymentFailed
	}

	transition := ports.TransitionEvent{
		OrderID:    pairedOrder.ID().String(),
		Entity:     "payment",
		From:       prior.String(),
		To:         targetPayment.Status().String(),
		EventType:  string(eventType),
		OccurredAt: time.Now().UTC(),
	}
	if err := h.publisher.PublishTransition(ctx, transition); err != nil {
		h.logger.Warn("failed to publish payment transition event",
			"order_id", transition.OrderID, "error", err)
	}

	if clearedCart != nil {
		if err := h.sessions.Save(ctx, clearedCart); err != nil {
			h.logger.Warn("failed to push session cart after payment",
				"owner_id", pairedOrder.CustomerID(), "error", err)
		}
	}

	if eventType == "" {
		return
	}

	customer, err := h.identity.Lookup(ctx, pairedOrder.CustomerID())
	if err != nil {
		h.logger.Warn("no contact details for customer, notification skipped",
			"customer_id", pairedOrder.CustomerID(), "error", err)
		return
	}

	h.notifier.Dispatch(ctx, notify.Event{
		Type:      eventType,
		OrderID:   ptrUUID(pairedOrder.ID()),
		Recipient: customer,
		Params: map[string]string{
			notify.ParamOrderNumber: pairedOrder.Number(),
			notify.ParamTotal:       targetPayment.Amount().StringFixed(2),
		},
	})
}
