package commands

import (
	"context"
	"log/slog"
	"time"

	"storefront/internal/core/application/notify"
	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/notification"
	"storefront/internal/core/domain/model/order"
	"storefront/internal/core/domain/model/payment"
	"storefront/internal/core/domain/services"
	"storefront/internal/core/ports"

	"github.com/shopspring/decimal"
)

// CheckoutResult is returned to the caller after a successful checkout.
// RedirectURL is set for online payments only.
type CheckoutResult struct {
	OrderID     kernel.UUID
	OrderNumber string
	Total       decimal.Decimal
	RedirectURL string
}

// CheckoutCommandHandler converts the customer's session cart into an order
// and its paired payment. The two aggregates are persisted in one transaction;
// an order is never committed without its payment.
//
// Cart clearing depends on the payment method: cash on delivery clears the
// active partition immediately, online payments keep the cart until the
// gateway confirms payment. The order confirmation notification is dispatched
// after commit and its failure never rolls the order back.
type CheckoutCommandHandler struct {
	uowFactory CheckoutUoWFactory
	factory    services.OrderFactory
	gateway    ports.PaymentGateway
	sessions   ports.CartSessionStore
	notifier   Notifier
	publisher  ports.EventPublisher
	logger     *slog.Logger
}

// NewCheckoutCommandHandler creates a handler for checkout operations.
func NewCheckoutCommandHandler(
	uowFactory CheckoutUoWFactory,
	factory services.OrderFactory,
	gateway ports.PaymentGateway,
	sessions ports.CartSessionStore,
	notifier Notifier,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) CheckoutCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return CheckoutCommandHandler{
		uowFactory: uowFactory,
		factory:    factory,
		gateway:    gateway,
		sessions:   sessions,
		notifier:   notifier,
		publisher:  publisher,
		logger:     logger.With("component", "checkout"),
	}
}

// Handle processes the checkout command.
// Loads the session cart, builds the price-locked order and pending payment,
// opens a gateway session for online payments, and commits everything in one
// unit of work. Post-commit side effects (session push, transition event,
// confirmation notification) are logged, never surfaced.
func (h CheckoutCommandHandler) Handle(ctx context.Context, cmd CheckoutCommand) (CheckoutResult, error) {
	if err := cmd.Validate(); err != nil {
		return CheckoutResult{}, err
	}

	customer := cmd.Customer()
	shoppingCart, err := h.sessions.Load(ctx, customer.ID)
	if err != nil {
		return CheckoutResult{}, err
	}

	now := time.Now()
	newOrder, newPayment, err := h.factory.Create(
		ctx, shoppingCart, customer.ID, cmd.Delivery(), cmd.ScheduledDelivery(), cmd.Method(), now,
	)
	if err != nil {
		return CheckoutResult{}, err
	}

	var redirectURL string
	if cmd.Method() == payment.Online {
		session, gatewayErr := h.gateway.CreateSession(ctx, newOrder.ID(), newPayment.Amount(), customer.ID)
		if gatewayErr != nil {
			return CheckoutResult{}, gatewayErr
		}
		if err = newPayment.AttachExternalReference(session.ExternalReference); err != nil {
			return CheckoutResult{}, err
		}
		redirectURL = session.RedirectURL
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return CheckoutResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, newOrder); err != nil {
		return CheckoutResult{}, err
	}
	if err = uow.PaymentRepository().Add(ctx, newPayment); err != nil {
		return CheckoutResult{}, err
	}

	if cmd.Method() == payment.CashOnDelivery {
		shoppingCart.ClearActive()
	}
	if err = uow.CartRepository().Save(ctx, shoppingCart); err != nil {
		return CheckoutResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return CheckoutResult{}, err
	}

	if err = h.sessions.Save(ctx, shoppingCart); err != nil {
		h.logger.Warn("failed to push session cart after checkout",
			"owner_id", customer.ID, "error", err)
	}

	h.publishCreated(ctx, newOrder)
	h.notifier.Dispatch(ctx, notify.Event{
		Type:      notification.OrderConfirmation,
		OrderID:   ptrUUID(newOrder.ID()),
		Recipient: customer,
		Params: map[string]string{
			notify.ParamOrderNumber: newOrder.Number(),
			notify.ParamTotal:       newOrder.Total().StringFixed(2),
		},
	})

	return CheckoutResult{
		OrderID:     newOrder.ID(),
		OrderNumber: newOrder.Number(),
		Total:       newOrder.Total(),
		RedirectURL: redirectURL,
	}, nil
}

func (h CheckoutCommandHandler) publishCreated(ctx context.Context, newOrder *order.Order) {
	event := ports.TransitionEvent{
		OrderID:    newOrder.ID().String(),
		Entity:     "order",
		From:       "",
		To:         newOrder.Status().String(),
		EventType:  string(notification.OrderConfirmation),
		OccurredAt: time.Now().UTC(),
	}
	if err := h.publisher.PublishTransition(ctx, event); err != nil {
		h.logger.Warn("failed to publish order creation event",
			"order_id", event.OrderID, "error", err)
	}
}

func ptrUUID(id kernel.UUID) *kernel.UUID {
	return &id
}
