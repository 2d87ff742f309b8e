package commands_test

import (
	"context"
	"testing"
	"time"

	"storefront/internal/core/application/usecases/commands"
	"storefront/internal/core/domain/model/cart"
	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/notification"
	"storefront/internal/core/domain/model/order"
	"storefront/internal/core/domain/model/payment"
	"storefront/internal/core/ports"
	"storefront/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedCallbackState stores an order with an online payment carrying the given
// external reference and status, plus a cart for the customer.
func seedCallbackState(t *testing.T, stores *memStores, reference string, status payment.Status) (*order.Order, *payment.Payment) {
	t.Helper()

	loc, err := kernel.NewLocation(-4.05, 39.65, "Moi Avenue 12", "Mombasa")
	require.NoError(t, err)
	li, err := order.NewLineItem(cart.ItemKey{ProductID: kernel.NewUUID()},
		"widget", 2, decimal.NewFromInt(500), false, nil)
	require.NoError(t, err)

	o, err := order.NewOrder(kernel.NewUUID(), order.GenerateNumber(time.Now()),
		"cust-1", []order.LineItem{li}, loc, nil, time.Now())
	require.NoError(t, err)

	p, err := payment.RestorePayment(kernel.NewUUID(), o.ID(), payment.Online, status,
		o.Total(), &reference, nil, nil, time.Now())
	require.NoError(t, err)

	stores.orders[o.ID()] = o
	stores.payments[p.ID()] = p

	c, err := cart.NewCart("cust-1")
	require.NoError(t, err)
	item, err := cart.NewItem(cart.ItemKey{ProductID: kernel.NewUUID()},
		"widget", 1, decimal.NewFromInt(500), false, nil)
	require.NoError(t, err)
	require.NoError(t, c.AddItem(item))
	stores.carts["cust-1"] = c

	return o, p
}

func callbackHandler(stores *memStores, notifier *capturedNotifier, publisher *capturedPublisher) commands.PaymentCallbackCommandHandler {
	identity := stubIdentity{customers: map[string]ports.Customer{
		"cust-1": {ID: "cust-1", Name: "Asha", Email: "asha@example.com"},
	}}
	return commands.NewPaymentCallbackCommandHandler(
		fakeCallbackUoWFactory{&fakeUoW{s: stores}}, newMemSessionStore(), identity,
		notifier, publisher, nil)
}

func TestPaymentCallbackCommandHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("should apply a PAID callback and clear the customer cart", func(t *testing.T) {
		stores := newMemStores()
		_, p := seedCallbackState(t, stores, "sess-abc", payment.Processing)
		notifier := &capturedNotifier{}
		publisher := &capturedPublisher{}
		h := callbackHandler(stores, notifier, publisher)

		cmd, err := commands.NewPaymentCallbackCommand("sess-abc", payment.Paid, p.Amount(), "RCPT-7")
		require.NoError(t, err)

		require.NoError(t, h.Handle(ctx, cmd))

		assert.Equal(t, payment.Paid, p.Status())
		require.NotNil(t, p.PaidAt())
		require.NotNil(t, p.ReceiptNumber())
		assert.Equal(t, "RCPT-7", *p.ReceiptNumber())
		assert.True(t, stores.carts["cust-1"].IsEmpty())

		require.Len(t, notifier.events, 1)
		assert.Equal(t, notification.PaymentReceived, notifier.events[0].Type)

		require.Len(t, publisher.events, 1)
		assert.Equal(t, "payment", publisher.events[0].Entity)
		assert.Equal(t, "PROCESSING", publisher.events[0].From)
		assert.Equal(t, "PAID", publisher.events[0].To)
	})

	t.Run("should treat a duplicate PAID callback as a silent no-op", func(t *testing.T) {
		stores := newMemStores()
		seedCallbackState(t, stores, "sess-abc", payment.Paid)
		notifier := &capturedNotifier{}
		publisher := &capturedPublisher{}
		h := callbackHandler(stores, notifier, publisher)

		cmd, err := commands.NewPaymentCallbackCommand("sess-abc", payment.Paid, decimal.NewFromInt(1000), "RCPT-7")
		require.NoError(t, err)

		require.NoError(t, h.Handle(ctx, cmd))

		assert.Empty(t, notifier.events)
		assert.Empty(t, publisher.events)
		assert.False(t, stores.carts["cust-1"].IsEmpty())
	})

	t.Run("should reject a stale PROCESSING callback arriving after PAID", func(t *testing.T) {
		stores := newMemStores()
		_, p := seedCallbackState(t, stores, "sess-abc", payment.Paid)
		h := callbackHandler(stores, &capturedNotifier{}, &capturedPublisher{})

		cmd, err := commands.NewPaymentCallbackCommand("sess-abc", payment.Processing, p.Amount(), "")
		require.NoError(t, err)

		err = h.Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, payment.Paid, p.Status())
	})

	t.Run("should reject an amount mismatch before any state change", func(t *testing.T) {
		stores := newMemStores()
		_, p := seedCallbackState(t, stores, "sess-abc", payment.Processing)
		notifier := &capturedNotifier{}
		h := callbackHandler(stores, notifier, &capturedPublisher{})

		cmd, err := commands.NewPaymentCallbackCommand("sess-abc", payment.Paid, decimal.NewFromInt(999), "RCPT-7")
		require.NoError(t, err)

		err = h.Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrCallbackRejected)
		assert.Equal(t, payment.Processing, p.Status())
		assert.Empty(t, notifier.events)
	})

	t.Run("should reject an unknown external reference", func(t *testing.T) {
		stores := newMemStores()
		h := callbackHandler(stores, &capturedNotifier{}, &capturedPublisher{})

		cmd, err := commands.NewPaymentCallbackCommand("sess-ghost", payment.Paid, decimal.NewFromInt(1000), "")
		require.NoError(t, err)

		err = h.Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrCallbackRejected)
	})

	t.Run("should dispatch PAYMENT_FAILED on an accepted failure", func(t *testing.T) {
		stores := newMemStores()
		_, p := seedCallbackState(t, stores, "sess-abc", payment.Processing)
		notifier := &capturedNotifier{}
		h := callbackHandler(stores, notifier, &capturedPublisher{})

		cmd, err := commands.NewPaymentCallbackCommand("sess-abc", payment.Failed, p.Amount(), "")
		require.NoError(t, err)

		require.NoError(t, h.Handle(ctx, cmd))

		assert.Equal(t, payment.Failed, p.Status())
		require.Len(t, notifier.events, 1)
		assert.Equal(t, notification.PaymentFailed, notifier.events[0].Type)
		// A failed payment keeps the cart for a retry.
		assert.False(t, stores.carts["cust-1"].IsEmpty())
	})
}

func TestNewPaymentCallbackCommand(t *testing.T) {
	t.Run("should reject a status the gateway cannot report", func(t *testing.T) {
		_, err := commands.NewPaymentCallbackCommand("sess-abc", payment.Refunded, decimal.NewFromInt(10), "")
		require.ErrorIs(t, err, commands.ErrStatusNotReportable)
	})

	t.Run("should require the external reference", func(t *testing.T) {
		_, err := commands.NewPaymentCallbackCommand("", payment.Paid, decimal.NewFromInt(10), "")
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should reject a non-positive amount", func(t *testing.T) {
		_, err := commands.NewPaymentCallbackCommand("sess-abc", payment.Paid, decimal.Zero, "")
		require.Error(t, err)
	})
}
