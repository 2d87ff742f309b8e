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
	"storefront/internal/core/ports"
	"storefront/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOrder(t *testing.T, stores *memStores, status order.Status) *order.Order {
	t.Helper()

	loc, err := kernel.NewLocation(-4.05, 39.65, "Moi Avenue 12", "Mombasa")
	require.NoError(t, err)
	li, err := order.NewLineItem(cart.ItemKey{ProductID: kernel.NewUUID()},
		"widget", 1, decimal.NewFromInt(500), false, nil)
	require.NoError(t, err)

	var tracking *string
	if status == order.Shipped || status == order.Delivered {
		tn := "TRACK-1"
		tracking = &tn
	}

	o, err := order.RestoreOrder(kernel.NewUUID(), order.GenerateNumber(time.Now()),
		"cust-1", []order.LineItem{li}, decimal.NewFromInt(500), status, loc,
		nil, tracking, nil, time.Now())
	require.NoError(t, err)

	stores.orders[o.ID()] = o
	return o
}

func statusHandler(stores *memStores, notifier *capturedNotifier, publisher *capturedPublisher) commands.UpdateOrderStatusCommandHandler {
	identity := stubIdentity{customers: map[string]ports.Customer{
		"cust-1": {ID: "cust-1", Name: "Asha", Email: "asha@example.com"},
	}}
	return commands.NewUpdateOrderStatusCommandHandler(
		fakeFulfillmentUoWFactory{&fakeUoW{s: stores}}, identity, notifier, publisher, nil)
}

func TestUpdateOrderStatusCommandHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("should confirm a pending order and publish the transition", func(t *testing.T) {
		stores := newMemStores()
		o := seedOrder(t, stores, order.Pending)
		publisher := &capturedPublisher{}
		h := statusHandler(stores, &capturedNotifier{}, publisher)

		cmd, err := commands.NewUpdateOrderStatusCommand(o.ID(), order.Confirmed)
		require.NoError(t, err)

		require.NoError(t, h.Handle(ctx, cmd))

		assert.Equal(t, order.Confirmed, o.Status())
		require.Len(t, publisher.events, 1)
		assert.Equal(t, "order", publisher.events[0].Entity)
		assert.Equal(t, "PENDING", publisher.events[0].From)
		assert.Equal(t, "CONFIRMED", publisher.events[0].To)
	})

	t.Run("should reject a backward transition", func(t *testing.T) {
		stores := newMemStores()
		o := seedOrder(t, stores, order.Shipped)
		h := statusHandler(stores, &capturedNotifier{}, &capturedPublisher{})

		cmd, err := commands.NewUpdateOrderStatusCommand(o.ID(), order.Confirmed)
		require.NoError(t, err)

		err = h.Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, order.Shipped, o.Status())
	})

	t.Run("should notify the customer when marked delivered", func(t *testing.T) {
		stores := newMemStores()
		o := seedOrder(t, stores, order.Shipped)
		notifier := &capturedNotifier{}
		h := statusHandler(stores, notifier, &capturedPublisher{})

		cmd, err := commands.NewUpdateOrderStatusCommand(o.ID(), order.Delivered)
		require.NoError(t, err)

		require.NoError(t, h.Handle(ctx, cmd))

		assert.Equal(t, order.Delivered, o.Status())
		// The operator action changes status only; the customer's own
		// confirmation is what stamps deliveredAt.
		assert.Nil(t, o.DeliveredAt())
		require.Len(t, notifier.events, 1)
		assert.Equal(t, notification.OrderDelivered, notifier.events[0].Type)
	})

	t.Run("should refuse to cancel a delivered order", func(t *testing.T) {
		stores := newMemStores()
		o := seedOrder(t, stores, order.Delivered)
		h := statusHandler(stores, &capturedNotifier{}, &capturedPublisher{})

		cmd, err := commands.NewUpdateOrderStatusCommand(o.ID(), order.Cancelled)
		require.NoError(t, err)

		err = h.Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, order.Delivered, o.Status())
	})

	t.Run("should cancel an order still in processing", func(t *testing.T) {
		stores := newMemStores()
		o := seedOrder(t, stores, order.Processing)
		h := statusHandler(stores, &capturedNotifier{}, &capturedPublisher{})

		cmd, err := commands.NewUpdateOrderStatusCommand(o.ID(), order.Cancelled)
		require.NoError(t, err)

		require.NoError(t, h.Handle(ctx, cmd))

		assert.Equal(t, order.Cancelled, o.Status())
	})

	t.Run("should report a missing order", func(t *testing.T) {
		h := statusHandler(newMemStores(), &capturedNotifier{}, &capturedPublisher{})

		cmd, err := commands.NewUpdateOrderStatusCommand(kernel.NewUUID(), order.Confirmed)
		require.NoError(t, err)

		err = h.Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})
}

func TestNewUpdateOrderStatusCommand(t *testing.T) {
	t.Run("should reject statuses with dedicated operations", func(t *testing.T) {
		_, err := commands.NewUpdateOrderStatusCommand(kernel.NewUUID(), order.Shipped)
		require.ErrorIs(t, err, commands.ErrStatusNotOperatorSettable)

		_, err = commands.NewUpdateOrderStatusCommand(kernel.NewUUID(), order.Refunded)
		require.ErrorIs(t, err, commands.ErrStatusNotOperatorSettable)
	})

	t.Run("should reject an unconstructed order id", func(t *testing.T) {
		_, err := commands.NewUpdateOrderStatusCommand(kernel.UUID{}, order.Confirmed)
		require.Error(t, err)
	})
}
