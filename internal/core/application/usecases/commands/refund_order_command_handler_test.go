package commands_test

import (
	"context"
	"testing"
	"time"

	"storefront/internal/core/application/usecases/commands"
	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/order"
	"storefront/internal/core/domain/model/payment"
	"storefront/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPayment(t *testing.T, stores *memStores, o *order.Order, status payment.Status) *payment.Payment {
	t.Helper()

	ref := "sess-abc"
	p, err := payment.RestorePayment(kernel.NewUUID(), o.ID(), payment.Online, status,
		o.Total(), &ref, nil, nil, time.Now())
	require.NoError(t, err)
	stores.payments[p.ID()] = p
	return p
}

func TestRefundOrderCommandHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("should refund order and payment together when paid", func(t *testing.T) {
		stores := newMemStores()
		o := seedOrder(t, stores, order.Delivered)
		p := seedPayment(t, stores, o, payment.Paid)
		publisher := &capturedPublisher{}
		h := commands.NewRefundOrderCommandHandler(
			fakeFulfillmentUoWFactory{&fakeUoW{s: stores}}, publisher, nil)

		cmd, err := commands.NewRefundOrderCommand(o.ID())
		require.NoError(t, err)

		require.NoError(t, h.Handle(ctx, cmd))

		assert.Equal(t, order.Refunded, o.Status())
		assert.Equal(t, payment.Refunded, p.Status())
		require.Len(t, publisher.events, 2)
	})

	t.Run("should refuse to refund an unpaid order", func(t *testing.T) {
		stores := newMemStores()
		o := seedOrder(t, stores, order.Confirmed)
		p := seedPayment(t, stores, o, payment.Pending)
		h := commands.NewRefundOrderCommandHandler(
			fakeFulfillmentUoWFactory{&fakeUoW{s: stores}}, &capturedPublisher{}, nil)

		cmd, err := commands.NewRefundOrderCommand(o.ID())
		require.NoError(t, err)

		err = h.Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, order.Confirmed, o.Status())
		assert.Equal(t, payment.Pending, p.Status())
	})

	t.Run("should refuse to refund twice", func(t *testing.T) {
		stores := newMemStores()
		o := seedOrder(t, stores, order.Refunded)
		seedPayment(t, stores, o, payment.Refunded)
		h := commands.NewRefundOrderCommandHandler(
			fakeFulfillmentUoWFactory{&fakeUoW{s: stores}}, &capturedPublisher{}, nil)

		cmd, err := commands.NewRefundOrderCommand(o.ID())
		require.NoError(t, err)

		err = h.Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
	})
}
