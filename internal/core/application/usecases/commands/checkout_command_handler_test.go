package commands_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"storefront/internal/core/application/usecases/commands"
	"storefront/internal/core/domain/model/cart"
	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/notification"
	"storefront/internal/core/domain/model/payment"
	"storefront/internal/core/domain/services"
	"storefront/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zoneFactory(t *testing.T) services.OrderFactory {
	t.Helper()
	box, err := services.NewBoundingBox(-4.10, -4.00, 39.60, 39.70)
	require.NoError(t, err)
	return services.NewOrderFactory(services.NewGeofenceResolver(box, nil, 0, slog.Default()))
}

func sessionWithCart(t *testing.T, ownerID string) *memSessionStore {
	t.Helper()
	c, err := cart.NewCart(ownerID)
	require.NoError(t, err)
	item, err := cart.NewItem(cart.ItemKey{ProductID: kernel.NewUUID()},
		"widget", 2, decimal.NewFromInt(500), false, nil)
	require.NoError(t, err)
	require.NoError(t, c.AddItem(item))

	sessions := newMemSessionStore()
	sessions.carts[ownerID] = c
	return sessions
}

func checkoutCustomer() ports.Customer {
	return ports.Customer{ID: "cust-1", Name: "Asha", Email: "asha@example.com"}
}

func insideZoneLocation(t *testing.T) kernel.Location {
	t.Helper()
	loc, err := kernel.NewLocation(-4.05, 39.65, "Moi Avenue 12", "Mombasa")
	require.NoError(t, err)
	return loc
}

func outsideZoneLocation(t *testing.T) kernel.Location {
	t.Helper()
	loc, err := kernel.NewLocation(-3.50, 39.65, "Far Road 9", "Elsewhere")
	require.NoError(t, err)
	return loc
}

func TestCheckoutCommandHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("should create order and payment atomically for online checkout", func(t *testing.T) {
		stores := newMemStores()
		uow := &fakeUoW{s: stores}
		sessions := sessionWithCart(t, "cust-1")
		gateway := &stubGateway{session: ports.PaymentSession{
			ExternalReference: "sess-abc", RedirectURL: "https://pay.example/sess-abc",
		}}
		notifier := &capturedNotifier{}
		publisher := &capturedPublisher{}

		h := commands.NewCheckoutCommandHandler(fakeCheckoutUoWFactory{uow}, zoneFactory(t),
			gateway, sessions, notifier, publisher, nil)

		cmd, err := commands.NewCheckoutCommand(checkoutCustomer(), insideZoneLocation(t), nil, payment.Online)
		require.NoError(t, err)

		result, err := h.Handle(ctx, cmd)

		require.NoError(t, err)
		assert.True(t, uow.committed)
		assert.Equal(t, "https://pay.example/sess-abc", result.RedirectURL)
		assert.True(t, result.Total.Equal(decimal.NewFromInt(1000)))

		require.Len(t, stores.orders, 1)
		require.Len(t, stores.payments, 1)
		for _, p := range stores.payments {
			require.NotNil(t, p.ExternalReference())
			assert.Equal(t, "sess-abc", *p.ExternalReference())
			assert.Equal(t, payment.Pending, p.Status())
		}

		// Online checkout keeps the cart until payment confirms.
		assert.False(t, stores.carts["cust-1"].IsEmpty())

		require.Len(t, notifier.events, 1)
		assert.Equal(t, notification.OrderConfirmation, notifier.events[0].Type)
		assert.Equal(t, result.OrderNumber, notifier.events[0].Params["order_number"])
	})

	t.Run("should clear the cart immediately for cash on delivery", func(t *testing.T) {
		stores := newMemStores()
		uow := &fakeUoW{s: stores}
		sessions := sessionWithCart(t, "cust-1")
		gateway := &stubGateway{}

		h := commands.NewCheckoutCommandHandler(fakeCheckoutUoWFactory{uow}, zoneFactory(t),
			gateway, sessions, &capturedNotifier{}, &capturedPublisher{}, nil)

		cmd, err := commands.NewCheckoutCommand(checkoutCustomer(), insideZoneLocation(t), nil, payment.CashOnDelivery)
		require.NoError(t, err)

		result, err := h.Handle(ctx, cmd)

		require.NoError(t, err)
		assert.Empty(t, result.RedirectURL)
		assert.Zero(t, gateway.calls)
		assert.True(t, stores.carts["cust-1"].IsEmpty())
		assert.True(t, sessions.carts["cust-1"].IsEmpty())
	})

	t.Run("should reject cash on delivery outside the zone without persisting", func(t *testing.T) {
		stores := newMemStores()
		uow := &fakeUoW{s: stores}
		sessions := sessionWithCart(t, "cust-1")

		h := commands.NewCheckoutCommandHandler(fakeCheckoutUoWFactory{uow}, zoneFactory(t),
			&stubGateway{}, sessions, &capturedNotifier{}, &capturedPublisher{}, nil)

		cmd, err := commands.NewCheckoutCommand(checkoutCustomer(), outsideZoneLocation(t), nil, payment.CashOnDelivery)
		require.NoError(t, err)

		_, err = h.Handle(ctx, cmd)

		require.ErrorIs(t, err, services.ErrOutsideDeliveryZone)
		assert.Empty(t, stores.orders)
		assert.Empty(t, stores.payments)
		assert.False(t, sessions.carts["cust-1"].IsEmpty())
	})

	t.Run("should abort online checkout when the gateway session fails", func(t *testing.T) {
		stores := newMemStores()
		uow := &fakeUoW{s: stores}
		sessions := sessionWithCart(t, "cust-1")
		gateway := &stubGateway{err: errors.New("gateway down")}

		h := commands.NewCheckoutCommandHandler(fakeCheckoutUoWFactory{uow}, zoneFactory(t),
			gateway, sessions, &capturedNotifier{}, &capturedPublisher{}, nil)

		cmd, err := commands.NewCheckoutCommand(checkoutCustomer(), insideZoneLocation(t), nil, payment.Online)
		require.NoError(t, err)

		_, err = h.Handle(ctx, cmd)

		require.Error(t, err)
		assert.Empty(t, stores.orders)
		assert.Empty(t, stores.payments)
	})

	t.Run("should reject checkout with an empty cart", func(t *testing.T) {
		stores := newMemStores()
		uow := &fakeUoW{s: stores}
		sessions := newMemSessionStore()
		empty, err := cart.NewCart("cust-1")
		require.NoError(t, err)
		sessions.carts["cust-1"] = empty

		h := commands.NewCheckoutCommandHandler(fakeCheckoutUoWFactory{uow}, zoneFactory(t),
			&stubGateway{}, sessions, &capturedNotifier{}, &capturedPublisher{}, nil)

		cmd, err := commands.NewCheckoutCommand(checkoutCustomer(), insideZoneLocation(t), nil, payment.Online)
		require.NoError(t, err)

		_, err = h.Handle(ctx, cmd)

		require.ErrorIs(t, err, services.ErrCartIsEmpty)
	})

	t.Run("should reject a zero-value command", func(t *testing.T) {
		h := commands.NewCheckoutCommandHandler(fakeCheckoutUoWFactory{&fakeUoW{s: newMemStores()}},
			zoneFactory(t), &stubGateway{}, newMemSessionStore(), &capturedNotifier{}, &capturedPublisher{}, nil)

		_, err := h.Handle(ctx, commands.CheckoutCommand{})

		require.ErrorIs(t, err, commands.ErrCheckoutCommandIsNotConstructed)
	})
}

func TestNewCheckoutCommand(t *testing.T) {
	t.Run("should require customer id and email", func(t *testing.T) {
		_, err := commands.NewCheckoutCommand(ports.Customer{}, insideZoneLocation(t), nil, payment.Online)
		require.Error(t, err)
	})

	t.Run("should reject an unconstructed location", func(t *testing.T) {
		_, err := commands.NewCheckoutCommand(checkoutCustomer(), kernel.Location{}, nil, payment.Online)
		require.Error(t, err)
	})

	t.Run("should reject an unknown payment method", func(t *testing.T) {
		_, err := commands.NewCheckoutCommand(checkoutCustomer(), insideZoneLocation(t), nil, payment.MethodUnknown)
		require.Error(t, err)
	})
}
