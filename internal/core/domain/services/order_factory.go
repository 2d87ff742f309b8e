package services

import (
	"context"
	"errors"
	"time"

	"storefront/internal/core/domain/model/cart"
	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/order"
	"storefront/internal/core/domain/model/payment"
)

var (
	// ErrCartIsEmpty is returned when checkout is attempted with no active entries.
	ErrCartIsEmpty = errors.New("cart has no active entries")

	// ErrOutsideDeliveryZone is returned when cash on delivery is requested
	// for a coordinate outside the serviceable zone.
	ErrOutsideDeliveryZone = errors.New("cash on delivery is unavailable outside the delivery zone")
)

// OrderFactory converts a cart snapshot plus customer and delivery details
// into a paired, price-locked Order and Payment. The two aggregates are born
// together; the caller persists them atomically.
//
// Cash on delivery is gated by an independent server-side geofence pass on
// the supplied coordinates. A gating decision asserted by the client is never
// trusted here.
type OrderFactory struct {
	resolver *GeofenceResolver
}

// NewOrderFactory creates a factory bound to the server-side geofence resolver.
func NewOrderFactory(resolver *GeofenceResolver) OrderFactory {
	return OrderFactory{resolver: resolver}
}

// Create builds the Order and its Payment from the cart's active partition.
//
// Preconditions enforced here:
//   - the active partition is non-empty;
//   - for cash on delivery, the server-side geofence check passes;
//   - scheduledDelivery, when present, is strictly in the future and at most
//     30 days out (validated by the order constructor).
//
// Every active entry is snapshotted into an immutable line item with its unit
// price copied verbatim — the price lock. The payment is created Pending with
// amount equal to the order total.
func (f OrderFactory) Create(
	ctx context.Context,
	shoppingCart *cart.Cart,
	customerID string,
	delivery kernel.Location,
	scheduledDelivery *time.Time,
	method payment.Method,
	now time.Time,
) (*order.Order, *payment.Payment, error) {
	if err := shoppingCart.Validate(); err != nil {
		return nil, nil, err
	}
	if err := delivery.Validate(); err != nil {
		return nil, nil, err
	}
	if err := method.Validate(); err != nil {
		return nil, nil, err
	}

	if shoppingCart.IsEmpty() {
		return nil, nil, ErrCartIsEmpty
	}

	if method == payment.CashOnDelivery {
		decision := f.resolver.Resolve(ctx, delivery.Latitude(), delivery.Longitude())
		if !decision.WithinZone {
			return nil, nil, ErrOutsideDeliveryZone
		}
	}

	activeItems := shoppingCart.ActiveItems()
	lineItems := make([]order.LineItem, 0, len(activeItems))
	for _, item := range activeItems {
		li, err := order.SnapshotLineItem(item)
		if err != nil {
			return nil, nil, err
		}
		lineItems = append(lineItems, li)
	}

	newOrder, err := order.NewOrder(
		kernel.NewUUID(),
		order.GenerateNumber(now),
		customerID,
		lineItems,
		delivery,
		scheduledDelivery,
		now,
	)
	if err != nil {
		return nil, nil, err
	}

	newPayment, err := payment.NewPayment(
		kernel.NewUUID(),
		newOrder.ID(),
		method,
		newOrder.Total(),
		now,
	)
	if err != nil {
		return nil, nil, err
	}

	return newOrder, newPayment, nil
}
