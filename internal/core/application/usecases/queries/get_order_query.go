// Package queries contains read-only operations in the CQRS architecture.
// Query handlers bypass the domain model and read directly from storage,
// returning flat response shapes tailored to their callers.
package queries

import (
	"errors"
	"time"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrGetOrderQueryIsNotConstructed = errors.New(
		"GetOrderQuery must be created via NewGetOrderQuery constructor",
	)
)

// GetOrderQuery retrieves one order together with its line items and its
// paired payment.
type GetOrderQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderQuery creates a query for the given order.
func NewGetOrderQuery(orderID kernel.UUID) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}

	return GetOrderQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

// OrderID returns the order to read.
func (q GetOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

// GetOrderQueryResponse is the order read model: the fulfillment side, the
// delivery details, the locked lines, and the payment side in one shape.
type GetOrderQueryResponse struct {
	ID                kernel.UUID
	Number            string
	CustomerID        string
	Status            string
	Total             decimal.Decimal
	Address           string
	City              string
	ScheduledDelivery *time.Time
	TrackingNumber    *string
	DeliveredAt       *time.Time
	CreatedAt         time.Time
	Lines             []OrderLineResponse
	Payment           OrderPaymentResponse
}

// OrderLineResponse is one locked line of the order.
type OrderLineResponse struct {
	ProductID   kernel.UUID
	ColorID     string
	SpecID      string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	IsBundle    bool
}

// OrderPaymentResponse is the payment side of the order read model.
type OrderPaymentResponse struct {
	Method        string
	Status        string
	Amount        decimal.Decimal
	ReceiptNumber *string
	PaidAt        *time.Time
}
