package queries

import (
	"errors"
	"time"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/notification"
	"storefront/internal/pkg/guard"
)

var (
	ErrGetNotificationsQueryIsNotConstructed = errors.New(
		"GetNotificationsQuery must be created via NewGetNotificationsQuery constructor",
	)
)

// GetNotificationsQuery retrieves the notification audit trail, optionally
// narrowed to one order and/or one delivery status.
type GetNotificationsQuery struct {
	orderID *kernel.UUID
	status  *notification.Status

	guard guard.ConstructorGuard
}

// NewGetNotificationsQuery creates an audit trail query. Both filters are
// optional; a supplied status must be a defined one.
func NewGetNotificationsQuery(orderID *kernel.UUID, status *notification.Status) (GetNotificationsQuery, error) {
	if orderID != nil {
		if err := orderID.Validate(); err != nil {
			return GetNotificationsQuery{}, err
		}
	}
	if status != nil {
		if err := status.Validate(); err != nil {
			return GetNotificationsQuery{}, err
		}
	}

	return GetNotificationsQuery{
		orderID: orderID,
		status:  status,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetNotificationsQuery) Validate() error {
	return q.guard.Validate(ErrGetNotificationsQueryIsNotConstructed)
}

// OrderID returns the optional order filter.
func (q GetNotificationsQuery) OrderID() *kernel.UUID {
	return q.orderID
}

// Status returns the optional status filter.
func (q GetNotificationsQuery) Status() *notification.Status {
	return q.status
}

// GetNotificationsQueryResponse is one row of the audit trail.
type GetNotificationsQueryResponse struct {
	ID         kernel.UUID
	OrderID    *kernel.UUID
	EventType  string
	Channel    string
	Recipient  string
	Status     string
	Attempts   int
	LastError  *string
	ProviderID *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
