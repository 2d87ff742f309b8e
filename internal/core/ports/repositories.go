package ports

import (
	"context"
	"time"

	"storefront/internal/core/domain/model/cart"
	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/notification"
	"storefront/internal/core/domain/model/order"
	"storefront/internal/core/domain/model/payment"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetByNumber retrieves an order by its human-readable order number.
	GetByNumber(ctx context.Context, number string) (*order.Order, error)
}

// PaymentRepository defines the persistence contract for payment aggregates.
type PaymentRepository interface {
	// Add persists a new payment aggregate to storage.
	Add(ctx context.Context, aggregate *payment.Payment) error

	// Update persists changes to an existing payment aggregate.
	Update(ctx context.Context, aggregate *payment.Payment) error

	// Get retrieves a payment aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*payment.Payment, error)

	// GetByOrderID retrieves the payment paired with an order.
	GetByOrderID(ctx context.Context, orderID kernel.UUID) (*payment.Payment, error)

	// GetByExternalReference retrieves the payment a gateway callback is
	// keyed by. Returns an ObjectNotFoundError for unknown references.
	GetByExternalReference(ctx context.Context, reference string) (*payment.Payment, error)
}

// NotificationRepository defines the persistence contract for the
// notification audit trail. Records are created before a send attempt and
// updated in place; they are never deleted.
type NotificationRepository interface {
	// Add persists a new notification record.
	Add(ctx context.Context, record *notification.Record) error

	// Update persists a status change on an existing record.
	Update(ctx context.Context, record *notification.Record) error

	// Get retrieves a record by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*notification.Record, error)
}

// CartRepository is the durable mirror of session carts. Entries are written
// with an idempotent upsert keyed by (owner, composite identity, partition);
// conflicting writes resolve last-write-wins against the latest snapshot.
type CartRepository interface {
	// Save replaces the owner's stored entries with the cart's current state.
	Save(ctx context.Context, aggregate *cart.Cart) error

	// Get retrieves the owner's cart. Returns an ObjectNotFoundError when
	// the owner has no stored entries.
	Get(ctx context.Context, ownerID string) (*cart.Cart, error)

	// ListAbandoned retrieves carts with active entries whose last activity
	// predates the cutoff and which have received fewer than maxReminders
	// recovery reminders.
	ListAbandoned(ctx context.Context, cutoff time.Time, maxReminders int) ([]*cart.Cart, error)
}
