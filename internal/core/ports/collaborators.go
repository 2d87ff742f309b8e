package ports

import (
	"context"
	"time"

	"storefront/internal/core/domain/model/cart"
	"storefront/internal/core/domain/model/kernel"

	"github.com/shopspring/decimal"
)

// PaymentSession is what the gateway returns when an online payment is opened.
type PaymentSession struct {
	// ExternalReference keys all subsequent callbacks for this payment.
	ExternalReference string
	// RedirectURL is where the customer completes the payment.
	RedirectURL string
}

// PaymentGateway obtains payment sessions for online orders. Status changes
// come back asynchronously through the callback endpoint, not through this
// interface.
type PaymentGateway interface {
	CreateSession(ctx context.Context, orderID kernel.UUID, amount decimal.Decimal, customerID string) (PaymentSession, error)
}

// SendResult is a transport's answer to a single send attempt.
type SendResult struct {
	// ProviderID is the provider-side message id, when reported. It is what
	// asynchronous delivery confirmations are keyed by.
	ProviderID string
}

// MessageSender is one notification transport (email, SMS, chat).
// Implementations return an error for failed sends; the dispatcher records
// the outcome and never propagates transport errors to the caller.
type MessageSender interface {
	Send(ctx context.Context, recipient, subject, body string) (SendResult, error)
}

// TransitionEvent is published for every accepted state-machine transition.
// The order and payment machines communicate with downstream consumers (and
// with each other's observers) only through these events.
type TransitionEvent struct {
	OrderID    string    `json:"order_id"`
	Entity     string    `json:"entity"` // "order" or "payment"
	From       string    `json:"from"`
	To         string    `json:"to"`
	EventType  string    `json:"event_type,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher publishes transition events to the message broker.
type EventPublisher interface {
	PublishTransition(ctx context.Context, event TransitionEvent) error
}

// CartSessionStore is the session-scoped cart cache. The cart is pulled once
// when a session starts, pushed back after every mutation, and removed when
// checkout clears it. A missing owner yields an ObjectNotFoundError.
type CartSessionStore interface {
	Load(ctx context.Context, ownerID string) (*cart.Cart, error)
	Save(ctx context.Context, aggregate *cart.Cart) error
	Delete(ctx context.Context, ownerID string) error
}

// Customer is the profile supplied by the identity collaborator, used to
// prefill checkout data. Phone may be empty; SMS is skipped in that case.
type Customer struct {
	ID         string
	Name       string
	Email      string
	Phone      string
	ChatHandle string
}

// IdentityProvider resolves an authenticated user, or a guest session, into
// a customer profile.
type IdentityProvider interface {
	// Resolve authenticates a request token into a customer profile.
	Resolve(ctx context.Context, token string) (Customer, error)

	// Lookup retrieves the profile for a known customer id, used when a
	// background process needs contact details without a live session.
	Lookup(ctx context.Context, customerID string) (Customer, error)
}
