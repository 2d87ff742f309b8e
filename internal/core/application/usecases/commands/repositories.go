// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management,
// persistence, and post-commit side effects (transition events, notifications).
package commands

import (
	"context"

	"storefront/internal/core/application/notify"
	"storefront/internal/core/domain/model/notification"
	"storefront/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure data consistency across aggregate boundaries.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to the order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// PaymentRepoFactory provides access to the payment repository within a transaction.
	PaymentRepoFactory interface {
		PaymentRepository() ports.PaymentRepository
	}

	// CartRepoFactory provides access to the durable cart mirror within a transaction.
	CartRepoFactory interface {
		CartRepository() ports.CartRepository
	}

	// NotificationRepoFactory provides access to the notification audit trail
	// within a transaction.
	NotificationRepoFactory interface {
		NotificationRepository() ports.NotificationRepository
	}

	// CheckoutUoW spans the aggregates touched at checkout: the new order, its
	// paired payment, and the cart being converted. The order must never be
	// committed without its payment.
	CheckoutUoW interface {
		TxManager
		OrderRepoFactory
		PaymentRepoFactory
		CartRepoFactory
	}

	// CheckoutUoWFactory creates checkout unit of work instances.
	CheckoutUoWFactory interface {
		Create() CheckoutUoW
	}

	// CallbackUoW spans the aggregates a gateway callback may touch: the
	// payment it targets, the paired order, and the cart cleared on success.
	CallbackUoW interface {
		TxManager
		PaymentRepoFactory
		OrderRepoFactory
		CartRepoFactory
	}

	// CallbackUoWFactory creates callback unit of work instances.
	CallbackUoWFactory interface {
		Create() CallbackUoW
	}

	// FulfillmentUoW manages transactions for fulfillment transitions.
	// Refund also touches the paired payment.
	FulfillmentUoW interface {
		TxManager
		OrderRepoFactory
		PaymentRepoFactory
	}

	// FulfillmentUoWFactory creates fulfillment unit of work instances.
	FulfillmentUoWFactory interface {
		Create() FulfillmentUoW
	}

	// NotificationUoW manages transactions for notification-only operations.
	NotificationUoW interface {
		TxManager
		NotificationRepoFactory
	}

	// NotificationUoWFactory creates notification unit of work instances.
	NotificationUoWFactory interface {
		Create() NotificationUoW
	}
)

// Notifier is the slice of the notification dispatcher command handlers use.
// Dispatch fans a new event out; Redeliver re-attempts an existing record.
type Notifier interface {
	Dispatch(ctx context.Context, event notify.Event)
	Redeliver(ctx context.Context, record *notification.Record)
}
