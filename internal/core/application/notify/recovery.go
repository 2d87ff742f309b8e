package notify

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"storefront/internal/core/domain/model/cart"
	"storefront/internal/core/domain/model/notification"
	"storefront/internal/core/ports"
)

// DefaultAbandonAfter is how long a cart may sit untouched before recovery
// considers it abandoned.
const DefaultAbandonAfter = 24 * time.Hour

// CartUoW is the transaction scope recovery reads and updates carts in.
type CartUoW interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	CartRepository() ports.CartRepository
}

// CartUoWFactory creates cart transaction scopes.
type CartUoWFactory interface {
	Create() CartUoW
}

// EventDispatcher is the slice of the dispatcher recovery needs.
type EventDispatcher interface {
	Dispatch(ctx context.Context, event Event)
}

// RecoveryService sends escalating reminders for carts with items that have
// seen no activity. Each cart receives at most cart.MaxReminders reminders;
// the second and third carry an incentive code. A reminder is counted against
// the cart before it is sent, so a crashed run can skip but never double-send.
type RecoveryService struct {
	uowFactory    CartUoWFactory
	sessions      ports.CartSessionStore
	identity      ports.IdentityProvider
	dispatcher    EventDispatcher
	abandonAfter  time.Duration
	incentiveCode string
	logger        *slog.Logger
}

// NewRecoveryService creates the abandoned-cart recovery service.
// A zero abandonAfter falls back to DefaultAbandonAfter.
func NewRecoveryService(
	uowFactory CartUoWFactory,
	sessions ports.CartSessionStore,
	identity ports.IdentityProvider,
	dispatcher EventDispatcher,
	abandonAfter time.Duration,
	incentiveCode string,
	logger *slog.Logger,
) *RecoveryService {
	if abandonAfter <= 0 {
		abandonAfter = DefaultAbandonAfter
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &RecoveryService{
		uowFactory:    uowFactory,
		sessions:      sessions,
		identity:      identity,
		dispatcher:    dispatcher,
		abandonAfter:  abandonAfter,
		incentiveCode: incentiveCode,
		logger:        logger.With("component", "cart_recovery"),
	}
}

// Run performs one recovery sweep. Carts whose last activity predates the
// abandonment cutoff and which still have reminders left each get one
// CART_REMINDER dispatched on the owner's reachable channels.
func (s *RecoveryService) Run(ctx context.Context) error {
	cutoff := time.Now().Add(-s.abandonAfter)

	reminded, err := s.recordReminders(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, entry := range reminded {
		s.notify(ctx, entry.cart, entry.ordinal)
	}

	return nil
}

type remindedCart struct {
	cart    *cart.Cart
	ordinal int
}

// recordReminders bumps the reminder counter for every eligible cart within
// one transaction. Notifications go out only after the counters are durable.
func (s *RecoveryService) recordReminders(ctx context.Context, cutoff time.Time) ([]remindedCart, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.CartRepository()
	abandoned, err := repo.ListAbandoned(ctx, cutoff, cart.MaxReminders)
	if err != nil {
		return nil, err
	}

	reminded := make([]remindedCart, 0, len(abandoned))
	for _, c := range abandoned {
		ordinal, reminderErr := c.RecordReminder()
		if reminderErr != nil {
			s.logger.Warn("cart past reminder cap, skipping",
				"owner_id", c.OwnerID(), "error", reminderErr)
			continue
		}

		if err = repo.Save(ctx, c); err != nil {
			return nil, err
		}

		reminded = append(reminded, remindedCart{cart: c, ordinal: ordinal})
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	for _, entry := range reminded {
		if err = s.sessions.Save(ctx, entry.cart); err != nil {
			s.logger.Warn("failed to refresh session cart after reminder",
				"owner_id", entry.cart.OwnerID(), "error", err)
		}
	}

	return reminded, nil
}

func (s *RecoveryService) notify(ctx context.Context, c *cart.Cart, ordinal int) {
	customer, err := s.identity.Lookup(ctx, c.OwnerID())
	if err != nil {
		s.logger.Warn("no contact details for cart owner",
			"owner_id", c.OwnerID(), "error", err)
		return
	}

	params := map[string]string{
		ParamItems:    strconv.Itoa(len(c.ActiveItems())),
		ParamTotal:    c.Total().StringFixed(2),
		ParamReminder: strconv.Itoa(ordinal),
	}
	if ordinal >= 2 {
		params[ParamIncentive] = s.incentiveCode
	}

	s.dispatcher.Dispatch(ctx, Event{
		Type:      notification.CartReminder,
		Recipient: customer,
		Params:    params,
	})
}
