// Package cartops is the application service for session cart manipulation.
// The cart lives in the session store; every mutation is pushed back to it
// and mirrored into durable storage so abandoned-cart recovery and a fresh
// session on another device both see the latest state.
package cartops

import (
	"context"
	"errors"
	"log/slog"

	"storefront/internal/core/domain/model/cart"
	"storefront/internal/core/ports"
	"storefront/internal/pkg/errs"
)

// CartUoW is the transaction scope cart mutations are mirrored in.
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

// Service exposes the cart operations: add, change quantity, remove, the
// save-for-later round trip, and clear. Conflicting writes from parallel
// sessions resolve last-write-wins against the latest stored snapshot.
type Service struct {
	sessions   ports.CartSessionStore
	uowFactory CartUoWFactory
	logger     *slog.Logger
}

// NewService creates the cart application service.
func NewService(sessions ports.CartSessionStore, uowFactory CartUoWFactory, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		sessions:   sessions,
		uowFactory: uowFactory,
		logger:     logger.With("component", "cartops"),
	}
}

// Get returns the owner's cart, pulling from the session store first and
// falling back to the durable mirror when the session is cold. An owner with
// no cart anywhere gets a fresh empty one.
func (s *Service) Get(ctx context.Context, ownerID string) (*cart.Cart, error) {
	return s.load(ctx, ownerID)
}

// AddItem puts an entry into the active partition, merging quantities with an
// existing same-key entry.
func (s *Service) AddItem(ctx context.Context, ownerID string, item *cart.Item) (*cart.Cart, error) {
	return s.mutate(ctx, ownerID, func(c *cart.Cart) error {
		return c.AddItem(item)
	})
}

// UpdateQuantity sets an active entry's quantity. Quantities below 1 are
// rejected; removal is explicit.
func (s *Service) UpdateQuantity(ctx context.Context, ownerID string, key cart.ItemKey, quantity int) (*cart.Cart, error) {
	return s.mutate(ctx, ownerID, func(c *cart.Cart) error {
		return c.UpdateQuantity(key, quantity)
	})
}

// RemoveItem deletes an active entry.
func (s *Service) RemoveItem(ctx context.Context, ownerID string, key cart.ItemKey) (*cart.Cart, error) {
	return s.mutate(ctx, ownerID, func(c *cart.Cart) error {
		return c.RemoveItem(key)
	})
}

// SaveForLater parks an active entry in the saved partition.
func (s *Service) SaveForLater(ctx context.Context, ownerID string, key cart.ItemKey) (*cart.Cart, error) {
	return s.mutate(ctx, ownerID, func(c *cart.Cart) error {
		return c.SaveForLater(key)
	})
}

// MoveToCart moves a saved entry back into the active partition, merging with
// any same-key entry added in the meantime.
func (s *Service) MoveToCart(ctx context.Context, ownerID string, key cart.ItemKey) (*cart.Cart, error) {
	return s.mutate(ctx, ownerID, func(c *cart.Cart) error {
		return c.MoveToCart(key)
	})
}

// Clear empties the active partition, leaving saved entries alone.
func (s *Service) Clear(ctx context.Context, ownerID string) (*cart.Cart, error) {
	return s.mutate(ctx, ownerID, func(c *cart.Cart) error {
		c.ClearActive()
		return nil
	})
}

func (s *Service) mutate(ctx context.Context, ownerID string, op func(*cart.Cart) error) (*cart.Cart, error) {
	c, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if err = op(c); err != nil {
		return nil, err
	}

	if err = s.mirror(ctx, c); err != nil {
		return nil, err
	}

	if err = s.sessions.Save(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) load(ctx context.Context, ownerID string) (*cart.Cart, error) {
	c, err := s.sessions.Load(ctx, ownerID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, errs.ErrObjectNotFound) {
		return nil, err
	}

	c, err = s.loadMirror(ctx, ownerID)
	if err == nil {
		if sessErr := s.sessions.Save(ctx, c); sessErr != nil {
			s.logger.Warn("failed to warm session cart", "owner_id", ownerID, "error", sessErr)
		}
		return c, nil
	}
	if !errors.Is(err, errs.ErrObjectNotFound) {
		return nil, err
	}

	return cart.NewCart(ownerID)
}

func (s *Service) loadMirror(ctx context.Context, ownerID string) (*cart.Cart, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	c, err := uow.CartRepository().Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) mirror(ctx context.Context, c *cart.Cart) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.CartRepository().Save(ctx, c); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
