// Package redis provides the session-side cart store. Redis holds the hot
// copy of every cart; the postgres mirror is the durable fallback when a key
// expires or the cache is flushed.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/core/domain/model/cart"
	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// DefaultTTL is how long an untouched session cart stays in Redis. Carts
// older than this are recovered from the durable mirror on the next read.
const DefaultTTL = 72 * time.Hour

// SessionStore implements CartSessionStore on a Redis client. Each cart is
// one JSON value keyed by its owner; every save refreshes the TTL.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore creates a session store with the given TTL.
// A non-positive TTL falls back to DefaultTTL.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SessionStore{client: client, ttl: ttl}
}

// Load retrieves the owner's session cart.
// Returns an ObjectNotFoundError when the key is missing or expired.
func (s *SessionStore) Load(ctx context.Context, ownerID string) (*cart.Cart, error) {
	if ownerID == "" {
		return nil, errs.NewValueIsRequiredError("ownerID")
	}

	data, err := s.client.Get(ctx, sessionKey(ownerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errs.NewObjectNotFoundError("cart", ownerID)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var snapshot cartSnapshot
	if err = json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}

	return snapshot.toDomain()
}

// Save writes the cart's current state and refreshes its TTL.
func (s *SessionStore) Save(ctx context.Context, aggregate *cart.Cart) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(snapshotFromDomain(aggregate))
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	if err = s.client.Set(ctx, sessionKey(aggregate.OwnerID()), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

// Delete removes the owner's session cart.
func (s *SessionStore) Delete(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return errs.NewValueIsRequiredError("ownerID")
	}

	if err := s.client.Del(ctx, sessionKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}

	return nil
}

func sessionKey(ownerID string) string {
	return fmt.Sprintf("cart-session:%s", ownerID)
}

// cartSnapshot is the JSON shape of a session cart.
type cartSnapshot struct {
	OwnerID        string          `json:"owner_id"`
	Active         []entrySnapshot `json:"active"`
	Saved          []entrySnapshot `json:"saved"`
	LastActivityAt time.Time       `json:"last_activity_at"`
	RemindersSent  int             `json:"reminders_sent"`
}

type entrySnapshot struct {
	ProductID        string          `json:"product_id"`
	ColorID          string          `json:"color_id"`
	SpecID           string          `json:"spec_id"`
	ProductName      string          `json:"product_name"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	IsBundle         bool            `json:"is_bundle"`
	BundleComponents []string        `json:"bundle_components,omitempty"`
}

func snapshotFromDomain(aggregate *cart.Cart) cartSnapshot {
	return cartSnapshot{
		OwnerID:        aggregate.OwnerID(),
		Active:         entriesFromDomain(aggregate.ActiveItems()),
		Saved:          entriesFromDomain(aggregate.SavedItems()),
		LastActivityAt: aggregate.LastActivityAt(),
		RemindersSent:  aggregate.RemindersSent(),
	}
}

func entriesFromDomain(items []*cart.Item) []entrySnapshot {
	entries := make([]entrySnapshot, 0, len(items))
	for _, item := range items {
		entries = append(entries, entrySnapshot{
			ProductID:        item.Key().ProductID.String(),
			ColorID:          item.Key().ColorID,
			SpecID:           item.Key().SpecID,
			ProductName:      item.ProductName(),
			Quantity:         item.Quantity(),
			UnitPrice:        item.UnitPrice(),
			IsBundle:         item.IsBundle(),
			BundleComponents: item.BundleComponents(),
		})
	}
	return entries
}

func (s cartSnapshot) toDomain() (*cart.Cart, error) {
	active, err := entriesToDomain(s.Active)
	if err != nil {
		return nil, err
	}

	saved, err := entriesToDomain(s.Saved)
	if err != nil {
		return nil, err
	}

	return cart.RestoreCart(s.OwnerID, active, saved, s.LastActivityAt, s.RemindersSent)
}

func entriesToDomain(entries []entrySnapshot) ([]*cart.Item, error) {
	items := make([]*cart.Item, 0, len(entries))
	for _, entry := range entries {
		productID, err := kernel.UUIDFromString(entry.ProductID)
		if err != nil {
			return nil, err
		}

		item, err := cart.NewItem(
			cart.ItemKey{ProductID: productID, ColorID: entry.ColorID, SpecID: entry.SpecID},
			entry.ProductName,
			entry.Quantity,
			entry.UnitPrice,
			entry.IsBundle,
			entry.BundleComponents,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
