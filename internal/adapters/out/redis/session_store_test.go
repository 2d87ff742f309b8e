package redis

import (
	"context"
	"testing"
	"time"

	"storefront/internal/core/domain/model/cart"
	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/pkg/errs"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewSessionStore(client, time.Hour), mr
}

func buildCart(t *testing.T, ownerID string) *cart.Cart {
	t.Helper()

	c, err := cart.NewCart(ownerID)
	require.NoError(t, err)

	item, err := cart.NewItem(
		cart.ItemKey{ProductID: kernel.NewUUID(), ColorID: "black", SpecID: "256gb"},
		"Phone X",
		2,
		decimal.NewFromInt(700),
		false,
		nil,
	)
	require.NoError(t, err)
	require.NoError(t, c.AddItem(item))

	return c
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()

	t.Run("should round trip a cart through save and load", func(t *testing.T) {
		store, _ := setupStore(t)
		original := buildCart(t, "cust-1")
		require.NoError(t, original.SaveForLater(original.ActiveItems()[0].Key()))

		require.NoError(t, store.Save(ctx, original))

		loaded, err := store.Load(ctx, "cust-1")
		require.NoError(t, err)
		assert.Equal(t, "cust-1", loaded.OwnerID())
		assert.Empty(t, loaded.ActiveItems())
		require.Len(t, loaded.SavedItems(), 1)
		assert.Equal(t, "Phone X", loaded.SavedItems()[0].ProductName())
		assert.True(t, original.LastActivityAt().Equal(loaded.LastActivityAt()))
	})

	t.Run("should return not found for a missing key", func(t *testing.T) {
		store, _ := setupStore(t)

		loaded, err := store.Load(ctx, "nobody")
		assert.Nil(t, loaded)
		assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("should return not found after the key expires", func(t *testing.T) {
		store, mr := setupStore(t)
		require.NoError(t, store.Save(ctx, buildCart(t, "cust-2")))

		mr.FastForward(2 * time.Hour)

		_, err := store.Load(ctx, "cust-2")
		assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("should delete the owner's cart", func(t *testing.T) {
		store, _ := setupStore(t)
		require.NoError(t, store.Save(ctx, buildCart(t, "cust-3")))

		require.NoError(t, store.Delete(ctx, "cust-3"))

		_, err := store.Load(ctx, "cust-3")
		assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("should reject an empty owner id", func(t *testing.T) {
		store, _ := setupStore(t)

		_, err := store.Load(ctx, "")
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}
