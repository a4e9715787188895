package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/shopcart/internal/core/cart"
	"github.com/hay-kot/shopcart/internal/core/kv"
)

// CartStore persists the shopper's cart under kv.KeyCart.
type CartStore struct {
	kv     kv.Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewCartStore creates a cart store on top of a KV store.
func NewCartStore(store kv.Store, logger zerolog.Logger) *CartStore {
	return &CartStore{
		kv:     store,
		logger: logger.With().Str("component", "cartstore").Logger(),
		now:    time.Now,
	}
}

// Load returns the persisted cart. A missing cart is an empty cart; a payload
// that fails to parse returns an error wrapping cart.ErrCorrupt.
func (s *CartStore) Load(ctx context.Context) (cart.Cart, error) {
	entry, err := s.kv.Get(ctx, kv.KeyCart)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return cart.Empty(), nil
		}
		if errors.Is(err, ErrStateCorrupt) {
			return cart.Empty(), fmt.Errorf("%w: %w", cart.ErrCorrupt, err)
		}
		return cart.Empty(), fmt.Errorf("read cart: %w", err)
	}

	return cart.Decode([]byte(entry.Value))
}

// LoadOrDefault is the lenient read: any failure, including a corrupt
// payload, yields an empty cart. Failures are logged, never returned.
func (s *CartStore) LoadOrDefault(ctx context.Context) cart.Cart {
	c, err := s.Load(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("cart unreadable, using empty cart")
		return cart.Empty()
	}
	return c
}

// Save replaces the persisted cart and returns it with its new revision.
// Writes are last-write-wins: when the stored revision is newer than c's, the
// overwrite still happens and a lost update is logged.
func (s *CartStore) Save(ctx context.Context, c cart.Cart) (cart.Cart, error) {
	var saved cart.Cart

	err := s.kv.Update(ctx, kv.KeyCart, func(current kv.Entry, found bool) (string, error) {
		var stored int64
		if found {
			if prev, err := cart.Decode([]byte(current.Value)); err == nil {
				stored = prev.Revision
			}
		}

		if stored > c.Revision {
			s.logger.Warn().
				Int64("stored_revision", stored).
				Int64("loaded_revision", c.Revision).
				Msg("cart changed by another writer since it was loaded, overwriting")
		}

		saved = c
		saved.Revision = max(stored, c.Revision) + 1
		saved.UpdatedAt = s.now().UTC()

		data, err := cart.Encode(saved)
		if err != nil {
			return "", err
		}
		return string(data), nil
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to save cart")
		return c, fmt.Errorf("save cart: %w", err)
	}

	s.logger.Debug().
		Int64("revision", saved.Revision).
		Int("items", saved.ItemCount()).
		Msg("cart saved")

	return saved, nil
}

// Watch blocks until the cart entry is written after the given time.
func (s *CartStore) Watch(ctx context.Context, after time.Time, timeout time.Duration) (cart.Cart, time.Time, error) {
	entry, err := s.kv.Watch(ctx, kv.KeyCart, after, timeout)
	if err != nil {
		return cart.Cart{}, after, err
	}

	c, err := cart.Decode([]byte(entry.Value))
	if err != nil {
		return cart.Empty(), entry.UpdatedAt, nil
	}
	return c, entry.UpdatedAt, nil
}
