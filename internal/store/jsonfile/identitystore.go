package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/shopcart/internal/core/kv"
	"github.com/hay-kot/shopcart/internal/core/session"
)

// IdentityStore implements session.Holder with one record under
// kv.KeySession, so token and profile can never be persisted apart.
type IdentityStore struct {
	kv     kv.Store
	logger zerolog.Logger
	now    func() time.Time
}

var _ session.Holder = (*IdentityStore)(nil)

// NewIdentityStore creates an identity store on top of a KV store.
func NewIdentityStore(store kv.Store, logger zerolog.Logger) *IdentityStore {
	return &IdentityStore{
		kv:     store,
		logger: logger.With().Str("component", "identitystore").Logger(),
		now:    time.Now,
	}
}

// Set persists token and profile in one write.
func (s *IdentityStore) Set(ctx context.Context, token string, profile session.Profile) error {
	id := session.New(token, profile, s.now().UTC())

	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}

	if err := s.kv.Set(ctx, kv.KeySession, string(data)); err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}

// Identity returns the persisted identity. Missing, unreadable or tokenless
// records read as absent.
func (s *IdentityStore) Identity(ctx context.Context) (session.Identity, bool) {
	entry, err := s.kv.Get(ctx, kv.KeySession)
	if err != nil {
		if !errors.Is(err, kv.ErrKeyNotFound) {
			s.logger.Warn().Err(err).Msg("identity unreadable, treating as signed out")
		}
		return session.Identity{}, false
	}

	var id session.Identity
	if err := json.Unmarshal([]byte(entry.Value), &id); err != nil {
		s.logger.Warn().Err(err).Msg("identity record malformed, treating as signed out")
		return session.Identity{}, false
	}

	if !id.HasToken() {
		return session.Identity{}, false
	}

	return id, true
}

// Token returns the bearer credential or "".
func (s *IdentityStore) Token(ctx context.Context) string {
	id, ok := s.Identity(ctx)
	if !ok {
		return ""
	}
	return id.Token
}

// Profile returns the cached profile, if any.
func (s *IdentityStore) Profile(ctx context.Context) (session.Profile, bool) {
	id, ok := s.Identity(ctx)
	if !ok || id.Profile == nil {
		return session.Profile{}, false
	}
	return *id.Profile, true
}

// Clear removes the identity. Clearing an absent identity is not an error.
func (s *IdentityStore) Clear(ctx context.Context) error {
	err := s.kv.Delete(ctx, kv.KeySession)
	if err != nil && !errors.Is(err, kv.ErrKeyNotFound) {
		return fmt.Errorf("clear identity: %w", err)
	}
	return nil
}
