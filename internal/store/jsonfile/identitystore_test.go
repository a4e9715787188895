package jsonfile

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/shopcart/internal/core/kv"
	"github.com/hay-kot/shopcart/internal/core/session"
)

func TestIdentityStore_SetAndRead(t *testing.T) {
	ctx := context.Background()
	store := NewIdentityStore(newTestKV(t), zerolog.Nop())

	assert.Empty(t, store.Token(ctx))
	_, ok := store.Profile(ctx)
	assert.False(t, ok)

	profile := session.Profile{ID: "u1", Name: "Ada Lovelace", Email: "ada@x.com"}
	require.NoError(t, store.Set(ctx, "tok-123", profile))

	assert.Equal(t, "tok-123", store.Token(ctx))
	got, ok := store.Profile(ctx)
	require.True(t, ok)
	assert.Equal(t, profile, got)

	id, ok := store.Identity(ctx)
	require.True(t, ok)
	assert.True(t, id.SignedIn())
	assert.False(t, id.IssuedAt.IsZero())
}

func TestIdentityStore_Clear(t *testing.T) {
	ctx := context.Background()
	store := NewIdentityStore(kv.NewMemory(), zerolog.Nop())

	require.NoError(t, store.Set(ctx, "tok", session.Profile{ID: "u1"}))
	require.NoError(t, store.Clear(ctx))

	assert.Empty(t, store.Token(ctx))
	_, ok := store.Identity(ctx)
	assert.False(t, ok)

	// Clearing twice is fine.
	require.NoError(t, store.Clear(ctx))
}

func TestIdentityStore_MalformedReadsAsAbsent(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		value string
	}{
		{name: "garbage", value: "{{{"},
		{name: "wrong shape", value: `["tok"]`},
		{name: "empty token", value: `{"token":"","profile":{"_id":"u1"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := kv.NewMemory()
			require.NoError(t, mem.Set(ctx, kv.KeySession, tt.value))

			store := NewIdentityStore(mem, zerolog.Nop())
			assert.Empty(t, store.Token(ctx))
			_, ok := store.Profile(ctx)
			assert.False(t, ok)
		})
	}
}

func TestIdentityStore_DisjointFromCart(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	carts := NewCartStore(mem, zerolog.Nop())
	ids := NewIdentityStore(mem, zerolog.Nop())

	_, err := carts.Save(ctx, carts.LoadOrDefault(ctx).Add(echo))
	require.NoError(t, err)
	require.NoError(t, ids.Set(ctx, "tok", session.Profile{ID: "u1"}))
	require.NoError(t, ids.Clear(ctx))

	assert.Equal(t, 1, carts.LoadOrDefault(ctx).ItemCount())
}
