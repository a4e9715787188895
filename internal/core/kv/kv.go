// Package kv defines the client-durable key/value storage that backs the cart
// and the session identity. It plays the role a browser's localStorage plays
// for a web storefront: per-machine, survives restarts, plain text.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned when a key does not exist.
var ErrKeyNotFound = errors.New("key not found")

// Well-known keys.
const (
	KeyCart    = "shopcart.cart"
	KeySession = "shopcart.session"
)

// Entry represents a stored value with metadata.
type Entry struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store defines persistence operations for client state.
type Store interface {
	Get(ctx context.Context, key string) (Entry, error)
	Set(ctx context.Context, key, value string) error
	// Update runs fn with the current entry (found=false if absent) and stores
	// the returned value, all under one exclusive lock. Returning an error from
	// fn aborts without writing.
	Update(ctx context.Context, key string, fn func(current Entry, found bool) (string, error)) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]Entry, error)
	// Watch blocks until the key's UpdatedAt is after the given time, the
	// timeout elapses, or ctx is done.
	Watch(ctx context.Context, key string, after time.Time, timeout time.Duration) (Entry, error)
}
