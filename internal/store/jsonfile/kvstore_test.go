package jsonfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/shopcart/internal/core/kv"
)

func newTestKV(t *testing.T) *KVStore {
	t.Helper()
	return NewKVStore(filepath.Join(t.TempDir(), "state.json"), zerolog.Nop())
}

func TestKVStore_SetAndGet(t *testing.T) {
	store := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "foo", "bar"))

	entry, err := store.Get(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, "foo", entry.Key)
	assert.Equal(t, "bar", entry.Value)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.False(t, entry.UpdatedAt.IsZero())
}

func TestKVStore_GetNotFound(t *testing.T) {
	store := newTestKV(t)

	_, err := store.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, kv.ErrKeyNotFound)
}

func TestKVStore_UpdatePreservesCreatedAt(t *testing.T) {
	store := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "key", "value1"))
	entry1, err := store.Get(ctx, "key")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, store.Set(ctx, "key", "value2"))

	entry2, err := store.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "value2", entry2.Value)
	assert.True(t, entry2.CreatedAt.Equal(entry1.CreatedAt))
	assert.True(t, entry2.UpdatedAt.After(entry1.UpdatedAt))
}

func TestKVStore_UpdateAbortsOnError(t *testing.T) {
	store := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "key", "original"))

	boom := fmt.Errorf("boom")
	err := store.Update(ctx, "key", func(cur kv.Entry, found bool) (string, error) {
		assert.True(t, found)
		assert.Equal(t, "original", cur.Value)
		return "", boom
	})
	require.ErrorIs(t, err, boom)

	entry, err := store.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "original", entry.Value)
}

func TestKVStore_List(t *testing.T) {
	store := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "shopcart.cart", "{}"))
	require.NoError(t, store.Set(ctx, "shopcart.session", "{}"))
	require.NoError(t, store.Set(ctx, "other.key", "x"))

	entries, err := store.List(ctx, "shopcart.")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "shopcart.cart", entries[0].Key)
	assert.Equal(t, "shopcart.session", entries[1].Key)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestKVStore_Delete(t *testing.T) {
	store := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "key", "value"))
	require.NoError(t, store.Delete(ctx, "key"))

	_, err := store.Get(ctx, "key")
	assert.ErrorIs(t, err, kv.ErrKeyNotFound)

	assert.ErrorIs(t, store.Delete(ctx, "key"), kv.ErrKeyNotFound)
}

func TestKVStore_Watch(t *testing.T) {
	store := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "watch-key", "initial"))
	entry1, err := store.Get(ctx, "watch-key")
	require.NoError(t, err)

	done := make(chan struct{})
	var (
		watched  kv.Entry
		watchErr error
	)

	go func() {
		watched, watchErr = store.Watch(ctx, "watch-key", entry1.UpdatedAt, 5*time.Second)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, store.Set(ctx, "watch-key", "updated"))

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Watch timed out")
	}

	require.NoError(t, watchErr)
	assert.Equal(t, "updated", watched.Value)
}

func TestKVStore_WatchTimeout(t *testing.T) {
	store := newTestKV(t)

	_, err := store.Watch(context.Background(), "nonexistent", time.Now(), 100*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestKVStore_WatchContextCancellation(t *testing.T) {
	store := newTestKV(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := store.Watch(ctx, "key", time.Now(), 30*time.Second)
		done <- err
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not respond to context cancellation")
	}
}

func TestKVStore_ConcurrentAccess(t *testing.T) {
	store := newTestKV(t)
	ctx := context.Background()

	const (
		goroutines = 10
		iterations = 20
	)

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := range goroutines {
		go func(id int) {
			defer wg.Done()
			for j := range iterations {
				key := fmt.Sprintf("key-%d-%d", id, j)
				if err := store.Set(ctx, key, "value"); err != nil {
					t.Errorf("Set failed: %v", err)
					return
				}
				if _, err := store.Get(ctx, key); err != nil {
					t.Errorf("Get failed: %v", err)
					return
				}
			}
		}(i)
	}

	wg.Wait()

	entries, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, entries, goroutines*iterations)
}

func TestKVStore_CorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{invalid json"), 0o644))

	store := NewKVStore(path, zerolog.Nop())
	ctx := context.Background()

	_, err := store.Get(ctx, "any")
	require.ErrorIs(t, err, ErrStateCorrupt)

	// Writers move the corrupt file aside and start fresh.
	require.NoError(t, store.Set(ctx, "key", "value"))

	entry, err := store.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "value", entry.Value)

	aside, err := os.ReadFile(path + ".corrupt")
	require.NoError(t, err)
	assert.Equal(t, "{invalid json", string(aside))
}
