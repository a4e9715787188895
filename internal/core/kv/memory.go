package kv

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process Store. It is used by tests and by commands that
// run with --data-dir set to ":memory:".
type Memory struct {
	mu      sync.Mutex
	entries map[string]Entry
	now     func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]Entry), now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return Entry{}, ErrKeyNotFound
	}
	return e, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	return m.Update(ctx, key, func(Entry, bool) (string, error) { return value, nil })
}

func (m *Memory) Update(_ context.Context, key string, fn func(Entry, bool) (string, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, found := m.entries[key]
	value, err := fn(cur, found)
	if err != nil {
		return err
	}

	now := m.now()
	if !found {
		cur = Entry{Key: key, CreatedAt: now}
	}
	cur.Value = value
	cur.UpdatedAt = now
	m.entries[key] = cur
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[key]; !ok {
		return ErrKeyNotFound
	}
	delete(m.entries, key)
	return nil
}

func (m *Memory) List(_ context.Context, prefix string) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Entry
	for k, e := range m.entries {
		if strings.HasPrefix(k, prefix) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *Memory) Watch(ctx context.Context, key string, after time.Time, timeout time.Duration) (Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		e, err := m.Get(ctx, key)
		if err != nil && !errors.Is(err, ErrKeyNotFound) {
			return Entry{}, err
		}
		if err == nil && e.UpdatedAt.After(after) {
			return e, nil
		}

		select {
		case <-ctx.Done():
			return Entry{}, ctx.Err()
		case <-ticker.C:
		}
	}
}
