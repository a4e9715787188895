// Package jsonfile provides the client-durable state file: a flock-guarded
// JSON key/value store and the cart and identity stores built on it.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/shopcart/internal/core/kv"
)

// ErrStateCorrupt is returned by reads when the state file cannot be parsed.
var ErrStateCorrupt = errors.New("state file is corrupt")

// StateFile is the root JSON structure stored on disk.
type StateFile struct {
	Entries map[string]kv.Entry `json:"entries"`
}

// KVStore implements kv.Store using a single JSON file. Writes are serialized
// across processes with flock on a sibling lock file.
type KVStore struct {
	path   string
	logger zerolog.Logger
	mu     sync.RWMutex
	now    func() time.Time
}

// NewKVStore creates a KV store at the given path.
func NewKVStore(path string, logger zerolog.Logger) *KVStore {
	return &KVStore{
		path:   path,
		logger: logger.With().Str("component", "kvstore").Logger(),
		now:    time.Now,
	}
}

// Path returns the state file location.
func (s *KVStore) Path() string {
	return s.path
}

func (s *KVStore) lockPath() string {
	return s.path + ".lock"
}

// withFileLock acquires a file lock, executes fn, then releases the lock.
func (s *KVStore) withFileLock(how int, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	f, err := os.OpenFile(s.lockPath(), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	if err := syscall.Flock(int(f.Fd()), how); err != nil {
		return fmt.Errorf("acquire file lock: %w", err)
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN) //nolint:errcheck

	return fn()
}

// read runs fn against the current state under a shared lock.
func (s *KVStore) read(fn func(StateFile)) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.withFileLock(syscall.LOCK_SH, func() error {
		file, err := s.load()
		if err != nil {
			return err
		}
		fn(file)
		return nil
	})
}

// write runs fn under an exclusive lock and saves the state when fn reports
// a change.
func (s *KVStore) write(fn func(StateFile) (changed bool, err error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withFileLock(syscall.LOCK_EX, func() error {
		file, err := s.loadForWrite()
		if err != nil {
			return err
		}
		changed, err := fn(file)
		if err != nil || !changed {
			return err
		}
		return s.save(file)
	})
}

// Get returns an entry by key. Returns kv.ErrKeyNotFound if not found.
func (s *KVStore) Get(_ context.Context, key string) (kv.Entry, error) {
	var (
		entry kv.Entry
		found bool
	)
	if err := s.read(func(file StateFile) { entry, found = file.Entries[key] }); err != nil {
		return kv.Entry{}, err
	}
	if !found {
		return kv.Entry{}, kv.ErrKeyNotFound
	}
	return entry, nil
}

// Set creates or updates an entry.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	return s.Update(ctx, key, func(kv.Entry, bool) (string, error) {
		return value, nil
	})
}

// Update applies fn to the current value of key under an exclusive lock.
func (s *KVStore) Update(_ context.Context, key string, fn func(current kv.Entry, found bool) (string, error)) error {
	return s.write(func(file StateFile) (bool, error) {
		current, exists := file.Entries[key]
		value, err := fn(current, exists)
		if err != nil {
			return false, err
		}

		now := s.now()
		if !exists {
			current = kv.Entry{Key: key, CreatedAt: now}
		}
		current.Value = value
		current.UpdatedAt = now
		file.Entries[key] = current
		return true, nil
	})
}

// Delete removes an entry by key. Returns kv.ErrKeyNotFound if not found.
func (s *KVStore) Delete(_ context.Context, key string) error {
	return s.write(func(file StateFile) (bool, error) {
		if _, ok := file.Entries[key]; !ok {
			return false, kv.ErrKeyNotFound
		}
		delete(file.Entries, key)
		return true, nil
	})
}

// List returns all entries whose key starts with prefix, sorted by key.
func (s *KVStore) List(_ context.Context, prefix string) ([]kv.Entry, error) {
	var entries []kv.Entry
	err := s.read(func(file StateFile) {
		for key, entry := range file.Entries {
			if strings.HasPrefix(key, prefix) {
				entries = append(entries, entry)
			}
		}
	})
	slices.SortFunc(entries, func(a, b kv.Entry) int { return strings.Compare(a.Key, b.Key) })
	return entries, err
}

// Watch polls until the entry's UpdatedAt is after the given time. It returns
// context.DeadlineExceeded once timeout elapses.
func (s *KVStore) Watch(ctx context.Context, key string, after time.Time, timeout time.Duration) (kv.Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return kv.Entry{}, ctx.Err()
		case <-ticker.C:
		}

		entry, err := s.Get(ctx, key)
		switch {
		case errors.Is(err, kv.ErrKeyNotFound):
		case err != nil:
			return kv.Entry{}, err
		case entry.UpdatedAt.After(after):
			return entry, nil
		}
	}
}

// load reads the state file from disk. A missing or empty file is an empty
// state.
func (s *KVStore) load() (StateFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return StateFile{Entries: make(map[string]kv.Entry)}, nil
		}
		return StateFile{}, fmt.Errorf("read state file: %w", err)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return StateFile{Entries: make(map[string]kv.Entry)}, nil
	}

	var file StateFile
	if err := json.Unmarshal(data, &file); err != nil {
		return StateFile{}, fmt.Errorf("%w: %s: %w", ErrStateCorrupt, s.path, err)
	}

	if file.Entries == nil {
		file.Entries = make(map[string]kv.Entry)
	}

	return file, nil
}

// loadForWrite is load for writers: a corrupt state file is moved aside so the
// write can start from an empty state instead of failing forever.
func (s *KVStore) loadForWrite() (StateFile, error) {
	file, err := s.load()
	if err == nil {
		return file, nil
	}
	if !errors.Is(err, ErrStateCorrupt) {
		return StateFile{}, err
	}

	aside := s.path + ".corrupt"
	if rerr := os.Rename(s.path, aside); rerr != nil {
		return StateFile{}, fmt.Errorf("move corrupt state file: %w", rerr)
	}

	s.logger.Warn().
		Err(err).
		Str("moved_to", aside).
		Msg("state file was corrupt, starting fresh")

	return StateFile{Entries: make(map[string]kv.Entry)}, nil
}

// save writes the state file to disk atomically.
func (s *KVStore) save(file StateFile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}

	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp) // best effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
