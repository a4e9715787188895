package docstore

import (
	"context"
	"sync"
	"time"

	"github.com/hay-kot/shopcart/internal/core/account"
	"github.com/hay-kot/shopcart/internal/core/catalog"
)

// Memory keeps products and users in process memory.
type Memory struct {
	mu       sync.RWMutex
	products []catalog.Product
	users    map[string]account.User
	now      func() time.Time
}

var (
	_ catalog.Store = (*Memory)(nil)
	_ account.Store = (*Memory)(nil)
)

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		users: make(map[string]account.User),
		now:   time.Now,
	}
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

func (m *Memory) List(_ context.Context, query string) ([]catalog.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]catalog.Product, 0, len(m.products))
	for _, p := range m.products {
		if catalog.MatchesQuery(p, query) {
			out = append(out, p)
		}
	}
	catalog.SortNewestFirst(out)
	return out, nil
}

func (m *Memory) Get(_ context.Context, id string) (catalog.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.products {
		if p.ID == id {
			return p, nil
		}
	}
	return catalog.Product{}, catalog.ErrNotFound
}

func (m *Memory) Count(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.products), nil
}

func (m *Memory) InsertMany(_ context.Context, products []catalog.Product) ([]catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	out := make([]catalog.Product, len(products))
	for i, p := range products {
		out[i] = catalog.Prepare(p, newID(), now)
	}
	m.products = append(m.products, out...)
	return out, nil
}

func (m *Memory) Create(_ context.Context, u account.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u.Email = account.NormalizeEmail(u.Email)
	if _, ok := m.users[u.Email]; ok {
		return account.ErrEmailTaken
	}
	m.users[u.Email] = u
	return nil
}

func (m *Memory) FindByEmail(_ context.Context, email string) (account.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[account.NormalizeEmail(email)]
	if !ok {
		return account.User{}, account.ErrNotFound
	}
	return u, nil
}
