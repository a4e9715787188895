package shop

import (
	"github.com/hay-kot/shopcart/internal/core/cart"
	"github.com/hay-kot/shopcart/internal/core/session"
)

// EventKind identifies what changed.
type EventKind int

const (
	EventCartChanged EventKind = iota
	EventIdentityChanged
)

func (k EventKind) String() string {
	switch k {
	case EventCartChanged:
		return "cart_changed"
	case EventIdentityChanged:
		return "identity_changed"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers after a change has been persisted.
type Event struct {
	Kind     EventKind
	Cart     cart.Cart
	Identity session.Identity
}

// Subscribe registers fn for change notifications and returns a function that
// removes it. fn runs synchronously on the mutating goroutine.
func (s *Service) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Service) publish(e Event) {
	s.mu.Lock()
	fns := make([]func(Event), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}
