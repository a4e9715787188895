package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/shopcart/internal/core/cart"
	"github.com/hay-kot/shopcart/internal/core/session"
)

// localStateTimeout bounds a read of the state file.
const localStateTimeout = 2 * time.Second

// refreshTickMsg triggers a re-read of the persisted cart and identity.
type refreshTickMsg struct{}

// localStateMsg carries the persisted cart and identity. gen and quiet record
// the cart writes known when the read was issued.
type localStateMsg struct {
	cart     cart.Cart
	identity session.Identity
	signedIn bool
	gen      int
	quiet    bool
}

// scheduleRefresh returns a command that schedules the next refresh, or nil
// when periodic refresh is disabled.
func (m Model) scheduleRefresh() tea.Cmd {
	interval := m.cfg.TUI.RefreshInterval
	if interval <= 0 {
		return nil
	}
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

// loadLocalState reads the cart and identity from the state file. Another
// process may have changed either since the last read.
func (m Model) loadLocalState() tea.Cmd {
	gen, quiet := m.cartGen, m.inflight == 0
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), localStateTimeout)
		defer cancel()

		ident, ok := m.service.Identity(ctx)
		return localStateMsg{
			cart:     m.service.Cart(ctx),
			identity: ident,
			signedIn: ok && ident.SignedIn(),
			gen:      gen,
			quiet:    quiet,
		}
	}
}

// applyLocalState updates the model from a state read. The cart is replaced
// only when its fingerprint differs from the one on screen and the read is
// not older than it.
func (m Model) applyLocalState(msg localStateMsg) Model {
	if fp, err := msg.cart.Fingerprint(); (err != nil || fp != m.fingerprint) && m.freshRead(msg) {
		m = m.setCart(msg.cart)
	}

	m.identity = msg.identity
	m.signedIn = msg.signedIn
	if !m.signedIn {
		m.whoami = ""
	}
	return m
}

// freshRead reports whether a state read may replace the cart on screen. A
// lower revision is either a read that raced one of our writes or a state
// file reset by another process; only the latter is trusted, and only when no
// write was pending or issued around the read.
func (m Model) freshRead(msg localStateMsg) bool {
	if msg.cart.Revision >= m.cart.Revision {
		return true
	}
	return msg.quiet && msg.gen == m.cartGen && m.inflight == 0
}
