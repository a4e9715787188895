package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// ActionType identifies the kind of action a keybinding triggers.
type ActionType int

const (
	ActionTypeNone ActionType = iota
	ActionTypeAddToCart
	ActionTypeDetail
	ActionTypeSearch
	ActionTypeReload
	ActionTypeIncrement
	ActionTypeDecrement
	ActionTypeRemove
	ActionTypeClearCart
	ActionTypeCheckout
	ActionTypeSignIn
	ActionTypeRegister
	ActionTypeLogout
	ActionTypeWhoAmI
	ActionTypeHeroPrev
	ActionTypeHeroNext
)

// Action represents a resolved keybinding ready for execution.
type Action struct {
	Type      ActionType
	Key       string
	Help      string
	Confirm   string // Non-empty if confirmation required
	ProductID string
}

// NeedsConfirm returns true if the action requires user confirmation.
func (a Action) NeedsConfirm() bool {
	return a.Confirm != ""
}

// ResolveState is the part of the model a binding's availability depends on.
type ResolveState struct {
	SignedIn  bool
	CartEmpty bool
	// Selected is the product under the cursor, or "".
	Selected string
}

type binding struct {
	keys    []string
	help    string
	action  ActionType
	confirm string
	// enabled reports whether the binding applies in the given state.
	enabled func(ResolveState) bool
}

func always(ResolveState) bool { return true }

func hasSelection(s ResolveState) bool { return s.Selected != "" }

// KeybindingHandler resolves key presses to actions for the active tab.
type KeybindingHandler struct {
	bindings map[ViewType][]binding
}

// NewKeybindingHandler creates the storefront key map.
func NewKeybindingHandler() *KeybindingHandler {
	return &KeybindingHandler{
		bindings: map[ViewType][]binding{
			ViewProducts: {
				{keys: []string{"a"}, help: "add to cart", action: ActionTypeAddToCart, enabled: hasSelection},
				{keys: []string{"enter"}, help: "details", action: ActionTypeDetail, enabled: hasSelection},
				{keys: []string{"/"}, help: "search", action: ActionTypeSearch, enabled: always},
				{keys: []string{"r"}, help: "reload", action: ActionTypeReload, enabled: always},
				{keys: []string{"["}, help: "prev featured", action: ActionTypeHeroPrev, enabled: always},
				{keys: []string{"]"}, help: "next featured", action: ActionTypeHeroNext, enabled: always},
			},
			ViewCart: {
				{keys: []string{"+", "="}, help: "more", action: ActionTypeIncrement, enabled: hasSelection},
				{keys: []string{"-"}, help: "less", action: ActionTypeDecrement, enabled: hasSelection},
				{keys: []string{"x", "delete"}, help: "remove", action: ActionTypeRemove, enabled: hasSelection},
				{
					keys: []string{"c"}, help: "clear", action: ActionTypeClearCart,
					confirm: "Remove every item from the cart?",
					enabled: func(s ResolveState) bool { return !s.CartEmpty },
				},
				{
					keys: []string{"o"}, help: "checkout", action: ActionTypeCheckout,
					enabled: func(s ResolveState) bool { return !s.CartEmpty },
				},
			},
			ViewAccount: {
				{
					keys: []string{"l"}, help: "sign in", action: ActionTypeSignIn,
					enabled: func(s ResolveState) bool { return !s.SignedIn },
				},
				{
					keys: []string{"n"}, help: "register", action: ActionTypeRegister,
					enabled: func(s ResolveState) bool { return !s.SignedIn },
				},
				{
					keys: []string{"w"}, help: "who am i", action: ActionTypeWhoAmI,
					enabled: func(s ResolveState) bool { return s.SignedIn },
				},
				{
					keys: []string{"L"}, help: "sign out", action: ActionTypeLogout,
					confirm: "Sign out of this device?",
					enabled: func(s ResolveState) bool { return s.SignedIn },
				},
			},
		},
	}
}

// Resolve maps a key press on the given tab to an action. Bindings that do
// not apply in state resolve to nothing.
func (h *KeybindingHandler) Resolve(view ViewType, keyStr string, state ResolveState) (Action, bool) {
	for _, b := range h.bindings[view] {
		if !containsKey(b.keys, keyStr) {
			continue
		}
		if !b.enabled(state) {
			return Action{}, false
		}
		return Action{
			Type:      b.action,
			Key:       keyStr,
			Help:      b.help,
			Confirm:   b.confirm,
			ProductID: state.Selected,
		}, true
	}
	return Action{}, false
}

// KeyBindings returns the bindings available on a tab in the given state, for
// the help line.
func (h *KeybindingHandler) KeyBindings(view ViewType, state ResolveState) []key.Binding {
	out := make([]key.Binding, 0, len(h.bindings[view]))
	for _, b := range h.bindings[view] {
		if !b.enabled(state) {
			continue
		}
		out = append(out, key.NewBinding(
			key.WithKeys(b.keys...),
			key.WithHelp(b.keys[0], b.help),
		))
	}
	return out
}

// HelpString renders the bindings for a tab plus the global keys.
func (h *KeybindingHandler) HelpString(view ViewType, state ResolveState) string {
	bindings := h.KeyBindings(view, state)
	entries := make([]string, 0, len(bindings)+2)
	for _, b := range bindings {
		entries = append(entries, b.Help().Key+" "+b.Help().Desc)
	}
	entries = append(entries, "tab switch", "q quit")
	return strings.Join(entries, " "+iconDot+" ")
}

func containsKey(keys []string, k string) bool {
	for _, candidate := range keys {
		if candidate == k {
			return true
		}
	}
	return false
}
