package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hay-kot/shopcart/internal/core/cart"
	"github.com/hay-kot/shopcart/internal/core/session"
)

// CartLoader is the strict cart read: a corrupt payload is an error.
type CartLoader interface {
	Load(ctx context.Context) (cart.Cart, error)
}

// IdentityReader reads the held identity.
type IdentityReader interface {
	Identity(ctx context.Context) (session.Identity, bool)
}

// StateCheck verifies the client state file parses.
type StateCheck struct {
	path     string
	carts    CartLoader
	identity IdentityReader
}

// NewStateCheck creates a state file check.
func NewStateCheck(path string, carts CartLoader, identity IdentityReader) *StateCheck {
	return &StateCheck{path: path, carts: carts, identity: identity}
}

func (c *StateCheck) Name() string {
	return "State File"
}

func (c *StateCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if _, err := os.Stat(c.path); errors.Is(err, os.ErrNotExist) {
		result.Items = append(result.Items, CheckItem{
			Label:  "File",
			Status: StatusPass,
			Detail: "no state yet",
		})
		return result
	}

	loaded, err := c.carts.Load(ctx)
	switch {
	case errors.Is(err, cart.ErrCorrupt):
		result.Items = append(result.Items, CheckItem{
			Label:  "Cart",
			Status: StatusFail,
			Detail: err.Error() + " (the cart reads as empty; 'shopcart cart clear' rewrites it)",
		})
	case err != nil:
		result.Items = append(result.Items, CheckItem{Label: "Cart", Status: StatusFail, Detail: err.Error()})
	default:
		result.Items = append(result.Items, CheckItem{
			Label:  "Cart",
			Status: StatusPass,
			Detail: fmt.Sprintf("%d items, %s", loaded.ItemCount(), loaded.Subtotal()),
		})
	}

	ident, ok := c.identity.Identity(ctx)
	switch {
	case !ok:
		result.Items = append(result.Items, CheckItem{Label: "Identity", Status: StatusPass, Detail: "signed out"})
	case !ident.SignedIn():
		result.Items = append(result.Items, CheckItem{
			Label:  "Identity",
			Status: StatusWarn,
			Detail: "token without a cached profile",
		})
	default:
		result.Items = append(result.Items, CheckItem{Label: "Identity", Status: StatusPass, Detail: ident.Profile.Email})
	}

	return result
}
