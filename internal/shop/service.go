// Package shop orchestrates the client side of the storefront: the cart, the
// signed-in identity and calls to the API.
package shop

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/shopcart/internal/api"
	"github.com/hay-kot/shopcart/internal/core/account"
	"github.com/hay-kot/shopcart/internal/core/cart"
	"github.com/hay-kot/shopcart/internal/core/catalog"
	"github.com/hay-kot/shopcart/internal/core/session"
	"github.com/hay-kot/shopcart/internal/core/validate"
)

// FeaturedCount is the number of products shown as featured.
const FeaturedCount = 3

// MaxAddQuantity bounds how many units one add request may carry.
const MaxAddQuantity = 999

// CheckoutMessage is reported by the checkout placeholder.
const CheckoutMessage = "Checkout flow can be added (create order)."

var (
	// ErrCartEmpty is returned by Checkout when there is nothing to buy.
	ErrCartEmpty = errors.New("cart is empty")
	// ErrNoToken is returned when a successful login carried no token.
	ErrNoToken = errors.New("login response did not include a token")
	// ErrInvalidQuantity is returned by AddToCartN for counts outside
	// 1..MaxAddQuantity.
	ErrInvalidQuantity = fmt.Errorf("quantity must be between 1 and %d", MaxAddQuantity)
)

// CartStore persists the cart.
type CartStore interface {
	Load(ctx context.Context) (cart.Cart, error)
	LoadOrDefault(ctx context.Context) cart.Cart
	Save(ctx context.Context, c cart.Cart) (cart.Cart, error)
	Watch(ctx context.Context, after time.Time, timeout time.Duration) (cart.Cart, time.Time, error)
}

// Storefront is the remote API. *api.Client implements it.
type Storefront interface {
	Health(ctx context.Context) (api.Health, error)
	Seed(ctx context.Context) (api.SeedResult, error)
	Products(ctx context.Context, query string) ([]catalog.Product, error)
	Product(ctx context.Context, id string) (catalog.Product, error)
	Register(ctx context.Context, req api.RegisterRequest) (account.Summary, error)
	Login(ctx context.Context, req api.LoginRequest) (api.LoginResult, error)
	Profile(ctx context.Context) (api.ProfileClaims, error)
}

// Service coordinates cart mutations, identity changes and API calls.
// Mutations are persisted before listeners are notified.
type Service struct {
	carts    CartStore
	identity session.Holder
	api      Storefront
	log      zerolog.Logger

	mu        sync.Mutex
	listeners map[int]func(Event)
	nextID    int
}

// New creates a new Service.
func New(carts CartStore, identity session.Holder, storefront Storefront, log zerolog.Logger) *Service {
	return &Service{
		carts:     carts,
		identity:  identity,
		api:       storefront,
		log:       log.With().Str("component", "shop").Logger(),
		listeners: make(map[int]func(Event)),
	}
}

// Cart returns the persisted cart. Unreadable state reads as an empty cart.
func (s *Service) Cart(ctx context.Context) cart.Cart {
	return s.carts.LoadOrDefault(ctx)
}

// BadgeCount returns the total quantity in the persisted cart.
func (s *Service) BadgeCount(ctx context.Context) int {
	return s.Cart(ctx).ItemCount()
}

// AddToCart fetches the product and adds one unit of it to the cart.
func (s *Service) AddToCart(ctx context.Context, productID string) (cart.Cart, error) {
	return s.AddToCartN(ctx, productID, 1)
}

// AddToCartN fetches the product and adds n units of it in one persisted
// write.
func (s *Service) AddToCartN(ctx context.Context, productID string, n int) (cart.Cart, error) {
	if n < 1 || n > MaxAddQuantity {
		return cart.Cart{}, fmt.Errorf("%w, got %d", ErrInvalidQuantity, n)
	}
	if err := validate.ProductID(productID); err != nil {
		return cart.Cart{}, err
	}

	p, err := s.api.Product(ctx, strings.TrimSpace(productID))
	if err != nil {
		return cart.Cart{}, fmt.Errorf("fetch product: %w", err)
	}

	snap := p.Snapshot()
	return s.mutate(ctx, "add", snap.ID, func(c cart.Cart) cart.Cart {
		return c.Add(snap).ChangeQuantity(snap.ID, n-1)
	})
}

// AddSnapshot adds one unit of an already fetched product.
func (s *Service) AddSnapshot(ctx context.Context, p cart.Snapshot) (cart.Cart, error) {
	return s.mutate(ctx, "add", p.ID, func(c cart.Cart) cart.Cart {
		return c.Add(p)
	})
}

// ChangeQuantity adjusts a line by delta. Lines reaching zero are removed.
func (s *Service) ChangeQuantity(ctx context.Context, productID string, delta int) (cart.Cart, error) {
	return s.mutate(ctx, "change_quantity", productID, func(c cart.Cart) cart.Cart {
		return c.ChangeQuantity(productID, delta)
	})
}

// RemoveFromCart deletes a line. Unknown IDs are a no-op.
func (s *Service) RemoveFromCart(ctx context.Context, productID string) (cart.Cart, error) {
	return s.mutate(ctx, "remove", productID, func(c cart.Cart) cart.Cart {
		return c.Remove(productID)
	})
}

// ClearCart empties the cart.
func (s *Service) ClearCart(ctx context.Context) (cart.Cart, error) {
	return s.mutate(ctx, "clear", "", func(c cart.Cart) cart.Cart {
		return c.Clear()
	})
}

// Checkout is a placeholder for order creation. It leaves the cart untouched.
func (s *Service) Checkout(ctx context.Context) (string, error) {
	if s.Cart(ctx).IsEmpty() {
		return "", ErrCartEmpty
	}
	return CheckoutMessage, nil
}

// WatchCart blocks until the persisted cart changes after the given time.
func (s *Service) WatchCart(ctx context.Context, after time.Time, timeout time.Duration) (cart.Cart, time.Time, error) {
	return s.carts.Watch(ctx, after, timeout)
}

func (s *Service) mutate(ctx context.Context, op, productID string, fn func(cart.Cart) cart.Cart) (cart.Cart, error) {
	s.mu.Lock()
	current := s.carts.LoadOrDefault(ctx)
	saved, err := s.carts.Save(ctx, fn(current))
	s.mu.Unlock()

	if err != nil {
		return current, fmt.Errorf("save cart: %w", err)
	}

	s.log.Debug().
		Str("op", op).
		Str("product_id", productID).
		Int("items", saved.ItemCount()).
		Int64("revision", saved.Revision).
		Msg("cart updated")

	s.publish(Event{Kind: EventCartChanged, Cart: saved})
	return saved, nil
}

// Products lists the whole catalog, newest first.
func (s *Service) Products(ctx context.Context) ([]catalog.Product, error) {
	return s.api.Products(ctx, "")
}

// Featured returns the first FeaturedCount products of the catalog.
func (s *Service) Featured(ctx context.Context) ([]catalog.Product, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}
	return products[:min(FeaturedCount, len(products))], nil
}

// Search returns products whose name contains term. A blank term matches
// nothing and makes no request.
func (s *Service) Search(ctx context.Context, term string) ([]catalog.Product, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []catalog.Product{}, nil
	}

	products, err := s.api.Products(ctx, term)
	if err != nil {
		return nil, withFallback(err, SearchFailed)
	}
	return products, nil
}

// Product fetches a single product.
func (s *Service) Product(ctx context.Context, id string) (catalog.Product, error) {
	if err := validate.ProductID(id); err != nil {
		return catalog.Product{}, err
	}
	return s.api.Product(ctx, strings.TrimSpace(id))
}

// Seed asks the server to insert its demo catalog.
func (s *Service) Seed(ctx context.Context) (api.SeedResult, error) {
	return s.api.Seed(ctx)
}

// Ping checks that the API is reachable.
func (s *Service) Ping(ctx context.Context) (api.Health, error) {
	return s.api.Health(ctx)
}
