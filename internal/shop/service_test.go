package shop

import (
	"context"
	"math"
	"net/http"
	"strings"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/shopcart/internal/api"
	"github.com/hay-kot/shopcart/internal/core/account"
	"github.com/hay-kot/shopcart/internal/core/cart"
	"github.com/hay-kot/shopcart/internal/core/catalog"
	"github.com/hay-kot/shopcart/internal/core/kv"
	"github.com/hay-kot/shopcart/internal/gateway"
	"github.com/hay-kot/shopcart/internal/store/jsonfile"
)

// fakeStorefront serves a fixed catalog and one account.
type fakeStorefront struct {
	products     []catalog.Product
	productCalls int
	listQueries  []string
	loginToken   string
	profileErr   error
}

func (f *fakeStorefront) Health(context.Context) (api.Health, error) {
	return api.Health{OK: true, Service: "test"}, nil
}

func (f *fakeStorefront) Seed(context.Context) (api.SeedResult, error) {
	return api.SeedResult{Message: "Seeded", Count: len(f.products)}, nil
}

func (f *fakeStorefront) Products(_ context.Context, query string) ([]catalog.Product, error) {
	f.listQueries = append(f.listQueries, query)
	var out []catalog.Product
	for _, p := range f.products {
		if catalog.MatchesQuery(p, query) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStorefront) Product(_ context.Context, id string) (catalog.Product, error) {
	f.productCalls++
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return catalog.Product{}, &gateway.RequestFailed{Status: http.StatusNotFound, Message: "Product not found"}
}

func (f *fakeStorefront) Register(_ context.Context, req api.RegisterRequest) (account.Summary, error) {
	if req.Email == "taken@x.com" {
		return account.Summary{}, &gateway.RequestFailed{Status: http.StatusConflict, Message: "Email already registered"}
	}
	return account.Summary{ID: "u1", Name: req.Name, Email: req.Email}, nil
}

func (f *fakeStorefront) Login(_ context.Context, req api.LoginRequest) (api.LoginResult, error) {
	if req.Password != "secret" {
		return api.LoginResult{}, &gateway.RequestFailed{Status: http.StatusUnauthorized, Message: "Invalid credentials"}
	}
	return api.LoginResult{
		Token: f.loginToken,
		User:  account.Summary{ID: "u1", Name: "Ada Lovelace", Email: req.Email},
	}, nil
}

func (f *fakeStorefront) Profile(context.Context) (api.ProfileClaims, error) {
	if f.profileErr != nil {
		return api.ProfileClaims{}, f.profileErr
	}
	return api.ProfileClaims{ID: "u1", Name: "Ada Lovelace"}, nil
}

func newTestService(t *testing.T) (*Service, *fakeStorefront, *jsonfile.IdentityStore) {
	t.Helper()

	store := kv.NewMemory()
	identity := jsonfile.NewIdentityStore(store, zerolog.Nop())
	front := &fakeStorefront{
		loginToken: "tok",
		products: []catalog.Product{
			{ID: "echo", Name: "Amazon Echo Dot 3rd Generation", Price: 2999},
			{ID: "mouse", Name: "Logitech G-Series Gaming Mouse", Price: 4999},
			{ID: "ps4", Name: "Sony Playstation 4 Pro White Version", Price: 39999},
			{ID: "canon", Name: "Canon EOS 80D DSLR Camera", Price: 92999},
		},
	}

	svc := New(jsonfile.NewCartStore(store, zerolog.Nop()), identity, front, zerolog.Nop())
	return svc, front, identity
}

func TestService_AddToCartFetchesSnapshot(t *testing.T) {
	svc, front, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.AddToCart(ctx, "echo")
	require.NoError(t, err)
	c, err = svc.AddToCart(ctx, "echo")
	require.NoError(t, err)

	assert.Equal(t, 2, front.productCalls)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, cart.Money(2999), c.Items[0].UnitPrice)
	assert.Equal(t, 2, svc.BadgeCount(ctx))
}

func TestService_AddToCartNIsOneWrite(t *testing.T) {
	svc, front, _ := newTestService(t)
	ctx := context.Background()

	var writes int
	svc.Subscribe(func(Event) { writes++ })

	c, err := svc.AddToCartN(ctx, "echo", 3)
	require.NoError(t, err)

	assert.Equal(t, 1, writes)
	assert.Equal(t, 1, front.productCalls)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.Equal(t, 3, svc.BadgeCount(ctx))
}

func TestService_AddToCartNRejectsBadCounts(t *testing.T) {
	svc, front, _ := newTestService(t)
	ctx := context.Background()

	for _, n := range []int{0, -1, MaxAddQuantity + 1, math.MaxInt} {
		_, err := svc.AddToCartN(ctx, "echo", n)
		assert.ErrorIs(t, err, ErrInvalidQuantity, "n=%d", n)
	}

	assert.Zero(t, front.productCalls)
	assert.True(t, svc.Cart(ctx).IsEmpty())
}

func TestService_AddToCartUnknownProduct(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "nope")
	assert.ErrorIs(t, err, gateway.ErrNotFound)
	assert.True(t, svc.Cart(ctx).IsEmpty())

	_, err = svc.AddToCart(ctx, " ")
	assert.Error(t, err)
}

func TestService_QuantityAndRemove(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "echo")
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, "mouse")
	require.NoError(t, err)

	c, err := svc.ChangeQuantity(ctx, "mouse", 2)
	require.NoError(t, err)
	assert.Equal(t, 4, c.ItemCount())
	assert.Equal(t, cart.Money(2999+3*4999), c.Subtotal())

	c, err = svc.ChangeQuantity(ctx, "echo", -1)
	require.NoError(t, err)
	_, found := c.Find("echo")
	assert.False(t, found)

	c, err = svc.RemoveFromCart(ctx, "unknown")
	require.NoError(t, err)
	assert.Equal(t, 3, c.ItemCount())

	c, err = svc.ClearCart(ctx)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.Zero(t, svc.BadgeCount(ctx))
}

func TestService_Checkout(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Checkout(ctx)
	assert.ErrorIs(t, err, ErrCartEmpty)

	_, err = svc.AddToCart(ctx, "ps4")
	require.NoError(t, err)

	msg, err := svc.Checkout(ctx)
	require.NoError(t, err)
	assert.Equal(t, CheckoutMessage, msg)
	assert.Equal(t, 1, svc.BadgeCount(ctx))
}

func TestService_SubscribersSeePersistedCart(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	var events []Event
	unsubscribe := svc.Subscribe(func(e Event) {
		// The store must already hold the change when listeners run.
		assert.Equal(t, e.Cart.ItemCount(), svc.BadgeCount(ctx))
		events = append(events, e)
	})

	_, err := svc.AddToCart(ctx, "echo")
	require.NoError(t, err)
	_, err = svc.ChangeQuantity(ctx, "echo", 1)
	require.NoError(t, err)

	unsubscribe()
	_, err = svc.ClearCart(ctx)
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, EventCartChanged, events[0].Kind)
	assert.Equal(t, 2, events[1].Cart.ItemCount())
}

func TestService_SearchAndFeatured(t *testing.T) {
	svc, front, _ := newTestService(t)
	ctx := context.Background()

	found, err := svc.Search(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Empty(t, front.listQueries, "blank search must not reach the API")

	found, err = svc.Search(ctx, " CANON ")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, []string{"CANON"}, front.listQueries)

	featured, err := svc.Featured(ctx)
	require.NoError(t, err)
	require.Len(t, featured, FeaturedCount)
	assert.Equal(t, "echo", featured[0].ID)
}

func TestService_Register(t *testing.T) {
	svc, _, identity := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, " Ada ", "ada@x.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)

	_, ok := identity.Identity(ctx)
	assert.False(t, ok, "registering must not sign in")

	_, err = svc.Register(ctx, "Ada", "taken@x.com", "secret")
	assert.ErrorIs(t, err, gateway.ErrConflict)

	_, err = svc.Register(ctx, "", "bad", "")
	var fieldErrs criterio.FieldErrors
	assert.ErrorAs(t, err, &fieldErrs)
}

func TestService_LoginLogout(t *testing.T) {
	svc, _, identity := newTestService(t)
	ctx := context.Background()

	var kinds []EventKind
	svc.Subscribe(func(e Event) { kinds = append(kinds, e.Kind) })

	_, err := svc.Login(ctx, "ada@x.com", "wrong")
	assert.ErrorIs(t, err, gateway.ErrUnauthorized)
	assert.Empty(t, identity.Token(ctx))

	profile, err := svc.Login(ctx, "ada@x.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.FirstName())

	ident, ok := svc.Identity(ctx)
	require.True(t, ok)
	assert.Equal(t, "tok", ident.Token)
	assert.Equal(t, "👤 Ada", ident.Greeting())

	require.NoError(t, svc.Logout(ctx))
	_, ok = svc.Identity(ctx)
	assert.False(t, ok)

	assert.Equal(t, []EventKind{EventIdentityChanged, EventIdentityChanged}, kinds)
}

func TestService_LoginWithoutTokenStoresNothing(t *testing.T) {
	svc, front, identity := newTestService(t)
	ctx := context.Background()
	front.loginToken = " "

	_, err := svc.Login(ctx, "ada@x.com", "secret")
	assert.ErrorIs(t, err, ErrNoToken)

	_, ok := identity.Identity(ctx)
	assert.False(t, ok)
}

func TestService_WhoAmIRejectedTokenKeepsIdentity(t *testing.T) {
	svc, front, identity := newTestService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "ada@x.com", "secret")
	require.NoError(t, err)

	front.profileErr = &gateway.RequestFailed{Status: http.StatusUnauthorized, Message: "Token invalid or expired"}

	_, err = svc.WhoAmI(ctx)
	require.ErrorIs(t, err, gateway.ErrUnauthorized)
	assert.True(t, strings.HasPrefix(err.Error(), "Token invalid or expired"))
	assert.Contains(t, err.Error(), "shopcart login")
	assert.Equal(t, "tok", identity.Token(ctx))
}
