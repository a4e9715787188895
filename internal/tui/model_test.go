package tui

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hay-kot/shopcart/internal/api"
	"github.com/hay-kot/shopcart/internal/core/cart"
	"github.com/hay-kot/shopcart/internal/core/config"
	"github.com/hay-kot/shopcart/internal/core/kv"
	"github.com/hay-kot/shopcart/internal/docstore"
	"github.com/hay-kot/shopcart/internal/gateway"
	"github.com/hay-kot/shopcart/internal/server"
	"github.com/hay-kot/shopcart/internal/shop"
	"github.com/hay-kot/shopcart/internal/store/jsonfile"
)

// newTestService starts an in-process API server over the memory store and
// returns a service backed by in-memory client state.
func newTestService(t *testing.T, seed bool) *shop.Service {
	t.Helper()

	store := docstore.NewMemory()
	srv, err := server.New(server.Options{
		JWTSecret:  "tui-test-secret-tui-test-secret!!",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
		LoginRate:  time.Millisecond,
		LoginBurst: 100,
	}, store, store, zerolog.Nop())
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	state := kv.NewMemory()
	identity := jsonfile.NewIdentityStore(state, zerolog.Nop())
	carts := jsonfile.NewCartStore(state, zerolog.Nop())

	gw, err := gateway.New(gateway.Config{BaseURL: ts.URL}, identity, zerolog.Nop())
	require.NoError(t, err)

	svc := shop.New(carts, identity, api.New(gw), zerolog.Nop())
	if seed {
		_, err := svc.Seed(context.Background())
		require.NoError(t, err)
	}
	return svc
}

func newTestModel(t *testing.T, svc *shop.Service) Model {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	m := New(svc, &cfg)
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

// update applies msg and returns the resulting model.
func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

// press applies a key and runs the command it returns, feeding the result
// back into the model.
func press(t *testing.T, m Model, k string) Model {
	t.Helper()
	next, cmd := m.Update(keyMsg(k))
	m = next.(Model)
	if cmd == nil {
		return m
	}
	return update(t, m, cmd())
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func loaded(t *testing.T, m Model) Model {
	t.Helper()
	m = update(t, m, m.loadProducts("", false)())
	return update(t, m, m.loadLocalState()())
}

func TestModel_LoadsCatalogAndFeatured(t *testing.T) {
	m := loaded(t, newTestModel(t, newTestService(t, true)))

	assert.False(t, m.loading)
	assert.Len(t, m.list.Items(), 6)
	require.Len(t, m.featured, shop.FeaturedCount)

	view := m.View()
	assert.Contains(t, view, "AMAZON ECHO DOT 3RD GENERATION")
	assert.Contains(t, view, "Sign In")

	m = press(t, m, "]")
	assert.Equal(t, 1, m.heroIndex)
	m = press(t, m, "[")
	m = press(t, m, "[")
	assert.Equal(t, 2, m.heroIndex, "hero wraps around")
}

func TestModel_EmptyCatalogHint(t *testing.T) {
	m := loaded(t, newTestModel(t, newTestService(t, false)))

	assert.Contains(t, m.View(), "shopcart seed")
}

func TestModel_AddToCartUpdatesBadge(t *testing.T) {
	m := loaded(t, newTestModel(t, newTestService(t, true)))

	m = press(t, m, "a")
	m = press(t, m, "a")

	assert.Equal(t, 2, m.cart.ItemCount())
	assert.Equal(t, "Added Amazon Echo Dot 3rd Generation", m.status)

	item, ok := m.list.SelectedItem().(ProductItem)
	require.True(t, ok)
	assert.Equal(t, 2, item.InCart)

	m = press(t, m, "tab")
	assert.Equal(t, ViewCart, m.activeView)

	view := m.View()
	assert.Contains(t, view, "Items: 2")
	assert.Contains(t, view, "$59.98")
}

func TestModel_CartEditing(t *testing.T) {
	svc := newTestService(t, true)
	m := loaded(t, newTestModel(t, svc))

	m = press(t, m, "a")
	m = press(t, m, "2")
	require.Equal(t, ViewCart, m.activeView)

	m = press(t, m, "+")
	assert.Equal(t, 2, m.cart.Items[0].Quantity)

	m = press(t, m, "-")
	m = press(t, m, "-")
	assert.True(t, m.cart.IsEmpty(), "decrement below one removes the line")
	assert.Contains(t, m.View(), "Your cart is empty")

	m = press(t, m, "1")
	m = press(t, m, "a")
	m = press(t, m, "2")

	m = press(t, m, "c")
	require.Equal(t, stateConfirming, m.state)
	m = press(t, m, "enter")
	assert.Equal(t, stateNormal, m.state)
	assert.True(t, m.cart.IsEmpty())
	assert.True(t, svc.Cart(context.Background()).IsEmpty())
}

func TestModel_CartResultsOutOfOrderKeepNewest(t *testing.T) {
	svc := newTestService(t, true)
	m := loaded(t, newTestModel(t, svc))

	m = press(t, m, "a")
	m = press(t, m, "2")

	next, incCmd := m.Update(keyMsg("+"))
	m = next.(Model)
	next, decCmd := m.Update(keyMsg("-"))
	m = next.(Model)
	require.NotNil(t, incCmd)
	require.NotNil(t, decCmd)

	incMsg := incCmd()
	decMsg := decCmd()

	m = update(t, m, decMsg)
	m = update(t, m, incMsg)

	persisted := svc.Cart(context.Background())
	assert.Equal(t, persisted.Revision, m.cart.Revision)
	assert.Equal(t, 1, persisted.ItemCount())
	assert.Equal(t, persisted.ItemCount(), m.cart.ItemCount(), "badge matches the persisted cart")
	assert.Zero(t, m.inflight)
}

func TestModel_StaleReadDoesNotOverwriteWrite(t *testing.T) {
	svc := newTestService(t, true)
	m := loaded(t, newTestModel(t, svc))

	m = press(t, m, "a")
	stale := m.loadLocalState()()

	m = press(t, m, "a")
	require.Equal(t, 2, m.cart.ItemCount())

	m = update(t, m, stale)
	assert.Equal(t, 2, m.cart.ItemCount())
	assert.Equal(t, svc.Cart(context.Background()).Revision, m.cart.Revision)
}

func TestModel_ReadAfterExternalResetApplies(t *testing.T) {
	m := loaded(t, newTestModel(t, newTestService(t, true)))

	m = press(t, m, "a")
	require.Equal(t, 1, m.cart.ItemCount())

	m = update(t, m, localStateMsg{cart: cart.Empty(), gen: m.cartGen, quiet: true})
	assert.True(t, m.cart.IsEmpty(), "lower revision with no writes around the read is trusted")
}

func TestModel_ConfirmCancelled(t *testing.T) {
	m := loaded(t, newTestModel(t, newTestService(t, true)))

	m = press(t, m, "a")
	m = press(t, m, "2")
	m = press(t, m, "c")
	m = press(t, m, "esc")

	assert.Equal(t, stateNormal, m.state)
	assert.Equal(t, 1, m.cart.ItemCount())
}

func TestModel_Checkout(t *testing.T) {
	m := loaded(t, newTestModel(t, newTestService(t, true)))

	m = press(t, m, "2")
	m = press(t, m, "o")
	require.ErrorIs(t, m.err, shop.ErrCartEmpty)

	m = press(t, m, "1")
	m = press(t, m, "a")
	m = press(t, m, "2")
	m = press(t, m, "o")
	require.NoError(t, m.err)
	assert.Equal(t, shop.CheckoutMessage, m.status)
	assert.Equal(t, 1, m.cart.ItemCount(), "checkout leaves the cart untouched")
}

func TestModel_Search(t *testing.T) {
	m := loaded(t, newTestModel(t, newTestService(t, true)))

	m = press(t, m, "/")
	require.Equal(t, stateSearching, m.state)
	m = press(t, m, "canon")
	assert.Equal(t, "canon", m.search.Value())

	m = press(t, m, "enter")
	assert.Equal(t, stateNormal, m.state)
	assert.True(t, m.searched)
	require.Len(t, m.list.Items(), 1)
	assert.Contains(t, m.View(), `Results for "canon"`)

	m = press(t, m, "/")
	m.search.SetValue("xbox")
	m = press(t, m, "enter")
	assert.Empty(t, m.list.Items())
	assert.Contains(t, m.View(), "No Products Found")

	m = press(t, m, "esc")
	assert.False(t, m.searched)
	assert.Len(t, m.list.Items(), 6)
}

func TestModel_BlankSearchShowsNoProducts(t *testing.T) {
	m := loaded(t, newTestModel(t, newTestService(t, true)))

	m = press(t, m, "/")
	m = press(t, m, "enter")

	assert.Empty(t, m.list.Items())
	assert.Contains(t, m.View(), "No Products Found")
}

func TestModel_ProductDetail(t *testing.T) {
	m := loaded(t, newTestModel(t, newTestService(t, true)))

	m = press(t, m, "enter")
	require.Equal(t, stateDetail, m.state)
	assert.Equal(t, "Amazon Echo Dot 3rd Generation", m.detail.Product().Name)

	m = press(t, m, "a")
	assert.Equal(t, 1, m.cart.ItemCount())
	assert.Equal(t, stateDetail, m.state)

	m = press(t, m, "esc")
	assert.Equal(t, stateNormal, m.state)

	m = update(t, m, m.loadProductDetail("missing")())
	assert.Equal(t, stateNormal, m.state)
	assert.Contains(t, m.renderStatusLine(), "Product not found")
}

func TestModel_RefreshPicksUpExternalChanges(t *testing.T) {
	svc := newTestService(t, true)
	m := loaded(t, newTestModel(t, svc))
	require.True(t, m.cart.IsEmpty())

	p, err := svc.Products(context.Background())
	require.NoError(t, err)
	_, err = svc.AddSnapshot(context.Background(), p[1].Snapshot())
	require.NoError(t, err)

	m = update(t, m, m.loadLocalState()())
	assert.Equal(t, 1, m.cart.ItemCount())

	fp := m.fingerprint
	m = update(t, m, m.loadLocalState()())
	assert.Equal(t, fp, m.fingerprint)
}

func TestModel_RegisterAndSignIn(t *testing.T) {
	m := loaded(t, newTestModel(t, newTestService(t, true)))
	m = press(t, m, "3")

	m = update(t, m, m.submitForm(AccountFormResult{
		Kind: FormRegister, Name: "Ada Lovelace", Email: "ada@example.com", Password: "hunter22",
	})())
	assert.Equal(t, "Account created. You can sign in now.", m.status)
	assert.False(t, m.signedIn, "registering does not sign in")

	m = update(t, m, m.submitForm(AccountFormResult{
		Kind: FormSignIn, Email: "ada@example.com", Password: "wrong",
	})())
	require.Error(t, m.err)
	assert.False(t, m.signedIn)

	next, cmd := m.Update(m.submitForm(AccountFormResult{
		Kind: FormSignIn, Email: "ada@example.com", Password: "hunter22",
	})())
	m = next.(Model)
	require.NotNil(t, cmd)
	m = update(t, m, cmd())

	assert.True(t, m.signedIn)
	assert.Equal(t, "Welcome, Ada", m.status)
	assert.Contains(t, m.View(), "👤 Ada")

	m = press(t, m, "w")
	require.NoError(t, m.err)
	assert.Contains(t, m.whoami, "ada@example.com")

	m = press(t, m, "L")
	require.Equal(t, stateConfirming, m.state)
	next, cmd = m.Update(keyMsg("enter"))
	m = next.(Model)
	m = update(t, m, cmd())
	require.Equal(t, "Signed out", m.status)
	m = update(t, m, m.loadLocalState()())
	assert.False(t, m.signedIn)
	assert.Contains(t, m.View(), "Sign In")
}

func TestModel_AccountFormOpensAndCancels(t *testing.T) {
	m := loaded(t, newTestModel(t, newTestService(t, true)))
	m = press(t, m, "3")

	next, _ := m.Update(keyMsg("n"))
	m = next.(Model)
	require.Equal(t, stateForm, m.state)
	require.NotNil(t, m.form)
	assert.Equal(t, FormRegister, m.form.Kind())

	m = update(t, m, keyMsg("esc"))
	assert.Equal(t, stateNormal, m.state)
	assert.Nil(t, m.form)
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t, newTestService(t, false))

	next, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.True(t, next.(Model).quitting)
	assert.Empty(t, next.(Model).View())
}
