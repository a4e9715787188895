package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/shopcart/internal/api"
	"github.com/hay-kot/shopcart/internal/core/cart"
	"github.com/hay-kot/shopcart/internal/core/catalog"
	"github.com/hay-kot/shopcart/internal/core/config"
	"github.com/hay-kot/shopcart/internal/core/session"
	"github.com/hay-kot/shopcart/internal/gateway"
	"github.com/hay-kot/shopcart/internal/shop"
	"github.com/hay-kot/shopcart/internal/styles"
)

// UIState represents the current state of the TUI.
type UIState int

const (
	stateNormal UIState = iota
	stateSearching
	stateForm
	stateDetail
	stateConfirming
)

// Key constants for event handling.
const (
	keyEnter = "enter"
	keyEsc   = "esc"
	keyCtrlC = "ctrl+c"
)

// requestTimeout bounds each API call issued from the TUI.
const requestTimeout = 15 * time.Second

// Layout rows outside the content area: banner (4 + padding), tab bar, hero
// line and the two footer lines.
const chromeHeight = 10

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	cfg        *config.Config
	service    *shop.Service
	handler    *KeybindingHandler
	state      UIState
	activeView ViewType
	width      int
	height     int
	quitting   bool

	// Products
	list      list.Model
	search    textinput.Model
	query     string
	searched  bool
	featured  []catalog.Product
	heroIndex int

	// Cart
	cart        cart.Cart
	fingerprint string
	cartCursor  int
	cartGen     int // cart writes dispatched
	inflight    int // cart writes not yet reported

	// Account
	identity session.Identity
	signedIn bool
	whoami   string

	// Overlays
	form    *AccountForm
	detail  ProductModal
	confirm confirmPrompt

	// Status line
	spinner spinner.Model
	loading bool
	status  string
	err     error
}

// productsLoadedMsg is sent when a catalog listing or search completes.
type productsLoadedMsg struct {
	products []catalog.Product
	query    string
	search   bool
	err      error
}

// productDetailMsg is sent when a product has been fetched for the modal.
type productDetailMsg struct {
	product catalog.Product
	err     error
}

// cartUpdatedMsg is sent after a cart mutation has been persisted.
type cartUpdatedMsg struct {
	cart   cart.Cart
	status string
	err    error
}

// authCompleteMsg is sent when a sign-in or registration completes.
type authCompleteMsg struct {
	kind    FormKind
	profile session.Profile
	email   string
	err     error
}

// logoutCompleteMsg is sent after the identity has been cleared.
type logoutCompleteMsg struct {
	err error
}

// whoAmIMsg carries the server's view of the held token.
type whoAmIMsg struct {
	claims api.ProfileClaims
	err    error
}

// checkoutMsg carries the checkout placeholder result.
type checkoutMsg struct {
	message string
	err     error
}

// New creates a new TUI model.
func New(service *shop.Service, cfg *config.Config) Model {
	l := list.New([]list.Item{}, NewProductDelegate(), 0, 0)
	l.SetShowStatusBar(false)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	search := textinput.New()
	search.Prompt = "Search: "
	search.Placeholder = "product name"
	search.PromptStyle = lipgloss.NewStyle().Foreground(styles.ColorBlue).Bold(true)
	search.CharLimit = 100

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return Model{
		cfg:        cfg,
		service:    service,
		handler:    NewKeybindingHandler(),
		state:      stateNormal,
		activeView: ViewProducts,
		list:       l,
		search:     search,
		cart:       cart.Empty(),
		spinner:    s,
		loading:    true,
	}
}

// Init loads the catalog and the persisted state and starts the refresh loop.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadProducts("", false), m.loadLocalState(), m.spinner.Tick}
	if cmd := m.scheduleRefresh(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// loadProducts lists the catalog, or searches it when search is set.
func (m Model) loadProducts(query string, search bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()

		var (
			products []catalog.Product
			err      error
		)
		if search {
			products, err = m.service.Search(ctx, query)
		} else {
			products, err = m.service.Products(ctx)
		}
		return productsLoadedMsg{products: products, query: query, search: search, err: err}
	}
}

func (m Model) loadProductDetail(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()

		p, err := m.service.Product(ctx, id)
		return productDetailMsg{product: p, err: err}
	}
}

// mutateCart runs a cart operation and reports the persisted result. Results
// may arrive out of order; see cartUpdatedMsg handling.
func (m *Model) mutateCart(status string, fn func(ctx context.Context) (cart.Cart, error)) tea.Cmd {
	m.cartGen++
	m.inflight++
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()

		c, err := fn(ctx)
		return cartUpdatedMsg{cart: c, status: status, err: err}
	}
}

func (m Model) submitForm(res AccountFormResult) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()

		if res.Kind == FormRegister {
			_, err := m.service.Register(ctx, res.Name, res.Email, res.Password)
			return authCompleteMsg{kind: res.Kind, email: res.Email, err: err}
		}

		profile, err := m.service.Login(ctx, res.Email, res.Password)
		return authCompleteMsg{kind: res.Kind, profile: profile, email: res.Email, err: err}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, max(msg.Height-chromeHeight, 1))
		return m, nil

	case productsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.query = msg.query
		m.searched = msg.search
		if !msg.search {
			m.featured = msg.products[:min(shop.FeaturedCount, len(msg.products))]
			m.heroIndex = 0
		}
		cmd := m.setProducts(msg.products)
		return m, cmd

	case productDetailMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		item, _ := m.cart.Find(msg.product.ID)
		m.detail = NewProductModal(msg.product, item.Quantity, m.width, m.height)
		m.state = stateDetail
		return m, nil

	case cartUpdatedMsg:
		m.loading = false
		m.inflight = max(m.inflight-1, 0)
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = msg.status
		// Each write bumps the revision, so a lower one was overtaken by a
		// later write already on screen.
		if msg.cart.Revision >= m.cart.Revision {
			m = m.setCart(msg.cart)
		}
		return m, nil

	case localStateMsg:
		m = m.applyLocalState(msg)
		return m, nil

	case refreshTickMsg:
		if m.state == stateForm {
			return m, m.scheduleRefresh()
		}
		return m, tea.Batch(m.loadLocalState(), m.scheduleRefresh())

	case authCompleteMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		if msg.kind == FormRegister {
			m.status = "Account created. You can sign in now."
			return m, nil
		}
		m.status = "Welcome, " + msg.profile.FirstName()
		return m, m.loadLocalState()

	case logoutCompleteMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.status = "Signed out"
		m.whoami = ""
		return m, m.loadLocalState()

	case whoAmIMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.whoami = fmt.Sprintf("Token belongs to %s <%s>", msg.claims.Name, msg.claims.Email)
		if msg.claims.ExpiresAt > 0 {
			m.whoami += ", expires " + time.Unix(msg.claims.ExpiresAt, 0).Format(time.DateTime)
		}
		return m, nil

	case checkoutMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = msg.message
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Route all other messages to the form while it is open
	if m.state == stateForm && m.form != nil {
		return m.updateForm(msg)
	}
	if m.state == stateSearching {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// setProducts replaces the list items, annotating each with its cart quantity.
func (m *Model) setProducts(products []catalog.Product) tea.Cmd {
	items := make([]list.Item, len(products))
	for i, p := range products {
		line, _ := m.cart.Find(p.ID)
		items[i] = ProductItem{Product: p, InCart: line.Quantity}
	}
	return m.list.SetItems(items)
}

// setCart shows c and refreshes the cart badges on the product list.
func (m Model) setCart(c cart.Cart) Model {
	m.cart = c
	m.fingerprint, _ = c.Fingerprint()
	m.cartCursor = min(m.cartCursor, max(len(c.Items)-1, 0))

	for i, it := range m.list.Items() {
		pi, ok := it.(ProductItem)
		if !ok {
			continue
		}
		line, _ := c.Find(pi.Product.ID)
		if line.Quantity != pi.InCart {
			pi.InCart = line.Quantity
			m.list.SetItem(i, pi)
		}
	}

	if m.state == stateDetail {
		line, _ := c.Find(m.detail.Product().ID)
		m.detail.SetInCart(line.Quantity)
	}
	return m
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()

	if keyStr == keyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state {
	case stateForm:
		return m.handleFormKey(msg, keyStr)
	case stateSearching:
		return m.handleSearchKey(msg, keyStr)
	case stateDetail:
		return m.handleDetailKey(keyStr)
	case stateConfirming:
		return m.handleConfirmKey(keyStr)
	}

	return m.handleNormalKey(msg, keyStr)
}

func (m Model) handleFormKey(msg tea.KeyMsg, keyStr string) (tea.Model, tea.Cmd) {
	if keyStr == keyEsc {
		m.state = stateNormal
		m.form = nil
		return m, nil
	}
	return m.updateForm(msg)
}

// updateForm routes a message to the form and submits it once completed.
func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.form.Form().Update(msg)
	f, ok := model.(*huh.Form)
	if !ok {
		return m, cmd
	}
	m.form.form = f

	switch f.State {
	case huh.StateCompleted:
		res := m.form.Result()
		m.state = stateNormal
		m.form = nil
		m.loading = true
		m.err = nil
		return m, m.submitForm(res)
	case huh.StateAborted:
		m.state = stateNormal
		m.form = nil
		return m, nil
	}
	return m, cmd
}

func (m Model) handleSearchKey(msg tea.KeyMsg, keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case keyEsc:
		m.state = stateNormal
		m.search.Blur()
		return m, nil
	case keyEnter:
		m.state = stateNormal
		m.search.Blur()
		m.loading = true
		return m, m.loadProducts(m.search.Value(), true)
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) handleDetailKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case keyEsc, keyEnter, "q":
		m.state = stateNormal
	case "up", "k":
		m.detail.ScrollUp()
	case "down", "j":
		m.detail.ScrollDown()
	case "a":
		p := m.detail.Product()
		cmd := m.mutateCart("Added "+p.Name, func(ctx context.Context) (cart.Cart, error) {
			return m.service.AddSnapshot(ctx, p.Snapshot())
		})
		return m, cmd
	}
	return m, nil
}

func (m Model) handleConfirmKey(keyStr string) (tea.Model, tea.Cmd) {
	done, ok := m.confirm.answer(keyStr)
	if !done {
		return m, nil
	}
	m.state = stateNormal
	action := m.confirm.action
	m.confirm = confirmPrompt{}
	if ok {
		return m.execute(action)
	}
	return m, nil
}

func (m Model) handleNormalKey(msg tea.KeyMsg, keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "tab":
		m.activeView = m.activeView.next()
		return m, nil
	case "shift+tab":
		m.activeView = m.activeView.prev()
		return m, nil
	case "1", "2", "3":
		m.activeView = viewOrder[int(keyStr[0]-'1')]
		return m, nil
	}

	if action, ok := m.handler.Resolve(m.activeView, keyStr, m.resolveState()); ok {
		m.status = ""
		if action.NeedsConfirm() {
			m.confirm = newConfirmPrompt(action)
			m.state = stateConfirming
			return m, nil
		}
		return m.execute(action)
	}

	switch m.activeView {
	case ViewProducts:
		if keyStr == keyEsc && m.searched {
			m.loading = true
			m.search.SetValue("")
			return m, m.loadProducts("", false)
		}
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	case ViewCart:
		switch keyStr {
		case "up", "k":
			m.cartCursor = max(m.cartCursor-1, 0)
		case "down", "j":
			m.cartCursor = min(m.cartCursor+1, max(len(m.cart.Items)-1, 0))
		case "o":
			m.err = shop.ErrCartEmpty
		}
	}
	return m, nil
}

// resolveState describes the model for keybinding resolution.
func (m Model) resolveState() ResolveState {
	return ResolveState{
		SignedIn:  m.signedIn,
		CartEmpty: m.cart.IsEmpty(),
		Selected:  m.selectedProductID(),
	}
}

func (m Model) selectedProductID() string {
	switch m.activeView {
	case ViewProducts:
		if pi, ok := m.list.SelectedItem().(ProductItem); ok {
			return pi.Product.ID
		}
	case ViewCart:
		if m.cartCursor < len(m.cart.Items) {
			return m.cart.Items[m.cartCursor].ProductID
		}
	}
	return ""
}

// execute runs a resolved action.
func (m Model) execute(action Action) (tea.Model, tea.Cmd) {
	id := action.ProductID

	switch action.Type {
	case ActionTypeAddToCart:
		pi, ok := m.list.SelectedItem().(ProductItem)
		if !ok {
			return m, nil
		}
		cmd := m.mutateCart("Added "+pi.Product.Name, func(ctx context.Context) (cart.Cart, error) {
			return m.service.AddSnapshot(ctx, pi.Product.Snapshot())
		})
		return m, cmd

	case ActionTypeDetail:
		m.loading = true
		return m, m.loadProductDetail(id)

	case ActionTypeSearch:
		m.state = stateSearching
		m.search.SetValue(m.query)
		m.search.CursorEnd()
		cmd := m.search.Focus()
		return m, cmd

	case ActionTypeReload:
		m.loading = true
		return m, m.loadProducts(m.query, m.searched)

	case ActionTypeHeroPrev, ActionTypeHeroNext:
		if n := len(m.featured); n > 0 {
			step := 1
			if action.Type == ActionTypeHeroPrev {
				step = -1
			}
			m.heroIndex = (m.heroIndex + step + n) % n
		}
		return m, nil

	case ActionTypeIncrement:
		cmd := m.mutateCart("", func(ctx context.Context) (cart.Cart, error) {
			return m.service.ChangeQuantity(ctx, id, 1)
		})
		return m, cmd

	case ActionTypeDecrement:
		cmd := m.mutateCart("", func(ctx context.Context) (cart.Cart, error) {
			return m.service.ChangeQuantity(ctx, id, -1)
		})
		return m, cmd

	case ActionTypeRemove:
		cmd := m.mutateCart("Removed item", func(ctx context.Context) (cart.Cart, error) {
			return m.service.RemoveFromCart(ctx, id)
		})
		return m, cmd

	case ActionTypeClearCart:
		cmd := m.mutateCart("Cart cleared", m.service.ClearCart)
		return m, cmd

	case ActionTypeCheckout:
		return m, func() tea.Msg {
			msg, err := m.service.Checkout(context.Background())
			return checkoutMsg{message: msg, err: err}
		}

	case ActionTypeSignIn, ActionTypeRegister:
		kind := FormSignIn
		if action.Type == ActionTypeRegister {
			kind = FormRegister
		}
		m.form = NewAccountForm(kind, "")
		m.state = stateForm
		return m, m.form.Form().Init()

	case ActionTypeLogout:
		m.loading = true
		return m, func() tea.Msg {
			return logoutCompleteMsg{err: m.service.Logout(context.Background())}
		}

	case ActionTypeWhoAmI:
		m.loading = true
		return m, func() tea.Msg {
			ctx, cancel := requestContext()
			defer cancel()
			claims, err := m.service.WhoAmI(ctx)
			return whoAmIMsg{claims: claims, err: err}
		}
	}

	return m, nil
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case stateForm:
		if m.form != nil {
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
				modalStyle.Render(m.form.View()+"\n"+modalHelpStyle.Render("enter next  esc cancel")))
		}
	case stateDetail:
		return m.detail.Overlay(m.width, m.height)
	case stateConfirming:
		return m.confirm.overlay(m.width, m.height)
	}

	var content string
	switch m.activeView {
	case ViewProducts:
		content = m.renderProducts()
	case ViewCart:
		content = m.renderCart()
	case ViewAccount:
		content = m.renderAccount()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		bannerStyle.Render(strings.TrimPrefix(styles.Banner, "\n")),
		m.renderTabBar(),
		"",
		content,
		"",
		m.renderStatusLine(),
		helpStyle.Render(m.handler.HelpString(m.activeView, m.resolveState())),
	)
}

// renderTabBar draws the tabs, the cart badge and the account greeting.
func (m Model) renderTabBar() string {
	tabs := make([]string, 0, len(viewOrder))
	for _, v := range viewOrder {
		label := v.String()
		style := tabStyle
		if v == m.activeView {
			style = activeTabStyle
		}
		tab := style.Render(label)
		if v == ViewCart {
			tab += badgeStyle.Render(fmt.Sprintf("%s %d", iconCart, m.cart.ItemCount()))
		}
		tabs = append(tabs, tab)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + accountStyle.Render(m.identity.Greeting())
}

func (m Model) renderStatusLine() string {
	switch {
	case m.loading:
		return " " + m.spinner.View() + mutedStyle.Render(" Loading...")
	case m.err != nil:
		return errorStyle.Render(errorText(m.err))
	case m.status != "":
		return statusStyle.Render(m.status)
	}
	return ""
}

func (m Model) renderHero() string {
	if len(m.featured) == 0 {
		return ""
	}

	dots := make([]string, len(m.featured))
	for i := range m.featured {
		if i == m.heroIndex {
			dots[i] = heroDotActiveStyle.Render(iconHeroDot)
		} else {
			dots[i] = heroDotStyle.Render(iconHeroDot)
		}
	}

	return heroStyle.Render(strings.ToUpper(m.featured[m.heroIndex].Name)) + "  " + strings.Join(dots, " ")
}

func (m Model) renderProducts() string {
	var header string
	switch {
	case m.state == stateSearching:
		header = " " + m.search.View()
	case m.searched:
		header = mutedStyle.Render(fmt.Sprintf(" Results for %q (esc to clear)", m.query))
	default:
		header = m.renderHero()
	}

	if len(m.list.Items()) == 0 {
		notice := "No products yet. Run 'shopcart seed' to load the demo catalog."
		if m.searched {
			notice = "No Products Found"
		}
		if m.loading {
			notice = ""
		}
		return lipgloss.JoinVertical(lipgloss.Left, header, "", noticeStyle.Render(notice))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, "", m.list.View())
}

func (m Model) renderCart() string {
	if m.cart.IsEmpty() {
		return noticeStyle.Render("Your cart is empty")
	}

	nameWidth := 0
	for _, item := range m.cart.Items {
		nameWidth = max(nameWidth, lipgloss.Width(item.Name))
	}
	nameWidth = min(nameWidth, 48)

	rows := make([]string, 0, len(m.cart.Items)+2)
	for i, item := range m.cart.Items {
		gutter := "  "
		nameStyle := normalStyle
		if i == m.cartCursor {
			gutter = selectedBorderStyle.Render(iconCursor) + " "
			nameStyle = selectedStyle
		}

		name := item.Name
		if lipgloss.Width(name) > nameWidth {
			name = string([]rune(name)[:nameWidth-1]) + "…"
		}

		rows = append(rows, fmt.Sprintf("%s%s  %s  %s  %s",
			gutter,
			nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, name)),
			mutedStyle.Render(fmt.Sprintf("%3d ×", item.Quantity)),
			fmt.Sprintf("%10s", item.UnitPrice),
			priceStyle.Render(fmt.Sprintf("%10s", item.Total())),
		))
	}

	rows = append(rows, "",
		fmt.Sprintf("  Items: %d   Subtotal: %s", m.cart.ItemCount(), priceStyle.Render(m.cart.Subtotal().String())),
	)
	return strings.Join(rows, "\n")
}

func (m Model) renderAccount() string {
	if !m.signedIn || m.identity.Profile == nil {
		return noticeStyle.Render("You are not signed in.")
	}

	p := m.identity.Profile
	lines := []string{
		fmt.Sprintf("  Signed in as %s %s", selectedStyle.Render(p.Name), mutedStyle.Render("<"+p.Email+">")),
	}
	if !m.identity.IssuedAt.IsZero() {
		lines = append(lines, mutedStyle.Render("  Since "+m.identity.IssuedAt.Local().Format(time.DateTime)))
	}
	if m.whoami != "" {
		lines = append(lines, "", "  "+m.whoami)
	}
	return strings.Join(lines, "\n")
}

// errorText returns the message to show for err.
func errorText(err error) string {
	return gateway.Message(err)
}
