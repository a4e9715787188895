package tui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/shopcart/internal/core/catalog"
)

// Product modal layout constants.
const (
	detailModalMaxWidth  = 90
	detailModalMaxHeight = 28
	detailModalMargin    = 4
	detailModalChrome    = 6 // title, divider, help and spacing
	detailModalPadding   = 4
	glamourGutter        = 2
)

// ProductModal shows a product's details rendered as markdown.
type ProductModal struct {
	product  catalog.Product
	inCart   int
	viewport viewport.Model
}

// NewProductModal creates a detail modal sized for a width x height screen.
func NewProductModal(p catalog.Product, inCart, width, height int) ProductModal {
	modalWidth := max(min(width-detailModalMargin, detailModalMaxWidth), 20)
	modalHeight := max(min(height-detailModalMargin, detailModalMaxHeight), detailModalChrome+3)

	vp := viewport.New(modalWidth-detailModalPadding, modalHeight-detailModalChrome)
	vp.Style = lipgloss.NewStyle()

	m := ProductModal{product: p, inCart: inCart, viewport: vp}
	m.viewport.SetContent(renderMarkdown(productMarkdown(p), modalWidth-detailModalPadding-glamourGutter))
	return m
}

// Product returns the product being shown.
func (m ProductModal) Product() catalog.Product {
	return m.product
}

// SetInCart updates the cart quantity shown in the title.
func (m *ProductModal) SetInCart(n int) {
	m.inCart = n
}

// ScrollUp scrolls the viewport up.
func (m *ProductModal) ScrollUp() {
	m.viewport.ScrollUp(1)
}

// ScrollDown scrolls the viewport down.
func (m *ProductModal) ScrollDown() {
	m.viewport.ScrollDown(1)
}

// Overlay renders the modal centered over the screen.
func (m ProductModal) Overlay(width, height int) string {
	modalWidth := max(min(width-detailModalMargin, detailModalMaxWidth), 20)

	title := m.product.Name
	if m.inCart > 0 {
		title += fmt.Sprintf("  %s %d in cart", iconCart, m.inCart)
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		modalTitleStyle.Render(title),
		mutedStyle.Render(strings.Repeat("─", modalWidth-detailModalPadding)),
		m.viewport.View(),
		modalHelpStyle.Render("[a] add to cart  [↑/↓] scroll  [esc] close"),
	)

	return lipgloss.Place(
		width, height,
		lipgloss.Center, lipgloss.Center,
		modalStyle.Width(modalWidth).Render(content),
	)
}

// productMarkdown builds the detail document for p.
func productMarkdown(p catalog.Product) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## %s\n\n", p.Price)
	fmt.Fprintf(&b, "%s%s (%d reviews)\n\n",
		strings.Repeat(iconStar, min(max(int(p.Rating+0.5), 0), 5)),
		strings.Repeat(iconNoStar, 5-min(max(int(p.Rating+0.5), 0), 5)),
		p.NumReviews,
	)

	if p.Brand != "" {
		fmt.Fprintf(&b, "- **Brand:** %s\n", p.Brand)
	}
	if p.Category != "" {
		fmt.Fprintf(&b, "- **Category:** %s\n", p.Category)
	}
	fmt.Fprintf(&b, "- **In stock:** %d\n", p.CountInStock)

	if desc := strings.TrimSpace(p.Description); desc != "" {
		b.WriteString("\n")
		b.WriteString(desc)
		b.WriteString("\n")
	}

	return b.String()
}

// renderMarkdown renders md for the terminal, falling back to the raw text.
func renderMarkdown(md string, width int) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("tokyo-night"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}

	rendered, err := renderer.Render(md)
	if err != nil {
		return md
	}

	content := strings.TrimSpace(rendered)
	content = stripLeadingDecorative(content)
	return stripTrailingDecorative(content)
}

// ansiPattern matches ANSI escape sequences.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// isDecorativeLine reports whether a line holds only rule characters or
// whitespace once ANSI codes are stripped.
func isDecorativeLine(line string) bool {
	stripped := strings.TrimSpace(ansiPattern.ReplaceAllString(line, ""))
	for _, r := range stripped {
		if r != '─' && r != '━' && r != '-' && r != '=' {
			return false
		}
	}
	return true
}

func stripLeadingDecorative(content string) string {
	lines := strings.Split(content, "\n")
	start := 0
	for start < len(lines) && isDecorativeLine(lines[start]) {
		start++
	}
	return strings.Join(lines[start:], "\n")
}

func stripTrailingDecorative(content string) string {
	lines := strings.Split(content, "\n")
	end := len(lines)
	for end > 0 && isDecorativeLine(lines[end-1]) {
		end--
	}
	return strings.Join(lines[:end], "\n")
}
