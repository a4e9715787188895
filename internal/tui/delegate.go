package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/shopcart/internal/core/catalog"
)

// ProductItem wraps a product for the list component.
type ProductItem struct {
	Product catalog.Product
	// InCart is the quantity of this product already in the cart.
	InCart int
}

// FilterValue returns the value used for filtering.
func (i ProductItem) FilterValue() string {
	return i.Product.Name
}

// ProductDelegate handles rendering of product items in the list.
type ProductDelegate struct {
	Styles ProductDelegateStyles
}

// ProductDelegateStyles defines the styles for the delegate.
type ProductDelegateStyles struct {
	Normal   lipgloss.Style
	Selected lipgloss.Style
	Border   lipgloss.Style
	Muted    lipgloss.Style
	Price    lipgloss.Style
}

// NewProductDelegate creates a product delegate with default styles.
func NewProductDelegate() ProductDelegate {
	return ProductDelegate{
		Styles: ProductDelegateStyles{
			Normal:   normalStyle,
			Selected: selectedStyle,
			Border:   selectedBorderStyle,
			Muted:    mutedStyle,
			Price:    priceStyle,
		},
	}
}

// Height returns the height of each item.
func (d ProductDelegate) Height() int {
	return 2
}

// Spacing returns the spacing between items.
func (d ProductDelegate) Spacing() int {
	return 1
}

// Update handles item updates.
func (d ProductDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render renders a single item.
func (d ProductDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	pi, ok := item.(ProductItem)
	if !ok {
		return
	}

	p := pi.Product
	isSelected := index == m.Index()

	gutter := "  "
	nameStyle := d.Styles.Normal
	if isSelected {
		gutter = d.Styles.Border.Render(iconCursor) + " "
		nameStyle = d.Styles.Selected
	}

	title := nameStyle.Render(p.Name) + "  " + d.Styles.Price.Render(p.Price.String())
	if pi.InCart > 0 {
		title += "  " + badgeStyle.Render(fmt.Sprintf("%s %d", iconCart, pi.InCart))
	}

	desc := renderStars(p.Rating) + d.Styles.Muted.Render(fmt.Sprintf("  %d reviews", p.NumReviews))
	if p.Brand != "" {
		desc += d.Styles.Muted.Render(" " + iconDot + " " + p.Brand)
	}

	_, _ = fmt.Fprintf(w, "%s%s\n", gutter, title)
	_, _ = fmt.Fprintf(w, "%s%s", gutter, desc)
}

// renderStars draws a rating out of five.
func renderStars(rating float64) string {
	full := min(max(int(rating+0.5), 0), 5)
	return priceStyle.Render(strings.Repeat(iconStar, full)) + mutedStyle.Render(strings.Repeat(iconNoStar, 5-full))
}
