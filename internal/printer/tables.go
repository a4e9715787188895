package printer

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/hay-kot/shopcart/internal/core/cart"
	"github.com/hay-kot/shopcart/internal/core/catalog"
)

// CartTable prints one row per line item followed by the item count and
// subtotal.
func (p *Printer) CartTable(c cart.Cart) {
	if c.IsEmpty() {
		p.Infof("Your cart is empty")
		return
	}

	tw := tabwriter.NewWriter(p.writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, p.Bold("PRODUCT")+"\t"+p.Bold("ID")+"\t"+p.Bold("QTY")+"\t"+p.Bold("PRICE")+"\t"+p.Bold("TOTAL"))
	for _, item := range c.Items {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			item.Name,
			p.colorize(ColorGray, item.ProductID),
			item.Quantity,
			item.UnitPrice,
			item.Total(),
		)
	}
	_ = tw.Flush()

	_, _ = p.writer.Write([]byte("\n"))
	p.Printf("Items: %d", c.ItemCount())
	p.Printf("Subtotal: %s", p.Bold(c.Subtotal().String()))
}

// ProductTable prints the catalog as a table, or "No Products Found".
func (p *Printer) ProductTable(products []catalog.Product) {
	if len(products) == 0 {
		p.Warnf("No Products Found")
		return
	}

	tw := tabwriter.NewWriter(p.writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, p.Bold("ID")+"\t"+p.Bold("NAME")+"\t"+p.Bold("PRICE")+"\t"+p.Bold("RATING"))
	for _, prod := range products {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			p.colorize(ColorGray, prod.ID),
			prod.Name,
			prod.Price,
			Stars(prod.Rating, prod.NumReviews),
		)
	}
	_ = tw.Flush()
}

// Stars renders a rating out of five with the review count.
func Stars(rating float64, reviews int) string {
	full := min(max(int(rating+0.5), 0), 5)
	return strings.Repeat("★", full) + strings.Repeat("☆", 5-full) + fmt.Sprintf(" (%d)", reviews)
}
