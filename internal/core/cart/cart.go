// Package cart defines the cart state model and the pure operations that
// mutate it. Every operation returns a new Cart and leaves the receiver
// untouched; persisting the result is the caller's job.
package cart

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/gowebpki/jcs"
)

// Snapshot carries the product fields copied into a line item at add time.
// Prices are not re-fetched later, so a cart can hold a stale price.
type Snapshot struct {
	ID    string
	Name  string
	Price Money
	Image string
}

// Item is one product's entry in the cart.
type Item struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice Money  `json:"unit_price"`
	Image     string `json:"image,omitempty"`
	Quantity  int    `json:"quantity"`
}

// Total returns UnitPrice × Quantity.
func (i Item) Total() Money {
	return i.UnitPrice.Times(i.Quantity)
}

// Cart is an ordered list of line items, at most one per product ID, each with
// a quantity of at least one. Insertion order is the display order.
type Cart struct {
	Items []Item `json:"items"`

	// Revision counts persisted writes. Stores use it to notice that another
	// writer saved in between a load and a save.
	Revision  int64     `json:"revision"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// Empty returns a cart with no items.
func Empty() Cart {
	return Cart{Items: []Item{}}
}

// Add puts one unit of the product in the cart. An existing line for the same
// product is incremented instead of duplicated. Snapshots without an ID are
// ignored.
func (c Cart) Add(p Snapshot) Cart {
	if p.ID == "" {
		return c.clone()
	}

	out := c.clone()
	if idx := out.index(p.ID); idx >= 0 {
		if out.Items[idx].Quantity < math.MaxInt {
			out.Items[idx].Quantity++
		}
		return out
	}

	price := p.Price
	if price < 0 {
		price = 0
	}

	out.Items = append(out.Items, Item{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: price,
		Image:     p.Image,
		Quantity:  1,
	})
	return out
}

// ChangeQuantity applies delta to the product's quantity. A result of zero or
// less removes the line; a positive delta that would overflow saturates at
// math.MaxInt. Unknown products are a no-op.
func (c Cart) ChangeQuantity(productID string, delta int) Cart {
	out := c.clone()

	idx := out.index(productID)
	if idx < 0 {
		return out
	}

	qty := out.Items[idx].Quantity
	if delta > 0 && qty > math.MaxInt-delta {
		qty = math.MaxInt
	} else {
		qty += delta
	}
	if qty <= 0 {
		out.Items = slices.Delete(out.Items, idx, idx+1)
		return out
	}

	out.Items[idx].Quantity = qty
	return out
}

// Remove deletes the product's line if present.
func (c Cart) Remove(productID string) Cart {
	out := c.clone()
	out.Items = slices.DeleteFunc(out.Items, func(it Item) bool {
		return it.ProductID == productID
	})
	return out
}

// Clear removes every line item. Revision bookkeeping is kept.
func (c Cart) Clear() Cart {
	out := c
	out.Items = []Item{}
	return out
}

// Subtotal returns the sum of unit price × quantity over all lines.
func (c Cart) Subtotal() Money {
	var total Money
	for _, it := range c.Items {
		total += it.Total()
	}
	return total
}

// ItemCount returns the sum of quantities. This is the badge value.
func (c Cart) ItemCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no line items.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Find returns the line for productID.
func (c Cart) Find(productID string) (Item, bool) {
	if idx := c.index(productID); idx >= 0 {
		return c.Items[idx], true
	}
	return Item{}, false
}

// Normalize repairs a decoded cart: lines without an ID or with a quantity
// below one are dropped and duplicate IDs are merged into the first
// occurrence. Carts built only through Add/ChangeQuantity/Remove are already
// normal.
func (c Cart) Normalize() Cart {
	out := Cart{
		Items:     make([]Item, 0, len(c.Items)),
		Revision:  c.Revision,
		UpdatedAt: c.UpdatedAt,
	}

	for _, it := range c.Items {
		if it.ProductID == "" || it.Quantity < 1 {
			continue
		}
		if it.UnitPrice < 0 {
			it.UnitPrice = 0
		}
		if idx := out.index(it.ProductID); idx >= 0 {
			out.Items[idx].Quantity += it.Quantity
			continue
		}
		out.Items = append(out.Items, it)
	}

	return out
}

// Fingerprint returns a digest of the line items only. Two carts with the same
// lines in the same order share a fingerprint regardless of revision.
func (c Cart) Fingerprint() (string, error) {
	items := c.Items
	if items == nil {
		items = []Item{}
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("marshal cart items: %w", err)
	}

	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize cart items: %w", err)
	}

	return digest(canonical), nil
}

func (c Cart) index(productID string) int {
	return slices.IndexFunc(c.Items, func(it Item) bool {
		return it.ProductID == productID
	})
}

func (c Cart) clone() Cart {
	out := c
	out.Items = slices.Clone(c.Items)
	if out.Items == nil {
		out.Items = []Item{}
	}
	return out
}
