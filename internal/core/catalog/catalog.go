// Package catalog defines product records and the persistence port the API
// server reads them from.
package catalog

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/hay-kot/shopcart/internal/core/cart"
)

// ErrNotFound is returned when a product ID does not exist.
var ErrNotFound = errors.New("product not found")

// DefaultCountInStock is applied to products created without a stock count.
const DefaultCountInStock = 100

// Product is a catalog record. JSON tags follow the storefront wire format.
type Product struct {
	ID           string     `json:"_id" yaml:"id"`
	Name         string     `json:"name" yaml:"name"`
	Image        string     `json:"image" yaml:"image"`
	Price        cart.Money `json:"price" yaml:"price"`
	Rating       float64    `json:"rating" yaml:"rating"`
	NumReviews   int        `json:"numReviews" yaml:"num_reviews"`
	Brand        string     `json:"brand,omitempty" yaml:"brand"`
	Category     string     `json:"category,omitempty" yaml:"category"`
	CountInStock int        `json:"countInStock" yaml:"count_in_stock"`
	Description  string     `json:"description,omitempty" yaml:"description"`
	CreatedAt    time.Time  `json:"createdAt" yaml:"-"`
	UpdatedAt    time.Time  `json:"updatedAt" yaml:"-"`
}

// Snapshot returns the fields a cart line copies at add time.
func (p Product) Snapshot() cart.Snapshot {
	return cart.Snapshot{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price,
		Image: p.Image,
	}
}

// Store defines persistence operations for products.
type Store interface {
	// List returns products whose name contains query (case-insensitive),
	// newest first. An empty query returns the whole catalog.
	List(ctx context.Context, query string) ([]Product, error)
	// Get returns a product by ID. Returns ErrNotFound if not found.
	Get(ctx context.Context, id string) (Product, error)
	// Count returns the number of products.
	Count(ctx context.Context) (int, error)
	// InsertMany stores new products and returns them with IDs and
	// timestamps assigned.
	InsertMany(ctx context.Context, products []Product) ([]Product, error)
}

// MatchesQuery reports whether the product name contains query, ignoring case.
// Surrounding whitespace in query is ignored.
func MatchesQuery(p Product, query string) bool {
	q := strings.TrimSpace(query)
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), strings.ToLower(q))
}

// SortNewestFirst orders products by CreatedAt descending. Products created
// in the same batch keep their insertion order.
func SortNewestFirst(products []Product) {
	slices.SortStableFunc(products, func(a, b Product) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

// Prepare fills defaults for a product about to be inserted.
func Prepare(p Product, id string, now time.Time) Product {
	p.ID = id
	if p.CountInStock == 0 {
		p.CountInStock = DefaultCountInStock
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return p
}
