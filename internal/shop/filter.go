package shop

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/hay-kot/shopcart/internal/core/catalog"
)

// FilterEnv is the set of fields a product filter expression can reference.
type FilterEnv struct {
	ID       string  `expr:"id"`
	Name     string  `expr:"name"`
	Brand    string  `expr:"brand"`
	Category string  `expr:"category"`
	Price    float64 `expr:"price"`
	Rating   float64 `expr:"rating"`
	Reviews  int     `expr:"reviews"`
	Stock    int     `expr:"stock"`
}

func filterEnv(p catalog.Product) FilterEnv {
	return FilterEnv{
		ID:       p.ID,
		Name:     p.Name,
		Brand:    p.Brand,
		Category: p.Category,
		Price:    p.Price.Float(),
		Rating:   p.Rating,
		Reviews:  p.NumReviews,
		Stock:    p.CountInStock,
	}
}

// Filter is a compiled boolean expression over product fields, for example
// `price < 100 && rating >= 4`.
type Filter struct {
	source  string
	program *vm.Program
}

// CompileFilter parses and type-checks a filter expression. A blank
// expression yields a nil filter, which matches everything.
func CompileFilter(source string) (*Filter, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, nil
	}

	program, err := expr.Compile(source, expr.Env(FilterEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", source, err)
	}

	return &Filter{source: source, program: program}, nil
}

// Match reports whether p satisfies the filter.
func (f *Filter) Match(p catalog.Product) (bool, error) {
	if f == nil {
		return true, nil
	}

	out, err := expr.Run(f.program, filterEnv(p))
	if err != nil {
		return false, fmt.Errorf("evaluate filter %q: %w", f.source, err)
	}

	ok, _ := out.(bool)
	return ok, nil
}

// Apply returns the products that satisfy the filter, in their original order.
func (f *Filter) Apply(products []catalog.Product) ([]catalog.Product, error) {
	if f == nil {
		return products, nil
	}

	out := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		ok, err := f.Match(p)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, p)
		}
	}
	return out, nil
}
