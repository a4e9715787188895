package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/shopcart/internal/core/catalog"
	"github.com/hay-kot/shopcart/internal/printer"
	"github.com/hay-kot/shopcart/internal/shop"
	"github.com/hay-kot/shopcart/pkg/tmpl"
)

type ProductsCmd struct {
	flags    *Flags
	search   string
	where    string
	format   string
	json     bool
	featured bool
}

// NewProductsCmd creates a new products command
func NewProductsCmd(flags *Flags) *ProductsCmd {
	return &ProductsCmd{flags: flags}
}

// Register adds the products command to the application
func (cmd *ProductsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "products",
		Aliases:   []string{"ls"},
		Usage:     "List or search the catalog",
		UsageText: "shopcart products [options] [search terms...]",
		Description: `Lists the catalog, newest first. Search terms, given as arguments or with
--search, match product names case-insensitively. A blank search matches nothing.

--where filters the result with an expression over id, name, brand, category,
price, rating, reviews and stock.

--format renders each product with a Go template. Available functions:
money, truncate, pad, upper, lower.

Examples:
  shopcart products
  shopcart products sony
  shopcart products --where 'price < 100 && rating >= 4'
  shopcart products --format '{{.ID}} {{.Name | upper}} {{money .Price}}'`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "search",
				Aliases:     []string{"s"},
				Usage:       "search product names",
				Destination: &cmd.search,
			},
			&cli.StringFlag{
				Name:        "where",
				Aliases:     []string{"w"},
				Usage:       "filter expression",
				Destination: &cmd.where,
			},
			&cli.StringFlag{
				Name:        "format",
				Aliases:     []string{"f"},
				Usage:       "Go template for each product",
				Destination: &cmd.format,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print products as JSON",
				Destination: &cmd.json,
			},
			&cli.BoolFlag{
				Name:        "featured",
				Usage:       fmt.Sprintf("only the %d featured products", shop.FeaturedCount),
				Destination: &cmd.featured,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ProductsCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	filter, err := shop.CompileFilter(cmd.where)
	if err != nil {
		return err
	}

	products, err := cmd.fetch(ctx, c)
	if err != nil {
		return err
	}

	products, err = filter.Apply(products)
	if err != nil {
		return err
	}

	switch {
	case cmd.json:
		return encodeJSON(c, products)
	case cmd.format != "":
		for _, prod := range products {
			line, err := tmpl.Render(cmd.format, prod)
			if err != nil {
				return fmt.Errorf("render format: %w", err)
			}
			_, _ = fmt.Fprintln(c.Root().Writer, line)
		}
		return nil
	}

	p.ProductTable(products)
	return nil
}

func (cmd *ProductsCmd) fetch(ctx context.Context, c *cli.Command) ([]catalog.Product, error) {
	svc := cmd.flags.Service

	if c.Args().Len() > 0 || c.IsSet("search") {
		term := strings.TrimSpace(cmd.search + " " + strings.Join(c.Args().Slice(), " "))
		return svc.Search(ctx, term)
	}
	if cmd.featured {
		return svc.Featured(ctx)
	}
	return svc.Products(ctx)
}
