package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/shopcart/internal/printer"
)

type ProductCmd struct {
	flags *Flags
	json  bool
}

// NewProductCmd creates a new product command
func NewProductCmd(flags *Flags) *ProductCmd {
	return &ProductCmd{flags: flags}
}

// Register adds the product command to the application
func (cmd *ProductCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "product",
		Usage:     "Show one product",
		UsageText: "shopcart product <id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the product as JSON",
				Destination: &cmd.json,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ProductCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if c.Args().Len() != 1 {
		return fmt.Errorf("product id required\n\nUsage: shopcart product <id>")
	}

	prod, err := cmd.flags.Service.Product(ctx, c.Args().First())
	if err != nil {
		return err
	}

	if cmd.json {
		return encodeJSON(c, prod)
	}

	p.Section(prod.Name)
	p.Printf("  Price:    %s", p.Bold(prod.Price.String()))
	p.Printf("  Rating:   %s", printer.Stars(prod.Rating, prod.NumReviews))
	if prod.Brand != "" {
		p.Printf("  Brand:    %s", prod.Brand)
	}
	if prod.Category != "" {
		p.Printf("  Category: %s", prod.Category)
	}
	p.Printf("  In stock: %d", prod.CountInStock)
	p.Printf("  ID:       %s", prod.ID)

	if desc := strings.TrimSpace(prod.Description); desc != "" {
		out, err := glamour.Render(desc, "auto")
		if err != nil {
			out = desc + "\n"
		}
		p.Printf("%s", strings.TrimRight(out, "\n"))
	}

	return nil
}
