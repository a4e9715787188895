package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/shopcart/internal/core/cart"
	"github.com/hay-kot/shopcart/internal/printer"
	"github.com/hay-kot/shopcart/internal/shop"
	"github.com/hay-kot/shopcart/pkg/tmpl"
)

type CartCmd struct {
	flags *Flags

	// add flags
	addQty int

	// show flags
	showFormat string
	showJSON   bool

	// watch flags
	watchTimeout time.Duration
}

// NewCartCmd creates a new cart command.
func NewCartCmd(flags *Flags) *CartCmd {
	return &CartCmd{flags: flags}
}

// Register adds the cart command to the application.
func (cmd *CartCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "cart",
		Usage: "Manage the shopping cart",
		Description: `Cart commands operate on the cart stored in the data directory.

The cart is shared by every shopcart process using the same data directory,
so changes made here show up in a running TUI.`,
		Commands: []*cli.Command{
			cmd.showCmd(),
			cmd.addCmd(),
			cmd.quantityCmd("inc", "Increase an item's quantity by one", 1),
			cmd.quantityCmd("dec", "Decrease an item's quantity by one, removing it at zero", -1),
			cmd.rmCmd(),
			cmd.clearCmd(),
			cmd.checkoutCmd(),
			cmd.watchCmd(),
		},
		Action: cmd.runShow,
	})

	return app
}

func (cmd *CartCmd) showCmd() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show the cart contents and subtotal",
		UsageText: "shopcart cart show [--format <template>] [--json]",
		Description: `Prints one row per item, the item count and the subtotal.

--format renders the whole cart with a Go template, for example:
  shopcart cart show --format '{{.ItemCount}} items, {{money .Subtotal}}'`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Aliases:     []string{"f"},
				Usage:       "Go template for the cart",
				Destination: &cmd.showFormat,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the cart as JSON",
				Destination: &cmd.showJSON,
			},
		},
		Action: cmd.runShow,
	}
}

func (cmd *CartCmd) addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a product to the cart",
		UsageText: "shopcart cart add <product-id> [--qty N]",
		Description: `Fetches the product from the API and adds it to the cart. Adding a product
that is already in the cart increases its quantity.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "qty",
				Aliases:     []string{"n"},
				Usage:       "number of units to add",
				Value:       1,
				Destination: &cmd.addQty,
			},
		},
		Action: cmd.runAdd,
	}
}

func (cmd *CartCmd) quantityCmd(name, usage string, delta int) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		UsageText: "shopcart cart " + name + " <product-id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := productArg(c)
			if err != nil {
				return err
			}

			updated, err := cmd.flags.Service.ChangeQuantity(ctx, id, delta)
			if err != nil {
				return err
			}

			item, ok := updated.Find(id)
			if !ok {
				printer.Ctx(ctx).Successf("Removed %s", id)
			} else {
				printer.Ctx(ctx).Successf("%s × %d", item.Name, item.Quantity)
			}
			return nil
		},
	}
}

func (cmd *CartCmd) rmCmd() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Remove a product from the cart",
		UsageText: "shopcart cart rm <product-id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := productArg(c)
			if err != nil {
				return err
			}

			if _, err := cmd.flags.Service.RemoveFromCart(ctx, id); err != nil {
				return err
			}

			printer.Ctx(ctx).Successf("Removed %s", id)
			return nil
		},
	}
}

func (cmd *CartCmd) clearCmd() *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Remove every item from the cart",
		Action: func(ctx context.Context, _ *cli.Command) error {
			if _, err := cmd.flags.Service.ClearCart(ctx); err != nil {
				return err
			}

			printer.Ctx(ctx).Successf("Cart cleared")
			return nil
		},
	}
}

func (cmd *CartCmd) checkoutCmd() *cli.Command {
	return &cli.Command{
		Name:  "checkout",
		Usage: "Check out the cart",
		Action: func(ctx context.Context, _ *cli.Command) error {
			msg, err := cmd.flags.Service.Checkout(ctx)
			if err != nil {
				return err
			}

			printer.Ctx(ctx).Infof("%s", msg)
			return nil
		},
	}
}

func (cmd *CartCmd) watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Print the cart each time it changes",
		UsageText: "shopcart cart watch [--timeout 10m]",
		Description: `Prints the cart, then blocks and prints it again whenever another shopcart
process changes it. Stops on interrupt or when --timeout passes without a change.`,
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:        "timeout",
				Usage:       "stop after this long without a change",
				Value:       10 * time.Minute,
				Destination: &cmd.watchTimeout,
			},
		},
		Action: cmd.runWatch,
	}
}

func (cmd *CartCmd) runShow(ctx context.Context, c *cli.Command) error {
	current := cmd.flags.Service.Cart(ctx)
	return cmd.print(ctx, c, current)
}

func (cmd *CartCmd) print(ctx context.Context, c *cli.Command, current cart.Cart) error {
	switch {
	case cmd.showJSON:
		return encodeJSON(c, current)
	case cmd.showFormat != "":
		out, err := tmpl.Render(cmd.showFormat, current)
		if err != nil {
			return fmt.Errorf("render format: %w", err)
		}
		_, _ = fmt.Fprintln(c.Root().Writer, out)
		return nil
	}

	printer.Ctx(ctx).CartTable(current)
	return nil
}

func (cmd *CartCmd) runAdd(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	id, err := productArg(c)
	if err != nil {
		return err
	}
	if cmd.addQty < 1 || cmd.addQty > shop.MaxAddQuantity {
		return fmt.Errorf("--qty must be between 1 and %d, got %d", shop.MaxAddQuantity, cmd.addQty)
	}

	updated, err := cmd.flags.Service.AddToCartN(ctx, id, cmd.addQty)
	if err != nil {
		return err
	}

	item, ok := updated.Find(id)
	if !ok {
		return fmt.Errorf("product %s is not in the cart after adding it", id)
	}
	p.Success("Added "+item.Name, fmt.Sprintf("%d in cart · %d items · %s", item.Quantity, updated.ItemCount(), updated.Subtotal()))
	return nil
}

func (cmd *CartCmd) runWatch(ctx context.Context, c *cli.Command) error {
	after := time.Now()
	if err := cmd.print(ctx, c, cmd.flags.Service.Cart(ctx)); err != nil {
		return err
	}

	for {
		next, updatedAt, err := cmd.flags.Service.WatchCart(ctx, after, cmd.watchTimeout)
		switch {
		case errors.Is(err, context.Canceled):
			return nil
		case errors.Is(err, context.DeadlineExceeded):
			printer.Ctx(ctx).Infof("No changes in %s", cmd.watchTimeout)
			return nil
		case err != nil:
			return err
		}

		after = updatedAt
		_, _ = fmt.Fprintln(c.Root().Writer)
		if err := cmd.print(ctx, c, next); err != nil {
			return err
		}
	}
}

func productArg(c *cli.Command) (string, error) {
	if c.Args().Len() != 1 {
		return "", fmt.Errorf("exactly one product id required\n\nUsage: %s", c.UsageText)
	}
	return c.Args().First(), nil
}
