package commands

import (
	"context"
	"encoding/json"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/shopcart/internal/printer"
)

type WhoAmICmd struct {
	flags *Flags
	json  bool
	local bool
}

// NewWhoAmICmd creates a new whoami command
func NewWhoAmICmd(flags *Flags) *WhoAmICmd {
	return &WhoAmICmd{flags: flags}
}

// Register adds the whoami command to the application
func (cmd *WhoAmICmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "whoami",
		Usage: "Show the signed-in account",
		Description: `Asks the API who the stored token belongs to. With --local only the cached
profile is shown and no request is made.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the profile as JSON",
				Destination: &cmd.json,
			},
			&cli.BoolFlag{
				Name:        "local",
				Usage:       "show the cached profile without calling the API",
				Destination: &cmd.local,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *WhoAmICmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	ident, ok := cmd.flags.Service.Identity(ctx)
	if !ok {
		p.Infof("Not signed in. Run 'shopcart login' to sign in.")
		return nil
	}

	if cmd.local {
		if cmd.json {
			return encodeJSON(c, ident.Profile)
		}
		p.Printf("%s", ident.Greeting())
		if ident.Profile != nil {
			p.Printf("  %s", ident.Profile.Email)
		}
		return nil
	}

	claims, err := cmd.flags.Service.WhoAmI(ctx)
	if err != nil {
		return err
	}

	if cmd.json {
		return encodeJSON(c, claims)
	}

	p.Section(claims.Name)
	p.Printf("  Email:   %s", claims.Email)
	p.Printf("  ID:      %s", claims.ID)
	if claims.IssuedAt > 0 {
		p.Printf("  Issued:  %s", time.Unix(claims.IssuedAt, 0).Local().Format(time.DateTime))
	}
	if claims.ExpiresAt > 0 {
		p.Printf("  Expires: %s", time.Unix(claims.ExpiresAt, 0).Local().Format(time.DateTime))
	}
	return nil
}

func encodeJSON(c *cli.Command, v any) error {
	enc := json.NewEncoder(c.Root().Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
