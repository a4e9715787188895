package commands

import (
	"context"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/shopcart/internal/printer"
)

type RegisterCmd struct {
	flags    *Flags
	name     string
	email    string
	password string
}

// NewRegisterCmd creates a new register command
func NewRegisterCmd(flags *Flags) *RegisterCmd {
	return &RegisterCmd{flags: flags}
}

// Register adds the register command to the application
func (cmd *RegisterCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "register",
		Usage:     "Create an account",
		UsageText: "shopcart register --name <name> --email <email>",
		Description: `Creates an account on the storefront API. Registering does not sign you in;
run 'shopcart login' afterwards.

The password is prompted for, or read from the first line of stdin when it is
not a terminal.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "name",
				Usage:       "display name",
				Required:    true,
				Destination: &cmd.name,
			},
			&cli.StringFlag{
				Name:        "email",
				Aliases:     []string{"e"},
				Usage:       "account email",
				Required:    true,
				Destination: &cmd.email,
			},
			&cli.StringFlag{
				Name:        "password",
				Usage:       "account password (prompted when omitted)",
				Sources:     cli.EnvVars("SHOPCART_PASSWORD"),
				Destination: &cmd.password,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RegisterCmd) run(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	password := cmd.password
	if password == "" {
		var err error
		if password, err = readPassword("Password: "); err != nil {
			return err
		}
	}

	user, err := cmd.flags.Service.Register(ctx, cmd.name, cmd.email, password)
	if err != nil {
		return err
	}

	p.Success("Account created. You can sign in now.", strings.TrimSpace(user.Email))
	return nil
}
