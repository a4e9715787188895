package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/shopcart/internal/printer"
)

type LoginCmd struct {
	flags    *Flags
	email    string
	password string
}

// NewLoginCmd creates a new login command
func NewLoginCmd(flags *Flags) *LoginCmd {
	return &LoginCmd{flags: flags}
}

// Register adds the login and logout commands to the application
func (cmd *LoginCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "login",
			Usage:     "Sign in",
			UsageText: "shopcart login --email <email>",
			Description: `Signs in and stores the token and profile in the data directory. Later
commands and the TUI send the token with each request.

The password is prompted for, or read from the first line of stdin when it is
not a terminal.`,
			Flags: []cli.Flag{
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
			Action: cmd.runLogin,
		},
		&cli.Command{
			Name:   "logout",
			Usage:  "Sign out and forget the stored token",
			Action: cmd.runLogout,
		},
	)

	return app
}

func (cmd *LoginCmd) runLogin(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	password := cmd.password
	if password == "" {
		var err error
		if password, err = readPassword("Password: "); err != nil {
			return err
		}
	}

	profile, err := cmd.flags.Service.Login(ctx, cmd.email, password)
	if err != nil {
		return err
	}

	p.Success("Signed in", fmt.Sprintf("👤 %s <%s>", profile.FirstName(), profile.Email))
	return nil
}

func (cmd *LoginCmd) runLogout(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	if _, ok := cmd.flags.Service.Identity(ctx); !ok {
		p.Infof("Not signed in")
		return nil
	}

	if err := cmd.flags.Service.Logout(ctx); err != nil {
		return err
	}

	p.Successf("Signed out")
	return nil
}
