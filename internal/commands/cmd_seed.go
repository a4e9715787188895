package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/shopcart/internal/printer"
)

type SeedCmd struct {
	flags *Flags
}

// NewSeedCmd creates a new seed command
func NewSeedCmd(flags *Flags) *SeedCmd {
	return &SeedCmd{flags: flags}
}

// Register adds the seed command to the application
func (cmd *SeedCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "seed",
		Usage:       "Load the demo catalog into the API",
		Description: "Asks the API server to insert its seed catalog. Seeding a catalog that already has products does nothing.",
		Action:      cmd.run,
	})

	return app
}

func (cmd *SeedCmd) run(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	res, err := cmd.flags.Service.Seed(ctx)
	if err != nil {
		return err
	}

	p.Successf("%s (%d products)", res.Message, res.Count)
	return nil
}
