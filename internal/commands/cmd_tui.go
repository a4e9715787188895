package commands

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/shopcart/internal/tui"
)

type TuiCmd struct {
	flags   *Flags
	refresh time.Duration
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags) *TuiCmd {
	return &TuiCmd{
		flags: flags,
	}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:        "refresh",
			Usage:       "how often the TUI re-reads the cart from disk (0 to disable)",
			Sources:     cli.EnvVars("SHOPCART_REFRESH"),
			Destination: &cmd.refresh,
		},
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(_ context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	if c.IsSet("refresh") {
		cfg.TUI.RefreshInterval = cmd.refresh
	}

	m := tui.New(cmd.flags.Service, cfg)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	return nil
}
