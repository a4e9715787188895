package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/shopcart/internal/commands"
	"github.com/hay-kot/shopcart/internal/core/config"
	"github.com/hay-kot/shopcart/internal/printer"
	"github.com/hay-kot/shopcart/pkg/utils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}

	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

func main() {
	if err := setupLogger("info", "", nil); err != nil {
		panic(err)
	}

	var (
		p     = printer.New(os.Stderr)
		ctx   = printer.NewContext(context.Background(), p)
		flags = &commands.Flags{}
	)

	var deferredLogs *utils.DeferredWriter

	app := &cli.Command{
		Name:      "shopcart",
		Usage:     "Browse a storefront, keep a cart and sign in from the terminal",
		UsageText: "shopcart [global options] command [command options]",
		Description: `Shopcart is a terminal client for a small storefront API, and the API itself.

The cart and the signed-in identity are kept in the data directory and shared
by every shopcart process, so a cart edited with 'shopcart cart' shows up in a
running TUI.

Run 'shopcart' with no arguments to open the interactive storefront.
Run 'shopcart serve' to start the API, then 'shopcart seed' to load the demo catalog.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("SHOPCART_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (optional)",
				Sources:     cli.EnvVars("SHOPCART_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("SHOPCART_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("SHOPCART_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "api",
				Usage:       "storefront API base URL (overrides api.base_url)",
				Sources:     cli.EnvVars("SHOPCART_API"),
				Destination: &flags.APIURL,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Detect TUI mode: no subcommand means TUI (default action)
			isTUI := len(c.Args().Slice()) == 0

			// In TUI mode, buffer logs to display after exit
			var deferred io.Writer
			if isTUI {
				deferredLogs = &utils.DeferredWriter{}
				deferred = deferredLogs
			}

			if err := setupLogger(flags.LogLevel, flags.LogFile, deferred); err != nil {
				return ctx, err
			}

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			if flags.APIURL != "" {
				cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(flags.APIURL), "/")
			}
			flags.Config = cfg

			if err := wireService(flags); err != nil {
				return ctx, err
			}
			return ctx, nil
		},
	}

	tuiCmd := commands.NewTuiCmd(flags)

	for _, r := range []interface {
		Register(*cli.Command) *cli.Command
	}{
		commands.NewProductsCmd(flags),
		commands.NewProductCmd(flags),
		commands.NewCartCmd(flags),
		commands.NewRegisterCmd(flags),
		commands.NewLoginCmd(flags),
		commands.NewWhoAmICmd(flags),
		commands.NewSeedCmd(flags),
		commands.NewServeCmd(flags),
		commands.NewDoctorCmd(flags),
		commands.NewConfigCmd(flags),
	} {
		app = r.Register(app)
	}

	// Register TUI flags on root command
	app.Flags = append(app.Flags, tuiCmd.Flags()...)

	// Set TUI as default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'shopcart --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Println()
		printer.Ctx(ctx).FatalError(err)
		exitCode = 1
	}

	// Flush deferred logs to console after TUI exits
	if deferredLogs != nil {
		if err := deferredLogs.Flush(zerolog.ConsoleWriter{Out: os.Stderr}); err != nil {
			fmt.Fprintf(os.Stderr, "failed to flush logs: %v\n", err)
		}
	}

	os.Exit(exitCode)
}

// setupLogger points the global logger at the console, a log file, or the
// TUI's deferred buffer. In TUI mode nothing is written to the terminal until
// the program exits.
func setupLogger(level string, logFile string, deferred io.Writer) error {
	parsedLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}

	console := deferred
	if console == nil {
		console = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	output := console
	if logFile != "" {
		file, err := openLogFile(logFile)
		if err != nil {
			return err
		}
		output = io.MultiWriter(console, file)
	}

	log.Logger = log.Output(output).Level(parsedLevel)
	return nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}
