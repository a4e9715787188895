package commands

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/shopcart/internal/docstore"
	"github.com/hay-kot/shopcart/internal/server"
)

type ServeCmd struct {
	flags      *Flags
	addr       string
	port       int
	jwtSecret  string
	corsOrigin []string
	store      string
	storePath  string
	projectID  string
	seedGlob   string
}

// NewServeCmd creates a new serve command
func NewServeCmd(flags *Flags) *ServeCmd {
	return &ServeCmd{flags: flags}
}

// Register adds the serve command to the application
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Run the storefront API server",
		UsageText: "shopcart serve [options]",
		Description: `Serves the storefront API: catalog, seeding, registration, login and profile.

Products and users live in the configured document store (memory, sqlite or
firestore). POST /api/seed inserts the demo catalog, or the products from
--seed-glob when given.

Examples:
  JWT_SECRET=change-me shopcart serve
  shopcart serve --store sqlite --seed-glob 'catalog/**/*.yaml'`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address (default from config, :5000)",
				Destination: &cmd.addr,
			},
			&cli.IntFlag{
				Name:        "port",
				Usage:       "listen port, shorthand for --addr :PORT",
				Sources:     cli.EnvVars("PORT"),
				Destination: &cmd.port,
			},
			&cli.StringFlag{
				Name:        "jwt-secret",
				Usage:       "secret used to sign bearer tokens",
				Sources:     cli.EnvVars("JWT_SECRET"),
				Destination: &cmd.jwtSecret,
			},
			&cli.StringSliceFlag{
				Name:        "cors-origin",
				Usage:       "browser origin allowed to call the API (repeatable)",
				Sources:     cli.EnvVars("CORS_ORIGIN"),
				Destination: &cmd.corsOrigin,
			},
			&cli.StringFlag{
				Name:        "store",
				Usage:       "document store driver (memory, sqlite, firestore)",
				Sources:     cli.EnvVars("SHOPCART_STORE"),
				Destination: &cmd.store,
			},
			&cli.StringFlag{
				Name:        "store-path",
				Usage:       "database file for the sqlite driver",
				Sources:     cli.EnvVars("SHOPCART_STORE_PATH"),
				Destination: &cmd.storePath,
			},
			&cli.StringFlag{
				Name:        "project-id",
				Usage:       "Google Cloud project for the firestore driver",
				Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
				Destination: &cmd.projectID,
			},
			&cli.StringFlag{
				Name:        "seed-glob",
				Usage:       "YAML catalog files used by POST /api/seed",
				Destination: &cmd.seedGlob,
			},
		},
		Action: cmd.run,
	})

	return app
}

// apply overlays the command's flags on the loaded server config.
func (cmd *ServeCmd) apply(c *cli.Command) {
	s := &cmd.flags.Config.Server

	if c.IsSet("addr") {
		s.Addr = cmd.addr
	} else if c.IsSet("port") {
		s.Addr = ":" + strconv.Itoa(cmd.port)
	}
	if c.IsSet("jwt-secret") {
		s.JWTSecret = cmd.jwtSecret
	}
	if c.IsSet("cors-origin") {
		s.CORSOrigins = append(s.CORSOrigins, cmd.corsOrigin...)
	}
	if c.IsSet("store") {
		s.Store.Driver = cmd.store
	}
	if c.IsSet("store-path") {
		s.Store.Path = cmd.storePath
	}
	if c.IsSet("project-id") {
		s.Store.ProjectID = cmd.projectID
	}
	if c.IsSet("seed-glob") {
		s.SeedGlob = cmd.seedGlob
	}
}

func (cmd *ServeCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	cmd.apply(c)
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := log.Logger

	opts := server.OptionsFromConfig(cfg)
	if cfg.Server.SeedGlob != "" {
		products, err := server.LoadSeedFiles(cfg.Server.SeedGlob)
		if err != nil {
			return fmt.Errorf("load seed files: %w", err)
		}
		opts.SeedProducts = products
		logger.Info().Int("products", len(products)).Str("glob", cfg.Server.SeedGlob).Msg("seed catalog loaded")
	}

	stores, err := docstore.Open(ctx, cfg.Server.Store, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := stores.Close(); err != nil {
			logger.Warn().Err(err).Msg("close store")
		}
	}()

	srv, err := server.New(opts, stores.Products, stores.Users, logger)
	if err != nil {
		return err
	}

	return srv.ListenAndServe(ctx)
}
