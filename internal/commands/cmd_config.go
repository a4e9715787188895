package commands

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/hay-kot/shopcart/internal/core/config"
	"github.com/hay-kot/shopcart/internal/printer"
)

type ConfigCmd struct {
	flags  *Flags
	json   bool
	reveal bool
}

// NewConfigCmd creates the config command group.
func NewConfigCmd(flags *Flags) *ConfigCmd {
	return &ConfigCmd{flags: flags}
}

// Register adds `config validate` and `config show` to the application.
func (cmd *ConfigCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Inspect and validate configuration",
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "Validate the configuration file",
				UsageText: "shopcart config validate [--json]",
				Description: `Checks the API URL and timeout, server secrets and limits, CORS origins,
the seed glob and the TUI refresh interval. Exits 1 when any field is invalid.`,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "output as JSON", Destination: &cmd.json},
				},
				Action: cmd.validate,
			},
			{
				Name:      "show",
				Usage:     "Print the effective configuration as YAML",
				UsageText: "shopcart config show [--reveal]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "reveal", Usage: "print the JWT secret instead of masking it", Destination: &cmd.reveal},
				},
				Action: cmd.show,
			},
		},
	})

	return app
}

// configIssue is one error or warning attributed to a config section.
type configIssue struct {
	Section string `json:"section"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (cmd *ConfigCmd) validate(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}

	errs := fieldIssues(cfg.ValidateDeep(cmd.flags.ConfigPath))
	warns := warningIssues(cfg.Warnings())

	if cmd.json {
		if err := encodeJSON(c, struct {
			Valid    bool          `json:"valid"`
			Errors   []configIssue `json:"errors,omitempty"`
			Warnings []configIssue `json:"warnings,omitempty"`
		}{len(errs) == 0, errs, warns}); err != nil {
			return err
		}
	} else {
		printIssues(printer.Ctx(ctx), cmd.flags.ConfigPath, errs, warns)
	}

	if len(errs) > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func printIssues(p *printer.Printer, path string, errs, warns []configIssue) {
	if path != "" {
		p.Infof("%s", path)
	}

	var sections []string
	for _, is := range slices.Concat(errs, warns) {
		if !slices.Contains(sections, is.Section) {
			sections = append(sections, is.Section)
		}
	}

	for _, section := range sections {
		p.Section(section)
		for _, is := range errs {
			if is.Section == section {
				p.FailItem(is.Field, is.Message)
			}
		}
		for _, is := range warns {
			if is.Section == section {
				p.WarnItem(is.Field, is.Message)
			}
		}
		p.Printf("")
	}

	switch {
	case len(errs) > 0:
		p.Errorf("%d error(s), %d warning(s)", len(errs), len(warns))
	case len(warns) > 0:
		p.Successf("Configuration is valid (%d warning(s))", len(warns))
	default:
		p.Successf("Configuration is valid")
	}
}

func fieldIssues(err error) []configIssue {
	if err == nil {
		return nil
	}

	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return []configIssue{{Section: "general", Message: err.Error()}}
	}

	out := make([]configIssue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		section, _, _ := strings.Cut(fe.Field, ".")
		out = append(out, configIssue{Section: section, Field: fe.Field, Message: fe.Err.Error()})
	}
	return out
}

func warningIssues(warnings []config.ValidationWarning) []configIssue {
	out := make([]configIssue, 0, len(warnings))
	for _, w := range warnings {
		section := strings.ToLower(w.Category)
		field := section
		if w.Item != "" {
			field += "." + w.Item
		}
		out = append(out, configIssue{Section: section, Field: field, Message: w.Message})
	}
	return out
}

func (cmd *ConfigCmd) show(_ context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}

	shown := *cfg
	if !cmd.reveal && shown.Server.JWTSecret != "" {
		shown.Server.JWTSecret = "********"
	}

	enc := yaml.NewEncoder(c.Root().Writer)
	enc.SetIndent(2)
	if err := enc.Encode(shown); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
