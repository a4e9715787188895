package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/shopcart/internal/commands/doctor"
	"github.com/hay-kot/shopcart/internal/printer"
)

type DoctorCmd struct {
	flags *Flags
	json  bool
	fix   bool
	only  []string
}

func NewDoctorCmd(flags *Flags) *DoctorCmd {
	return &DoctorCmd{flags: flags}
}

func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "doctor",
		Usage:     "Run health checks on your shopcart setup",
		UsageText: "shopcart doctor [--json] [--fix] [--only name]...",
		Description: `Checks the configuration, the data directory, the local state file and that
the API answers. Exits 1 when any check fails.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "output as JSON", Destination: &cmd.json},
			&cli.BoolFlag{Name: "fix", Usage: "create a missing data directory", Destination: &cmd.fix},
			&cli.StringSliceFlag{
				Name:        "only",
				Usage:       "run only the named checks: configuration, 'data directory', 'state file', api",
				Destination: &cmd.only,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) checks() []doctor.Check {
	cfg := cmd.flags.Config
	all := []doctor.Check{
		doctor.NewConfigCheck(cfg, cmd.flags.ConfigPath),
		doctor.NewDataDirCheck(cfg.DataDir, cmd.fix),
		doctor.NewStateCheck(cfg.StateFile(), cmd.flags.Carts, cmd.flags.Service),
		doctor.NewAPICheck(cfg.API.BaseURL, cmd.flags.Service, cfg.API.Timeout),
	}
	if len(cmd.only) == 0 {
		return all
	}
	return slices.DeleteFunc(all, func(c doctor.Check) bool {
		return !slices.ContainsFunc(cmd.only, func(name string) bool {
			return strings.EqualFold(strings.TrimSpace(name), c.Name())
		})
	})
}

// doctorReport is the --json shape.
type doctorReport struct {
	Healthy bool            `json:"healthy"`
	Passed  int             `json:"passed"`
	Warned  int             `json:"warned"`
	Failed  int             `json:"failed"`
	Checks  []doctor.Result `json:"checks"`
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	checks := cmd.checks()
	if len(checks) == 0 {
		return fmt.Errorf("no checks match %s", strings.Join(cmd.only, ", "))
	}

	results := doctor.RunAll(ctx, checks)
	passed, warned, failed := doctor.Summary(results)

	if cmd.json {
		report := doctorReport{failed == 0, passed, warned, failed, results}
		if err := encodeJSON(c, report); err != nil {
			return err
		}
	} else {
		cmd.print(printer.Ctx(ctx), results)
		printer.Ctx(ctx).Printf("%d passed, %d warnings, %d failed", passed, warned, failed)
	}

	if failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *DoctorCmd) print(p *printer.Printer, results []doctor.Result) {
	items := map[doctor.Status]func(label, detail string){
		doctor.StatusPass: p.CheckItem,
		doctor.StatusWarn: p.WarnItem,
		doctor.StatusFail: p.FailItem,
	}

	for _, result := range results {
		p.Section(result.Name)
		for _, item := range result.Items {
			items[item.Status](item.Label, item.Detail)
		}
		p.Printf("")
	}

	if n := doctor.CountFixable(results); n > 0 && !cmd.fix {
		p.Infof("%d issue(s) can be fixed with 'shopcart doctor --fix'", n)
	}
}
