package main

import (
	"github.com/urfave/cli/v2"

	outputSvc "github.com/panbanda/modlens/internal/service/output"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Run every check and print the full report",
		ArgsUsage: "<facts.json|facts.yaml>",
		Flags:     factsFlags(),
		Action:    viewAction(outputSvc.ViewAll),
	}
}

func cyclesCmd() *cli.Command {
	return &cli.Command{
		Name:      "cycles",
		Usage:     "Detect circular dependencies",
		ArgsUsage: "<facts.json|facts.yaml>",
		Flags:     factsFlags(),
		Action:    viewAction(outputSvc.ViewCycles),
	}
}

func exportsCmd() *cli.Command {
	return &cli.Command{
		Name:      "exports",
		Usage:     "List unused exports with their classification",
		ArgsUsage: "<facts.json|facts.yaml>",
		Flags:     factsFlags(),
		Action:    viewAction(outputSvc.ViewExports),
	}
}

func importsCmd() *cli.Command {
	return &cli.Command{
		Name:      "imports",
		Usage:     "List imports of missing exports and unresolved relative imports",
		ArgsUsage: "<facts.json|facts.yaml>",
		Flags:     factsFlags(),
		Action:    viewAction(outputSvc.ViewImports),
	}
}

func couplingCmd() *cli.Command {
	return &cli.Command{
		Name:      "coupling",
		Usage:     "Find modules with high internal fan-out",
		ArgsUsage: "<facts.json|facts.yaml>",
		Flags: append(factsFlags(),
			&cli.IntFlag{
				Name:  "threshold",
				Usage: "Fan-out above which a module is flagged (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Glob of modules to skip (repeatable, adds to config)",
			},
		),
		Action: viewAction(outputSvc.ViewCoupling),
	}
}

func viewAction(view outputSvc.View) cli.ActionFunc {
	return func(c *cli.Context) error {
		e, err := setup(c)
		if err != nil {
			return err
		}
		if c.IsSet("threshold") {
			e.cfg.Analysis.Coupling.Threshold = c.Int("threshold")
		}
		if excl := c.StringSlice("exclude"); len(excl) > 0 {
			e.cfg.Analysis.Coupling.ExcludePatterns = append(e.cfg.Analysis.Coupling.ExcludePatterns, excl...)
		}

		res, err := e.service(c).Analyze(c.Context, e.request())
		if err != nil {
			return err
		}
		return e.render(c, res, view)
	}
}
