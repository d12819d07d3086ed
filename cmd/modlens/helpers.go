package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/modlens/internal/output"
	"github.com/panbanda/modlens/internal/service/analysis"
	outputSvc "github.com/panbanda/modlens/internal/service/output"
	"github.com/panbanda/modlens/pkg/config"
)

// errProblemsFound makes --fail-on-problems exit non-zero.
var errProblemsFound = errors.New("likely-problematic findings reported")

// factsFlags are shared by every command that runs an analysis.
func factsFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Concurrent record decoders (default: number of CPUs)",
		},
		&cli.BoolFlag{
			Name:  "no-progress",
			Usage: "Hide the decoding progress indicator",
		},
		&cli.BoolFlag{
			Name:  "fail-on-problems",
			Usage: "Exit non-zero when a cycle or likely-problematic finding is reported",
		},
	}
}

// env is everything one command invocation resolves from flags and files.
type env struct {
	logger    *logrus.Logger
	cfg       *config.Config
	cfgSource string
	facts     string
	root      string
}

// factsPath returns the fact document named by the first argument.
func factsPath(c *cli.Context) (string, error) {
	if c.Args().Len() == 0 {
		return "", fmt.Errorf("%w: pass the path of a JSON or YAML fact document", analysis.ErrNoFacts)
	}
	return c.Args().First(), nil
}

// configRoot is where config files are searched: --root, then the
// directory holding the fact document.
func configRoot(c *cli.Context, facts string) string {
	if root := c.String("root"); root != "" {
		return root
	}
	if facts != "" {
		return filepath.Dir(facts)
	}
	return "."
}

// loadConfig resolves the config for a command. An explicit --config that
// fails to parse is an error; a discovered one falls back to defaults.
func loadConfig(c *cli.Context, root string, logger *logrus.Logger) (*config.Config, string, error) {
	if path := c.String("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	res := config.LoadConfig(config.WithRoot(root), config.WithLogger(logger))
	return res.Config, res.Source, nil
}

func setup(c *cli.Context) (*env, error) {
	facts, err := factsPath(c)
	if err != nil {
		return nil, err
	}
	logger := appLogger(c)
	cfg, source, err := loadConfig(c, configRoot(c, facts), logger)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if source != "" {
		logger.WithField("path", source).Debug("config loaded")
	}
	return &env{logger: logger, cfg: cfg, cfgSource: source, facts: facts, root: c.String("root")}, nil
}

func (e *env) service(c *cli.Context) *analysis.Service {
	return analysis.New(
		analysis.WithConfig(e.cfg),
		analysis.WithLogger(e.logger),
		analysis.WithWorkers(c.Int("workers")),
		analysis.WithProgress(!c.Bool("no-progress") && !e.format(c).Structured()),
	)
}

func (e *env) request() analysis.Request {
	return analysis.Request{FactsPath: e.facts, Root: e.root}
}

// format prefers an explicit --format over the config file.
func (e *env) format(c *cli.Context) output.Format {
	if !c.IsSet("format") && e.cfg.Output.Format != "" {
		return output.ParseFormat(e.cfg.Output.Format)
	}
	return output.ParseFormat(c.String("format"))
}

func (e *env) renderer(c *cli.Context) (*outputSvc.Service, error) {
	return outputSvc.New(
		outputSvc.WithFormat(e.format(c)),
		outputSvc.WithFile(c.String("output")),
		outputSvc.WithColor(e.cfg.Output.Color && !c.Bool("no-color")),
	)
}

// render writes view and applies --fail-on-problems.
func (e *env) render(c *cli.Context, res *analysis.Result, view outputSvc.View) error {
	out, err := e.renderer(c)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := out.Render(res, view); err != nil {
		return err
	}
	if c.Bool("fail-on-problems") && res.Report.HasProblems() {
		return errProblemsFound
	}
	return nil
}
