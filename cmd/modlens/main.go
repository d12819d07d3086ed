package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/modlens/internal/logging"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

const loggerKey = "logger"

func main() {
	// .env must be loaded before flags read their EnvVars.
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:     "modlens",
		Usage:    "Module dependency graph analysis for JavaScript and TypeScript",
		Version:  version,
		Metadata: make(map[string]interface{}),
		Description: `modlens reads the module facts produced by a scanner (imports and exports
per file) and reports circular dependencies, unused exports, imports of
missing exports, unresolved relative imports and highly coupled modules.

Every finding is classified likely-valid or likely-problematic from project
signals such as entry points, public API paths and framework conventions.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"MODLENS_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format: text, json, markdown, toon",
				EnvVars: []string{"MODLENS_FORMAT"},
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.StringFlag{
				Name:  "root",
				Usage: "Project root (overrides the root recorded in the fact document)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level: debug, info, warn, error",
				EnvVars: []string{"MODLENS_LOG_LEVEL"},
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&cli.StringFlag{
				Name:  "pprof",
				Usage: "Enable pprof profiling and write to specified prefix (creates <prefix>.cpu.pprof and <prefix>.mem.pprof)",
			},
		},
		Before: func(c *cli.Context) error {
			c.App.Metadata[loggerKey] = logging.Stderr(c.String("log-level"), c.Bool("verbose"))
			if c.Bool("no-color") {
				color.NoColor = true
			}

			if pprofPrefix := c.String("pprof"); pprofPrefix != "" {
				cpuFile, err := os.Create(pprofPrefix + ".cpu.pprof")
				if err != nil {
					return fmt.Errorf("failed to create CPU profile: %w", err)
				}
				if err := pprof.StartCPUProfile(cpuFile); err != nil {
					cpuFile.Close()
					return fmt.Errorf("failed to start CPU profile: %w", err)
				}
				c.App.Metadata["pprofCPU"] = cpuFile
			}
			return nil
		},
		After: func(c *cli.Context) error {
			if pprofPrefix := c.String("pprof"); pprofPrefix != "" {
				pprof.StopCPUProfile()
				if cpuFile, ok := c.App.Metadata["pprofCPU"].(*os.File); ok {
					cpuFile.Close()
					color.Green("CPU profile written to %s.cpu.pprof", pprofPrefix)
				}

				memFile, err := os.Create(pprofPrefix + ".mem.pprof")
				if err != nil {
					return fmt.Errorf("failed to create memory profile: %w", err)
				}
				defer memFile.Close()

				runtime.GC()
				if err := pprof.WriteHeapProfile(memFile); err != nil {
					return fmt.Errorf("failed to write memory profile: %w", err)
				}
				color.Green("Memory profile written to %s.mem.pprof", pprofPrefix)
			}
			return nil
		},
		Commands: []*cli.Command{
			analyzeCmd(),
			graphCmd(),
			cyclesCmd(),
			exportsCmd(),
			importsCmd(),
			couplingCmd(),
			configCmd(),
			watchCmd(),
			mcpCmd(),
		},
	}
}

// appLogger returns the logger built in Before, or a discard logger when
// a command runs without it (tests).
func appLogger(c *cli.Context) *logrus.Logger {
	if c.App != nil {
		if l, ok := c.App.Metadata[loggerKey].(*logrus.Logger); ok {
			return l
		}
	}
	return logging.Discard()
}
