package main

import (
	"context"
	"errors"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/modlens/internal/manifest"
	outputSvc "github.com/panbanda/modlens/internal/service/output"
	"github.com/panbanda/modlens/pkg/config"
	"github.com/panbanda/modlens/pkg/watch"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Re-run the analysis whenever the fact document or config changes",
		ArgsUsage: "<facts.json|facts.yaml>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "view",
				Value: string(outputSvc.ViewAll),
				Usage: "What to print on each run: all, graph, cycles, exports, imports, coupling",
			},
			&cli.DurationFlag{
				Name:  "debounce",
				Value: watch.DefaultDebounce,
				Usage: "Quiet period before a change triggers a run",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent record decoders (default: number of CPUs)",
			},
		},
		Action: runWatchCmd,
	}
}

func runWatchCmd(c *cli.Context) error {
	view, err := outputSvc.ParseView(c.String("view"))
	if err != nil {
		return err
	}
	e, err := setup(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	run := func() {
		res, err := e.service(c).Analyze(ctx, e.request())
		if err != nil {
			color.Red("Analysis failed: %v", err)
			return
		}
		if err := e.render(c, res, view); err != nil {
			color.Red("Render failed: %v", err)
		}
	}
	run()

	files := []string{e.facts, e.cfgSource, filepath.Join(configRoot(c, e.facts), manifest.FileName)}
	w, err := watch.NewWatcher(files, watch.WithDebounce(c.Duration("debounce")))
	if err != nil {
		return err
	}
	defer w.Stop()

	w.SetCallback(func(changed []string) {
		for _, p := range changed {
			if e.cfgSource != "" && samePath(p, e.cfgSource) {
				cfg, err := reloadConfig(e.cfgSource)
				if err != nil {
					color.Yellow("Config reload failed, keeping previous config: %v", err)
					break
				}
				e.cfg = cfg
				e.logger.WithField("path", e.cfgSource).Info("config reloaded")
			}
		}
		started := time.Now()
		run()
		e.logger.WithField("elapsed", time.Since(started)).Debug("watch run finished")
	})

	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// reloadConfig reads a changed config file. An invalid file is rejected
// the same way setup rejects it.
func reloadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
