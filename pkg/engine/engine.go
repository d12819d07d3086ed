// Package engine runs the module-graph analysis pipeline: build and resolve
// the graph, detect cycles, track export usage, classify findings and check
// coupling. A run is synchronous and deterministic.
package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/panbanda/modlens/internal/logging"
	"github.com/panbanda/modlens/pkg/analyzer/classify"
	"github.com/panbanda/modlens/pkg/analyzer/coupling"
	"github.com/panbanda/modlens/pkg/analyzer/cycles"
	"github.com/panbanda/modlens/pkg/analyzer/depgraph"
	"github.com/panbanda/modlens/pkg/analyzer/resolver"
	"github.com/panbanda/modlens/pkg/analyzer/usage"
	"github.com/panbanda/modlens/pkg/config"
	"github.com/panbanda/modlens/pkg/facts"
	"github.com/panbanda/modlens/pkg/glob"
)

// StageLoad names per-module failures found while validating records.
const StageLoad = "load"

// Engine orchestrates the analyzers. It holds no per-run state, so one
// Engine may run many fact sets.
type Engine struct {
	opts    Options
	logger  *logrus.Logger
	matcher *glob.Matcher
}

// Option is a functional option for configuring Engine.
type Option func(*Engine)

// WithOptions replaces the engine options.
func WithOptions(o Options) Option {
	return func(e *Engine) {
		e.opts = o
	}
}

// WithConfig derives options from a loaded configuration.
func WithConfig(cfg *config.Config, project classify.Project) Option {
	return func(e *Engine) {
		e.opts = FromConfig(cfg, project)
	}
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine with default options.
func New(opts ...Option) *Engine {
	e := &Engine{
		opts:   DefaultOptions(),
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.matcher = glob.NewMatcher()
	return e
}

// Options returns the options in effect.
func (e *Engine) Options() Options {
	return e.opts
}

// Analyze validates records and runs the pipeline over the valid ones.
func (e *Engine) Analyze(root string, records []facts.ModuleRecord) *Report {
	set, errs := facts.NewSet(root, records)
	return e.Run(set, errs)
}

// Run analyzes set. loadErrs are records excluded before the run; they are
// reported as module errors next to failures raised while building the
// graph. Run always returns a complete report.
func (e *Engine) Run(set *facts.Set, loadErrs []*facts.RecordError) *Report {
	rep := newReport()
	for _, le := range loadErrs {
		rep.ModuleErrors = append(rep.ModuleErrors, ModuleError{Module: le.Path, Stage: StageLoad, Message: le.Err.Error()})
	}

	r := resolver.New(set, resolver.WithExtensions(e.opts.CodeExtensions, e.opts.DataExtensions))
	g, buildErrs := depgraph.NewBuilder(r, depgraph.WithLogger(e.logger)).Build(set)
	rep.Graph = g
	for _, be := range buildErrs {
		rep.ModuleErrors = append(rep.ModuleErrors, ModuleError{Module: be.Module, Stage: be.Stage, Message: be.Message()})
	}
	e.logger.WithFields(logrus.Fields{
		"modules":        g.Len(),
		"internal_edges": g.InternalEdgeCount(),
		"external_edges": g.ExternalEdgeCount(),
	}).Debug("graph built")

	if e.opts.CircularDependencies {
		e.detectCycles(g, rep)
	}

	var usageRes *usage.Result
	if e.opts.UnusedExports || e.opts.MissingExports {
		usageRes = usage.New(
			usage.WithUnused(e.opts.UnusedExports),
			usage.WithMissing(e.opts.MissingExports),
		).Analyze(g)
	}

	e.classifyExports(g, r, usageRes, rep)
	e.classifyImports(g, r, usageRes, rep)

	if e.opts.Coupling {
		e.checkCoupling(g, rep)
	}

	e.summarize(g, rep)

	digest, err := Digest(rep)
	if err != nil {
		e.logger.WithError(err).Warn("report digest unavailable")
	}
	rep.Digest = digest

	e.logger.WithFields(logrus.Fields{
		"cycles":     rep.Summary.CircularDependencies,
		"unused":     rep.Summary.UnusedExports,
		"missing":    rep.Summary.MissingExports,
		"unresolved": rep.Summary.UnresolvedImports,
		"coupling":   rep.Summary.HighCouplingModules,
		"errors":     rep.Summary.ModuleErrors,
	}).Info("analysis complete")
	return rep
}

func (e *Engine) detectCycles(g *depgraph.Graph, rep *Report) {
	res := cycles.New().Detect(g)
	for _, c := range res.Cycles {
		members := c.Members()
		rel := make([]string, len(members))
		for i, m := range members {
			rel[i] = g.Relative(m)
		}
		rep.CircularDependencies = append(rep.CircularDependencies, CycleFinding{
			Cycle:       c,
			Length:      len(members),
			Fingerprint: Fingerprint(KindCycle, rel...),
		})
	}
	summary := res.Summary
	rep.CycleSummary = &summary
}

func (e *Engine) classifyExports(g *depgraph.Graph, r *resolver.Resolver, res *usage.Result, rep *Report) {
	if res == nil || len(res.Unused) == 0 {
		return
	}
	project := e.opts.Project
	if project.Root == "" {
		project.Root = g.Root
	}
	c := classify.NewExportClassifier(project.ResolveEntries(r), e.opts.Rules,
		classify.WithExportWeights(e.opts.ExportWeights),
		classify.WithExportMatcher(e.matcher),
	)
	for _, u := range res.Unused {
		rep.UnusedExports = append(rep.UnusedExports, ExportFinding{
			UnusedExport:   u,
			Classification: c.Classify(classify.ExportSubject{Module: u.Module, ExportName: u.ExportName}),
			Fingerprint:    Fingerprint(KindUnusedExport, g.Relative(u.Module), u.ExportName),
		})
	}
}

func (e *Engine) classifyImports(g *depgraph.Graph, r *resolver.Resolver, res *usage.Result, rep *Report) {
	c := classify.NewImportClassifier(g.Paths(),
		classify.WithImportWeights(e.opts.ImportWeights),
		classify.WithDefaultExtension(e.opts.defaultExtension()),
		classify.WithBasenameHints(r),
	)

	for _, u := range g.Unresolved() {
		if e.matcher.MatchAny(e.opts.IgnoredImports, u.Specifier) {
			rep.Summary.IgnoredImports++
			continue
		}
		rep.UnresolvedImports = append(rep.UnresolvedImports, UnresolvedFinding{
			Unresolved:     u,
			Classification: c.Classify(classify.ImportSubject{FromModule: u.Module, Specifier: u.Specifier}),
			Fingerprint:    Fingerprint(KindUnresolved, g.Relative(u.Module), u.Specifier),
		})
	}

	if res == nil {
		return
	}
	for _, m := range res.Missing {
		var names []string
		if ledger, ok := res.Ledger(m.TargetModule); ok {
			names = ledger.Names
		}
		rep.MissingExports = append(rep.MissingExports, MissingExportFinding{
			MissingExport: m,
			Classification: c.Classify(classify.ImportSubject{
				FromModule:    m.Source,
				Specifier:     m.Specifier,
				Name:          m.ExportName,
				TargetExports: names,
			}),
			Fingerprint: Fingerprint(KindMissing, g.Relative(m.Source), g.Relative(m.TargetModule), m.ExportName),
		})
	}
}

func (e *Engine) checkCoupling(g *depgraph.Graph, rep *Report) {
	res := coupling.New(
		coupling.WithThreshold(e.opts.CouplingThreshold),
		coupling.WithExcludePatterns(e.opts.CouplingExclude),
		coupling.WithMatcher(e.matcher),
	).Analyze(g)
	for _, m := range res.Modules {
		rep.HighCouplingModules = append(rep.HighCouplingModules, CouplingFinding{
			HighCoupling: m,
			Fingerprint:  Fingerprint(KindHighCoupling, g.Relative(m.Module)),
		})
	}
	stats := res.Stats
	rep.CouplingStats = &stats
}

func (e *Engine) summarize(g *depgraph.Graph, rep *Report) {
	s := &rep.Summary
	s.TotalModules = g.Len()
	s.InternalEdges = g.InternalEdgeCount()
	s.ExternalEdges = g.ExternalEdgeCount()
	s.UnresolvedImports = len(rep.UnresolvedImports) + s.IgnoredImports
	s.CircularDependencies = len(rep.CircularDependencies)
	s.UnusedExports = len(rep.UnusedExports)
	s.MissingExports = len(rep.MissingExports)
	s.HighCouplingModules = len(rep.HighCouplingModules)
	s.ModuleErrors = len(rep.ModuleErrors)

	for _, f := range rep.UnusedExports {
		if f.Classification.Classification == classify.LikelyProblematic {
			s.LikelyProblematic++
		}
	}
	for _, f := range rep.MissingExports {
		if f.Classification.Classification == classify.LikelyProblematic {
			s.LikelyProblematic++
		}
	}
	for _, f := range rep.UnresolvedImports {
		if f.Classification.Classification == classify.LikelyProblematic {
			s.LikelyProblematic++
		}
	}

	if rep.CycleSummary != nil {
		s.StronglyConnectedComponents = rep.CycleSummary.StronglyConnectedComponents
		s.CyclicModules = len(rep.CycleSummary.CyclicModules)
	}
}
