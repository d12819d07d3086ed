package engine

import (
	"github.com/panbanda/modlens/pkg/analyzer/classify"
	"github.com/panbanda/modlens/pkg/analyzer/coupling"
	"github.com/panbanda/modlens/pkg/analyzer/resolver"
	"github.com/panbanda/modlens/pkg/config"
)

// Options is the validated, engine-facing view of configuration. The graph
// is always built; the flags below only skip later stages.
type Options struct {
	CodeExtensions []string
	DataExtensions []string

	CircularDependencies bool
	UnusedExports        bool
	MissingExports       bool
	Coupling             bool

	CouplingThreshold int
	CouplingExclude   []string

	Project classify.Project
	Rules   classify.Rules
	// IgnoredImports are specifier globs. Matching unresolved imports are
	// counted but not classified or reported.
	IgnoredImports []string

	ExportWeights classify.ExportWeights
	ImportWeights classify.ImportWeights
}

// DefaultOptions enables every check with stock weights.
func DefaultOptions() Options {
	return Options{
		CodeExtensions:       resolver.DefaultCodeExtensions,
		DataExtensions:       resolver.DefaultDataExtensions,
		CircularDependencies: true,
		UnusedExports:        true,
		MissingExports:       true,
		Coupling:             true,
		CouplingThreshold:    coupling.DefaultThreshold,
		ExportWeights:        classify.DefaultExportWeights(),
		ImportWeights:        classify.DefaultImportWeights(),
	}
}

// FromConfig maps a loaded configuration onto engine options. project
// carries manifest metadata the config file does not hold.
func FromConfig(cfg *config.Config, project classify.Project) Options {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	o := Options{
		CodeExtensions:       cfg.Scan.Extensions,
		DataExtensions:       cfg.Scan.DataExtensions,
		CircularDependencies: cfg.Analysis.CircularDependencies,
		UnusedExports:        cfg.Analysis.UnusedExports,
		MissingExports:       cfg.Analysis.MissingExports,
		Coupling:             cfg.Analysis.Coupling.Enabled,
		CouplingThreshold:    cfg.Analysis.Coupling.Threshold,
		CouplingExclude:      cfg.Analysis.Coupling.ExcludePatterns,
		Project:              project,
		Rules: classify.Rules{
			IgnoredExports: cfg.Rules.IgnoredExports,
			PublicAPIPaths: cfg.Rules.PublicAPIPaths,
		},
		IgnoredImports: cfg.Rules.IgnoredImports,
		ExportWeights:  exportWeights(cfg.Classifier.Export),
		ImportWeights:  importWeights(cfg.Classifier.Import),
	}
	if len(o.CodeExtensions) == 0 {
		o.CodeExtensions = resolver.DefaultCodeExtensions
	}
	if len(o.DataExtensions) == 0 {
		o.DataExtensions = resolver.DefaultDataExtensions
	}
	return o
}

func exportWeights(w config.ExportWeights) classify.ExportWeights {
	return classify.ExportWeights{
		IgnoredByConfig:  w.IgnoredByConfig,
		PublicAPIPath:    w.PublicAPIPath,
		EntryPointFile:   w.EntryPointFile,
		IndexFile:        w.IndexFile,
		FrameworkPattern: w.FrameworkPattern,
		TestUtility:      w.TestUtility,
		LifecycleMethod:  w.LifecycleMethod,
		DemoOrExample:    w.DemoOrExample,
		Deprecated:       w.Deprecated,
		PrivateNaming:    w.PrivateNaming,
	}
}

func importWeights(w config.ImportWeights) classify.ImportWeights {
	return classify.ImportWeights{
		IntegrationTest:     w.IntegrationTest,
		BuildTimeConstant:   w.BuildTimeConstant,
		PlatformSpecific:    w.PlatformSpecific,
		OptionalDependency:  w.OptionalDependency,
		PossibleTypo:        w.PossibleTypo,
		ImproperBuildImport: w.ImproperBuildImport,
		MissingExtension:    w.MissingExtension,
	}
}

// defaultExtension is proposed by the missing-extension signal.
func (o Options) defaultExtension() string {
	if len(o.CodeExtensions) > 0 {
		return o.CodeExtensions[0]
	}
	return ".js"
}
