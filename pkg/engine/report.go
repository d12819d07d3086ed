package engine

import (
	"github.com/panbanda/modlens/pkg/analyzer/classify"
	"github.com/panbanda/modlens/pkg/analyzer/coupling"
	"github.com/panbanda/modlens/pkg/analyzer/cycles"
	"github.com/panbanda/modlens/pkg/analyzer/depgraph"
	"github.com/panbanda/modlens/pkg/analyzer/usage"
)

// Finding kinds, used in fingerprints and summaries.
const (
	KindCycle        = "circular-dependency"
	KindUnusedExport = "unused-export"
	KindMissing      = "missing-export"
	KindUnresolved   = "unresolved-import"
	KindHighCoupling = "high-coupling"
)

// CycleFinding is one deduplicated circular dependency.
type CycleFinding struct {
	Cycle       cycles.Cycle `json:"cycle" toon:"cycle"`
	Length      int          `json:"length" toon:"length"`
	Fingerprint string       `json:"fingerprint" toon:"fingerprint"`
}

// ExportFinding is a classified unused export.
type ExportFinding struct {
	usage.UnusedExport
	Classification classify.Result `json:"classification" toon:"classification"`
	Fingerprint    string          `json:"fingerprint" toon:"fingerprint"`
}

// MissingExportFinding is a classified named import its target lacks.
type MissingExportFinding struct {
	usage.MissingExport
	Classification classify.Result `json:"classification" toon:"classification"`
	Fingerprint    string          `json:"fingerprint" toon:"fingerprint"`
}

// UnresolvedFinding is a classified relative import with no target.
type UnresolvedFinding struct {
	depgraph.Unresolved
	Classification classify.Result `json:"classification" toon:"classification"`
	Fingerprint    string          `json:"fingerprint" toon:"fingerprint"`
}

// CouplingFinding is a module above the fan-out threshold.
type CouplingFinding struct {
	coupling.HighCoupling
	Fingerprint string `json:"fingerprint" toon:"fingerprint"`
}

// ModuleError is a per-module failure from loading or graph building.
type ModuleError struct {
	Module  string `json:"module" toon:"module"`
	Stage   string `json:"stage" toon:"stage"`
	Message string `json:"message" toon:"message"`
}

// Summary holds the report counters.
type Summary struct {
	TotalModules      int `json:"total_modules" toon:"total_modules"`
	InternalEdges     int `json:"internal_edges" toon:"internal_edges"`
	ExternalEdges     int `json:"external_edges" toon:"external_edges"`
	UnresolvedImports int `json:"unresolved_imports" toon:"unresolved_imports"`
	IgnoredImports    int `json:"ignored_imports" toon:"ignored_imports"`

	CircularDependencies int `json:"circular_dependencies" toon:"circular_dependencies"`
	UnusedExports        int `json:"unused_exports" toon:"unused_exports"`
	MissingExports       int `json:"missing_exports" toon:"missing_exports"`
	HighCouplingModules  int `json:"high_coupling_modules" toon:"high_coupling_modules"`
	ModuleErrors         int `json:"module_errors" toon:"module_errors"`

	// LikelyProblematic counts classified findings with a non-positive score.
	LikelyProblematic int `json:"likely_problematic" toon:"likely_problematic"`

	StronglyConnectedComponents int `json:"strongly_connected_components" toon:"strongly_connected_components"`
	CyclicModules               int `json:"cyclic_modules" toon:"cyclic_modules"`
}

// Report is the complete output of one engine run. It carries no
// timestamps so identical inputs produce identical reports.
type Report struct {
	Graph                *depgraph.Graph        `json:"graph" toon:"graph"`
	CircularDependencies []CycleFinding         `json:"circular_dependencies" toon:"circular_dependencies"`
	UnusedExports        []ExportFinding        `json:"unused_exports" toon:"unused_exports"`
	MissingExports       []MissingExportFinding `json:"missing_exports" toon:"missing_exports"`
	UnresolvedImports    []UnresolvedFinding    `json:"unresolved_imports" toon:"unresolved_imports"`
	HighCouplingModules  []CouplingFinding      `json:"high_coupling_modules" toon:"high_coupling_modules"`
	CouplingStats        *coupling.Stats        `json:"coupling_stats,omitempty" toon:"coupling_stats,omitempty"`
	CycleSummary         *cycles.Summary        `json:"cycle_summary,omitempty" toon:"cycle_summary,omitempty"`
	ModuleErrors         []ModuleError          `json:"module_errors" toon:"module_errors"`
	Summary              Summary                `json:"summary" toon:"summary"`
	Digest               string                 `json:"digest" toon:"digest"`
}

// HasProblems reports whether any finding was classified likely-problematic
// or any cycle was found.
func (r *Report) HasProblems() bool {
	return r.Summary.LikelyProblematic > 0 || r.Summary.CircularDependencies > 0
}

func newReport() *Report {
	return &Report{
		CircularDependencies: []CycleFinding{},
		UnusedExports:        []ExportFinding{},
		MissingExports:       []MissingExportFinding{},
		UnresolvedImports:    []UnresolvedFinding{},
		HighCouplingModules:  []CouplingFinding{},
		ModuleErrors:         []ModuleError{},
	}
}
