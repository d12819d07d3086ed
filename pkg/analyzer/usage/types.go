package usage

import "github.com/panbanda/modlens/pkg/facts"

// Consumer is one import that uses an export.
type Consumer struct {
	Module string              `json:"module" toon:"module"`
	Line         int                 `json:"line" toon:"line"`
	Kind   facts.SpecifierKind `json:"kind" toon:"kind"`
}

// Entry tracks the consumers of a single export.
type Entry struct {
	Export    facts.ExportFact `json:"export" toon:"export"`
	Consumers []Consumer       `json:"consumers" toon:"consumers"`
}

// Used reports whether anything imports the export.
func (e *Entry) Used() bool {
	return len(e.Consumers) > 0
}

// Ledger is the export table of one module with usage attached.
type Ledger struct {
	Module  string            `json:"module" toon:"module"`
	Entries map[string]*Entry `json:"entries" toon:"entries"`
	// Names holds entry names in declaration order.
	Names []string `json:"names" toon:"names"`
}

// UnusedExport is an export nothing in the graph imports.
type UnusedExport struct {
	Module     string           `json:"module" toon:"module"`
	ExportName string           `json:"export_name" toon:"export_name"`
	Kind       facts.ExportKind `json:"kind" toon:"kind"`
	Line       int              `json:"line" toon:"line"`
}

// MissingExport is a named import the resolved target does not export.
type MissingExport struct {
	Source       string `json:"source" toon:"source"`
	Specifier    string `json:"specifier" toon:"specifier"`
	TargetModule string `json:"target_module" toon:"target_module"`
	ExportName   string `json:"missing_export" toon:"missing_export"`
	Line         int    `json:"line" toon:"line"`
}

// Result holds the usage analysis for one graph.
type Result struct {
	Ledgers map[string]*Ledger `json:"-" toon:"-"`
	Unused  []UnusedExport     `json:"unused_exports" toon:"unused_exports"`
	Missing []MissingExport    `json:"missing_exports" toon:"missing_exports"`
}

// Ledger returns the export ledger for a module.
func (r *Result) Ledger(module string) (*Ledger, bool) {
	l, ok := r.Ledgers[module]
	return l, ok
}
