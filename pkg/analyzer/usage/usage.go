// Package usage cross-references import specifiers against export tables
// to find unused and missing exports.
package usage

import (
	"github.com/panbanda/modlens/pkg/analyzer/depgraph"
	"github.com/panbanda/modlens/pkg/facts"
)

// DefaultExportName is the ledger key of a default export.
const DefaultExportName = "default"

// Analyzer builds export ledgers and derives usage findings.
type Analyzer struct {
	reportUnused  bool
	reportMissing bool
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithUnused toggles unused export findings.
func WithUnused(enabled bool) Option {
	return func(a *Analyzer) {
		a.reportUnused = enabled
	}
}

// WithMissing toggles missing export findings.
func WithMissing(enabled bool) Option {
	return func(a *Analyzer) {
		a.reportMissing = enabled
	}
}

// New creates an Analyzer reporting both finding kinds.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{reportUnused: true, reportMissing: true}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze walks every internal edge of g. Data modules never get a ledger,
// and a named import into a module without a ledger is not a finding:
// there is no export table to check it against.
func (a *Analyzer) Analyze(g *depgraph.Graph) *Result {
	res := &Result{Ledgers: make(map[string]*Ledger)}

	for _, path := range g.Paths() {
		node := g.Nodes[path]
		if node.FileType == facts.FileData || len(node.Exports) == 0 {
			continue
		}
		res.Ledgers[path] = newLedger(path, node.Exports)
	}

	for _, path := range g.Paths() {
		for _, edge := range g.Nodes[path].Imports {
			ledger, ok := res.Ledgers[edge.Target]
			if !ok {
				continue
			}
			for _, spec := range edge.Specifiers {
				consumer := Consumer{Module: path, Line: edge.Line, Kind: spec.Kind}
				switch spec.Kind {
				case facts.SpecifierNamed:
					if entry, ok := ledger.Entries[spec.ImportedName]; ok {
						entry.Consumers = append(entry.Consumers, consumer)
					} else if a.reportMissing {
						res.Missing = append(res.Missing, MissingExport{
							Source:       path,
							Specifier:    edge.Specifier,
							TargetModule: edge.Target,
							ExportName:   spec.ImportedName,
							Line:         edge.Line,
						})
					}
				case facts.SpecifierNamespace:
					for _, entry := range ledger.Entries {
						entry.Consumers = append(entry.Consumers, consumer)
					}
				case facts.SpecifierDefault:
					if entry := ledger.defaultEntry(); entry != nil {
						entry.Consumers = append(entry.Consumers, consumer)
					}
				}
			}
		}
	}

	if a.reportUnused {
		for _, path := range g.Paths() {
			ledger, ok := res.Ledgers[path]
			if !ok {
				continue
			}
			for _, name := range ledger.Names {
				entry := ledger.Entries[name]
				if entry.Used() {
					continue
				}
				res.Unused = append(res.Unused, UnusedExport{
					Module:     path,
					ExportName: name,
					Kind:       entry.Export.Kind,
					Line:       entry.Export.Line,
				})
			}
		}
	}

	return res
}

// newLedger keys entries by name; a repeated name keeps its first
// declaration.
func newLedger(module string, exports []facts.ExportFact) *Ledger {
	l := &Ledger{
		Module:  module,
		Entries: make(map[string]*Entry, len(exports)),
		Names:   make([]string, 0, len(exports)),
	}
	for _, exp := range exports {
		if _, dup := l.Entries[exp.Name]; dup {
			continue
		}
		l.Entries[exp.Name] = &Entry{Export: exp, Consumers: []Consumer{}}
		l.Names = append(l.Names, exp.Name)
	}
	return l
}

// defaultEntry returns the entry named "default", falling back to the first
// export declared with the default kind.
func (l *Ledger) defaultEntry() *Entry {
	if e, ok := l.Entries[DefaultExportName]; ok {
		return e
	}
	for _, name := range l.Names {
		if e := l.Entries[name]; e.Export.Kind == facts.ExportDefault {
			return e
		}
	}
	return nil
}
