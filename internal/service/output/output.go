// Package output turns analysis results into tables, sections and
// structured documents.
package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/panbanda/modlens/internal/output"
	"github.com/panbanda/modlens/internal/service/analysis"
	"github.com/panbanda/modlens/pkg/analyzer/classify"
	"github.com/panbanda/modlens/pkg/analyzer/coupling"
	"github.com/panbanda/modlens/pkg/analyzer/cycles"
	"github.com/panbanda/modlens/pkg/analyzer/depgraph"
	"github.com/panbanda/modlens/pkg/engine"
)

// Format represents output format.
type Format = output.Format

// Supported formats (re-exported for convenience).
const (
	FormatText     = output.FormatText
	FormatJSON     = output.FormatJSON
	FormatMarkdown = output.FormatMarkdown
	FormatTOON     = output.FormatTOON
)

// View selects which part of a result is rendered.
type View string

const (
	ViewAll      View = "all"
	ViewGraph    View = "graph"
	ViewCycles   View = "cycles"
	ViewExports  View = "exports"
	ViewImports  View = "imports"
	ViewCoupling View = "coupling"
)

// Views lists every view in display order.
var Views = []View{ViewAll, ViewGraph, ViewCycles, ViewExports, ViewImports, ViewCoupling}

// ParseView converts a string to a View.
func ParseView(s string) (View, error) {
	if s == "" {
		return ViewAll, nil
	}
	for _, v := range Views {
		if string(v) == strings.ToLower(s) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown view %q", s)
}

// Service handles output formatting.
type Service struct {
	format   Format
	writer   io.Writer
	colored  bool
	filePath string
	file     *os.File
}

// Option configures a Service.
type Option func(*Service)

// WithFormat sets the output format.
func WithFormat(f Format) Option {
	return func(s *Service) {
		s.format = f
	}
}

// WithWriter sets the output writer.
func WithWriter(w io.Writer) Option {
	return func(s *Service) {
		s.writer = w
	}
}

// WithColor enables or disables colored output.
func WithColor(enabled bool) Option {
	return func(s *Service) {
		s.colored = enabled
	}
}

// WithFile sets output to a file.
func WithFile(path string) Option {
	return func(s *Service) {
		s.filePath = path
	}
}

// New creates a new output service.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		format:  FormatText,
		writer:  os.Stdout,
		colored: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.filePath != "" {
		f, err := os.Create(s.filePath)
		if err != nil {
			return nil, err
		}
		s.file = f
		s.writer = f
		s.colored = false
	}
	return s, nil
}

// Close closes the output service and any open files.
func (s *Service) Close() error {
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

// Format returns the current format.
func (s *Service) Format() Format {
	return s.format
}

// Writer returns the current writer.
func (s *Service) Writer() io.Writer {
	return s.writer
}

// Colored returns whether output should be colored.
func (s *Service) Colored() bool {
	return s.colored
}

func (s *Service) formatter() *output.Formatter {
	return output.NewFormatter(s.format, s.writer, s.colored)
}

// Render writes the selected view of res.
func (s *Service) Render(res *analysis.Result, view View) error {
	f := s.formatter()
	if f.IsStructured() {
		return f.Output(Data(res, view))
	}
	return f.Output(s.Build(res, view))
}

// RenderMermaid writes the module graph as a Mermaid flowchart with cycle
// edges drawn thick. Markdown output wraps it in a fenced block.
func (s *Service) RenderMermaid(res *analysis.Result, opts depgraph.MermaidOptions) error {
	rep := res.Report
	if opts.Highlight == nil {
		opts.Highlight = CycleEdges(rep)
	}
	diagram := rep.Graph.ToMermaid(opts)
	if s.format == FormatMarkdown {
		diagram = "```mermaid\n" + diagram + "```\n"
	}
	_, err := io.WriteString(s.writer, diagram)
	return err
}

// CycleEdges returns every edge that lies on a reported cycle.
func CycleEdges(rep *engine.Report) map[[2]string]bool {
	edges := make(map[[2]string]bool)
	for _, c := range rep.CircularDependencies {
		for i := 0; i+1 < len(c.Cycle); i++ {
			edges[[2]string{c.Cycle[i], c.Cycle[i+1]}] = true
		}
	}
	return edges
}

// Meta identifies the run a structured view came from. Views carry the
// same fields at their top level.
type Meta struct {
	RunID       string `json:"run_id" toon:"run_id"`
	GeneratedAt string `json:"generated_at" toon:"generated_at"`
	Root        string `json:"root" toon:"root"`
	Digest      string `json:"digest" toon:"digest"`
}

// MetaOf returns the run metadata of res.
func MetaOf(res *analysis.Result) Meta {
	return Meta{RunID: res.RunID, GeneratedAt: res.GeneratedAt, Root: res.Root, Digest: res.Report.Digest}
}

// GraphView is the structured graph view.
type GraphView struct {
	RunID       string          `json:"run_id" toon:"run_id"`
	GeneratedAt string          `json:"generated_at" toon:"generated_at"`
	Root        string          `json:"root" toon:"root"`
	Digest      string          `json:"digest" toon:"digest"`
	Graph       *depgraph.Graph `json:"graph" toon:"graph"`
	Summary     engine.Summary  `json:"summary" toon:"summary"`
}

// CyclesView is the structured cycles view.
type CyclesView struct {
	RunID       string                `json:"run_id" toon:"run_id"`
	GeneratedAt string                `json:"generated_at" toon:"generated_at"`
	Root        string                `json:"root" toon:"root"`
	Digest      string                `json:"digest" toon:"digest"`
	Cycles      []engine.CycleFinding `json:"circular_dependencies" toon:"circular_dependencies"`
	Summary     *cycles.Summary       `json:"cycle_summary,omitempty" toon:"cycle_summary,omitempty"`
}

// ExportsView is the structured unused-exports view.
type ExportsView struct {
	RunID       string                 `json:"run_id" toon:"run_id"`
	GeneratedAt string                 `json:"generated_at" toon:"generated_at"`
	Root        string                 `json:"root" toon:"root"`
	Digest      string                 `json:"digest" toon:"digest"`
	Unused      []engine.ExportFinding `json:"unused_exports" toon:"unused_exports"`
}

// ImportsView is the structured import-problems view.
type ImportsView struct {
	RunID       string                        `json:"run_id" toon:"run_id"`
	GeneratedAt string                        `json:"generated_at" toon:"generated_at"`
	Root        string                        `json:"root" toon:"root"`
	Digest      string                        `json:"digest" toon:"digest"`
	Missing     []engine.MissingExportFinding `json:"missing_exports" toon:"missing_exports"`
	Unresolved  []engine.UnresolvedFinding    `json:"unresolved_imports" toon:"unresolved_imports"`
}

// CouplingView is the structured coupling view.
type CouplingView struct {
	RunID       string                   `json:"run_id" toon:"run_id"`
	GeneratedAt string                   `json:"generated_at" toon:"generated_at"`
	Root        string                   `json:"root" toon:"root"`
	Digest      string                   `json:"digest" toon:"digest"`
	Modules     []engine.CouplingFinding `json:"high_coupling_modules" toon:"high_coupling_modules"`
	Stats       *coupling.Stats          `json:"coupling_stats,omitempty" toon:"coupling_stats,omitempty"`
}

// Data returns the serializable payload of a view. The full view is the
// analysis result itself.
func Data(res *analysis.Result, view View) any {
	rep := res.Report
	m := MetaOf(res)
	switch view {
	case ViewGraph:
		return GraphView{m.RunID, m.GeneratedAt, m.Root, m.Digest, rep.Graph, rep.Summary}
	case ViewCycles:
		return CyclesView{m.RunID, m.GeneratedAt, m.Root, m.Digest, rep.CircularDependencies, rep.CycleSummary}
	case ViewExports:
		return ExportsView{m.RunID, m.GeneratedAt, m.Root, m.Digest, rep.UnusedExports}
	case ViewImports:
		return ImportsView{m.RunID, m.GeneratedAt, m.Root, m.Digest, rep.MissingExports, rep.UnresolvedImports}
	case ViewCoupling:
		return CouplingView{m.RunID, m.GeneratedAt, m.Root, m.Digest, rep.HighCouplingModules, rep.CouplingStats}
	default:
		return res
	}
}

// Build assembles the human-readable report for a view.
func (s *Service) Build(res *analysis.Result, view View) *output.Report {
	b := builder{rep: res.Report}
	r := &output.Report{Title: "Module Analysis", Data: Data(res, view)}

	switch view {
	case ViewGraph:
		r.Sections = []output.Renderable{b.summary(res), b.modules()}
	case ViewCycles:
		r.Sections = []output.Renderable{b.cycles()}
	case ViewExports:
		r.Sections = []output.Renderable{b.unused()}
	case ViewImports:
		r.Sections = []output.Renderable{b.missing(), b.unresolved()}
	case ViewCoupling:
		r.Sections = []output.Renderable{b.coupling()}
	default:
		r.Sections = []output.Renderable{
			b.summary(res), b.cycles(), b.unused(), b.missing(), b.unresolved(), b.coupling(),
		}
		if len(res.Report.ModuleErrors) > 0 {
			r.Sections = append(r.Sections, b.errors())
		}
	}
	return r
}

type builder struct {
	rep *engine.Report
}

func (b builder) rel(p string) string {
	return b.rep.Graph.Relative(p)
}

func verdict(c classify.Result) string {
	return string(c.Classification)
}

func (b builder) summary(res *analysis.Result) *output.Section {
	sum := b.rep.Summary
	sec := &output.Section{Title: "Summary"}
	sec.Add("Root", "%s", res.Root).
		Add("Modules", "%d", sum.TotalModules).
		Add("Internal edges", "%d", sum.InternalEdges).
		Add("External edges", "%d", sum.ExternalEdges).
		Add("Circular dependencies", "%d", sum.CircularDependencies).
		Add("Unused exports", "%d", sum.UnusedExports).
		Add("Missing exports", "%d", sum.MissingExports).
		Add("Unresolved imports", "%d (%d ignored)", sum.UnresolvedImports, sum.IgnoredImports).
		Add("High coupling modules", "%d", sum.HighCouplingModules).
		Add("Likely problematic", "%d", sum.LikelyProblematic)
	if sum.ModuleErrors > 0 {
		sec.Add("Module errors", "%d", sum.ModuleErrors)
	}
	if res.Excluded > 0 {
		sec.Add("Excluded modules", "%d", res.Excluded)
	}
	if res.Head != nil {
		sec.Add("Commit", "%s%s", shortHash(res.Head.Hash), branchSuffix(res.Head.Branch))
	}
	sec.Add("Digest", "%s", b.rep.Digest)
	return sec
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func branchSuffix(branch string) string {
	if branch == "" {
		return ""
	}
	return " (" + branch + ")"
}

func (b builder) modules() *output.Table {
	g := b.rep.Graph
	rows := make([][]string, 0, g.Len())
	for _, p := range g.Paths() {
		n := g.Nodes[p]
		rows = append(rows, []string{
			b.rel(p),
			string(n.FileType),
			strconv.Itoa(n.FanOut()),
			strconv.Itoa(len(n.ImportedBy)),
			strconv.Itoa(len(n.Exports)),
			strconv.Itoa(len(n.ExternalDependencies)),
		})
	}
	return output.NewTable("Modules",
		[]string{"Module", "Type", "Imports", "Imported By", "Exports", "External"},
		rows,
		[]string{"Total", strconv.Itoa(g.Len()), strconv.Itoa(g.InternalEdgeCount()), "", "", strconv.Itoa(g.ExternalEdgeCount())},
		nil)
}

func (b builder) cycles() *output.Table {
	rows := make([][]string, 0, len(b.rep.CircularDependencies))
	for i, c := range b.rep.CircularDependencies {
		parts := make([]string, len(c.Cycle))
		for j, p := range c.Cycle {
			parts[j] = b.rel(p)
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), strconv.Itoa(c.Length), strings.Join(parts, " -> ")})
	}
	var footer []string
	if cs := b.rep.CycleSummary; cs != nil {
		footer = []string{"Components", strconv.Itoa(cs.StronglyConnectedComponents), fmt.Sprintf("%d cyclic modules", len(cs.CyclicModules))}
	}
	return output.NewTable("Circular Dependencies", []string{"#", "Length", "Cycle"}, rows, footer, nil)
}

func (b builder) unused() *output.Table {
	rows := make([][]string, 0, len(b.rep.UnusedExports))
	for _, f := range b.rep.UnusedExports {
		rows = append(rows, []string{
			b.rel(f.Module), f.ExportName, string(f.Kind), strconv.Itoa(f.Line),
			verdict(f.Classification), strings.Join(f.Classification.Reasons, ", "),
		})
	}
	return output.NewTable("Unused Exports",
		[]string{"Module", "Export", "Kind", "Line", "Classification", "Reasons"}, rows, nil, nil).WithVerdict(4)
}

func (b builder) missing() *output.Table {
	rows := make([][]string, 0, len(b.rep.MissingExports))
	for _, f := range b.rep.MissingExports {
		rows = append(rows, []string{
			b.rel(f.Source), strconv.Itoa(f.Line), f.Specifier, f.ExportName,
			verdict(f.Classification), f.Classification.Suggestion,
		})
	}
	return output.NewTable("Missing Exports",
		[]string{"Module", "Line", "Import", "Missing", "Classification", "Suggestion"}, rows, nil, nil).WithVerdict(4)
}

func (b builder) unresolved() *output.Table {
	rows := make([][]string, 0, len(b.rep.UnresolvedImports))
	for _, f := range b.rep.UnresolvedImports {
		rows = append(rows, []string{
			b.rel(f.Module), strconv.Itoa(f.Line), f.Specifier,
			verdict(f.Classification), f.Classification.Suggestion,
		})
	}
	return output.NewTable("Unresolved Imports",
		[]string{"Module", "Line", "Import", "Classification", "Suggestion"}, rows, nil, nil).WithVerdict(3)
}

func (b builder) coupling() *output.Table {
	rows := make([][]string, 0, len(b.rep.HighCouplingModules))
	for _, f := range b.rep.HighCouplingModules {
		rows = append(rows, []string{b.rel(f.Module), strconv.Itoa(f.ImportCount), strconv.Itoa(f.Threshold)})
	}
	var footer []string
	if st := b.rep.CouplingStats; st != nil {
		footer = []string{"Mean / Median / P90", fmt.Sprintf("%.1f / %.1f / %.1f", st.Mean, st.Median, st.P90), fmt.Sprintf("max %.0f", st.Max)}
	}
	return output.NewTable("High Coupling", []string{"Module", "Imports", "Threshold"}, rows, footer, nil)
}

func (b builder) errors() *output.Table {
	rows := make([][]string, 0, len(b.rep.ModuleErrors))
	for _, e := range b.rep.ModuleErrors {
		rows = append(rows, []string{b.rel(e.Module), e.Stage, e.Message})
	}
	return output.NewTable("Module Errors", []string{"Module", "Stage", "Message"}, rows, nil, nil)
}
