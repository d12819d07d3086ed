// Package output renders analysis results as text tables, markdown, JSON or
// TOON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	toon "github.com/toon-format/toon-go"
)

// Format represents an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatTOON     Format = "toon"
)

// ParseFormat converts a string to Format, defaulting to text.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "markdown", "md":
		return FormatMarkdown
	case "toon":
		return FormatTOON
	default:
		return FormatText
	}
}

// Structured reports whether f serializes data rather than rendering it
// for people.
func (f Format) Structured() bool {
	return f == FormatJSON || f == FormatTOON
}

// Renderable is a piece of a report that renders itself for people and
// exposes its data for serialization.
type Renderable interface {
	RenderText(w io.Writer, colored bool) error
	RenderMarkdown(w io.Writer) error
	RenderData() any
}

// Formatter writes values in one format.
type Formatter struct {
	format  Format
	writer  io.Writer
	colored bool
}

// NewFormatter creates a formatter writing to w. Color only applies to
// text output.
func NewFormatter(format Format, w io.Writer, colored bool) *Formatter {
	return &Formatter{format: format, writer: w, colored: colored && format == FormatText}
}

// IsStructured reports whether the formatter emits JSON or TOON.
func (f *Formatter) IsStructured() bool {
	return f.format.Structured()
}

// Output writes data. A Renderable is drawn in text and markdown and
// serialized through RenderData otherwise; any other value is serialized.
func (f *Formatter) Output(data any) error {
	r, ok := data.(Renderable)
	switch {
	case f.format == FormatJSON:
		if ok {
			data = r.RenderData()
		}
		return writeJSON(f.writer, data)
	case f.format == FormatTOON:
		if ok {
			data = r.RenderData()
		}
		return writeTOON(f.writer, data)
	case ok && f.format == FormatMarkdown:
		return r.RenderMarkdown(f.writer)
	case ok:
		return r.RenderText(f.writer, f.colored)
	case f.format == FormatMarkdown:
		fmt.Fprintln(f.writer, "```json")
		if err := writeJSON(f.writer, data); err != nil {
			return err
		}
		_, err := fmt.Fprintln(f.writer, "```")
		return err
	default:
		return writeJSON(f.writer, data)
	}
}

// writeJSON keeps "->" in cycle paths readable.
func writeJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(data)
}

// writeTOON encodes the JSON document of data, so embedded findings are
// flattened and keys match the JSON output.
func writeTOON(w io.Writer, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal toon: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("marshal toon: %w", err)
	}
	out, err := toon.Marshal(doc, toon.WithIndent(2))
	if err != nil {
		return fmt.Errorf("marshal toon: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func writeTitle(w io.Writer, title string, colored bool, attrs ...color.Attribute) {
	if title == "" {
		return
	}
	if colored {
		color.New(attrs...).Fprintln(w, title)
	} else {
		fmt.Fprintln(w, title)
	}
	fmt.Fprintln(w, strings.Repeat("=", len(title)))
}

// NoColumn disables verdict coloring on a table.
const NoColumn = -1

// Table is a titled list of findings.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Footer  []string
	Data    any
	// Empty replaces the table when there are no rows.
	Empty string
	// Verdict is the index of the column holding a classification, which
	// is colored in text output.
	Verdict int
}

// NewTable creates a table. data, when non-nil, is what structured formats
// serialize instead of the rows.
func NewTable(title string, headers []string, rows [][]string, footer []string, data any) *Table {
	return &Table{
		Title:   title,
		Headers: headers,
		Rows:    rows,
		Footer:  footer,
		Data:    data,
		Empty:   "None found.",
		Verdict: NoColumn,
	}
}

// WithVerdict marks column col as a classification column.
func (t *Table) WithVerdict(col int) *Table {
	t.Verdict = col
	return t
}

// RenderData returns Data, or the rows keyed by header.
func (t *Table) RenderData() any {
	if t.Data != nil {
		return t.Data
	}
	result := make([]map[string]string, len(t.Rows))
	for i, row := range t.Rows {
		m := make(map[string]string, len(t.Headers))
		for j, h := range t.Headers {
			if j < len(row) {
				m[h] = row[j]
			}
		}
		result[i] = m
	}
	return result
}

func (t *Table) RenderText(w io.Writer, colored bool) error {
	writeTitle(w, t.Title, colored, color.Bold)
	if len(t.Rows) == 0 {
		fmt.Fprintln(w, t.Empty)
		return nil
	}
	fmt.Fprintln(w)

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
			},
			Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignLeft}},
			Footer: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignLeft}},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders:  tw.Border{Left: tw.Off, Right: tw.Off, Top: tw.Off, Bottom: tw.Off},
			Settings: tw.Settings{Separators: tw.Separators{BetweenColumns: tw.Off}},
		}),
	)

	table.Header(t.Headers)
	for _, row := range t.Rows {
		if colored && t.Verdict >= 0 && t.Verdict < len(row) {
			row = append([]string(nil), row...)
			row[t.Verdict] = ClassificationColor(row[t.Verdict], row[t.Verdict])
		}
		table.Append(row)
	}
	if len(t.Footer) > 0 {
		footer := make([]any, len(t.Footer))
		for i, f := range t.Footer {
			footer[i] = f
		}
		table.Footer(footer...)
	}
	table.Render()
	return nil
}

var markdownCell = strings.NewReplacer("|", `\|`, "\n", " ")

func markdownRow(w io.Writer, cells []string) {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = markdownCell.Replace(c)
	}
	fmt.Fprintf(w, "| %s |\n", strings.Join(escaped, " | "))
}

func (t *Table) RenderMarkdown(w io.Writer) error {
	if t.Title != "" {
		fmt.Fprintf(w, "## %s\n\n", t.Title)
	}
	if len(t.Rows) == 0 {
		fmt.Fprintf(w, "%s\n\n", t.Empty)
		return nil
	}

	markdownRow(w, t.Headers)
	seps := make([]string, len(t.Headers))
	for i := range seps {
		seps[i] = "---"
	}
	fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))
	for _, row := range t.Rows {
		markdownRow(w, row)
	}
	if len(t.Footer) > 0 {
		markdownRow(w, t.Footer)
	}
	fmt.Fprintln(w)
	return nil
}

// Field is one labeled value of a Section.
type Field struct {
	Name  string `json:"name" toon:"name"`
	Value string `json:"value" toon:"value"`
}

// Section is a titled block of labeled values followed by free text.
type Section struct {
	Title   string  `json:"title,omitempty" toon:"title,omitempty"`
	Fields  []Field `json:"fields,omitempty" toon:"fields,omitempty"`
	Content string  `json:"content,omitempty" toon:"content,omitempty"`
	Data    any     `json:"-" toon:"-"`
}

// Add appends a field and returns s.
func (s *Section) Add(name, format string, args ...any) *Section {
	s.Fields = append(s.Fields, Field{Name: name, Value: fmt.Sprintf(format, args...)})
	return s
}

func (s *Section) RenderData() any {
	if s.Data != nil {
		return s.Data
	}
	return s
}

// RenderText aligns field values on the longest label.
func (s *Section) RenderText(w io.Writer, colored bool) error {
	writeTitle(w, s.Title, colored, color.Bold)
	width := 0
	for _, f := range s.Fields {
		width = max(width, len(f.Name)+1)
	}
	for _, f := range s.Fields {
		fmt.Fprintf(w, "%-*s %s\n", width, f.Name+":", f.Value)
	}
	if s.Content != "" {
		fmt.Fprintln(w, s.Content)
	}
	return nil
}

func (s *Section) RenderMarkdown(w io.Writer) error {
	if s.Title != "" {
		fmt.Fprintf(w, "## %s\n\n", s.Title)
	}
	for _, f := range s.Fields {
		fmt.Fprintf(w, "- **%s:** %s\n", f.Name, f.Value)
	}
	if len(s.Fields) > 0 {
		fmt.Fprintln(w)
	}
	if s.Content != "" {
		fmt.Fprintf(w, "%s\n\n", s.Content)
	}
	return nil
}

// Report is a titled sequence of sections and tables.
type Report struct {
	Title    string
	Sections []Renderable
	Data     any
}

func (r *Report) RenderData() any {
	if r.Data != nil {
		return r.Data
	}
	parts := make([]any, len(r.Sections))
	for i, s := range r.Sections {
		parts[i] = s.RenderData()
	}
	return map[string]any{
		"title":    r.Title,
		"sections": parts,
	}
}

func (r *Report) RenderText(w io.Writer, colored bool) error {
	writeTitle(w, r.Title, colored, color.Bold, color.FgCyan)
	for _, s := range r.Sections {
		fmt.Fprintln(w)
		if err := s.RenderText(w, colored); err != nil {
			return err
		}
	}
	return nil
}

func (r *Report) RenderMarkdown(w io.Writer) error {
	if r.Title != "" {
		fmt.Fprintf(w, "# %s\n\n", r.Title)
	}
	for _, s := range r.Sections {
		if err := s.RenderMarkdown(w); err != nil {
			return err
		}
	}
	return nil
}

// ClassificationColor colors text by finding classification.
func ClassificationColor(classification, text string) string {
	switch classification {
	case "likely-problematic":
		return color.RedString(text)
	case "likely-valid":
		return color.GreenString(text)
	default:
		return text
	}
}
