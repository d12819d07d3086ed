package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/modlens/internal/service/analysis"
	"github.com/panbanda/modlens/internal/vcs"
	"github.com/panbanda/modlens/pkg/analyzer/depgraph"
	"github.com/panbanda/modlens/pkg/engine"
	"github.com/panbanda/modlens/pkg/facts"
)

func named(name string) facts.Specifier {
	return facts.Specifier{Kind: facts.SpecifierNamed, ImportedName: name, LocalName: name}
}

func sampleResult(t *testing.T) *analysis.Result {
	t.Helper()
	records := []facts.ModuleRecord{
		{
			Path:     "/p/src/a.js",
			FileType: facts.FileCode,
			Imports: []facts.ImportFact{
				{Source: "./b", Type: facts.ImportES6, Line: 1, Specifiers: []facts.Specifier{named("b")}},
				{Source: "./gone", Type: facts.ImportES6, Line: 2},
			},
			Exports: []facts.ExportFact{{Name: "a", Kind: facts.ExportNamed, Line: 3}},
		},
		{
			Path:     "/p/src/b.js",
			FileType: facts.FileCode,
			Imports: []facts.ImportFact{
				{Source: "./a", Type: facts.ImportES6, Line: 1, Specifiers: []facts.Specifier{named("a"), named("nope")}},
			},
			Exports: []facts.ExportFact{{Name: "b", Kind: facts.ExportNamed, Line: 2}, {Name: "stale", Kind: facts.ExportNamed, Line: 9}},
		},
	}
	rep := engine.New().Analyze("/p", records)
	return &analysis.Result{
		RunID:       "run-1",
		GeneratedAt: "2026-01-02T03:04:05Z",
		Root:        "/p",
		Head:        &vcs.Head{Hash: "0123456789abcdef", Branch: "main"},
		Report:      rep,
	}
}

func TestNew(t *testing.T) {
	svc, err := New()
	require.NoError(t, err)
	assert.Equal(t, FormatText, svc.Format())
	assert.True(t, svc.Colored())

	var buf bytes.Buffer
	svc, err = New(WithFormat(FormatJSON), WithWriter(&buf), WithColor(false))
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, svc.Format())
	assert.Same(t, &buf, svc.Writer())
	assert.False(t, svc.Colored())
}

func TestNewWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	svc, err := New(WithFile(path), WithFormat(FormatJSON))
	require.NoError(t, err)
	assert.False(t, svc.Colored(), "files are never colored")

	require.NoError(t, svc.Render(sampleResult(t), ViewCycles))
	require.NoError(t, svc.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"circular_dependencies"`)
}

func TestParseView(t *testing.T) {
	v, err := ParseView("")
	require.NoError(t, err)
	assert.Equal(t, ViewAll, v)

	v, err = ParseView("Cycles")
	require.NoError(t, err)
	assert.Equal(t, ViewCycles, v)

	_, err = ParseView("bogus")
	assert.Error(t, err)
}

func TestRender_Text(t *testing.T) {
	var buf bytes.Buffer
	svc, err := New(WithWriter(&buf), WithColor(false))
	require.NoError(t, err)
	require.NoError(t, svc.Render(sampleResult(t), ViewAll))

	out := buf.String()
	for _, want := range []string{
		"Module Analysis",
		"Modules:",
		"Commit:",
		"0123456789ab (main)",
		"src/a.js -> src/b.js -> src/a.js",
		"stale",
		"nope",
		"./gone",
	} {
		assert.Contains(t, out, want)
	}
}

func TestRender_Markdown(t *testing.T) {
	var buf bytes.Buffer
	svc, err := New(WithWriter(&buf), WithFormat(FormatMarkdown))
	require.NoError(t, err)
	require.NoError(t, svc.Render(sampleResult(t), ViewImports))

	out := buf.String()
	assert.Contains(t, out, "## Missing Exports")
	assert.Contains(t, out, "## Unresolved Imports")
	assert.NotContains(t, out, "## Unused Exports")
}

func TestRender_JSONViews(t *testing.T) {
	res := sampleResult(t)
	tests := []struct {
		view View
		keys []string
	}{
		{ViewAll, []string{"run_id", "report", "root"}},
		{ViewGraph, []string{"run_id", "graph", "summary", "digest"}},
		{ViewCycles, []string{"circular_dependencies", "cycle_summary"}},
		{ViewExports, []string{"unused_exports"}},
		{ViewImports, []string{"missing_exports", "unresolved_imports"}},
		{ViewCoupling, []string{"high_coupling_modules", "coupling_stats"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.view), func(t *testing.T) {
			var buf bytes.Buffer
			svc, err := New(WithWriter(&buf), WithFormat(FormatJSON))
			require.NoError(t, err)
			require.NoError(t, svc.Render(res, tt.view))

			var decoded map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
			for _, k := range tt.keys {
				assert.Contains(t, decoded, k)
			}
		})
	}
}

func TestRender_TOON(t *testing.T) {
	var buf bytes.Buffer
	svc, err := New(WithWriter(&buf), WithFormat(FormatTOON))
	require.NoError(t, err)
	require.NoError(t, svc.Render(sampleResult(t), ViewExports))
	assert.Contains(t, buf.String(), "run_id: run-1")
}

func TestRenderMermaid(t *testing.T) {
	res := sampleResult(t)

	var buf bytes.Buffer
	svc, err := New(WithWriter(&buf), WithFormat(FormatMarkdown))
	require.NoError(t, err)
	require.NoError(t, svc.RenderMermaid(res, depgraph.DefaultMermaidOptions()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "```mermaid\ngraph LR\n"))
	assert.Contains(t, out, "==>", "cycle edges are highlighted")
	assert.NotContains(t, out, "-->")
}

func TestCycleEdges(t *testing.T) {
	edges := CycleEdges(sampleResult(t).Report)
	assert.True(t, edges[[2]string{"/p/src/a.js", "/p/src/b.js"}])
	assert.True(t, edges[[2]string{"/p/src/b.js", "/p/src/a.js"}])
	assert.Len(t, edges, 2)
}
