package usage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/modlens/pkg/analyzer/depgraph"
	"github.com/panbanda/modlens/pkg/analyzer/resolver"
	"github.com/panbanda/modlens/pkg/facts"
)

func named(names ...string) []facts.Specifier {
	out := make([]facts.Specifier, 0, len(names))
	for _, n := range names {
		out = append(out, facts.Specifier{Kind: facts.SpecifierNamed, ImportedName: n, LocalName: n})
	}
	return out
}

func exports(names ...string) []facts.ExportFact {
	out := make([]facts.ExportFact, 0, len(names))
	for i, n := range names {
		kind := facts.ExportNamed
		if n == DefaultExportName {
			kind = facts.ExportDefault
		}
		out = append(out, facts.ExportFact{Name: n, Kind: kind, Line: i + 1})
	}
	return out
}

func analyze(t *testing.T, records []facts.ModuleRecord, opts ...Option) *Result {
	t.Helper()
	set, errs := facts.NewSet("/p", records)
	require.Empty(t, errs)
	g, buildErrs := depgraph.NewBuilder(resolver.New(set)).Build(set)
	require.Empty(t, buildErrs)
	return New(opts...).Analyze(g)
}

func TestAnalyze_UnusedExport(t *testing.T) {
	res := analyze(t, []facts.ModuleRecord{
		{Path: "/p/a.js", FileType: facts.FileCode, Exports: exports("foo")},
	})

	require.Len(t, res.Unused, 1)
	assert.Equal(t, UnusedExport{Module: "/p/a.js", ExportName: "foo", Kind: facts.ExportNamed, Line: 1}, res.Unused[0])
	assert.Empty(t, res.Missing)
}

func TestAnalyze_MissingExport(t *testing.T) {
	res := analyze(t, []facts.ModuleRecord{
		{Path: "/p/a.js", FileType: facts.FileCode, Imports: []facts.ImportFact{
			{Source: "./b", Line: 3, Specifiers: named("bar")},
		}},
		{Path: "/p/b.js", FileType: facts.FileCode, Exports: exports("foo")},
	})

	require.Len(t, res.Missing, 1)
	assert.Equal(t, MissingExport{Source: "/p/a.js", Specifier: "./b", TargetModule: "/p/b.js", ExportName: "bar", Line: 3}, res.Missing[0])

	require.Len(t, res.Unused, 1)
	assert.Equal(t, "foo", res.Unused[0].ExportName)
}

func TestAnalyze_NamedImportRecordsConsumer(t *testing.T) {
	res := analyze(t, []facts.ModuleRecord{
		{Path: "/p/a.js", FileType: facts.FileCode, Imports: []facts.ImportFact{
			{Source: "./b", Line: 1, Specifiers: named("foo")},
		}},
		{Path: "/p/c.js", FileType: facts.FileCode, Imports: []facts.ImportFact{
			{Source: "./b", Line: 9, Specifiers: named("foo")},
		}},
		{Path: "/p/b.js", FileType: facts.FileCode, Exports: exports("foo", "baz")},
	})

	ledger, ok := res.Ledger("/p/b.js")
	require.True(t, ok)
	assert.Equal(t, []Consumer{
		{Module: "/p/a.js", Line: 1, Kind: facts.SpecifierNamed},
		{Module: "/p/c.js", Line: 9, Kind: facts.SpecifierNamed},
	}, ledger.Entries["foo"].Consumers)

	require.Len(t, res.Unused, 1)
	assert.Equal(t, "baz", res.Unused[0].ExportName)
}

func TestAnalyze_NamespaceConsumesEverything(t *testing.T) {
	res := analyze(t, []facts.ModuleRecord{
		{Path: "/p/a.js", FileType: facts.FileCode, Imports: []facts.ImportFact{
			{Source: "./b", Line: 1, Specifiers: []facts.Specifier{{Kind: facts.SpecifierNamespace, LocalName: "b"}}},
		}},
		{Path: "/p/b.js", FileType: facts.FileCode, Exports: exports("foo", "bar", DefaultExportName)},
	})

	assert.Empty(t, res.Unused)
	assert.Empty(t, res.Missing)
}

func TestAnalyze_DefaultConsumesOnlyDefault(t *testing.T) {
	res := analyze(t, []facts.ModuleRecord{
		{Path: "/p/a.js", FileType: facts.FileCode, Imports: []facts.ImportFact{
			{Source: "./b", Line: 1, Specifiers: []facts.Specifier{{Kind: facts.SpecifierDefault, LocalName: "B"}}},
			{Source: "./c", Line: 2, Specifiers: []facts.Specifier{{Kind: facts.SpecifierDefault, LocalName: "C"}}},
		}},
		{Path: "/p/b.js", FileType: facts.FileCode, Exports: exports(DefaultExportName, "helper")},
		{Path: "/p/c.js", FileType: facts.FileCode, Exports: exports("onlyNamed")},
	})

	require.Len(t, res.Unused, 2)
	assert.Equal(t, "helper", res.Unused[0].ExportName)
	assert.Equal(t, "onlyNamed", res.Unused[1].ExportName)
	assert.Empty(t, res.Missing, "a default import without a default export is not a missing export")
}

func TestAnalyze_TargetsWithoutLedger(t *testing.T) {
	res := analyze(t, []facts.ModuleRecord{
		{Path: "/p/a.js", FileType: facts.FileCode, Imports: []facts.ImportFact{
			{Source: "./config.json", Line: 1, Specifiers: named("port")},
			{Source: "./empty", Line: 2, Specifiers: named("anything")},
		}},
		{Path: "/p/config.json", FileType: facts.FileData, Exports: exports("port", "host")},
		{Path: "/p/empty.js", FileType: facts.FileCode},
	})

	assert.Empty(t, res.Missing)
	assert.Empty(t, res.Unused, "data modules never report unused exports")
	_, ok := res.Ledger("/p/config.json")
	assert.False(t, ok)
}

func TestAnalyze_DuplicateExportReportedOnce(t *testing.T) {
	res := analyze(t, []facts.ModuleRecord{
		{Path: "/p/a.js", FileType: facts.FileCode, Exports: []facts.ExportFact{
			{Name: "foo", Kind: facts.ExportNamed, Line: 1},
			{Name: "foo", Kind: facts.ExportReExport, Line: 5},
		}},
	})

	require.Len(t, res.Unused, 1)
	assert.Equal(t, 1, res.Unused[0].Line)
}

func TestAnalyze_Toggles(t *testing.T) {
	records := []facts.ModuleRecord{
		{Path: "/p/a.js", FileType: facts.FileCode, Imports: []facts.ImportFact{
			{Source: "./b", Line: 1, Specifiers: named("nope")},
		}},
		{Path: "/p/b.js", FileType: facts.FileCode, Exports: exports("foo")},
	}

	res := analyze(t, records, WithUnused(false))
	assert.Empty(t, res.Unused)
	assert.Len(t, res.Missing, 1)

	res = analyze(t, records, WithMissing(false))
	assert.Len(t, res.Unused, 1)
	assert.Empty(t, res.Missing)
}
