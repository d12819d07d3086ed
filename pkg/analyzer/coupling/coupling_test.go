package coupling

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/modlens/pkg/analyzer/depgraph"
	"github.com/panbanda/modlens/pkg/analyzer/resolver"
	"github.com/panbanda/modlens/pkg/facts"
)

// fanOutGraph builds a graph where hub imports n leaf modules.
func fanOutGraph(t *testing.T, hub string, n int) *depgraph.Graph {
	t.Helper()
	records := []facts.ModuleRecord{{Path: hub, FileType: facts.FileCode}}
	for i := 0; i < n; i++ {
		leaf := fmt.Sprintf("/p/leaf%02d.js", i)
		records = append(records, facts.ModuleRecord{Path: leaf, FileType: facts.FileCode})
		records[0].Imports = append(records[0].Imports, facts.ImportFact{
			Source: fmt.Sprintf("./leaf%02d", i),
			Type:   facts.ImportES6,
			Line:   i + 1,
		})
	}
	records = append(records, facts.ModuleRecord{Path: "/p/isolated.js", FileType: facts.FileCode})

	set, errs := facts.NewSet("/p", records)
	require.Empty(t, errs)
	g, buildErrs := depgraph.NewBuilder(resolver.New(set)).Build(set)
	require.Empty(t, buildErrs)
	return g
}

func TestAnalyze_FlagsAboveThreshold(t *testing.T) {
	g := fanOutGraph(t, "/p/a.js", 12)

	res := New(WithThreshold(10)).Analyze(g)

	require.Len(t, res.Modules, 1)
	assert.Equal(t, HighCoupling{Module: "/p/a.js", ImportCount: 12, Threshold: 10}, res.Modules[0])
}

func TestAnalyze_ThresholdIsExclusive(t *testing.T) {
	g := fanOutGraph(t, "/p/a.js", 10)

	res := New().Analyze(g)
	assert.Empty(t, res.Modules)
	assert.NotNil(t, res.Modules)
}

func TestAnalyze_ExcludePatterns(t *testing.T) {
	g := fanOutGraph(t, "/p/src-index.js", 12)

	tests := []struct {
		name     string
		patterns []string
		flagged  int
	}{
		{"no patterns", nil, 1},
		{"relative glob", []string{"src-*"}, 0},
		{"absolute glob", []string{"/p/*index.js"}, 0},
		{"unrelated glob", []string{"lib/*"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := New(WithThreshold(10), WithExcludePatterns(tt.patterns)).Analyze(g)
			assert.Len(t, res.Modules, tt.flagged)
		})
	}
}

func TestAnalyze_SortedByCountDescending(t *testing.T) {
	var records []facts.ModuleRecord
	for i := 0; i < 6; i++ {
		records = append(records, facts.ModuleRecord{Path: fmt.Sprintf("/p/t%d.js", i), FileType: facts.FileCode})
	}
	hubs := map[string]int{"/p/h1.js": 2, "/p/h2.js": 5, "/p/h3.js": 3}
	for hub, n := range hubs {
		rec := facts.ModuleRecord{Path: hub, FileType: facts.FileCode}
		for i := 0; i < n; i++ {
			rec.Imports = append(rec.Imports, facts.ImportFact{Source: fmt.Sprintf("./t%d", i), Line: i + 1})
		}
		records = append(records, rec)
	}
	set, errs := facts.NewSet("/p", records)
	require.Empty(t, errs)
	g, _ := depgraph.NewBuilder(resolver.New(set)).Build(set)

	res := New(WithThreshold(1)).Analyze(g)

	require.Len(t, res.Modules, 3)
	assert.Equal(t, "/p/h2.js", res.Modules[0].Module)
	assert.Equal(t, "/p/h3.js", res.Modules[1].Module)
	assert.Equal(t, "/p/h1.js", res.Modules[2].Module)
}

func TestAnalyze_Stats(t *testing.T) {
	g := fanOutGraph(t, "/p/a.js", 12)

	res := New().Analyze(g)

	// one hub, twelve leaves, one isolated module
	assert.Equal(t, 14, res.Stats.Modules)
	assert.Equal(t, 12.0, res.Stats.Max)
	assert.Equal(t, 0.0, res.Stats.Median)
	assert.InDelta(t, 12.0/14.0, res.Stats.Mean, 1e-9)
}

func TestDistribution(t *testing.T) {
	assert.Equal(t, Stats{}, Distribution(nil))

	s := Distribution([]int{4, 1, 3, 2})
	assert.Equal(t, 4, s.Modules)
	assert.InDelta(t, 2.5, s.Mean, 1e-9)
	assert.Equal(t, 3.0, s.Median, "nearest rank")
	assert.Equal(t, 4.0, s.Max)
}
