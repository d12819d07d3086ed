// Package coupling flags modules with too many internal dependencies.
package coupling

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/panbanda/modlens/pkg/analyzer/depgraph"
	"github.com/panbanda/modlens/pkg/glob"
	"github.com/panbanda/modlens/pkg/stats"
)

// DefaultThreshold is the fan-out above which a module is flagged.
const DefaultThreshold = 10

// HighCoupling is a module whose internal fan-out exceeds the threshold.
type HighCoupling struct {
	Module      string `json:"module" toon:"module"`
	ImportCount int    `json:"import_count" toon:"import_count"`
	Threshold   int    `json:"threshold" toon:"threshold"`
}

// Stats describes the distribution of internal fan-out across all modules.
type Stats struct {
	Modules int     `json:"modules" toon:"modules"`
	Mean    float64 `json:"mean" toon:"mean"`
	Median  float64 `json:"median" toon:"median"`
	P90     float64 `json:"p90" toon:"p90"`
	Max     float64 `json:"max" toon:"max"`
}

// Result holds coupling findings and statistics.
type Result struct {
	Modules []HighCoupling `json:"high_coupling_modules" toon:"high_coupling_modules"`
	Stats   Stats          `json:"stats" toon:"stats"`
}

// Analyzer checks internal fan-out.
type Analyzer struct {
	threshold int
	exclude   []string
	matcher   *glob.Matcher
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithThreshold sets the maximum allowed fan-out.
func WithThreshold(n int) Option {
	return func(a *Analyzer) {
		a.threshold = n
	}
}

// WithExcludePatterns skips modules whose path matches any glob.
func WithExcludePatterns(patterns []string) Option {
	return func(a *Analyzer) {
		a.exclude = patterns
	}
}

// WithMatcher shares a glob matcher.
func WithMatcher(m *glob.Matcher) Option {
	return func(a *Analyzer) {
		if m != nil {
			a.matcher = m
		}
	}
}

// New creates a coupling analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(a)
	}
	if a.matcher == nil {
		a.matcher = glob.NewMatcher()
	}
	return a
}

// Analyze flags modules in g and computes fan-out statistics. Exclude
// patterns are tried against the absolute and the root-relative path.
func (a *Analyzer) Analyze(g *depgraph.Graph) *Result {
	res := &Result{Modules: []HighCoupling{}}
	counts := make([]int, 0, g.Len())

	for _, path := range g.Paths() {
		fanOut := g.Nodes[path].FanOut()
		counts = append(counts, fanOut)

		if fanOut <= a.threshold || a.excluded(g, path) {
			continue
		}
		res.Modules = append(res.Modules, HighCoupling{
			Module:      path,
			ImportCount: fanOut,
			Threshold:   a.threshold,
		})
	}

	sort.SliceStable(res.Modules, func(i, j int) bool {
		return res.Modules[i].ImportCount > res.Modules[j].ImportCount
	})
	res.Stats = Distribution(counts)
	return res
}

func (a *Analyzer) excluded(g *depgraph.Graph, path string) bool {
	if len(a.exclude) == 0 {
		return false
	}
	if a.matcher.MatchAny(a.exclude, path) {
		return true
	}
	return a.matcher.MatchAny(a.exclude, g.Relative(path))
}

// Distribution summarizes fan-out counts.
func Distribution(counts []int) Stats {
	if len(counts) == 0 {
		return Stats{}
	}
	sorted := stats.SortedInts(counts)
	return Stats{
		Modules: len(sorted),
		Mean:    stat.Mean(sorted, nil),
		Median:  stats.Median(sorted),
		P90:     stats.Percentile(sorted, 90),
		Max:     stats.Max(sorted),
	}
}
