package classify

import (
	"path"
	"strings"

	"github.com/panbanda/modlens/pkg/glob"
)

// ExportSubject is an unused export to classify.
type ExportSubject struct {
	Module     string
	ExportName string
}

// exportCtx is an ExportSubject with derived values computed once.
type exportCtx struct {
	ExportSubject
	rel string
}

const reviewNeeded = "Review needed - unclear if this export is necessary"

// framework conventions, checked in order; the first match names the
// framework.
var frameworkPatterns = []struct {
	name     string
	patterns []string
}{
	{"next", []string{"pages/api/", "pages/", "app/"}},
	{"storybook", []string{".stories."}},
	{"jest", []string{".test.", ".spec.", "__tests__/"}},
	{"vue", []string{".vue"}},
	{"react", []string{"components/", ".jsx", ".tsx"}},
}

var lifecycleNames = map[string]bool{
	"onMount": true, "onUnmount": true, "onDestroy": true,
	"beforeCreate": true, "afterCreate": true, "willUpdate": true,
	"didUpdate": true, "shouldUpdate": true, "componentDidMount": true,
	"componentWillUnmount": true, "render": true, "constructor": true,
	"getDerivedStateFromProps": true, "getSnapshotBeforeUpdate": true,
	"componentDidCatch": true, "setup": true, "cleanup": true,
	"useEffect": true, "useLayoutEffect": true, "useMemo": true,
	"useCallback": true,
}

var demoPatterns = []string{
	"demo/", "demos/", "example/", "examples/", "sample/", "samples/",
	".demo.", ".example.", ".sample.",
	"custom-mcp-servers/", "playground/", "snippets/", "scratch/", "tmp/", "temp/",
}

var indexFiles = map[string]bool{
	"index.js": true, "index.ts": true, "index.jsx": true, "index.tsx": true,
}

var testFileMarkers = []string{".test.", ".spec.", "__tests__", "__mocks__"}

var testNameMarkers = []string{"mock", "Mock", "stub", "Stub", "fake", "Fake", "test", "Test", "spec", "Spec"}

// ExportClassifier scores unused exports.
type ExportClassifier struct {
	project Project
	rules   Rules
	matcher *glob.Matcher
	signals []Signal[exportCtx]
}

// ExportOption configures an ExportClassifier.
type ExportOption func(*exportConfig)

type exportConfig struct {
	weights ExportWeights
	matcher *glob.Matcher
}

// WithExportWeights overrides the default export weights.
func WithExportWeights(w ExportWeights) ExportOption {
	return func(c *exportConfig) {
		c.weights = w
	}
}

// WithExportMatcher shares a glob matcher across classifiers.
func WithExportMatcher(m *glob.Matcher) ExportOption {
	return func(c *exportConfig) {
		if m != nil {
			c.matcher = m
		}
	}
}

// NewExportClassifier builds the export signal list.
func NewExportClassifier(project Project, rules Rules, opts ...ExportOption) *ExportClassifier {
	cfg := exportConfig{weights: DefaultExportWeights()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.matcher == nil {
		cfg.matcher = glob.NewMatcher()
	}

	c := &ExportClassifier{project: project, rules: rules, matcher: cfg.matcher}
	w := cfg.weights

	c.signals = []Signal[exportCtx]{
		{Tag: TagIgnoredByConfig, Weight: w.IgnoredByConfig, Detect: func(s exportCtx) (string, bool) {
			return fired(c.isIgnored(s))
		}},
		{Tag: TagPublicAPIPath, Weight: w.PublicAPIPath, Detect: func(s exportCtx) (string, bool) {
			return fired(c.matcher.MatchAny(c.rules.PublicAPIPaths, s.rel))
		}},
		{Tag: TagEntryPoint, Weight: w.EntryPointFile, Detect: func(s exportCtx) (string, bool) {
			return fired(c.project.IsEntryPoint(s.rel))
		}},
		{Tag: TagIndexFile, Weight: w.IndexFile, Detect: func(s exportCtx) (string, bool) {
			return fired(indexFiles[path.Base(s.rel)])
		}},
	}
	for _, fw := range frameworkPatterns {
		name := fw.name
		c.signals = append(c.signals, Signal[exportCtx]{
			Tag:    TagFrameworkPrefix + name,
			Weight: w.FrameworkPattern,
			Detect: func(s exportCtx) (string, bool) {
				return fired(Framework(s.rel) == name)
			},
		})
	}
	c.signals = append(c.signals,
		Signal[exportCtx]{Tag: TagLifecycleMethod, Weight: w.LifecycleMethod, Detect: func(s exportCtx) (string, bool) {
			return fired(lifecycleNames[s.ExportName])
		}},
		Signal[exportCtx]{Tag: TagTestUtility, Weight: w.TestUtility, Detect: func(s exportCtx) (string, bool) {
			return fired(isTestUtility(s.rel, s.ExportName))
		}},
		Signal[exportCtx]{Tag: TagDemoOrExample, Weight: w.DemoOrExample, Detect: func(s exportCtx) (string, bool) {
			return fired(isDemoOrExample(s.rel))
		}},
		Signal[exportCtx]{Tag: TagDeprecated, Weight: w.Deprecated, Detect: func(s exportCtx) (string, bool) {
			return fired(isDeprecated(s.ExportName))
		}},
		Signal[exportCtx]{Tag: TagPrivateNaming, Weight: w.PrivateNaming, Detect: func(s exportCtx) (string, bool) {
			return fired(isPrivateNaming(s.ExportName))
		}},
	)
	return c
}

// Signals returns the tags of the configured signals in evaluation order.
func (c *ExportClassifier) Signals() []string {
	tags := make([]string, len(c.signals))
	for i, s := range c.signals {
		tags[i] = s.Tag
	}
	return tags
}

// Classify scores an unused export.
func (c *ExportClassifier) Classify(s ExportSubject) Result {
	res := Evaluate(c.signals, exportCtx{ExportSubject: s, rel: c.project.Relative(s.Module)})
	res.Suggestion = exportSuggestion(res)
	return res
}

// isIgnored checks the ignore rules against both the absolute and the
// root-relative module path.
func (c *ExportClassifier) isIgnored(s exportCtx) bool {
	for pattern, names := range c.rules.IgnoredExports {
		if !c.matcher.Match(pattern, s.Module) && !c.matcher.Match(pattern, s.rel) {
			continue
		}
		for _, n := range names {
			if n == "*" || c.matcher.Match(n, s.ExportName) {
				return true
			}
		}
	}
	return false
}

// Framework returns the framework whose file convention matches the
// root-relative path, or "".
func Framework(rel string) string {
	for _, fw := range frameworkPatterns {
		for _, p := range fw.patterns {
			if containsPattern(rel, p) {
				return fw.name
			}
		}
	}
	return ""
}

func isTestUtility(rel, name string) bool {
	inTestFile := false
	for _, m := range testFileMarkers {
		if strings.Contains(rel, m) {
			inTestFile = true
			break
		}
	}
	if !inTestFile {
		return false
	}
	for _, m := range testNameMarkers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

func isDemoOrExample(rel string) bool {
	lower := strings.ToLower(rel)
	for _, p := range demoPatterns {
		if containsPattern(lower, p) {
			return true
		}
	}
	return false
}

func isDeprecated(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "deprecated") ||
		strings.Contains(lower, "old") ||
		strings.Contains(lower, "legacy")
}

func isPrivateNaming(name string) bool {
	return strings.HasPrefix(name, "_") ||
		strings.Contains(name, "Private") ||
		strings.Contains(name, "Internal") ||
		strings.HasSuffix(name, "Impl")
}

func exportSuggestion(r Result) string {
	if r.HasReason(TagEntryPoint) {
		return "part of public API"
	}
	switch {
	case r.Score > 5:
		return "Keep - " + positiveReason(r)
	case r.Score < -5:
		return "Consider removing - " + negativeReason(r)
	default:
		return reviewNeeded
	}
}

func positiveReason(r Result) string {
	switch {
	case r.HasReason(TagFrameworkPrefix + "next"):
		return "Next.js convention"
	case r.HasReason(TagFrameworkPrefix + "react"):
		return "React component"
	case r.HasReason(TagLifecycleMethod):
		return "lifecycle hook"
	case r.HasReason(TagTestUtility):
		return "test helper function"
	case r.HasReason(TagIndexFile):
		return "barrel export file"
	default:
		return "likely intentional"
	}
}

func negativeReason(r Result) string {
	switch {
	case r.HasReason(TagDeprecated):
		return "appears to be deprecated"
	case r.HasReason(TagPrivateNaming):
		return "uses private naming convention"
	case r.HasReason(TagDemoOrExample):
		return "appears to be a demo/example file"
	default:
		return "possibly dead code"
	}
}
