package classify

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xrash/smetrics"
)

// ImportSubject is either an unresolved relative import (Name empty) or a
// named import missing from its resolved target.
type ImportSubject struct {
	FromModule string
	Specifier  string
	// Name is the requested export name for a missing export.
	Name string
	// TargetExports are the export names of the resolved target, used for
	// typo suggestions on missing exports.
	TargetExports []string
}

// MaxTypoDistance is the largest edit distance treated as a typo.
const MaxTypoDistance = 2

var buildTimePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^__[A-Z_]+__$`),
	regexp.MustCompile(`^process\.env`),
	regexp.MustCompile(`^BUILD_`),
	regexp.MustCompile(`^WEBPACK_`),
}

var platformMarkers = []string{".ios", ".android", ".web", ".native", ".electron"}

var optionalPackages = []string{"redis", "mongodb", "pg", "mysql", "canvas"}

var integrationTestMarkers = []string{
	"integration", "e2e", "end-to-end", "export-test",
	"build-test", "dist-test", "package-test", "publish-test",
}

// integrationBuildDirs are the output directories an integration test may
// legitimately import.
var integrationBuildDirs = []string{"dist", "build", "lib", "es", "cjs"}

var improperBuildDirs = []string{"dist", "build", "lib", "es", "cjs", "out", ".next"}

// ImportClassifier scores unresolved imports and missing exports.
type ImportClassifier struct {
	// modules are all identities in the graph, for typo candidates.
	modules []string
	hints   BasenameHinter
	defExt  string
	signals []Signal[ImportSubject]
}

// BasenameHinter looks up a module by bare file name. Answers are hints:
// names are not unique across a project.
type BasenameHinter interface {
	BasenameHint(name string) (string, bool)
}

// ImportOption configures an ImportClassifier.
type ImportOption func(*importConfig)

type importConfig struct {
	weights ImportWeights
	defExt  string
	hints   BasenameHinter
}

// WithImportWeights overrides the default import weights.
func WithImportWeights(w ImportWeights) ImportOption {
	return func(c *importConfig) {
		c.weights = w
	}
}

// WithDefaultExtension sets the extension proposed for extensionless
// specifiers.
func WithDefaultExtension(ext string) ImportOption {
	return func(c *importConfig) {
		if ext != "" {
			c.defExt = ext
		}
	}
}

// WithBasenameHints lets typo suggestions propose a module with the exact
// file name the specifier asks for before falling back to edit distance.
func WithBasenameHints(h BasenameHinter) ImportOption {
	return func(c *importConfig) {
		c.hints = h
	}
}

// NewImportClassifier builds the import signal list. modules is the full
// set of module identities.
func NewImportClassifier(modules []string, opts ...ImportOption) *ImportClassifier {
	cfg := importConfig{weights: DefaultImportWeights(), defExt: ".js"}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &ImportClassifier{modules: modules, hints: cfg.hints, defExt: cfg.defExt}
	w := cfg.weights

	c.signals = []Signal[ImportSubject]{
		{Tag: TagIntegrationTest, Weight: w.IntegrationTest, Detect: func(s ImportSubject) (string, bool) {
			if isIntegrationTest(s.FromModule, s.Specifier) {
				return "Expected - integration test importing built package", true
			}
			return "", false
		}},
		{Tag: TagBuildTimeConstant, Weight: w.BuildTimeConstant, Detect: func(s ImportSubject) (string, bool) {
			return fired(isBuildTimeConstant(s.Specifier) || (s.Name != "" && isBuildTimeConstant(s.Name)))
		}},
		{Tag: TagPlatformSpecific, Weight: w.PlatformSpecific, Detect: func(s ImportSubject) (string, bool) {
			return fired(isPlatformSpecific(s.Specifier))
		}},
		{Tag: TagOptionalDependency, Weight: w.OptionalDependency, Detect: func(s ImportSubject) (string, bool) {
			return fired(isOptionalDependency(s.Specifier))
		}},
		{Tag: TagPossibleTypo, Weight: w.PossibleTypo, Detect: func(s ImportSubject) (string, bool) {
			if s.Name != "" {
				if match, ok := closest(s.Name, s.TargetExports); ok {
					return fmt.Sprintf("Did you mean '%s'?", match), true
				}
				return "", false
			}
			if rel, ok := c.typoCandidate(s); ok {
				return fmt.Sprintf("Did you mean '%s'?", rel), true
			}
			return "", false
		}},
		{Tag: TagImproperBuildImport, Weight: w.ImproperBuildImport, Detect: func(s ImportSubject) (string, bool) {
			if isIntegrationTest(s.FromModule, s.Specifier) {
				return "", false
			}
			if dir, ok := buildDir(s.Specifier, improperBuildDirs); ok {
				return fmt.Sprintf("Import from source files instead of %s/", dir), true
			}
			return "", false
		}},
		{Tag: TagMissingExtension, Weight: w.MissingExtension, Detect: func(s ImportSubject) (string, bool) {
			if s.Name != "" || path.Ext(path.Base(s.Specifier)) != "" {
				return "", false
			}
			return fmt.Sprintf("Try '%s%s'", s.Specifier, c.defExt), true
		}},
	}
	return c
}

// Classify scores an import finding.
func (c *ImportClassifier) Classify(s ImportSubject) Result {
	res := Evaluate(c.signals, s)
	res.Suggestion = importSuggestion(res)
	return res
}

// typoCandidate proposes the module the specifier most likely meant: one
// whose file name the basename hints know exactly, or else the single
// module whose name is within MaxTypoDistance. Extensionless specifiers are
// compared against file stems.
func (c *ImportClassifier) typoCandidate(s ImportSubject) (string, bool) {
	want := path.Base(s.Specifier)
	stemOnly := path.Ext(want) == ""

	if c.hints != nil {
		name := want
		if stemOnly {
			name += c.defExt
		}
		if id, ok := c.hints.BasenameHint(name); ok && id != s.FromModule {
			return relativeSpecifier(filepath.Dir(s.FromModule), id), true
		}
	}

	var found string
	count := 0
	for _, id := range c.modules {
		name := filepath.Base(id)
		if stemOnly {
			name = strings.TrimSuffix(name, filepath.Ext(name))
		}
		if smetrics.WagnerFischer(want, name, 1, 1, 1) <= MaxTypoDistance {
			found = id
			count++
			if count > 1 {
				return "", false
			}
		}
	}
	if count != 1 {
		return "", false
	}
	return relativeSpecifier(filepath.Dir(s.FromModule), found), true
}

// relativeSpecifier renders target as an import specifier from dir.
func relativeSpecifier(dir, target string) string {
	rel, err := filepath.Rel(dir, target)
	if err != nil {
		return target
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel
}

// closest returns the single candidate within MaxTypoDistance of name.
func closest(name string, candidates []string) (string, bool) {
	var found string
	count := 0
	for _, cand := range candidates {
		if smetrics.WagnerFischer(name, cand, 1, 1, 1) <= MaxTypoDistance {
			found = cand
			count++
		}
	}
	return found, count == 1
}

func isBuildTimeConstant(s string) bool {
	for _, re := range buildTimePatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func isPlatformSpecific(spec string) bool {
	for _, m := range platformMarkers {
		if strings.Contains(spec, m) {
			return true
		}
	}
	return false
}

// isOptionalDependency matches optional package names as whole path
// segments, ignoring extensions.
func isOptionalDependency(spec string) bool {
	for _, seg := range strings.Split(spec, "/") {
		seg = strings.TrimSuffix(seg, path.Ext(seg))
		for _, pkg := range optionalPackages {
			if seg == pkg {
				return true
			}
		}
	}
	return false
}

func isIntegrationTest(fromModule, spec string) bool {
	name := strings.ToLower(filepath.Base(fromModule))
	marked := false
	for _, m := range integrationTestMarkers {
		if strings.Contains(name, m) {
			marked = true
			break
		}
	}
	if !marked {
		return false
	}
	_, ok := buildDir(spec, integrationBuildDirs)
	return ok
}

func buildDir(spec string, dirs []string) (string, bool) {
	for _, dir := range dirs {
		if strings.Contains(spec, "/"+dir+"/") ||
			strings.HasPrefix(spec, "./"+dir+"/") ||
			strings.HasPrefix(spec, "../"+dir+"/") {
			return dir, true
		}
	}
	return "", false
}

func importSuggestion(r Result) string {
	if r.Score > 0 {
		switch {
		case r.HasReason(TagBuildTimeConstant):
			return "Expected - resolved at build time"
		case r.HasReason(TagPlatformSpecific):
			return "Expected - platform-specific import"
		default:
			return "Likely intentional"
		}
	}
	if len(r.Suggestions) > 0 {
		return r.Suggestions[0]
	}
	return "Check import path"
}
