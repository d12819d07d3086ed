package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_SumIsOrderIndependent(t *testing.T) {
	always := func(string) (string, bool) { return "", true }
	never := func(string) (string, bool) { return "", false }
	signals := []Signal[string]{
		{Tag: "a", Weight: 7, Detect: always},
		{Tag: "b", Weight: -3, Detect: always},
		{Tag: "c", Weight: 100, Detect: never},
	}
	reversed := []Signal[string]{signals[2], signals[1], signals[0]}

	r1 := Evaluate(signals, "x")
	r2 := Evaluate(reversed, "x")

	assert.Equal(t, 4, r1.Score)
	assert.Equal(t, r1.Score, r2.Score)
	assert.Equal(t, []string{"a", "b"}, r1.Reasons)
	assert.Equal(t, LikelyValid, r1.Classification)
	assert.InDelta(t, 0.4, r1.Confidence, 1e-9)
}

func TestVerdictAndConfidence(t *testing.T) {
	assert.Equal(t, LikelyProblematic, Verdict(0))
	assert.Equal(t, LikelyProblematic, Verdict(-1))
	assert.Equal(t, LikelyValid, Verdict(1))

	assert.Equal(t, 0.0, Confidence(0))
	assert.Equal(t, 0.8, Confidence(-8))
	assert.Equal(t, 1.0, Confidence(25))
	assert.Equal(t, 1.0, Confidence(-10))
}

func TestExportClassifier_PrivateHelper(t *testing.T) {
	c := NewExportClassifier(Project{Root: "/p"}, Rules{})

	res := c.Classify(ExportSubject{Module: "/p/src/util.js", ExportName: "_privateHelper"})

	assert.Equal(t, []string{TagPrivateNaming}, res.Reasons)
	assert.Equal(t, -8, res.Score)
	assert.Equal(t, LikelyProblematic, res.Classification)
	assert.InDelta(t, 0.8, res.Confidence, 1e-9)
	assert.Equal(t, "Consider removing - uses private naming convention", res.Suggestion)
}

func TestExportClassifier_Signals(t *testing.T) {
	project := Project{Root: "/p", Main: "src/main.js", ExportTargets: []string{"./src/api.js"}}
	rules := Rules{
		IgnoredExports: map[string][]string{
			"src/plugins/*": {"register*"},
			"/p/src/all.js": {"*"},
		},
		PublicAPIPaths: []string{"src/public/*"},
	}
	c := NewExportClassifier(project, rules)

	tests := []struct {
		name       string
		module     string
		export     string
		reasons    []string
		score      int
		suggestion string
	}{
		{"entry point main", "/p/src/main.js", "run", []string{TagEntryPoint}, 10, "part of public API"},
		{"entry point exports map", "/p/src/api.js", "run", []string{TagEntryPoint}, 10, "part of public API"},
		{"ignored by relative glob", "/p/src/plugins/x.js", "registerAll", []string{TagIgnoredByConfig}, 20, "Keep - likely intentional"},
		{"ignore rule name mismatch", "/p/src/plugins/x.js", "helper", []string{}, 0, reviewNeeded},
		{"ignored wildcard by absolute path", "/p/src/all.js", "anything", []string{TagIgnoredByConfig}, 20, "Keep - likely intentional"},
		{"public api path", "/p/src/public/thing.js", "thing", []string{TagPublicAPIPath}, 15, "Keep - likely intentional"},
		{"index file", "/p/src/index.ts", "thing", []string{TagIndexFile}, 8, "Keep - barrel export file"},
		{"next convention", "/p/pages/home.js", "getProps", []string{TagFrameworkPrefix + "next"}, 7, "Keep - Next.js convention"},
		{"react component", "/p/src/Button.jsx", "Button", []string{TagFrameworkPrefix + "react"}, 7, "Keep - React component"},
		{"react lifecycle", "/p/src/View.tsx", "render", []string{TagFrameworkPrefix + "react", TagLifecycleMethod}, 12, "Keep - React component"},
		{"lifecycle only", "/p/src/hooks.js", "setup", []string{TagLifecycleMethod}, 5, reviewNeeded},
		{"test utility", "/p/src/__tests__/helpers.js", "mockServer", []string{TagFrameworkPrefix + "jest", TagTestUtility}, 13, "Keep - test helper function"},
		{"demo file", "/p/examples/basic.js", "demo", []string{TagDemoOrExample}, -8, "Consider removing - appears to be a demo/example file"},
		{"deprecated", "/p/src/a.js", "legacyFormat", []string{TagDeprecated}, -10, "Consider removing - appears to be deprecated"},
		{"deprecated and private", "/p/src/a.js", "_oldThing", []string{TagDeprecated, TagPrivateNaming}, -18, "Consider removing - appears to be deprecated"},
		{"private suffix", "/p/src/a.js", "StoreImpl", []string{TagPrivateNaming}, -8, "Consider removing - uses private naming convention"},
		{"plain", "/p/src/a.js", "format", []string{}, 0, reviewNeeded},
		{"app dir needs segment", "/p/src/myapp/x.js", "format", []string{}, 0, reviewNeeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Classify(ExportSubject{Module: tt.module, ExportName: tt.export})
			assert.Equal(t, tt.reasons, res.Reasons)
			assert.Equal(t, tt.score, res.Score)
			assert.Equal(t, tt.suggestion, res.Suggestion)
		})
	}
}

func TestExportClassifier_Weights(t *testing.T) {
	w := DefaultExportWeights()
	w.PrivateNaming = 3
	c := NewExportClassifier(Project{Root: "/p"}, Rules{}, WithExportWeights(w))

	res := c.Classify(ExportSubject{Module: "/p/a.js", ExportName: "_x"})
	assert.Equal(t, 3, res.Score)
	assert.Equal(t, LikelyValid, res.Classification)
}

func TestFramework(t *testing.T) {
	assert.Equal(t, "next", Framework("pages/api/users.js"))
	assert.Equal(t, "next", Framework("src/app/layout.tsx"), "next wins over react")
	assert.Equal(t, "storybook", Framework("src/Button.stories.js"))
	assert.Equal(t, "jest", Framework("src/a.spec.js"))
	assert.Equal(t, "vue", Framework("src/App.vue"))
	assert.Equal(t, "react", Framework("src/components/Nav.js"))
	assert.Equal(t, "", Framework("src/util.js"))
}

func TestProject_IsEntryPoint(t *testing.T) {
	p := Project{Root: "/p", Main: "./index.js", ExportTargets: []string{"./lib/a.js"}}
	assert.True(t, p.IsEntryPoint("index.js"))
	assert.True(t, p.IsEntryPoint("lib/a.js"))
	assert.False(t, p.IsEntryPoint("lib/b.js"))
	assert.False(t, Project{}.IsEntryPoint("index.js"))

	p = Project{Root: "/p", Module: "src/esm.js", Bin: []string{"./bin/cli.js"}}
	assert.True(t, p.IsEntryPoint("src/esm.js"), "module")
	assert.True(t, p.IsEntryPoint("bin/cli.js"), "bin")
	assert.False(t, p.IsEntryPoint("src/index.js"))
}

func TestImportClassifier_Unresolved(t *testing.T) {
	modules := []string{"/p/src/utils.js", "/p/src/config.js", "/p/src/api/client.ts"}
	c := NewImportClassifier(modules)

	tests := []struct {
		name       string
		from       string
		spec       string
		reasons    []string
		score      int
		suggestion string
	}{
		{
			name: "typo with extension", from: "/p/src/main.js", spec: "./utlis.js",
			reasons: []string{TagPossibleTypo}, score: -10, suggestion: "Did you mean './utils.js'?",
		},
		{
			name: "typo without extension", from: "/p/src/api/x.js", spec: "../confg",
			reasons: []string{TagPossibleTypo, TagMissingExtension}, score: -18, suggestion: "Did you mean '../config.js'?",
		},
		{
			name: "missing extension only", from: "/p/src/main.js", spec: "./nothing-like-it",
			reasons: []string{TagMissingExtension}, score: -8, suggestion: "Try './nothing-like-it.js'",
		},
		{
			name: "integration test importing dist", from: "/p/test/package-test.js", spec: "../dist/index.js",
			reasons: []string{TagIntegrationTest}, score: 10, suggestion: "Likely intentional",
		},
		{
			name: "improper build import", from: "/p/src/main.js", spec: "../dist/bundle.js",
			reasons: []string{TagImproperBuildImport}, score: -8, suggestion: "Import from source files instead of dist/",
		},
		{
			name: "platform specific", from: "/p/src/main.js", spec: "./Button.ios.js",
			reasons: []string{TagPlatformSpecific}, score: 8, suggestion: "Expected - platform-specific import",
		},
		{
			name: "optional dependency", from: "/p/src/main.js", spec: "./adapters/redis.js",
			reasons: []string{TagOptionalDependency}, score: 7, suggestion: "Likely intentional",
		},
		{
			name: "unclear", from: "/p/src/main.js", spec: "./zzzzzzzz.json",
			reasons: []string{}, score: 0, suggestion: "Check import path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Classify(ImportSubject{FromModule: tt.from, Specifier: tt.spec})
			assert.Equal(t, tt.reasons, res.Reasons)
			assert.Equal(t, tt.score, res.Score)
			assert.Equal(t, tt.suggestion, res.Suggestion)
			assert.Equal(t, Verdict(tt.score), res.Classification)
		})
	}
}

func TestImportClassifier_AmbiguousTypoIsNotSuggested(t *testing.T) {
	c := NewImportClassifier([]string{"/p/a/utils.js", "/p/b/utils.js"})

	res := c.Classify(ImportSubject{FromModule: "/p/main.js", Specifier: "./utis.js"})
	assert.False(t, res.HasReason(TagPossibleTypo))
}

type hintTable map[string]string

func (h hintTable) BasenameHint(name string) (string, bool) {
	id, ok := h[name]
	return id, ok
}

func (h hintTable) Lookup(key string) (string, bool) {
	id, ok := h[key]
	return id, ok
}

func TestImportClassifier_BasenameHint(t *testing.T) {
	modules := []string{"/p/a/utils.js", "/p/b/utils.js"}
	c := NewImportClassifier(modules, WithBasenameHints(hintTable{"utils.js": "/p/b/utils.js"}))

	res := c.Classify(ImportSubject{FromModule: "/p/a/main.js", Specifier: "./lib/utils.js"})
	require.True(t, res.HasReason(TagPossibleTypo))
	assert.Equal(t, "Did you mean '../b/utils.js'?", res.Suggestion)

	res = c.Classify(ImportSubject{FromModule: "/p/a/main.js", Specifier: "./lib/utils"})
	require.True(t, res.HasReason(TagPossibleTypo), "extensionless specifiers use the default extension")
	assert.Equal(t, "Did you mean '../b/utils.js'?", res.Suggestion)

	res = c.Classify(ImportSubject{FromModule: "/p/b/utils.js", Specifier: "./old/utils.js"})
	assert.NotEqual(t, "Did you mean './utils.js'?", res.Suggestion, "a module is never suggested to itself")
}

func TestProject_ResolveEntries(t *testing.T) {
	lookup := hintTable{
		"lib/index":  "/p/lib/index.ts",
		"./bin/cli":  "/p/bin/cli.js",
		"src/esm.js": "/p/src/esm.js",
	}
	p := Project{
		Root:          "/p",
		Main:          "lib/index",
		Module:        "src/esm.js",
		Bin:           []string{"./bin/cli"},
		ExportTargets: []string{"./dist/index.mjs"},
	}.ResolveEntries(lookup)

	assert.Equal(t, "lib/index.ts", p.Main)
	assert.Equal(t, "src/esm.js", p.Module)
	assert.Equal(t, []string{"bin/cli.js"}, p.Bin)
	assert.Equal(t, []string{"./dist/index.mjs"}, p.ExportTargets, "unresolved targets are kept")
	assert.True(t, p.IsEntryPoint("lib/index.ts"))
	assert.True(t, p.IsEntryPoint("bin/cli.js"))
	assert.True(t, p.IsEntryPoint("dist/index.mjs"))

	empty := Project{Root: "/p"}.ResolveEntries(lookup)
	assert.Empty(t, empty.Main)
	assert.Nil(t, empty.Bin)
}

func TestImportClassifier_MissingExport(t *testing.T) {
	c := NewImportClassifier(nil)

	res := c.Classify(ImportSubject{
		FromModule:    "/p/a.js",
		Specifier:     "./b",
		Name:          "fromat",
		TargetExports: []string{"format", "parse"},
	})
	require.True(t, res.HasReason(TagPossibleTypo))
	assert.False(t, res.HasReason(TagMissingExtension), "missing-extension only applies to unresolved imports")
	assert.Equal(t, "Did you mean 'format'?", res.Suggestion)

	res = c.Classify(ImportSubject{FromModule: "/p/a.js", Specifier: "./b", Name: "__APP_VERSION__"})
	assert.Equal(t, []string{TagBuildTimeConstant}, res.Reasons)
	assert.Equal(t, "Expected - resolved at build time", res.Suggestion)
}

func TestImportClassifier_DefaultExtension(t *testing.T) {
	c := NewImportClassifier(nil, WithDefaultExtension(".ts"))
	res := c.Classify(ImportSubject{FromModule: "/p/a.ts", Specifier: "./qqqqqqq"})
	assert.Equal(t, "Try './qqqqqqq.ts'", res.Suggestion)
}
