package glob

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		input   string
		want    bool
	}{
		{"star crosses separators", "src/*", "src/a/b/c.js", true},
		{"anchored at start", "lib/*", "src/lib/a.js", false},
		{"anchored at end", "*.js", "a.js.map", false},
		{"question mark single char", "a?.js", "ab.js", true},
		{"question mark not empty", "a?.js", "a.js", false},
		{"dot is literal", "*.test.js", "a_testXjs", false},
		{"dot literal matches", "*.test.js", "src/a.test.js", true},
		{"regex metachars escaped", "src/(gen)/*", "src/(gen)/a.ts", true},
		{"plus escaped", "a+b", "aab", false},
		{"exact", "/abs/path.js", "/abs/path.js", true},
		{"star alone", "*", "", true},
		{"empty pattern", "", "x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.pattern, tt.input))
		})
	}
}

func TestToRegexp(t *testing.T) {
	assert.Equal(t, `^src/.*\.js$`, ToRegexp("src/*.js"))
	assert.Equal(t, `^a.b$`, ToRegexp("a?b"))
}

func TestMatcher_CachesAndAgreesWithMatch(t *testing.T) {
	m := NewMatcherSize(2)
	patterns := []string{"*.js", "src/*", "lib/?.ts"}
	inputs := []string{"a.js", "src/x.ts", "lib/a.ts", "lib/ab.ts"}

	for round := 0; round < 2; round++ {
		for _, p := range patterns {
			for _, in := range inputs {
				assert.Equal(t, Match(p, in), m.Match(p, in), "pattern %q input %q", p, in)
			}
		}
	}
}

func TestMatcher_MatchAny(t *testing.T) {
	m := NewMatcher()
	assert.True(t, m.MatchAny([]string{"*.css", "*.js"}, "a.js"))
	assert.False(t, m.MatchAny([]string{"*.css"}, "a.js"))
	assert.False(t, m.MatchAny(nil, "a.js"))
}
