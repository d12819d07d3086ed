// Package glob compiles the simple path patterns used in configuration
// (ignored exports, public API paths, coupling excludes) into anchored
// regular expressions.
//
// Only two wildcards exist: '*' matches any run of characters, including
// path separators, and '?' matches exactly one character. Everything else is
// literal. A pattern must match the whole input, never a substring.
package glob

import (
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of compiled patterns a Matcher keeps.
const DefaultCacheSize = 256

// Compile converts a glob pattern to an anchored regular expression.
func Compile(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(ToRegexp(pattern))
}

// ToRegexp returns the anchored regular expression source for pattern.
func ToRegexp(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern) + 8)
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return b.String()
}

// Match reports whether s matches pattern.
func Match(pattern, s string) bool {
	re, err := Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

// Matcher matches strings against patterns, keeping compiled expressions in
// a bounded cache. A Matcher is safe for concurrent use.
type Matcher struct {
	cache *lru.Cache[string, *regexp.Regexp]
}

// NewMatcher creates a Matcher with the default cache size.
func NewMatcher() *Matcher {
	return NewMatcherSize(DefaultCacheSize)
}

// NewMatcherSize creates a Matcher holding at most size compiled patterns.
func NewMatcherSize(size int) *Matcher {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *regexp.Regexp](size)
	if err != nil {
		// lru.New only fails for a non-positive size.
		panic(err)
	}
	return &Matcher{cache: cache}
}

// Match reports whether s matches pattern.
func (m *Matcher) Match(pattern, s string) bool {
	re, ok := m.cache.Get(pattern)
	if !ok {
		var err error
		re, err = Compile(pattern)
		if err != nil {
			return false
		}
		m.cache.Add(pattern, re)
	}
	return re.MatchString(s)
}

// MatchAny reports whether s matches at least one pattern.
func (m *Matcher) MatchAny(patterns []string, s string) bool {
	for _, p := range patterns {
		if m.Match(p, s) {
			return true
		}
	}
	return false
}
