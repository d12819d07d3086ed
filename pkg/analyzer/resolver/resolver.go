// Package resolver maps relative import specifiers onto known module
// identities using path, extension and index-file conventions.
package resolver

import (
	"path/filepath"
	"strings"

	"github.com/panbanda/modlens/pkg/facts"
)

// Default extension priority, used when no option overrides it.
var (
	DefaultCodeExtensions = []string{".js", ".jsx", ".ts", ".tsx"}
	DefaultDataExtensions = []string{".json", ".yaml", ".yml"}
)

// siblingExtensions lists the source files an explicit extension may stand
// for. Compiled output names (.js) commonly point at TypeScript sources.
var siblingExtensions = map[string][]string{
	".js":  {".ts", ".tsx", ".jsx"},
	".jsx": {".tsx"},
	".mjs": {".mts", ".ts"},
	".cjs": {".cts", ".ts"},
}

// Resolver answers whether a relative specifier names a module in the set.
// It is immutable after New and safe for concurrent use.
type Resolver struct {
	root     string
	codeExts []string
	dataExts []string
	allExts  []string

	// identities is the only source of genuine resolutions.
	identities map[string]struct{}
	// lookup holds absolute, root-relative and extension-stripped keys.
	lookup map[string]string
	// basenames is a fallback hint; collisions keep the last identity.
	basenames map[string]string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithExtensions sets code and data extensions in priority order.
func WithExtensions(code, data []string) Option {
	return func(r *Resolver) {
		if len(code) > 0 {
			r.codeExts = append([]string(nil), code...)
		}
		if data != nil {
			r.dataExts = append([]string(nil), data...)
		}
	}
}

// New builds the lookup tables for every module in set.
func New(set *facts.Set, opts ...Option) *Resolver {
	r := &Resolver{
		root:       set.Root(),
		codeExts:   DefaultCodeExtensions,
		dataExts:   DefaultDataExtensions,
		identities: make(map[string]struct{}, set.Len()),
		lookup:     make(map[string]string, set.Len()*3),
		basenames:  make(map[string]string, set.Len()),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.allExts = append(append([]string(nil), r.codeExts...), r.dataExts...)

	for _, id := range set.Paths() {
		r.identities[id] = struct{}{}
		r.lookup[id] = id
		if rel, err := filepath.Rel(r.root, id); err == nil {
			r.lookup[filepath.ToSlash(rel)] = id
		}
		if stripped, ok := r.stripCodeExt(id); ok {
			r.lookup[stripped] = id
		}
		r.basenames[filepath.Base(id)] = id
	}
	return r
}

// Root returns the project root.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve maps a relative specifier imported from fromModule to a module
// identity. Non-relative specifiers are never tried on disk. A miss returns
// ("", false) and is not an error.
func (r *Resolver) Resolve(specifier, fromModule string) (string, bool) {
	if !facts.IsRelativeSpecifier(specifier) {
		return "", false
	}
	base := filepath.Join(filepath.Dir(fromModule), filepath.FromSlash(specifier))

	if r.has(base) {
		return base, true
	}

	ext := strings.ToLower(filepath.Ext(base))
	if siblings, ok := siblingExtensions[ext]; ok {
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		for _, sib := range siblings {
			if cand := stem + sib; r.has(cand) {
				return cand, true
			}
		}
	} else {
		for _, e := range r.allExts {
			if cand := base + e; r.has(cand) {
				return cand, true
			}
		}
	}

	for _, e := range r.allExts {
		if cand := filepath.Join(base, "index"+e); r.has(cand) {
			return cand, true
		}
	}
	return "", false
}

// Lookup finds an identity by absolute path, root-relative path, or either
// without its code extension. A leading "./" is ignored.
func (r *Resolver) Lookup(key string) (string, bool) {
	key = filepath.Clean(filepath.FromSlash(key))
	if id, ok := r.lookup[filepath.ToSlash(key)]; ok {
		return id, true
	}
	if id, ok := r.lookup[key]; ok {
		return id, true
	}
	if !filepath.IsAbs(key) {
		if id, ok := r.lookup[filepath.Join(r.root, key)]; ok {
			return id, true
		}
	}
	return "", false
}

// BasenameHint returns the identity last registered under a file name. It
// is ambiguous by nature and only suitable for suggestions.
func (r *Resolver) BasenameHint(name string) (string, bool) {
	id, ok := r.basenames[name]
	return id, ok
}

// Relative returns id relative to the project root, using forward slashes.
func (r *Resolver) Relative(id string) string {
	rel, err := filepath.Rel(r.root, id)
	if err != nil {
		return id
	}
	return filepath.ToSlash(rel)
}

func (r *Resolver) has(path string) bool {
	_, ok := r.identities[path]
	return ok
}

func (r *Resolver) stripCodeExt(path string) (string, bool) {
	ext := filepath.Ext(path)
	for _, e := range r.codeExts {
		if ext == e {
			return strings.TrimSuffix(path, ext), true
		}
	}
	return "", false
}
