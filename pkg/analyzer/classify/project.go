package classify

import (
	"path"
	"path/filepath"
	"strings"
)

// Project is static metadata about the analyzed package.
type Project struct {
	Root string
	// Main is the package manifest "main" entry.
	Main string
	// Module is the manifest "module" entry (ES module build).
	Module string
	// Bin are the executables named by the manifest "bin" field.
	Bin []string
	// ExportTargets are the flattened values of the manifest "exports" map.
	ExportTargets []string
}

// Rules is project configuration consulted by the classifiers.
type Rules struct {
	// IgnoredExports maps a module path glob to export name globs.
	IgnoredExports map[string][]string
	// PublicAPIPaths are root-relative path globs.
	PublicAPIPaths []string
}

// Relative returns path relative to the project root with forward slashes.
func (p Project) Relative(path string) string {
	if p.Root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(p.Root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// IsEntryPoint reports whether the root-relative path is named by the
// manifest main, module or bin fields, or is one of its export targets.
func (p Project) IsEntryPoint(rel string) bool {
	if rel == "" {
		return false
	}
	rel = manifestPath(rel)
	for _, target := range p.entryTargets() {
		if target != "" && manifestPath(target) == rel {
			return true
		}
	}
	return false
}

func (p Project) entryTargets() []string {
	targets := make([]string, 0, 2+len(p.Bin)+len(p.ExportTargets))
	targets = append(targets, p.Main, p.Module)
	targets = append(targets, p.Bin...)
	return append(targets, p.ExportTargets...)
}

// EntryLookup finds a module identity from a manifest-style path such as
// "lib/index" or "./src/main.js".
type EntryLookup interface {
	Lookup(key string) (string, bool)
}

// ResolveEntries returns a copy of p whose manifest targets are replaced by
// the root-relative paths of the modules they name, so an extensionless
// "main": "lib/index" matches lib/index.js. Targets that name no module are
// kept as written.
func (p Project) ResolveEntries(l EntryLookup) Project {
	resolve := func(target string) string {
		if target == "" {
			return target
		}
		if id, ok := l.Lookup(target); ok {
			return p.Relative(id)
		}
		return target
	}
	resolveAll := func(targets []string) []string {
		if targets == nil {
			return nil
		}
		out := make([]string, len(targets))
		for i, t := range targets {
			out[i] = resolve(t)
		}
		return out
	}

	out := p
	out.Main = resolve(p.Main)
	out.Module = resolve(p.Module)
	out.Bin = resolveAll(p.Bin)
	out.ExportTargets = resolveAll(p.ExportTargets)
	return out
}

// manifestPath normalizes "./lib/a.js" and "lib/a.js" to the same form.
func manifestPath(s string) string {
	return path.Clean(filepath.ToSlash(s))
}

// containsPattern matches pattern against a root-relative path. Patterns
// ending in "/" name a directory and must match whole path segments.
func containsPattern(rel, pattern string) bool {
	if strings.HasSuffix(pattern, "/") {
		return strings.Contains("/"+rel, "/"+pattern)
	}
	return strings.Contains(rel, pattern)
}
