package depgraph

import (
	"fmt"
	"path/filepath"

	"github.com/panbanda/modlens/pkg/facts"
)

// EdgeKind classifies an import edge.
type EdgeKind string

const (
	EdgeInternal           EdgeKind = "internal"
	EdgeExternalPackage    EdgeKind = "external-package"
	EdgeExternalBuiltin    EdgeKind = "external-builtin"
	EdgeUnresolvedInternal EdgeKind = "unresolved-internal"
)

// String returns the string representation.
func (k EdgeKind) String() string {
	return string(k)
}

// Edge is an outgoing dependency of a module. Target is set only for
// internal edges; Package only for external ones.
type Edge struct {
	From       string            `json:"from" toon:"from"`
	Specifier  string            `json:"source" toon:"source"`
	Target     string            `json:"resolved,omitempty" toon:"resolved,omitempty"`
	Package    string            `json:"package,omitempty" toon:"package,omitempty"`
	Kind       EdgeKind          `json:"dependency_type" toon:"dependency_type"`
	Type       facts.ImportType  `json:"type,omitempty" toon:"type,omitempty"`
	Line       int               `json:"line" toon:"line"`
	Specifiers []facts.Specifier `json:"specifiers,omitempty" toon:"specifiers,omitempty"`
}

// Incoming is a reverse edge: Source imports the module holding it.
type Incoming struct {
	Source string           `json:"source" toon:"source"`
	Line   int              `json:"line" toon:"line"`
	Type   facts.ImportType `json:"type,omitempty" toon:"type,omitempty"`
}

// Unresolved is a relative import with no matching module. Unlike an
// external dependency it is a real defect in the importing module.
type Unresolved struct {
	Module     string            `json:"module" toon:"module"`
	Specifier  string            `json:"source" toon:"source"`
	Kind       EdgeKind          `json:"dependency_type" toon:"dependency_type"`
	Line       int               `json:"line" toon:"line"`
	Type       facts.ImportType  `json:"type,omitempty" toon:"type,omitempty"`
	Specifiers []facts.Specifier `json:"specifiers,omitempty" toon:"specifiers,omitempty"`
	Message    string            `json:"message" toon:"message"`
}

// Node is the adjacency of one module.
type Node struct {
	Path                 string             `json:"path" toon:"path"`
	FileType             facts.FileType     `json:"file_type" toon:"file_type"`
	Imports              []Edge             `json:"imports" toon:"imports"`
	ImportedBy           []Incoming         `json:"imported_by" toon:"imported_by"`
	Exports              []facts.ExportFact `json:"exports" toon:"exports"`
	ExternalDependencies []Edge             `json:"external_dependencies" toon:"external_dependencies"`
	UnresolvedInternals  []Unresolved       `json:"unresolved_internals" toon:"unresolved_internals"`
}

// FanOut returns the number of internal outgoing edges.
func (n *Node) FanOut() int {
	return len(n.Imports)
}

func (n *Node) reset() {
	n.Imports = []Edge{}
	n.ExternalDependencies = []Edge{}
	n.UnresolvedInternals = []Unresolved{}
}

// Graph is the resolved module graph. Its nodes are exactly the valid
// input modules.
type Graph struct {
	Root  string           `json:"root" toon:"root"`
	Nodes map[string]*Node `json:"modules" toon:"modules"`
	order []string
}

// Paths returns node identities in lexicographic order.
func (g *Graph) Paths() []string {
	return g.order
}

// Node returns the adjacency for a module.
func (g *Graph) Node(path string) (*Node, bool) {
	n, ok := g.Nodes[path]
	return n, ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.order)
}

// InternalEdgeCount returns the total number of internal edges.
func (g *Graph) InternalEdgeCount() int {
	total := 0
	for _, n := range g.Nodes {
		total += len(n.Imports)
	}
	return total
}

// ExternalEdgeCount returns the total number of external edges.
func (g *Graph) ExternalEdgeCount() int {
	total := 0
	for _, n := range g.Nodes {
		total += len(n.ExternalDependencies)
	}
	return total
}

// Relative returns p relative to the graph root with forward slashes.
func (g *Graph) Relative(p string) string {
	if g.Root == "" {
		return p
	}
	rel, err := filepath.Rel(g.Root, p)
	if err != nil {
		return p
	}
	return filepath.ToSlash(rel)
}

// Unresolved returns all unresolved internal imports in module order.
func (g *Graph) Unresolved() []Unresolved {
	var out []Unresolved
	for _, p := range g.order {
		out = append(out, g.Nodes[p].UnresolvedInternals...)
	}
	return out
}

// ModuleError records a failure confined to one module. Stage names the
// processing step ("load", "build", ...).
type ModuleError struct {
	Module string `json:"module" toon:"module"`
	Stage  string `json:"stage" toon:"stage"`
	Err    error  `json:"-" toon:"-"`
}

func (e *ModuleError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Module, e.Stage, e.Err)
}

func (e *ModuleError) Unwrap() error {
	return e.Err
}

// Message returns the underlying error text.
func (e *ModuleError) Message() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}
