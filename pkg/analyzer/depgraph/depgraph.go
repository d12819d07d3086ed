// Package depgraph classifies every import fact into internal, external or
// unresolved edges and builds forward and reverse module adjacency.
package depgraph

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/panbanda/modlens/internal/logging"
	"github.com/panbanda/modlens/pkg/analyzer/resolver"
	"github.com/panbanda/modlens/pkg/facts"
)

// StageBuild names per-module failures raised while building edges.
const StageBuild = "build"

// Builder turns a fact set into a Graph.
type Builder struct {
	resolver *resolver.Resolver
	logger   *logrus.Logger
}

// Option is a functional option for configuring Builder.
type Option func(*Builder)

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder creates a Builder using r for relative specifiers.
func NewBuilder(r *resolver.Resolver, opts ...Option) *Builder {
	b := &Builder{
		resolver: r,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build runs the forward pass over every module and then the reverse pass
// over all internal edges. A failure inside one module leaves that module
// with empty adjacency and is returned as a ModuleError; it never stops the
// rest of the build.
func (b *Builder) Build(set *facts.Set) (*Graph, []*ModuleError) {
	g := &Graph{
		Root:  set.Root(),
		Nodes: make(map[string]*Node, set.Len()),
		order: set.Paths(),
	}
	var errs []*ModuleError

	for _, path := range set.Paths() {
		rec, _ := set.Get(path)
		node := &Node{
			Path:       rec.Path,
			FileType:   rec.FileType,
			ImportedBy: []Incoming{},
			Exports:    rec.Exports,
		}
		node.reset()
		g.Nodes[path] = node

		if err := b.processModule(rec, node); err != nil {
			node.reset()
			errs = append(errs, &ModuleError{Module: path, Stage: StageBuild, Err: err})
			b.logger.WithError(err).WithField("module", path).Warn("module skipped during graph build")
		}
	}

	b.buildReverse(g)
	return g, errs
}

func (b *Builder) processModule(rec *facts.ModuleRecord, node *Node) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	for _, imp := range rec.Imports {
		switch {
		case imp.IsRelative():
			target, ok := b.resolver.Resolve(imp.Source, rec.Path)
			if !ok {
				node.UnresolvedInternals = append(node.UnresolvedInternals, Unresolved{
					Module:     rec.Path,
					Specifier:  imp.Source,
					Kind:       EdgeUnresolvedInternal,
					Line:       imp.Line,
					Type:       imp.Type,
					Specifiers: imp.Specifiers,
					Message:    "Could not resolve internal import: " + imp.Source,
				})
				b.logger.WithFields(logrus.Fields{"module": rec.Path, "source": imp.Source}).Debug("unresolved internal import")
				continue
			}
			node.Imports = append(node.Imports, Edge{
				From:       rec.Path,
				Specifier:  imp.Source,
				Target:     target,
				Kind:       EdgeInternal,
				Type:       imp.Type,
				Line:       imp.Line,
				Specifiers: imp.Specifiers,
			})

		case IsBuiltin(imp.Source):
			node.ExternalDependencies = append(node.ExternalDependencies, Edge{
				From:      rec.Path,
				Specifier: imp.Source,
				Package:   imp.Source,
				Kind:      EdgeExternalBuiltin,
				Type:      imp.Type,
				Line:      imp.Line,
			})

		default:
			node.ExternalDependencies = append(node.ExternalDependencies, Edge{
				From:      rec.Path,
				Specifier: imp.Source,
				Package:   PackageName(imp.Source),
				Kind:      EdgeExternalPackage,
				Type:      imp.Type,
				Line:      imp.Line,
			})
		}
	}
	return nil
}

// buildReverse must run after every forward edge exists: a target may be
// visited before the module that imports it.
func (b *Builder) buildReverse(g *Graph) {
	for _, path := range g.order {
		for _, e := range g.Nodes[path].Imports {
			target, ok := g.Nodes[e.Target]
			if !ok {
				continue
			}
			target.ImportedBy = append(target.ImportedBy, Incoming{
				Source: path,
				Line:   e.Line,
				Type:   e.Type,
			})
		}
	}
}
