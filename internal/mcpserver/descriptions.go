package mcpserver

// Tool descriptions with interpretation guidance for LLMs.
// Each description explains what the tool does, when to use it,
// how to interpret results, and key thresholds.

func describeModules() string {
	return `Runs the full module graph analysis over a fact document: dependency graph, circular dependencies, unused and missing exports, unresolved imports and coupling.

USE WHEN:
- Getting an overview of a JavaScript/TypeScript project's module health
- Checking a change for new cycles or broken imports before review
- Comparing two runs (same digest means identical findings)

INTERPRETING RESULTS:
- Every finding carries a classification: likely-valid or likely-problematic
- likely-problematic findings are the ones worth acting on
- Score > 0 means project signals explain the finding (entry points, public API, framework files)
- Confidence saturates at 1.0 for |score| >= 10
- Fingerprints are stable across machines and runs; use them to track findings

METRICS RETURNED:
- Summary: module, edge, finding and error counts
- Per-finding: module, line, classification, reasons, suggestion, fingerprint
- Digest: content hash of the report`
}

func describeGraph() string {
	return `Builds the resolved module dependency graph from a fact document, optionally as a Mermaid diagram.

USE WHEN:
- Understanding how modules depend on each other
- Finding who imports a module before changing or removing it
- Visualizing cycles (cycle edges are drawn with thick arrows)

INTERPRETING RESULTS:
- imports are internal edges to other analyzed modules
- imported_by is the reverse index of internal edges
- external_dependencies are package and builtin imports
- unresolved_internals are relative imports with no matching module

METRICS RETURNED:
- Per-module: imports, imported_by, exports, external_dependencies
- Summary: module and edge counts`
}

func describeCycles() string {
	return `Detects circular dependencies between modules.

USE WHEN:
- Debugging initialization order problems or undefined imports at runtime
- Planning refactors that split tightly bound modules
- Gating merges that introduce new cycles

INTERPRETING RESULTS:
- Each cycle is listed once, starting from its smallest module path and closed by repeating it
- Length 1 means a module imports itself
- Many cycles inside one strongly connected component point at one tangle to break
- cyclic_modules lists every module on any cycle

METRICS RETURNED:
- Cycles with length and fingerprint
- Summary: total cycles, strongly connected components, largest component size`
}

func describeUnusedExports() string {
	return `Lists exports that no analyzed module imports, classified by how likely they are dead code.

USE WHEN:
- Cleaning up dead code
- Shrinking a module's public surface
- Reviewing what a refactor left behind

INTERPRETING RESULTS:
- likely-valid: the export is probably consumed outside the analyzed set (entry point, public API path, index file, framework file, test utility)
- likely-problematic: nothing explains the export; consider removing it
- Namespace imports mark every export of the target as used
- Side-effect imports (no specifiers) use no exports

METRICS RETURNED:
- Per-export: module, name, kind, line, classification, reasons, fingerprint`
}

func describeImportProblems() string {
	return `Reports named imports the target module does not export and relative imports that resolve to no module.

USE WHEN:
- Chasing "is not exported" or "module not found" build errors
- Catching typos in import names and paths
- Auditing imports after moving or renaming files

INTERPRETING RESULTS:
- Missing exports with a close export name carry a "did you mean" suggestion
- Unresolved imports may be platform-specific, optional or build-time files (likely-valid)
- Suggestions propose a corrected path when a near match exists

METRICS RETURNED:
- Missing exports: source, import specifier, target, missing name, line
- Unresolved imports: module, specifier, line, classification, suggestion`
}

func describeCoupling() string {
	return `Finds modules whose internal fan-out exceeds a threshold.

USE WHEN:
- Identifying god modules that import too much of the codebase
- Deciding where to split a module
- Tracking coupling trends over time

INTERPRETING RESULTS:
- import_count is the number of internal import edges
- The threshold is exclusive: a module at the threshold is not flagged
- Compare against the median and P90 to see how far a module is from typical

METRICS RETURNED:
- Per-module: import count and threshold
- Stats: mean, median, P90 and max fan-out over all modules`
}
