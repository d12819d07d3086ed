package cycles

import "strings"

// Cycle is a closed path of module identities in canonical form: the
// lexicographically smallest identity comes first and is repeated at the end.
type Cycle []string

// Members returns the distinct modules on the cycle.
func (c Cycle) Members() []string {
	if len(c) <= 1 {
		return c
	}
	return c[:len(c)-1]
}

// Key is the dedup key of a canonical cycle.
func (c Cycle) Key() string {
	return strings.Join(c.Members(), " -> ")
}

// Result holds cycle detection output for one graph.
type Result struct {
	Cycles  []Cycle `json:"cycles" toon:"cycles"`
	Summary Summary `json:"summary" toon:"summary"`
}

// Summary describes the cyclic structure independent of which elementary
// cycles the traversal happened to find.
type Summary struct {
	TotalCycles int `json:"total_cycles" toon:"total_cycles"`
	// StronglyConnectedComponents counts components with more than one
	// module, plus modules that import themselves.
	StronglyConnectedComponents int      `json:"strongly_connected_components" toon:"strongly_connected_components"`
	LargestComponent            int      `json:"largest_component" toon:"largest_component"`
	CyclicModules               []string `json:"cyclic_modules,omitempty" toon:"cyclic_modules,omitempty"`
	IsCyclic                    bool     `json:"is_cyclic" toon:"is_cyclic"`
}
