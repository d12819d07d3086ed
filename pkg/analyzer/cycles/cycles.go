// Package cycles finds circular dependencies among internal module edges.
package cycles

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/panbanda/modlens/pkg/analyzer/depgraph"
)

// Detector enumerates cycles with an iterative depth-first search.
type Detector struct{}

// New creates a Detector.
func New() *Detector {
	return &Detector{}
}

// frame is one level of the explicit DFS stack.
type frame struct {
	node   int
	cursor int
}

// indexed is the integer-indexed view of the internal edge subgraph.
type indexed struct {
	ids []string
	adj [][]int
}

func index(g *depgraph.Graph) indexed {
	ids := g.Paths()
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}
	adj := make([][]int, len(ids))
	for i, id := range ids {
		for _, e := range g.Nodes[id].Imports {
			if j, ok := pos[e.Target]; ok {
				adj[i] = append(adj[i], j)
			}
		}
	}
	return indexed{ids: ids, adj: adj}
}

// Detect returns every distinct cycle reachable by the traversal, in
// discovery order, along with an SCC summary. Roots are visited in sorted
// identity order and edges in declaration order, so output is stable.
func (d *Detector) Detect(g *depgraph.Graph) *Result {
	ix := index(g)
	raw := walk(ix)

	seen := make(map[string]bool, len(raw))
	var out []Cycle
	for _, c := range raw {
		canon := Normalize(c)
		key := canon.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, canon)
	}

	summary := summarize(ix)
	summary.TotalCycles = len(out)
	return &Result{Cycles: out, Summary: summary}
}

func walk(ix indexed) [][]string {
	n := len(ix.ids)
	visited := roaring.New()
	onStack := roaring.New()
	// stackPos[i] is node i's depth on the current path while on the stack.
	stackPos := make([]int, n)
	path := make([]int, 0, 16)
	stack := make([]frame, 0, 16)
	var found [][]string

	for root := 0; root < n; root++ {
		if visited.Contains(uint32(root)) {
			continue
		}
		stack = append(stack, frame{node: root})
		visited.Add(uint32(root))
		onStack.Add(uint32(root))
		stackPos[root] = len(path)
		path = append(path, root)

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.cursor < len(ix.adj[top.node]) {
				next := ix.adj[top.node][top.cursor]
				top.cursor++

				switch {
				case !visited.Contains(uint32(next)):
					visited.Add(uint32(next))
					onStack.Add(uint32(next))
					stackPos[next] = len(path)
					path = append(path, next)
					stack = append(stack, frame{node: next})
				case onStack.Contains(uint32(next)):
					suffix := path[stackPos[next]:]
					cycle := make([]string, 0, len(suffix)+1)
					for _, i := range suffix {
						cycle = append(cycle, ix.ids[i])
					}
					found = append(found, append(cycle, ix.ids[next]))
				}
				continue
			}

			onStack.Remove(uint32(top.node))
			path = path[:len(path)-1]
			stack = stack[:len(stack)-1]
		}
	}
	return found
}

// Normalize converts a closed path (first == last) to canonical form. An
// open path is treated as if it were already closed.
func Normalize(closed []string) Cycle {
	members := closed
	if len(closed) > 1 && closed[0] == closed[len(closed)-1] {
		members = closed[:len(closed)-1]
	}
	if len(members) == 0 {
		return Cycle{}
	}
	minIdx := 0
	for i := 1; i < len(members); i++ {
		if members[i] < members[minIdx] {
			minIdx = i
		}
	}
	out := make(Cycle, 0, len(members)+1)
	out = append(out, members[minIdx:]...)
	out = append(out, members[:minIdx]...)
	return append(out, out[0])
}

func summarize(ix indexed) Summary {
	directed := simple.NewDirectedGraph()
	for i := range ix.ids {
		directed.AddNode(simple.Node(int64(i)))
	}
	selfLoops := make(map[int]bool)
	for i, targets := range ix.adj {
		for _, j := range targets {
			if i == j {
				selfLoops[i] = true
				continue
			}
			directed.SetEdge(simple.Edge{F: simple.Node(int64(i)), T: simple.Node(int64(j))})
		}
	}

	var s Summary
	cyclic := make(map[int]bool)
	for _, scc := range topo.TarjanSCC(directed) {
		if len(scc) < 2 {
			continue
		}
		s.StronglyConnectedComponents++
		if len(scc) > s.LargestComponent {
			s.LargestComponent = len(scc)
		}
		for _, node := range scc {
			cyclic[int(node.ID())] = true
		}
	}
	for i := range selfLoops {
		if cyclic[i] {
			continue
		}
		cyclic[i] = true
		s.StronglyConnectedComponents++
		if s.LargestComponent == 0 {
			s.LargestComponent = 1
		}
	}

	for i := range cyclic {
		s.CyclicModules = append(s.CyclicModules, ix.ids[i])
	}
	sort.Strings(s.CyclicModules)
	s.IsCyclic = len(s.CyclicModules) > 0
	return s
}
