package depgraph

import (
	"strconv"
	"strings"
)

// MermaidOptions configures Mermaid diagram generation.
type MermaidOptions struct {
	MaxNodes   int              `json:"max_nodes" toon:"max_nodes"`
	MaxEdges   int              `json:"max_edges" toon:"max_edges"`
	ShowFanOut bool             `json:"show_fan_out" toon:"show_fan_out"`
	Direction  MermaidDirection `json:"direction" toon:"direction"`
	// Highlight marks edges (from -> to) drawn with a thick arrow, such as
	// edges on a cycle.
	Highlight map[[2]string]bool `json:"-" toon:"-"`
}

// MermaidDirection specifies the graph direction.
type MermaidDirection string

const (
	DirectionTD MermaidDirection = "TD" // Top-down
	DirectionLR MermaidDirection = "LR" // Left-right
)

// DefaultMermaidOptions returns sensible defaults.
func DefaultMermaidOptions() MermaidOptions {
	return MermaidOptions{
		MaxNodes:  50,
		MaxEdges:  150,
		Direction: DirectionLR,
	}
}

// ToMermaid renders the internal edges of g as a Mermaid flowchart. Node
// ids come from the position of the module in the graph order, so distinct
// paths never share a node; labels are root-relative paths.
func (g *Graph) ToMermaid(opts MermaidOptions) string {
	var sb strings.Builder
	direction := opts.Direction
	if direction == "" {
		direction = DirectionTD
	}
	sb.WriteString("graph " + string(direction) + "\n")

	nodes := g.order
	if opts.MaxNodes > 0 && len(nodes) > opts.MaxNodes {
		nodes = nodes[:opts.MaxNodes]
	}
	ids := make(map[string]string, len(nodes))
	for i, p := range nodes {
		ids[p] = mermaidID(i)
	}

	for _, p := range nodes {
		id := ids[p]
		label := EscapeMermaidLabel(g.Relative(p))
		sb.WriteString("    " + id + "[\"" + label + "\"]\n")
		if opts.ShowFanOut {
			sb.WriteString("    style " + id + " fill:" + fanOutColor(g.Nodes[p].FanOut()) + "\n")
		}
	}

	written := 0
	for _, p := range nodes {
		for _, e := range g.Nodes[p].Imports {
			target, ok := ids[e.Target]
			if !ok {
				continue
			}
			if opts.MaxEdges > 0 && written >= opts.MaxEdges {
				return sb.String()
			}
			arrow := "-->"
			if opts.Highlight[[2]string{e.From, e.Target}] {
				arrow = "==>"
			}
			sb.WriteString("    " + ids[p] + " " + arrow + " " + target + "\n")
			written++
		}
	}

	return sb.String()
}

// fanOutColor returns a fill color based on internal fan-out.
func fanOutColor(fanOut int) string {
	switch {
	case fanOut <= 3:
		return "#90EE90" // Light green
	case fanOut <= 7:
		return "#FFD700" // Gold
	case fanOut <= 10:
		return "#FFA500" // Orange
	default:
		return "#FF6347" // Tomato red
	}
}

func mermaidID(i int) string {
	return "n" + strconv.Itoa(i)
}

var mermaidEscaper = strings.NewReplacer(
	"&", "&amp;",
	"\"", "&quot;",
	"<", "&lt;",
	">", "&gt;",
	"|", "&#124;",
	"[", "&#91;",
	"]", "&#93;",
	"{", "&#123;",
	"}", "&#125;",
	"\n", "<br/>",
)

// EscapeMermaidLabel escapes special characters in labels for Mermaid.
func EscapeMermaidLabel(s string) string {
	return mermaidEscaper.Replace(s)
}
