package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	outputSvc "github.com/panbanda/modlens/internal/service/output"
	"github.com/panbanda/modlens/pkg/analyzer/depgraph"
)

func graphCmd() *cli.Command {
	return &cli.Command{
		Name:      "graph",
		Aliases:   []string{"dag"},
		Usage:     "Dump the resolved module graph",
		ArgsUsage: "<facts.json|facts.yaml>",
		Flags: append(factsFlags(),
			&cli.BoolFlag{
				Name:  "mermaid",
				Usage: "Render a Mermaid flowchart (cycle edges drawn thick)",
			},
			&cli.IntFlag{
				Name:  "max-nodes",
				Value: 50,
				Usage: "Maximum nodes in the Mermaid diagram (0 for no limit)",
			},
			&cli.IntFlag{
				Name:  "max-edges",
				Value: 150,
				Usage: "Maximum edges in the Mermaid diagram (0 for no limit)",
			},
			&cli.StringFlag{
				Name:  "direction",
				Value: "LR",
				Usage: "Mermaid direction: LR or TD",
			},
			&cli.BoolFlag{
				Name:  "fan-out",
				Usage: "Color Mermaid nodes by fan-out",
			},
		),
		Action: runGraphCmd,
	}
}

func mermaidOptions(c *cli.Context) (depgraph.MermaidOptions, error) {
	opts := depgraph.DefaultMermaidOptions()
	opts.MaxNodes = c.Int("max-nodes")
	opts.MaxEdges = c.Int("max-edges")
	opts.ShowFanOut = c.Bool("fan-out")
	switch dir := depgraph.MermaidDirection(strings.ToUpper(c.String("direction"))); dir {
	case depgraph.DirectionLR, depgraph.DirectionTD:
		opts.Direction = dir
	default:
		return opts, fmt.Errorf("--direction must be LR or TD (got %q)", c.String("direction"))
	}
	return opts, nil
}

func runGraphCmd(c *cli.Context) error {
	if !c.Bool("mermaid") {
		return viewAction(outputSvc.ViewGraph)(c)
	}
	opts, err := mermaidOptions(c)
	if err != nil {
		return err
	}

	e, err := setup(c)
	if err != nil {
		return err
	}
	res, err := e.service(c).Analyze(c.Context, e.request())
	if err != nil {
		return err
	}
	out, err := e.renderer(c)
	if err != nil {
		return err
	}
	defer out.Close()
	return out.RenderMermaid(res, opts)
}
