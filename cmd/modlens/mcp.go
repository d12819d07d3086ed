package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/modlens/internal/mcpserver"
	"github.com/panbanda/modlens/pkg/config"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes the module
analysis as tools that LLMs can invoke.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "modlens": {
        "command": "modlens",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze_modules       Full report: graph, cycles, exports, imports, coupling
  - analyze_graph         Resolved module graph or Mermaid diagram
  - find_cycles           Circular dependencies
  - find_unused_exports   Exports no module imports
  - find_import_problems  Missing exports and unresolved imports
  - check_coupling        Modules with high fan-out`,
		Action: runMCPCmd,
		Subcommands: []*cli.Command{
			{
				Name:   "manifest",
				Usage:  "Print the MCP registry manifest (server.json)",
				Action: runMCPManifestCmd,
			},
		},
	}
}

func runMCPCmd(c *cli.Context) error {
	opts := []mcpserver.Option{mcpserver.WithLogger(appLogger(c))}
	if path := c.String("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		opts = append(opts, mcpserver.WithConfig(cfg))
	}
	return mcpserver.NewServer(version, opts...).Run(c.Context)
}

func runMCPManifestCmd(c *cli.Context) error {
	data, err := mcpserver.GenerateManifest(version)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(data))
	return nil
}
