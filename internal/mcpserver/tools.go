package mcpserver

import (
	"bytes"
	"context"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/modlens/internal/output"
	"github.com/panbanda/modlens/internal/service/analysis"
	outputSvc "github.com/panbanda/modlens/internal/service/output"
	"github.com/panbanda/modlens/pkg/analyzer/depgraph"
	"github.com/panbanda/modlens/pkg/config"
)

// AnalyzeInput is the base input for all tools.
type AnalyzeInput struct {
	Facts  string `json:"facts" jsonschema:"Path to the JSON or YAML fact document produced by the scanner."`
	Root   string `json:"root,omitempty" jsonschema:"Project root. Overrides the root recorded in the fact document."`
	Config string `json:"config,omitempty" jsonschema:"Path to a modlens config file. Defaults to searching the project root."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// GraphInput adds graph-specific options.
type GraphInput struct {
	AnalyzeInput
	Mermaid  bool `json:"mermaid,omitempty" jsonschema:"Return a Mermaid flowchart instead of the adjacency data."`
	MaxNodes int  `json:"max_nodes,omitempty" jsonschema:"Maximum nodes in the Mermaid diagram. Default 50."`
}

func getFormat(input AnalyzeInput) output.Format {
	switch input.Format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

// loadConfig picks the config for one call: an explicit file, then the
// server's config, then the standard locations under the project root.
func (s *Server) loadConfig(input AnalyzeInput) (*config.Config, error) {
	if input.Config != "" {
		cfg, err := config.Load(input.Config)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if s.config != nil {
		return s.config, nil
	}
	root := input.Root
	if root == "" {
		root = filepath.Dir(input.Facts)
	}
	return config.LoadConfig(config.WithRoot(root), config.WithLogger(s.logger)).Config, nil
}

func (s *Server) analyze(ctx context.Context, input AnalyzeInput) (*analysis.Result, error) {
	cfg, err := s.loadConfig(input)
	if err != nil {
		return nil, err
	}
	svc := analysis.New(analysis.WithConfig(cfg), analysis.WithLogger(s.logger))
	return svc.Analyze(ctx, analysis.Request{FactsPath: input.Facts, Root: input.Root})
}

func (s *Server) runView(ctx context.Context, input AnalyzeInput, view outputSvc.View) (*mcp.CallToolResult, any, error) {
	res, err := s.analyze(ctx, input)
	if err != nil {
		return toolError(err.Error())
	}
	var buf bytes.Buffer
	out, err := outputSvc.New(
		outputSvc.WithWriter(&buf),
		outputSvc.WithFormat(getFormat(input)),
		outputSvc.WithColor(false),
	)
	if err != nil {
		return toolError(err.Error())
	}
	if err := out.Render(res, view); err != nil {
		return toolError(err.Error())
	}
	return toolResult(buf.String())
}

func toolResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

// Tool handlers

func (s *Server) handleAnalyzeModules(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, any, error) {
	return s.runView(ctx, input, outputSvc.ViewAll)
}

func (s *Server) handleAnalyzeGraph(ctx context.Context, req *mcp.CallToolRequest, input GraphInput) (*mcp.CallToolResult, any, error) {
	if !input.Mermaid {
		return s.runView(ctx, input.AnalyzeInput, outputSvc.ViewGraph)
	}

	res, err := s.analyze(ctx, input.AnalyzeInput)
	if err != nil {
		return toolError(err.Error())
	}
	opts := depgraph.DefaultMermaidOptions()
	if input.MaxNodes > 0 {
		opts.MaxNodes = input.MaxNodes
	}
	opts.Highlight = outputSvc.CycleEdges(res.Report)
	return toolResult(res.Report.Graph.ToMermaid(opts))
}

func (s *Server) handleFindCycles(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, any, error) {
	return s.runView(ctx, input, outputSvc.ViewCycles)
}

func (s *Server) handleFindUnusedExports(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, any, error) {
	return s.runView(ctx, input, outputSvc.ViewExports)
}

func (s *Server) handleFindImportProblems(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, any, error) {
	return s.runView(ctx, input, outputSvc.ViewImports)
}

func (s *Server) handleCheckCoupling(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, any, error) {
	return s.runView(ctx, input, outputSvc.ViewCoupling)
}
