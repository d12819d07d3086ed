package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/panbanda/modlens/internal/logging"
	"github.com/panbanda/modlens/pkg/config"
)

// Server wraps the MCP server and registers the module analysis tools.
type Server struct {
	server *mcp.Server
	config *config.Config
	logger *logrus.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithConfig sets the configuration used when a tool call names none.
func WithConfig(cfg *config.Config) Option {
	return func(s *Server) {
		s.config = cfg
	}
}

// WithLogger sets the logger. Stdout carries the protocol, so the logger
// must write elsewhere.
func WithLogger(l *logrus.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new MCP server with all modlens tools registered.
func NewServer(version string, opts ...Option) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "modlens",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server, logger: logging.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// registerTools adds the analysis tools to the server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_modules",
		Description: describeModules(),
	}, s.handleAnalyzeModules)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_graph",
		Description: describeGraph(),
	}, s.handleAnalyzeGraph)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_cycles",
		Description: describeCycles(),
	}, s.handleFindCycles)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_unused_exports",
		Description: describeUnusedExports(),
	}, s.handleFindUnusedExports)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_import_problems",
		Description: describeImportProblems(),
	}, s.handleFindImportProblems)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_coupling",
		Description: describeCoupling(),
	}, s.handleCheckCoupling)
}
