// Package mcpserver exposes file comparison over the Model Context Protocol.
package mcpserver

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/codesim/pkg/compare"
	"github.com/panbanda/codesim/pkg/config"
)

// ComparatorFactory builds a comparator for a strategy and backend. Empty
// arguments select the configured defaults.
type ComparatorFactory func(strategy, backend string) (*compare.Comparator, error)

// Server wraps the MCP server and registers the codesim tools.
type Server struct {
	server  *mcp.Server
	config  *config.Config
	factory ComparatorFactory
	logger  *slog.Logger
}

// NewServer creates a new MCP server with all codesim tools registered.
func NewServer(version string, cfg *config.Config, factory ComparatorFactory, logger *slog.Logger) *Server {
	if version == "" {
		version = "dev"
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "codesim",
			Version: version,
		},
		nil,
	)

	s := &Server{
		server:  server,
		config:  cfg,
		factory: factory,
		logger:  logger,
	}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves a single session over t.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "compare_files",
		Description: describeCompareFiles(),
	}, s.handleCompareFiles)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "compare_batch",
		Description: describeCompareBatch(),
	}, s.handleCompareBatch)
}
