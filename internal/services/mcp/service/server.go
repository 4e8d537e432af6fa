// Package service hosts the MCP server that exposes the battle engine.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/louisbranch/partybattle/internal/catalog"
	"github.com/louisbranch/partybattle/internal/platform/logging"
	"github.com/louisbranch/partybattle/internal/services/mcp/domain"
	"github.com/louisbranch/partybattle/internal/storage"
)

const (
	serverName    = "partybattle-mcp"
	serverVersion = "0.1.0"
)

// Server wraps the MCP server and its tool bindings.
type Server struct {
	mcpServer *mcp.Server
	logger    *zap.Logger
}

// Options configure a Server.
type Options struct {
	Catalog *catalog.Catalog
	Store   storage.EncounterStore
	Logger  *zap.Logger
}

// New registers the battle tools on a fresh MCP server.
func New(opts Options) *Server {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	logger := logging.OrNop(opts.Logger)

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	mcp.AddTool(mcpServer, domain.SimulateEncounterTool(), domain.SimulateEncounterHandler(opts.Catalog, opts.Store, logger))
	mcp.AddTool(mcpServer, domain.AbilityCatalogTool(), domain.AbilityCatalogHandler(opts.Catalog))
	return &Server{mcpServer: mcpServer, logger: logger}
}

// Serve starts the MCP server on stdio and blocks until it stops or the
// context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	s.logger.Info("mcp server starting", zap.String("name", serverName), zap.String("version", serverVersion))
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	s.logger.Info("mcp server stopped")
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
