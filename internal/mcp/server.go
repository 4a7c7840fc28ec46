// ABOUTME: MCP server setup for the fitness centre registry.
// ABOUTME: Wraps MCP server with storage Repository connection.
package mcp

import (
	"context"

	"github.com/harperreed/fitcentre/internal/report"
	"github.com/harperreed/fitcentre/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// Server wraps the MCP server with storage access.
type Server struct {
	mcpServer  *mcp.Server
	repo       storage.Repository
	reportOpts []report.Option
}

// NewServer creates a new MCP server with the given storage.
// reportOpts are passed to every dashboard build.
func NewServer(repo storage.Repository, reportOpts ...report.Option) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "fitcentre",
			Version: Version,
		},
		nil,
	)

	s := &Server{
		mcpServer:  mcpServer,
		repo:       repo,
		reportOpts: reportOpts,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
