// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server for AI assistant integration.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/harperreed/fitcentre/internal/mcp"
	"github.com/harperreed/fitcentre/internal/report"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP allows AI assistants like Claude to work with the member registry through
a standardized protocol. The server communicates via stdin/stdout; logs go
to stderr.

CLAUDE DESKTOP CONFIGURATION:

  Add this to your Claude Desktop config (claude_desktop_config.json):

  {
    "mcpServers": {
      "fitcentre": {
        "command": "fitcentre",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  add_member, list_members, get_member, update_member, delete_member
  add_assessment, list_assessments, delete_assessment
  add_condition, list_conditions, delete_condition
  get_dashboard

AVAILABLE RESOURCES:

  fitcentre://dashboard   Current statistics
  fitcentre://members     Member directory`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(repo, report.WithBins(cfg.GetHistogramBins()))
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
