package cmd

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/activity-timeline/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the timeline as MCP tools over stdio",
	Long: `Start a Model Context Protocol (MCP) server that exposes the timeline
as tools on STDIN/STDOUT. Diagnostics go to stderr. The server runs until
stdin is closed; pending changes are saved on exit.

Example client configuration:
  {"command": "tl", "args": ["mcp"]}`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := mcp.NewServer(store, version)
		slog.Info("MCP server listening on stdio", "tools", strings.Join(mcp.ToolNames, ", "))
		return mcp.Serve(s)
	},
}
