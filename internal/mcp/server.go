// Package mcp exposes the timeline store as Model Context Protocol tools over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/Tiliavir/activity-timeline/internal/timeline"
)

// ToolNames lists every registered tool, in registration order.
var ToolNames = []string{
	"list_months",
	"add_entry",
	"update_entry",
	"delete_entry",
	"move_entry",
	"advance_status",
	"prune_empty_months",
}

// NewServer returns an MCP server with all timeline tools registered.
func NewServer(tl *timeline.Store, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"Activity Timeline",
		version,
		server.WithLogging(),
		server.WithRecovery(),
	)
	RegisterListMonthsTool(s, tl)
	RegisterAddEntryTool(s, tl)
	RegisterUpdateEntryTool(s, tl)
	RegisterDeleteEntryTool(s, tl)
	RegisterMoveEntryTool(s, tl)
	RegisterAdvanceStatusTool(s, tl)
	RegisterPruneTool(s, tl)
	return s
}

// Serve runs the stdio loop until stdin closes.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
