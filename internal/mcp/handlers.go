package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Tiliavir/activity-timeline/internal/model"
	"github.com/Tiliavir/activity-timeline/internal/timecalc"
	"github.com/Tiliavir/activity-timeline/internal/timeline"
)

// entryView is an entry together with the month it belongs to.
type entryView struct {
	Month string `json:"month"`
	model.Entry
}

func stringArg(request mcp.CallToolRequest, name string) (string, bool) {
	v, ok := request.Params.Arguments[name].(string)
	return v, ok
}

func requiredArg(request mcp.CallToolRequest, name string) (string, *mcp.CallToolResult) {
	v, ok := stringArg(request, name)
	if !ok || v == "" {
		return "", mcp.NewToolResultError(fmt.Sprintf("'%s' parameter is required and must be a non-empty string.", name))
	}
	return v, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize result to JSON: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func notFound(id string) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("Entry '%s' not found.", id))
}

// RegisterListMonthsTool registers the list_months tool.
func RegisterListMonthsTool(s *server.MCPServer, tl *timeline.Store) {
	tool := mcp.NewTool("list_months",
		mcp.WithDescription("Lists all months of the timeline with their entries, oldest first."),
		mcp.WithBoolean("include_current", mcp.Description("Also return the current month when it has no entries yet.")),
		mcp.WithString("type", mcp.Description("Only entries of this type (learn, play, watch, read).")),
		mcp.WithString("status", mcp.Description("Only entries with this status (not_started, in_progress, completed).")),
	)
	s.AddTool(tool, listMonthsHandler(tl))
}

func listMonthsHandler(tl *timeline.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var f timeline.Filter
		if v, ok := stringArg(request, "type"); ok && v != "" {
			t, err := model.ParseEntryType(v)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			f.Types = []model.EntryType{t}
		}
		if v, ok := stringArg(request, "status"); ok && v != "" {
			st, err := model.ParseStatus(v)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			f.Statuses = []model.Status{st}
		}

		snap := tl.Snapshot()
		if current, _ := request.Params.Arguments["include_current"].(bool); current {
			snap.Months = tl.MonthsIncludingCurrent()
		}
		snap.Months = f.Apply(snap.Months)
		if snap.Months == nil {
			snap.Months = []model.Month{}
		}
		return jsonResult(snap)
	}
}

// RegisterAddEntryTool registers the add_entry tool.
func RegisterAddEntryTool(s *server.MCPServer, tl *timeline.Store) {
	tool := mcp.NewTool("add_entry",
		mcp.WithDescription("Adds an activity to a month. The month is created if needed."),
		mcp.WithString("month", mcp.Required(), mcp.Description("Month in YYYY-MM form.")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name of the activity.")),
		mcp.WithString("type", mcp.Required(), mcp.Description("learn, play, watch or read.")),
		mcp.WithString("status", mcp.Description("not_started (default), in_progress or completed.")),
		mcp.WithString("notes", mcp.Description("Optional free-form notes.")),
	)
	s.AddTool(tool, addEntryHandler(tl))
}

func addEntryHandler(tl *timeline.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		month, res := requiredArg(request, "month")
		if res != nil {
			return res, nil
		}
		key, err := timecalc.ParseMonth(month)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		name, res := requiredArg(request, "name")
		if res != nil {
			return res, nil
		}
		typ, res := requiredArg(request, "type")
		if res != nil {
			return res, nil
		}
		status, _ := stringArg(request, "status")
		notes, _ := stringArg(request, "notes")

		e, err := tl.AddEntry(key, model.EntryDraft{
			Name:   name,
			Type:   model.EntryType(typ),
			Status: model.Status(status),
			Notes:  notes,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to add entry: %v", err)), nil
		}
		return jsonResult(entryView{Month: key.String(), Entry: e})
	}
}

// RegisterUpdateEntryTool registers the update_entry tool.
func RegisterUpdateEntryTool(s *server.MCPServer, tl *timeline.Store) {
	tool := mcp.NewTool("update_entry",
		mcp.WithDescription("Changes the name, type, status or notes of an entry. Omitted fields keep their value."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the entry.")),
		mcp.WithString("name", mcp.Description("New name.")),
		mcp.WithString("type", mcp.Description("New type.")),
		mcp.WithString("status", mcp.Description("New status.")),
		mcp.WithString("notes", mcp.Description("New notes; an empty string clears them.")),
	)
	s.AddTool(tool, updateEntryHandler(tl))
}

func updateEntryHandler(tl *timeline.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, res := requiredArg(request, "id")
		if res != nil {
			return res, nil
		}
		key, e, ok := tl.Find(id)
		if !ok {
			return notFound(id), nil
		}
		if v, ok := stringArg(request, "name"); ok {
			e.Name = v
		}
		if v, ok := stringArg(request, "type"); ok {
			e.Type = model.EntryType(v)
		}
		if v, ok := stringArg(request, "status"); ok {
			e.Status = model.Status(v)
		}
		if v, ok := stringArg(request, "notes"); ok {
			e.Notes = v
		}

		found, err := tl.UpdateEntry(key, e)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to update entry: %v", err)), nil
		}
		if !found {
			return notFound(id), nil
		}
		_, updated, _ := tl.Find(id)
		return jsonResult(entryView{Month: key.String(), Entry: updated})
	}
}

// RegisterDeleteEntryTool registers the delete_entry tool.
func RegisterDeleteEntryTool(s *server.MCPServer, tl *timeline.Store) {
	tool := mcp.NewTool("delete_entry",
		mcp.WithDescription("Deletes an entry. A month left without entries is removed."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the entry.")),
	)
	s.AddTool(tool, deleteEntryHandler(tl))
}

func deleteEntryHandler(tl *timeline.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, res := requiredArg(request, "id")
		if res != nil {
			return res, nil
		}
		key, _, ok := tl.Find(id)
		if !ok || !tl.DeleteEntry(key, id) {
			return notFound(id), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Entry '%s' deleted from %s.", id, key)), nil
	}
}

// RegisterMoveEntryTool registers the move_entry tool.
func RegisterMoveEntryTool(s *server.MCPServer, tl *timeline.Store) {
	tool := mcp.NewTool("move_entry",
		mcp.WithDescription("Moves an entry to another month, keeping its id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the entry.")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Destination month in YYYY-MM form.")),
	)
	s.AddTool(tool, moveEntryHandler(tl))
}

func moveEntryHandler(tl *timeline.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, res := requiredArg(request, "id")
		if res != nil {
			return res, nil
		}
		to, res := requiredArg(request, "to")
		if res != nil {
			return res, nil
		}
		dest, err := timecalc.ParseMonth(to)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		from, e, ok := tl.Find(id)
		if !ok {
			return notFound(id), nil
		}
		moved, err := tl.MoveEntry(id, from, dest)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to move entry: %v", err)), nil
		}
		if !moved {
			return notFound(id), nil
		}
		return jsonResult(entryView{Month: dest.String(), Entry: e})
	}
}

// RegisterAdvanceStatusTool registers the advance_status tool.
func RegisterAdvanceStatusTool(s *server.MCPServer, tl *timeline.Store) {
	tool := mcp.NewTool("advance_status",
		mcp.WithDescription("Moves an entry one step along not_started -> in_progress -> completed."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the entry.")),
	)
	s.AddTool(tool, advanceStatusHandler(tl))
}

func advanceStatusHandler(tl *timeline.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, res := requiredArg(request, "id")
		if res != nil {
			return res, nil
		}
		key, e, ok := tl.Find(id)
		if !ok {
			return notFound(id), nil
		}
		st, ok := tl.AdvanceStatus(key, id)
		if !ok {
			return notFound(id), nil
		}
		e.Status = st
		return jsonResult(entryView{Month: key.String(), Entry: e})
	}
}

// RegisterPruneTool registers the prune_empty_months tool.
func RegisterPruneTool(s *server.MCPServer, tl *timeline.Store) {
	tool := mcp.NewTool("prune_empty_months",
		mcp.WithDescription("Removes months that have no entries."),
	)
	s.AddTool(tool, pruneHandler(tl))
}

func pruneHandler(tl *timeline.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(map[string]int{"removed": tl.PruneEmptyMonths()})
	}
}
