package tasktools

import (
	"context"

	"github.com/HendryAvila/taskstore/internal/tasks"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── GetTool ────────────────────────────────────────────────────────────────

// GetTool handles the get_task MCP tool.
type GetTool struct {
	store *tasks.Store
}

// NewGetTool creates a GetTool.
func NewGetTool(store *tasks.Store) *GetTool {
	return &GetTool{store: store}
}

// Definition returns the MCP tool definition for get_task.
func (t *GetTool) Definition() mcp.Tool {
	return mcp.NewTool("get_task",
		mcp.WithDescription("Get the full record of one task by id."),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("Task id as returned by add_task or list_tasks"),
		),
	)
}

// Handle processes the get_task tool call.
func (t *GetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("taskId", "")
	if id == "" {
		return mcp.NewToolResultError("'taskId' is required"), nil
	}
	res := t.store.Get(ctx, id)
	return render(res.Outcome, res)
}

// ─── ListTool ───────────────────────────────────────────────────────────────

// ListTool handles the list_tasks MCP tool.
type ListTool struct {
	store *tasks.Store
}

// NewListTool creates a ListTool.
func NewListTool(store *tasks.Store) *ListTool {
	return &ListTool{store: store}
}

// Definition returns the MCP tool definition for list_tasks.
func (t *ListTool) Definition() mcp.Tool {
	return mcp.NewTool("list_tasks",
		mcp.WithDescription(
			"List tasks with optional filters. By default everything is returned, most urgent first.",
		),
		mcp.WithString("status",
			mcp.Description("Only tasks in this status (default: all)"),
			mcp.Enum(append([]string{tasks.AllFilter}, enumValues(tasks.Statuses)...)...),
		),
		mcp.WithString("priority",
			mcp.Description("Only tasks with this priority (default: all)"),
			mcp.Enum(append([]string{tasks.AllFilter}, enumValues(tasks.Priorities)...)...),
		),
		mcp.WithString("category",
			mcp.Description("Only tasks in this category (exact match)"),
		),
		mcp.WithString("sortBy",
			mcp.Description("Ordering: priority (default), createdAt or updatedAt"),
			mcp.Enum("priority", "createdAt", "updatedAt"),
		),
	)
}

// Handle processes the list_tasks tool call.
func (t *ListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res := t.store.List(ctx, tasks.ListRequest{
		Status:   req.GetString("status", tasks.AllFilter),
		Priority: req.GetString("priority", tasks.AllFilter),
		Category: req.GetString("category", ""),
		SortBy:   req.GetString("sortBy", ""),
	})
	return render(res.Outcome, res)
}

// ─── SearchTool ─────────────────────────────────────────────────────────────

// SearchTool handles the search_tasks MCP tool.
type SearchTool struct {
	store *tasks.Store
}

// NewSearchTool creates a SearchTool.
func NewSearchTool(store *tasks.Store) *SearchTool {
	return &SearchTool{store: store}
}

// Definition returns the MCP tool definition for search_tasks.
func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("search_tasks",
		mcp.WithDescription(
			"Find tasks whose title, description or tags contain a phrase (case-insensitive). Newest first.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to look for"),
		),
		mcp.WithString("searchIn",
			mcp.Description("Fields to match: title, description, tags or both (title or description, default)"),
			mcp.Enum(string(tasks.SearchTitle), string(tasks.SearchDescription), string(tasks.SearchTags), string(tasks.SearchBoth)),
		),
	)
}

// Handle processes the search_tasks tool call.
func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}
	res := t.store.Search(ctx, tasks.SearchRequest{
		Query:    query,
		SearchIn: req.GetString("searchIn", ""),
	})
	return render(res.Outcome, res)
}
