package tasktools

import (
	"context"

	"github.com/HendryAvila/taskstore/internal/tasks"
	"github.com/mark3labs/mcp-go/mcp"
)

// AddTool handles the add_task MCP tool.
type AddTool struct {
	store *tasks.Store
}

// NewAddTool creates an AddTool with the given task store.
func NewAddTool(store *tasks.Store) *AddTool {
	return &AddTool{store: store}
}

// Definition returns the MCP tool definition for add_task.
func (t *AddTool) Definition() mcp.Tool {
	return mcp.NewTool("add_task",
		mcp.WithDescription(
			"Add a task to the user's backlog. New tasks always start as pending. "+
				"Use this when the user commits to doing something, not for passing thoughts.",
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Short, actionable title (e.g. 'Fix login on Safari')"),
		),
		mcp.WithString("description",
			mcp.Description("Details, context or acceptance criteria"),
		),
		mcp.WithString("priority",
			mcp.Description("Urgency (default: medium)"),
			mcp.Enum(enumValues(tasks.Priorities)...),
		),
		mcp.WithString("category",
			mcp.Description("Free-text grouping such as work, home or a project name"),
		),
		mcp.WithArray("tags",
			mcp.Description("Labels used by search_tasks with searchIn=tags"),
			mcp.WithStringItems(),
		),
		mcp.WithString("dueDate",
			mcp.Description("Due date as YYYY-MM-DD or an ISO-8601 timestamp"),
		),
	)
}

// Handle processes the add_task tool call.
func (t *AddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	if title == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}
	due, err := dateArg(req, "dueDate")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res := t.store.Add(ctx, tasks.AddRequest{
		Title:       title,
		Description: req.GetString("description", ""),
		Priority:    tasks.Priority(req.GetString("priority", "")),
		Category:    req.GetString("category", ""),
		Tags:        stringSliceArg(req, "tags"),
		DueDate:     due,
	})
	return render(res.Outcome, res)
}
