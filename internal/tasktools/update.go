package tasktools

import (
	"context"

	"github.com/HendryAvila/taskstore/internal/tasks"
	"github.com/mark3labs/mcp-go/mcp"
)

// UpdateTool handles the update_task MCP tool.
type UpdateTool struct {
	store *tasks.Store
}

// NewUpdateTool creates an UpdateTool.
func NewUpdateTool(store *tasks.Store) *UpdateTool {
	return &UpdateTool{store: store}
}

// Definition returns the MCP tool definition for update_task.
func (t *UpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("update_task",
		mcp.WithDescription(
			"Change a task's status, priority, description or due date. Only the fields you send are changed. "+
				"Marking a task completed records when it was first completed.",
		),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("Task id to update"),
		),
		mcp.WithString("status",
			mcp.Description("New status"),
			mcp.Enum(enumValues(tasks.Statuses)...),
		),
		mcp.WithString("priority",
			mcp.Description("New priority"),
			mcp.Enum(enumValues(tasks.Priorities)...),
		),
		mcp.WithString("description",
			mcp.Description("Replacement description"),
		),
		mcp.WithString("dueDate",
			mcp.Description("New due date as YYYY-MM-DD or an ISO-8601 timestamp; an empty string clears it"),
		),
		mcp.WithString("notes",
			mcp.Description("Short note about the change; echoed back, not stored"),
		),
	)
}

// Handle processes the update_task tool call.
func (t *UpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("taskId", "")
	if id == "" {
		return mcp.NewToolResultError("'taskId' is required"), nil
	}

	update := tasks.UpdateRequest{ID: id, Notes: req.GetString("notes", "")}
	if v, ok := optionalString(req, "status"); ok && v != "" {
		update.Status = tasks.Some(tasks.Status(v))
	}
	if v, ok := optionalString(req, "priority"); ok && v != "" {
		update.Priority = tasks.Some(tasks.Priority(v))
	}
	if v, ok := optionalString(req, "description"); ok {
		update.Description = tasks.Some(v)
	}

	if _, ok := optionalString(req, "dueDate"); ok {
		due, err := dateArg(req, "dueDate")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		update.DueDate = tasks.Some(due)
	}

	res := t.store.Update(ctx, update)
	return render(res.Outcome, res)
}

// ─── DeleteTool ─────────────────────────────────────────────────────────────

// DeleteTool handles the delete_task MCP tool.
type DeleteTool struct {
	store *tasks.Store
}

// NewDeleteTool creates a DeleteTool.
func NewDeleteTool(store *tasks.Store) *DeleteTool {
	return &DeleteTool{store: store}
}

// Definition returns the MCP tool definition for delete_task.
func (t *DeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_task",
		mcp.WithDescription(
			"Permanently delete a task. There is no undo; prefer update_task with status=completed for finished work.",
		),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("Task id to delete"),
		),
	)
}

// Handle processes the delete_task tool call.
func (t *DeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("taskId", "")
	if id == "" {
		return mcp.NewToolResultError("'taskId' is required"), nil
	}
	res := t.store.Delete(ctx, id)
	return render(res.Outcome, res)
}
