// Package resources implements MCP resource handlers over the task store.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (tasks://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/HendryAvila/taskstore/internal/tasks"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	backlogURI      = "tasks://backlog"
	taskURIPrefix   = "tasks://task/"
	taskURITemplate = taskURIPrefix + "{id}"
)

// Handler manages task resource endpoints.
type Handler struct {
	store *tasks.Store
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(store *tasks.Store) *Handler {
	return &Handler{store: store}
}

// BacklogResource returns the MCP resource definition for the open backlog.
func (h *Handler) BacklogResource() mcp.Resource {
	return mcp.NewResource(
		backlogURI,
		"Task Backlog",
		mcp.WithResourceDescription("Every task, most urgent first"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleBacklog returns the backlog as JSON.
func (h *Handler) HandleBacklog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	res := h.store.List(ctx, tasks.ListRequest{SortBy: string(tasks.SortPriority)})
	if !res.Success {
		return errorResource(req.Params.URI, res.Message), nil
	}
	return jsonResource(req.Params.URI, res)
}

// TaskTemplate returns the MCP resource template for a single task.
func (h *Handler) TaskTemplate() mcp.ResourceTemplate {
	return mcp.NewResourceTemplate(
		taskURITemplate,
		"Task",
		mcp.WithTemplateDescription("One task by id"),
		mcp.WithTemplateMIMEType("application/json"),
	)
}

// HandleTask returns one task as JSON.
func (h *Handler) HandleTask(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id := strings.TrimPrefix(req.Params.URI, taskURIPrefix)
	if id == "" || id == req.Params.URI {
		return errorResource(req.Params.URI, "expected "+taskURITemplate), nil
	}

	res := h.store.Get(ctx, id)
	if !res.Success {
		return errorResource(req.Params.URI, res.Message), nil
	}
	return jsonResource(req.Params.URI, res.Task)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
