// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates the connection provider and the
// task store and injects them into the tools, prompts and resources.
// No business logic lives here, only wiring.
package server

import (
	"log/slog"

	"github.com/HendryAvila/taskstore/internal/config"
	"github.com/HendryAvila/taskstore/internal/prompts"
	"github.com/HendryAvila/taskstore/internal/resources"
	"github.com/HendryAvila/taskstore/internal/storage"
	"github.com/HendryAvila/taskstore/internal/tasks"
	"github.com/HendryAvila/taskstore/internal/tasktools"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts,
// and resources registered.
//
// A missing database endpoint is not an error: the server still starts and
// every tool reports that the database is not configured.
//
// The returned cleanup function closes the database handle and must be
// called on shutdown (typically via defer). It is always non-nil.
func New(cfg config.Config, logger *slog.Logger) (*server.MCPServer, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}

	// --- Create shared dependencies ---

	provider := storage.NewProvider(cfg, logger)
	if !provider.Configured() {
		logger.Warn("no database configured; set POSTGRES_URL or DATABASE_URL")
	}
	store := tasks.New(provider, tasks.OptionsFromConfig(cfg, logger))

	cleanup := func() {
		if err := provider.Close(); err != nil {
			logger.Warn("closing database", "error", err)
		}
	}

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"taskstore",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	registerTaskTools(s, store)

	// --- Register prompts ---

	backlogPrompt := prompts.NewBacklogPrompt()
	s.AddPrompt(backlogPrompt.Definition(), backlogPrompt.Handle)

	planPrompt := prompts.NewPlanPrompt()
	s.AddPrompt(planPrompt.Definition(), planPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(store)
	s.AddResource(resourceHandler.BacklogResource(), resourceHandler.HandleBacklog)
	s.AddResourceTemplate(resourceHandler.TaskTemplate(), resourceHandler.HandleTask)

	return s, cleanup, nil
}

// registerTaskTools registers the six task MCP tools with the server.
func registerTaskTools(s *server.MCPServer, store *tasks.Store) {
	// --- Create & mutate ---
	addTool := tasktools.NewAddTool(store)
	s.AddTool(addTool.Definition(), addTool.Handle)

	updateTool := tasktools.NewUpdateTool(store)
	s.AddTool(updateTool.Definition(), updateTool.Handle)

	deleteTool := tasktools.NewDeleteTool(store)
	s.AddTool(deleteTool.Definition(), deleteTool.Handle)

	// --- Query & retrieval ---
	getTool := tasktools.NewGetTool(store)
	s.AddTool(getTool.Definition(), getTool.Handle)

	listTool := tasktools.NewListTool(store)
	s.AddTool(listTool.Definition(), listTool.Handle)

	searchTool := tasktools.NewSearchTool(store)
	s.AddTool(searchTool.Definition(), searchTool.Handle)
}

// serverInstructions returns the system instructions that tell the AI
// how to use the task store.
func serverInstructions() string {
	return `You have access to a persistent task backlog for the user.

## WHEN TO USE IT

- The user commits to doing something ("I need to...", "remind me to...", "let's do X tomorrow"): add_task
- The user asks what to work on, what is pending or what is blocked: list_tasks
- The user refers to a task by words rather than id: search_tasks, then get_task
- The user reports progress: update_task with the new status

## RULES

- New tasks always start as pending. Use update_task to move them along.
- Statuses: pending, in_progress, blocked, completed.
- Priorities: urgent, high, medium (default), low.
- update_task only changes the fields you send. Never resend fields you did not mean to change.
- Marking a task completed records its completion time once; later edits keep it.
- delete_task is permanent. Prefer completing a task over deleting it, and confirm with the user first.
- If a tool says the database is not configured, tell the user to set DATABASE_URL. Do not retry.`
}
