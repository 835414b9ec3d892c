// Package prompts implements MCP prompt handlers for the task backlog.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// BacklogPrompt handles the backlog-review MCP prompt.
// It instructs the AI to read the backlog and recommend what to do next.
type BacklogPrompt struct{}

// NewBacklogPrompt creates a BacklogPrompt.
func NewBacklogPrompt() *BacklogPrompt {
	return &BacklogPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *BacklogPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("backlog-review",
		mcp.WithPromptDescription(
			"Review the task backlog: what is urgent, what is blocked, "+
				"and what to pick up next.",
		),
		mcp.WithArgument("category",
			mcp.ArgumentDescription("Only review tasks in this category. Default: everything"),
		),
	)
}

// Handle processes the backlog-review prompt request.
func (p *BacklogPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	category := ""
	if args := req.Params.Arguments; args != nil {
		category = args["category"]
	}

	listCall := "`list_tasks` with sortBy='priority'"
	scope := "my backlog"
	if category != "" {
		listCall = fmt.Sprintf("`list_tasks` with category='%s' and sortBy='priority'", category)
		scope = fmt.Sprintf("the '%s' tasks in my backlog", category)
	}

	return &mcp.GetPromptResult{
		Description: "Backlog review",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"Please review %s. Run %s.\n\n"+
						"Then:\n"+
						"1. Call out anything urgent or overdue (dueDate in the past and not completed)\n"+
						"2. List blocked tasks and ask me what is blocking each one\n"+
						"3. Suggest the next two or three tasks to pick up, with a one-line reason each\n"+
						"4. Do not change any task unless I confirm",
					scope, listCall,
				)),
			},
		},
	}, nil
}
