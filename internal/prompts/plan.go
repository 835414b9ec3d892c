package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// PlanPrompt handles the plan-work MCP prompt.
// It guides the AI to break a goal into tasks and record them.
type PlanPrompt struct{}

// NewPlanPrompt creates a PlanPrompt.
func NewPlanPrompt() *PlanPrompt {
	return &PlanPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *PlanPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("plan-work",
		mcp.WithPromptDescription(
			"Break a goal into concrete tasks and add them to the backlog.",
		),
		mcp.WithArgument("goal",
			mcp.ArgumentDescription("What you want to get done"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("category",
			mcp.ArgumentDescription("Category to file the new tasks under"),
		),
	)
}

// Handle processes the plan-work prompt request.
func (p *PlanPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	goal := "the goal I describe next"
	category := ""
	if args := req.Params.Arguments; args != nil {
		if g, ok := args["goal"]; ok && g != "" {
			goal = g
		}
		category = args["category"]
	}

	filing := "Ask me which category they belong to before adding them."
	if category != "" {
		filing = fmt.Sprintf("File every task under category='%s'.", category)
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Plan: %s", goal),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"Help me plan this: %s\n\n"+
						"Please:\n"+
						"1. Run `search_tasks` first so we don't duplicate work already in the backlog\n"+
						"2. Propose a short list of concrete, actionable tasks with a priority each\n"+
						"3. After I confirm, call `add_task` once per task. %s\n"+
						"4. Finish with `list_tasks` sorted by priority so I can see the result",
					goal, filing,
				)),
			},
		},
	}, nil
}
