package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// AssistPrompt handles the codex-assist MCP prompt.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user. codex-assist points
// the AI at the right tool for a coding task.
type AssistPrompt struct{}

// NewAssistPrompt creates an AssistPrompt.
func NewAssistPrompt() *AssistPrompt {
	return &AssistPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *AssistPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("codex-assist",
		mcp.WithPromptDescription(
			"Delegate a coding task to the codex backend. "+
				"Picks the right tool (generate, refactor, test, explain, "+
				"document or migrate) for the task you describe.",
		),
		mcp.WithArgument("task",
			mcp.ArgumentDescription("What you want done, in your own words"),
		),
	)
}

// Handle processes the codex-assist prompt request.
func (p *AssistPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	task := "the coding task I describe next"
	if args := req.Params.Arguments; args != nil {
		if t, ok := args["task"]; ok && t != "" {
			task = t
		}
	}

	return &mcp.GetPromptResult{
		Description: "Delegate a coding task to the codex backend",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I need help with: %s\n\n"+
						"Use the codexmcp tools to do the heavy lifting:\n"+
						"- `generate_code` when I need new code written\n"+
						"- `refactor_code` when existing code should change shape\n"+
						"- `write_tests` when I need unit tests for code\n"+
						"- `explain_code` when I want to understand code\n"+
						"- `generate_docs` when code needs documentation\n"+
						"- `migrate_code` when code must move to another language\n\n"+
						"Gather any code or details the tool needs from me first, "+
						"then call it and present the result.",
					task,
				)),
			},
		},
	}, nil
}
