package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/codexmcp/codexmcp/internal/dispatch"
	"github.com/codexmcp/codexmcp/internal/prompts"
)

// WriteTestsTool handles the write_tests MCP tool.
type WriteTestsTool struct {
	renderer     prompts.Renderer
	dispatcher   Dispatcher
	defaultModel string
}

// NewWriteTestsTool creates a WriteTestsTool with its dependencies.
func NewWriteTestsTool(renderer prompts.Renderer, dispatcher Dispatcher, defaultModel string) *WriteTestsTool {
	return &WriteTestsTool{renderer: renderer, dispatcher: dispatcher, defaultModel: defaultModel}
}

// Definition returns the MCP tool definition for registration.
func (t *WriteTestsTool) Definition() mcp.Tool {
	return mcp.NewTool("write_tests",
		mcp.WithDescription("Generate unit tests for the given code, in the same language as the code."),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("The code under test."),
		),
		mcp.WithString("description",
			mcp.Description("Additional context: what to focus on, frameworks to use, known edge cases."),
		),
		mcp.WithString("model",
			mcp.Description("Model identifier override."),
		),
	)
}

// Handle processes the write_tests tool call.
func (t *WriteTestsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code := req.GetString("code", "")
	if code == "" {
		return missingArg("code"), nil
	}

	params := map[string]string{
		"code":        code,
		"description": req.GetString("description", ""),
	}

	prompt, err := t.renderer.Render(prompts.WriteTests, params)
	if err != nil {
		return renderError("write_tests", err), nil
	}

	return resolve(ctx, t.dispatcher, "write_tests", dispatch.Request{
		TemplateID: prompts.WriteTests,
		Params:     params,
		Prompt:     prompt,
		Model:      req.GetString("model", t.defaultModel),
	})
}
