package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/codexmcp/codexmcp/internal/dispatch"
	"github.com/codexmcp/codexmcp/internal/prompts"
)

// RefactorCodeTool handles the refactor_code MCP tool.
type RefactorCodeTool struct {
	renderer     prompts.Renderer
	dispatcher   Dispatcher
	defaultModel string
}

// NewRefactorCodeTool creates a RefactorCodeTool with its dependencies.
func NewRefactorCodeTool(renderer prompts.Renderer, dispatcher Dispatcher, defaultModel string) *RefactorCodeTool {
	return &RefactorCodeTool{renderer: renderer, dispatcher: dispatcher, defaultModel: defaultModel}
}

// Definition returns the MCP tool definition for registration.
func (t *RefactorCodeTool) Definition() mcp.Tool {
	return mcp.NewTool("refactor_code",
		mcp.WithDescription("Refactor the given code according to an instruction, returning only the refactored code."),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("The code to refactor."),
		),
		mcp.WithString("instruction",
			mcp.Required(),
			mcp.Description("How to change it. Example: 'extract the parsing loop into its own function'"),
		),
		mcp.WithString("model",
			mcp.Description("Model identifier override."),
		),
	)
}

// Handle processes the refactor_code tool call.
func (t *RefactorCodeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code := req.GetString("code", "")
	if code == "" {
		return missingArg("code"), nil
	}
	instruction := req.GetString("instruction", "")
	if instruction == "" {
		return missingArg("instruction"), nil
	}

	params := map[string]string{
		"code":        code,
		"instruction": instruction,
	}

	prompt, err := t.renderer.Render(prompts.RefactorCode, params)
	if err != nil {
		return renderError("refactor_code", err), nil
	}

	return resolve(ctx, t.dispatcher, "refactor_code", dispatch.Request{
		TemplateID: prompts.RefactorCode,
		Params:     params,
		Prompt:     prompt,
		Model:      req.GetString("model", t.defaultModel),
	})
}
