package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/codexmcp/codexmcp/internal/dispatch"
	"github.com/codexmcp/codexmcp/internal/prompts"
)

// ExplainCodeTool handles the explain_code MCP tool.
type ExplainCodeTool struct {
	renderer     prompts.Renderer
	dispatcher   Dispatcher
	defaultModel string
}

// NewExplainCodeTool creates an ExplainCodeTool with its dependencies.
func NewExplainCodeTool(renderer prompts.Renderer, dispatcher Dispatcher, defaultModel string) *ExplainCodeTool {
	return &ExplainCodeTool{renderer: renderer, dispatcher: dispatcher, defaultModel: defaultModel}
}

// Definition returns the MCP tool definition for registration.
func (t *ExplainCodeTool) Definition() mcp.Tool {
	return mcp.NewTool("explain_code",
		mcp.WithDescription("Explain what the given code does: purpose, inputs, outputs and edge cases."),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("The code to explain."),
		),
		mcp.WithString("detail_level",
			mcp.Description("How deep to go: 'brief', 'medium' or 'detailed'. Defaults to medium."),
		),
		mcp.WithString("model",
			mcp.Description("Model identifier override."),
		),
	)
}

// Handle processes the explain_code tool call.
func (t *ExplainCodeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code := req.GetString("code", "")
	if code == "" {
		return missingArg("code"), nil
	}

	params := map[string]string{
		"code":         code,
		"detail_level": req.GetString("detail_level", "medium"),
	}

	prompt, err := t.renderer.Render(prompts.ExplainCode, params)
	if err != nil {
		return renderError("explain_code", err), nil
	}

	return resolve(ctx, t.dispatcher, "explain_code", dispatch.Request{
		TemplateID: prompts.ExplainCode,
		Params:     params,
		Prompt:     prompt,
		Model:      req.GetString("model", t.defaultModel),
	})
}
