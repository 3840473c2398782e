package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/codexmcp/codexmcp/internal/dispatch"
	"github.com/codexmcp/codexmcp/internal/prompts"
)

// GenerateCodeTool handles the generate_code MCP tool: natural-language
// description in, source code out.
type GenerateCodeTool struct {
	renderer     prompts.Renderer
	dispatcher   Dispatcher
	defaultModel string
}

// NewGenerateCodeTool creates a GenerateCodeTool with its dependencies.
func NewGenerateCodeTool(renderer prompts.Renderer, dispatcher Dispatcher, defaultModel string) *GenerateCodeTool {
	return &GenerateCodeTool{renderer: renderer, dispatcher: dispatcher, defaultModel: defaultModel}
}

// Definition returns the MCP tool definition for registration.
func (t *GenerateCodeTool) Definition() mcp.Tool {
	return mcp.NewTool("generate_code",
		mcp.WithDescription(
			"Generate source code in the requested language from a natural-language "+
				"description of what it should do.",
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("What the code should do. "+
				"Example: 'parse an RFC 3339 timestamp and return the weekday'"),
		),
		mcp.WithString("language",
			mcp.Description("Target programming language. Defaults to Python."),
		),
		mcp.WithString("model",
			mcp.Description("Model identifier override."),
		),
	)
}

// Handle processes the generate_code tool call.
func (t *GenerateCodeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	description := req.GetString("description", "")
	if description == "" {
		return missingArg("description"), nil
	}

	params := map[string]string{
		"description": description,
		"language":    req.GetString("language", "Python"),
	}

	prompt, err := t.renderer.Render(prompts.GenerateCode, params)
	if err != nil {
		return renderError("generate_code", err), nil
	}

	return resolve(ctx, t.dispatcher, "generate_code", dispatch.Request{
		TemplateID: prompts.GenerateCode,
		Params:     params,
		Prompt:     prompt,
		Model:      req.GetString("model", t.defaultModel),
	})
}
