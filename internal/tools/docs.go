package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/codexmcp/codexmcp/internal/dispatch"
	"github.com/codexmcp/codexmcp/internal/prompts"
)

// GenerateDocsTool handles the generate_docs MCP tool.
type GenerateDocsTool struct {
	renderer     prompts.Renderer
	dispatcher   Dispatcher
	defaultModel string
}

// NewGenerateDocsTool creates a GenerateDocsTool with its dependencies.
func NewGenerateDocsTool(renderer prompts.Renderer, dispatcher Dispatcher, defaultModel string) *GenerateDocsTool {
	return &GenerateDocsTool{renderer: renderer, dispatcher: dispatcher, defaultModel: defaultModel}
}

// Definition returns the MCP tool definition for registration.
func (t *GenerateDocsTool) Definition() mcp.Tool {
	return mcp.NewTool("generate_docs",
		mcp.WithDescription("Write documentation for the given code in the requested format."),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("The code to document."),
		),
		mcp.WithString("doc_format",
			mcp.Description("Documentation style: 'docstring', 'markdown', 'godoc', ... Defaults to docstring."),
		),
		mcp.WithString("model",
			mcp.Description("Model identifier override."),
		),
	)
}

// Handle processes the generate_docs tool call.
func (t *GenerateDocsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code := req.GetString("code", "")
	if code == "" {
		return missingArg("code"), nil
	}

	params := map[string]string{
		"code":       code,
		"doc_format": req.GetString("doc_format", "docstring"),
	}

	prompt, err := t.renderer.Render(prompts.GenerateDocs, params)
	if err != nil {
		return renderError("generate_docs", err), nil
	}

	return resolve(ctx, t.dispatcher, "generate_docs", dispatch.Request{
		TemplateID: prompts.GenerateDocs,
		Params:     params,
		Prompt:     prompt,
		Model:      req.GetString("model", t.defaultModel),
	})
}
