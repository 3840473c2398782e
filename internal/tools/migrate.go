package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/codexmcp/codexmcp/internal/dispatch"
	"github.com/codexmcp/codexmcp/internal/prompts"
)

// MigrateCodeTool handles the migrate_code MCP tool: port code from one
// language to another.
type MigrateCodeTool struct {
	renderer     prompts.Renderer
	dispatcher   Dispatcher
	defaultModel string
}

// NewMigrateCodeTool creates a MigrateCodeTool with its dependencies.
func NewMigrateCodeTool(renderer prompts.Renderer, dispatcher Dispatcher, defaultModel string) *MigrateCodeTool {
	return &MigrateCodeTool{renderer: renderer, dispatcher: dispatcher, defaultModel: defaultModel}
}

// Definition returns the MCP tool definition for registration.
func (t *MigrateCodeTool) Definition() mcp.Tool {
	return mcp.NewTool("migrate_code",
		mcp.WithDescription("Migrate code from one language to another, preserving behaviour."),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("The code to migrate."),
		),
		mcp.WithString("from_language",
			mcp.Required(),
			mcp.Description("The source language."),
		),
		mcp.WithString("to_language",
			mcp.Required(),
			mcp.Description("The target language."),
		),
		mcp.WithString("model",
			mcp.Description("Model identifier override."),
		),
	)
}

// Handle processes the migrate_code tool call.
func (t *MigrateCodeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code := req.GetString("code", "")
	if code == "" {
		return missingArg("code"), nil
	}
	fromLang := req.GetString("from_language", "")
	if fromLang == "" {
		return missingArg("from_language"), nil
	}
	toLang := req.GetString("to_language", "")
	if toLang == "" {
		return missingArg("to_language"), nil
	}

	params := map[string]string{
		"code":          code,
		"from_language": fromLang,
		"to_language":   toLang,
	}

	prompt, err := t.renderer.Render(prompts.MigrateCode, params)
	if err != nil {
		return renderError("migrate_code", err), nil
	}

	return resolve(ctx, t.dispatcher, "migrate_code", dispatch.Request{
		TemplateID: prompts.MigrateCode,
		Params:     params,
		Prompt:     prompt,
		Model:      req.GetString("model", t.defaultModel),
	})
}
