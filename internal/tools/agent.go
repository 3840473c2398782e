package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/codexmcp/codexmcp/internal/dispatch"
	"github.com/codexmcp/codexmcp/internal/prompts"
)

// WriteOpenAIAgentTool handles the write_openai_agent MCP tool: scaffold
// an OpenAI Agents SDK agent from a name, instructions and tool list.
type WriteOpenAIAgentTool struct {
	renderer     prompts.Renderer
	dispatcher   Dispatcher
	defaultModel string
}

// NewWriteOpenAIAgentTool creates a WriteOpenAIAgentTool with its dependencies.
func NewWriteOpenAIAgentTool(renderer prompts.Renderer, dispatcher Dispatcher, defaultModel string) *WriteOpenAIAgentTool {
	return &WriteOpenAIAgentTool{renderer: renderer, dispatcher: dispatcher, defaultModel: defaultModel}
}

// Definition returns the MCP tool definition for registration.
func (t *WriteOpenAIAgentTool) Definition() mcp.Tool {
	return mcp.NewTool("write_openai_agent",
		mcp.WithDescription(
			"Generate a runnable Python script defining an OpenAI Agents SDK agent "+
				"with the given name, instructions and tool functions.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("The agent's name."),
		),
		mcp.WithString("instructions",
			mcp.Required(),
			mcp.Description("The agent's system instructions."),
		),
		mcp.WithString("tool_functions",
			mcp.Required(),
			mcp.Description("Description of the tool functions the agent should expose, one per line."),
		),
		mcp.WithString("description",
			mcp.Description("Additional context for the generated script."),
		),
		mcp.WithString("model",
			mcp.Description("Model identifier override."),
		),
	)
}

// Handle processes the write_openai_agent tool call.
func (t *WriteOpenAIAgentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return missingArg("name"), nil
	}
	instructions := req.GetString("instructions", "")
	if instructions == "" {
		return missingArg("instructions"), nil
	}
	toolFunctions := req.GetString("tool_functions", "")
	if toolFunctions == "" {
		return missingArg("tool_functions"), nil
	}

	params := map[string]string{
		"name":           name,
		"instructions":   instructions,
		"tool_functions": toolFunctions,
		"description":    req.GetString("description", ""),
	}

	prompt, err := t.renderer.Render(prompts.WriteOpenAIAgent, params)
	if err != nil {
		return renderError("write_openai_agent", err), nil
	}

	return resolve(ctx, t.dispatcher, "write_openai_agent", dispatch.Request{
		TemplateID: prompts.WriteOpenAIAgent,
		Params:     params,
		Prompt:     prompt,
		Model:      req.GetString("model", t.defaultModel),
	})
}
