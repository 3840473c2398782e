// Package tools implements the MCP tool handlers.
//
// Each tool is a thin façade: it maps the call's named arguments onto a
// template's parameters, renders the prompt, and hands the request to the
// dispatch layer. No retry or caching logic lives here.
//
// One file per tool; dependencies arrive via the struct (renderer and
// dispatcher interfaces, not concretions).
package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/codexmcp/codexmcp/internal/dispatch"
)

// Dispatcher is the slice of the dispatch layer the tools need.
type Dispatcher interface {
	Execute(ctx context.Context, req dispatch.Request) (*dispatch.Result, error)
}

// resolve runs the rendered request through the dispatcher and converts
// the outcome into a tool result. Terminal dispatch failures become tool
// errors annotated with the operation name; anything else (context
// cancellation) propagates as a protocol error.
func resolve(ctx context.Context, d Dispatcher, op string, req dispatch.Request) (*mcp.CallToolResult, error) {
	result, err := d.Execute(ctx, req)
	if err != nil {
		var failure *dispatch.Failure
		if errors.As(err, &failure) {
			return mcp.NewToolResultError(fmt.Sprintf("%s: %v", op, failure)), nil
		}
		return nil, err
	}
	return mcp.NewToolResultText(result.Text), nil
}

// renderError formats a template-layer failure as a tool error. These
// surface immediately; the backend is never consulted.
func renderError(op string, err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", op, err))
}

// missingArg is the error result for an absent required argument.
func missingArg(name string) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("'%s' is required", name))
}
