// Package resources implements MCP resource handlers.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (codexmcp://...) following MCP
// conventions. The server exposes the prompt template catalog so hosts
// can inspect exactly what will be sent to the backend for each tool.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/codexmcp/codexmcp/internal/prompts"
)

const catalogURI = "codexmcp://templates"

// Handler manages the template resource endpoints.
type Handler struct{}

// NewHandler creates a resource Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// CatalogResource returns the MCP resource definition for the template
// catalog.
func (h *Handler) CatalogResource() mcp.Resource {
	return mcp.NewResource(
		catalogURI,
		"Prompt Template Catalog",
		mcp.WithResourceDescription("Identifiers of the prompt templates backing each tool"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleCatalog returns the registered template ids as JSON.
func (h *Handler) HandleCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	payload, err := json.MarshalIndent(map[string]any{
		"templates": prompts.List(),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding template catalog: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(payload),
		},
	}, nil
}

// TemplateResource returns the MCP resource definition for one template.
func (h *Handler) TemplateResource(id string) mcp.Resource {
	return mcp.NewResource(
		catalogURI+"/"+id,
		fmt.Sprintf("Prompt Template: %s", id),
		mcp.WithResourceDescription("Raw template text with {placeholder} markers intact"),
		mcp.WithMIMEType("text/plain"),
	)
}

// HandleTemplate returns a template's raw text. The template id is the
// last segment of the resource URI.
func (h *Handler) HandleTemplate(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id := strings.TrimPrefix(req.Params.URI, catalogURI+"/")
	body, err := prompts.Body(id)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     body,
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
