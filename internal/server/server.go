// Package server wires all components and creates the MCP server
// instance. This is the composition root: it builds the concrete
// config, logger, renderer, cache, transport and dispatcher, and injects
// them into the tools that depend on abstractions. No business logic
// lives here — only wiring.
package server

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/codexmcp/codexmcp/internal/backend"
	"github.com/codexmcp/codexmcp/internal/cache"
	"github.com/codexmcp/codexmcp/internal/config"
	"github.com/codexmcp/codexmcp/internal/dispatch"
	"github.com/codexmcp/codexmcp/internal/logging"
	"github.com/codexmcp/codexmcp/internal/prompts"
	"github.com/codexmcp/codexmcp/internal/resources"
	"github.com/codexmcp/codexmcp/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools registered.
//
// The returned cleanup flushes the log sink and closes the cache; it is
// always non-nil and must be called on shutdown (typically via defer).
func New() (*server.MCPServer, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, noop, fmt.Errorf("loading configuration: %w", err)
	}

	logger, closeLog, err := logging.New(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return nil, noop, fmt.Errorf("initializing logging: %w", err)
	}

	responseCache, err := buildCache(cfg)
	if err != nil {
		closeLog()
		return nil, noop, err
	}

	invoker, err := backend.Select(backend.SelectConfig{
		PreferCLI: cfg.Backend.PreferCLI,
		CodexPath: cfg.Backend.CodexPath,
		APIKey:    cfg.Backend.APIKey,
		BaseURL:   cfg.Backend.BaseURL,
	}, logger)
	if err != nil {
		_ = responseCache.Close()
		closeLog()
		return nil, noop, fmt.Errorf("selecting backend transport: %w", err)
	}

	dispatcher := dispatch.New(invoker, responseCache, dispatch.Config{
		MaxAttempts:    cfg.Retry.MaxAttempts,
		InitialBackoff: cfg.Retry.InitialBackoff,
		BackoffFactor:  cfg.Retry.BackoffFactor,
		AttemptTimeout: cfg.Retry.AttemptTimeout,
		CacheTTL:       cfg.Cache.TTL,
		MaxConcurrent:  int64(cfg.Retry.MaxConcurrent),
	}, logger)

	renderer := prompts.NewRenderer()

	s := server.NewMCPServer(
		"codexmcp",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	registerTools(s, renderer, dispatcher, cfg.Model)
	registerResources(s)
	registerPrompts(s)

	logger.Info("server configured",
		zap.String("version", Version),
		zap.String("transport", invoker.Name()),
		zap.String("model", cfg.Model),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("cache_backend", cfg.Cache.Backend))

	cleanup := func() {
		if err := responseCache.Close(); err != nil {
			logger.Warn("closing cache", zap.Error(err))
		}
		closeLog()
	}
	return s, cleanup, nil
}

// noop is the default cleanup when initialization fails early.
func noop() {}

// buildCache picks the cache implementation from configuration.
func buildCache(cfg *config.Config) (cache.Cache, error) {
	if !cfg.Cache.Enabled {
		return cache.Nop{}, nil
	}
	if cfg.Cache.Backend == config.CacheSQLite {
		c, err := cache.NewSQLite(cfg.CachePath())
		if err != nil {
			return nil, fmt.Errorf("opening sqlite cache: %w", err)
		}
		return c, nil
	}
	return cache.NewMemory(), nil
}

// registerTools registers the seven code-assistance tools.
func registerTools(s *server.MCPServer, renderer prompts.Renderer, d tools.Dispatcher, model string) {
	generate := tools.NewGenerateCodeTool(renderer, d, model)
	s.AddTool(generate.Definition(), generate.Handle)

	refactor := tools.NewRefactorCodeTool(renderer, d, model)
	s.AddTool(refactor.Definition(), refactor.Handle)

	writeTests := tools.NewWriteTestsTool(renderer, d, model)
	s.AddTool(writeTests.Definition(), writeTests.Handle)

	explain := tools.NewExplainCodeTool(renderer, d, model)
	s.AddTool(explain.Definition(), explain.Handle)

	docs := tools.NewGenerateDocsTool(renderer, d, model)
	s.AddTool(docs.Definition(), docs.Handle)

	migrate := tools.NewMigrateCodeTool(renderer, d, model)
	s.AddTool(migrate.Definition(), migrate.Handle)

	agent := tools.NewWriteOpenAIAgentTool(renderer, d, model)
	s.AddTool(agent.Definition(), agent.Handle)
}

// registerResources exposes the prompt template catalog as read-only
// MCP resources.
func registerResources(s *server.MCPServer) {
	h := resources.NewHandler()
	s.AddResource(h.CatalogResource(), h.HandleCatalog)
	for _, id := range prompts.List() {
		s.AddResource(h.TemplateResource(id), h.HandleTemplate)
	}
}

// registerPrompts registers the user-triggered workflow prompts.
func registerPrompts(s *server.MCPServer) {
	assist := prompts.NewAssistPrompt()
	s.AddPrompt(assist.Definition(), assist.Handle)
}

// serverInstructions tells the calling AI what the server is for.
func serverInstructions() string {
	return `You have access to codexmcp, a bridge to an external code-generation backend.

Tools:
- generate_code: produce source code in a given language from a description
- refactor_code: rewrite existing code per an instruction
- write_tests: generate unit tests for a piece of code
- explain_code: explain what code does
- generate_docs: write documentation for code
- migrate_code: port code between languages
- write_openai_agent: scaffold an OpenAI Agents SDK agent script

All tools accept an optional "model" argument. Responses are the backend's
raw text; repeated identical calls may be served from a response cache.
Transient backend failures are retried automatically — only terminal
failures are reported back, with a request id that locates the raw
exchange in the server log.

Resources under codexmcp://templates expose the raw prompt templates
behind each tool.`
}
