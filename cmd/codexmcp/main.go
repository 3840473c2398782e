// codexmcp: an MCP server bridging AI coding tools to an external
// code-generation backend (the Codex CLI or an OpenAI-style HTTP API).
//
// Usage:
//
//	codexmcp serve    # Start MCP server (stdio transport)
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	cmserver "github.com/codexmcp/codexmcp/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("codexmcp v%s\n", cmserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	s, cleanup, err := cmserver.New()
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// The stdio server owns stdin/stdout and manages its own lifecycle;
	// it returns when the client closes the stream.
	return server.ServeStdio(s)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `codexmcp v%s — MCP bridge to an external code-generation backend

Usage:
  codexmcp serve    Start the MCP server (stdio transport)

Configuration (environment):
  CODEXMCP_MODEL            Default model (o4-mini)
  CODEXMCP_PREFER_CLI       Use the codex binary when present (true)
  CODEX_PATH                Explicit path to the codex binary
  OPENAI_API_KEY            Enables the HTTP transport fallback
  CODEXMCP_CACHE_ENABLED    Response caching (true)
  CODEXMCP_CACHE_TTL        Cache TTL (1h)
  CODEXMCP_CACHE_BACKEND    "memory" or "sqlite"
  CODEXMCP_MAX_ATTEMPTS     Backend attempts per request (3)
  CODEXMCP_CONFIG           Optional YAML config file

Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "codexmcp": {
        "command": "codexmcp",
        "args": ["serve"]
      }
    }
  }
`, cmserver.Version)
}
