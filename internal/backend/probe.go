package backend

import (
	"os/exec"

	"go.uber.org/zap"
)

// SelectConfig holds the inputs to transport selection.
type SelectConfig struct {
	// PreferCLI enables the subprocess transport when the binary exists.
	PreferCLI bool

	// CodexPath overrides the $PATH lookup for the codex binary.
	CodexPath string

	// APIKey authenticates the HTTP transport. Empty disables it.
	APIKey string

	// BaseURL overrides the HTTP API root.
	BaseURL string
}

// lookPath is a seam for tests.
var lookPath = exec.LookPath

// Select probes for a usable transport: the codex binary when present and
// CLI use is enabled, otherwise the HTTP API when a key is configured.
// The choice is made once per process lifetime.
func Select(cfg SelectConfig, log *zap.Logger) (Invoker, error) {
	if cfg.PreferCLI {
		path := cfg.CodexPath
		if path == "" {
			path, _ = lookPath("codex")
		}
		if path != "" {
			log.Info("using codex CLI transport", zap.String("path", path))
			return NewCLI(path, log), nil
		}
		log.Debug("codex binary not found, falling back to HTTP")
	}

	if cfg.APIKey != "" {
		log.Info("using HTTP completion transport")
		return NewHTTP(cfg.BaseURL, cfg.APIKey, log), nil
	}

	return nil, Errorf(KindUnavailable,
		"no usable backend: codex binary not found and no API key configured")
}
