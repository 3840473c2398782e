// Package logging configures the rotating file logger.
//
// Every backend exchange (raw prompt in, raw completion out) is recorded
// under the log directory with rotation so the files don't grow without
// bound. Nothing is ever written to stdout — the MCP stdio transport
// owns that stream and a stray log line would corrupt its framing.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileName = "codexmcp.log"

	// Rotation thresholds, in megabytes / file count.
	maxSizeMB  = 5
	maxBackups = 5
)

// New creates the file logger. dir defaults to ~/.codexmcp/logs, falling
// back to ./.codexmcp.logs when the home directory is unusable. The
// returned cleanup flushes and closes the sink.
func New(dir, level string) (*zap.Logger, func(), error) {
	resolved, err := ensureLogDir(dir)
	if err != nil {
		return nil, nil, err
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing log level %q: %w", level, err)
	}

	sink := &lumberjack.Logger{
		Filename:   filepath.Join(resolved, logFileName),
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(sink),
		lvl,
	)

	logger := zap.New(core)
	cleanup := func() {
		_ = logger.Sync()
		_ = sink.Close()
	}
	return logger, cleanup, nil
}

// ensureLogDir creates the log directory, preferring the user's home and
// falling back to the working directory.
func ensureLogDir(dir string) (string, error) {
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".codexmcp", "logs")
		}
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err == nil {
			return dir, nil
		}
	}

	fallback := ".codexmcp.logs"
	if err := os.MkdirAll(fallback, 0o755); err != nil {
		return "", fmt.Errorf("creating log directory: %w", err)
	}
	return fallback, nil
}
