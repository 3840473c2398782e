// Package config loads server configuration. Precedence, lowest first:
// built-in defaults, an optional YAML file, then environment variables.
// A .env file next to the working directory is loaded into the
// environment before anything else, matching how operators configure MCP
// servers launched by AI tools.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Cache backend identifiers.
const (
	CacheMemory = "memory"
	CacheSQLite = "sqlite"
)

// Config holds everything the server needs at startup.
type Config struct {
	// Model is the default model identifier for tool calls that don't
	// override it.
	Model string `yaml:"model"`

	LogLevel string `yaml:"log_level"`
	LogDir   string `yaml:"log_dir"`

	Cache   CacheConfig   `yaml:"cache"`
	Retry   RetryConfig   `yaml:"retry"`
	Backend BackendConfig `yaml:"backend"`
}

// CacheConfig controls the response cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
	Backend string        `yaml:"backend"`
	Path    string        `yaml:"path"`
}

// RetryConfig controls the dispatch layer's resilience policy.
type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	BackoffFactor  float64       `yaml:"backoff_factor"`
	AttemptTimeout time.Duration `yaml:"attempt_timeout"`
	MaxConcurrent  int           `yaml:"max_concurrent"`
}

// BackendConfig controls transport selection.
type BackendConfig struct {
	// PreferCLI selects the codex subprocess transport when the binary
	// is present.
	PreferCLI bool `yaml:"prefer_cli"`

	// CodexPath overrides the $PATH lookup.
	CodexPath string `yaml:"codex_path"`

	// BaseURL overrides the HTTP API root.
	BaseURL string `yaml:"base_url"`

	// APIKey is environment-only (OPENAI_API_KEY); never read from the
	// config file so secrets stay out of it.
	APIKey string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Model:    "o4-mini",
		LogLevel: "info",
		Cache: CacheConfig{
			Enabled: true,
			TTL:     time.Hour,
			Backend: CacheMemory,
		},
		Retry: RetryConfig{
			MaxAttempts:    3,
			InitialBackoff: time.Second,
			BackoffFactor:  2,
			AttemptTimeout: 2 * time.Minute,
			MaxConcurrent:  4,
		},
		Backend: BackendConfig{
			PreferCLI: true,
		},
	}
}

// Load builds the effective configuration.
func Load() (*Config, error) {
	// Best-effort: absence of a .env file is the normal case.
	_ = godotenv.Load()

	cfg := Default()

	path := os.Getenv("CODEXMCP_CONFIG")
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".codexmcp", "config.yaml")
		}
	}
	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile merges a YAML file into cfg. A missing file is not an error;
// the file is optional. ${VAR} references are expanded before parsing.
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides cfg from CODEXMCP_* variables (plus CODEX_PATH and
// OPENAI_* which keep their conventional names).
func applyEnv(cfg *Config) error {
	setString(&cfg.Model, "CODEXMCP_MODEL")
	setString(&cfg.LogLevel, "CODEXMCP_LOG_LEVEL")
	setString(&cfg.LogDir, "CODEXMCP_LOG_DIR")
	setString(&cfg.Cache.Backend, "CODEXMCP_CACHE_BACKEND")
	setString(&cfg.Cache.Path, "CODEXMCP_CACHE_PATH")
	setString(&cfg.Backend.CodexPath, "CODEX_PATH")
	setString(&cfg.Backend.BaseURL, "OPENAI_BASE_URL")
	setString(&cfg.Backend.APIKey, "OPENAI_API_KEY")

	if err := setBool(&cfg.Cache.Enabled, "CODEXMCP_CACHE_ENABLED"); err != nil {
		return err
	}
	if err := setBool(&cfg.Backend.PreferCLI, "CODEXMCP_PREFER_CLI"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Cache.TTL, "CODEXMCP_CACHE_TTL"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Retry.InitialBackoff, "CODEXMCP_INITIAL_BACKOFF"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Retry.AttemptTimeout, "CODEXMCP_ATTEMPT_TIMEOUT"); err != nil {
		return err
	}
	if err := setInt(&cfg.Retry.MaxAttempts, "CODEXMCP_MAX_ATTEMPTS"); err != nil {
		return err
	}
	if err := setInt(&cfg.Retry.MaxConcurrent, "CODEXMCP_MAX_CONCURRENT"); err != nil {
		return err
	}
	if err := setFloat(&cfg.Retry.BackoffFactor, "CODEXMCP_BACKOFF_FACTOR"); err != nil {
		return err
	}
	return nil
}

// Validate rejects configurations the server cannot honor.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("config: model must not be empty")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("config: cache ttl must not be negative")
	}
	if c.Cache.Backend != CacheMemory && c.Cache.Backend != CacheSQLite {
		return fmt.Errorf("config: unknown cache backend %q", c.Cache.Backend)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("config: max_attempts must be at least 1")
	}
	if c.Retry.BackoffFactor < 1 {
		return fmt.Errorf("config: backoff_factor must be at least 1")
	}
	if c.Retry.MaxConcurrent < 1 {
		return fmt.Errorf("config: max_concurrent must be at least 1")
	}
	return nil
}

// CachePath returns the configured SQLite path, defaulting under the
// user's home directory.
func (c *Config) CachePath() string {
	if c.Cache.Path != "" {
		return c.Cache.Path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "codexmcp-cache.db"
	}
	return filepath.Join(home, ".codexmcp", "cache.db")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = parsed
	return nil
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = parsed
	return nil
}

func setFloat(dst *float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = parsed
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = parsed
	return nil
}
