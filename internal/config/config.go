// Package config loads the server configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete server configuration.
type Config struct {
	// DataDir holds recipes/, index.json and the singleton documents
	DataDir string `yaml:"data_dir"`

	HTTP  HTTPConfig  `yaml:"http"`
	Log   LogConfig   `yaml:"log"`
	Watch WatchConfig `yaml:"watch"`
	Chat  ChatConfig  `yaml:"chat"`
}

// HTTPConfig configures the HTTP API.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
	// StaticDir is the built web app; empty or missing disables it
	StaticDir string `yaml:"static_dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// WatchConfig configures the recipes directory watcher.
type WatchConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Debounce string `yaml:"debounce"`
}

// ChatConfig configures the chat assistant.
type ChatConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	GuardrailModel string `yaml:"guardrail_model"`
	MaxSteps       int    `yaml:"max_steps"`
	SkillPath      string `yaml:"skill_path"`
	Timeout        string `yaml:"timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "data",

		HTTP: HTTPConfig{
			Addr:      ":3000",
			StaticDir: "client/dist",
		},

		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},

		Watch: WatchConfig{
			Enabled:  true,
			Debounce: "250ms",
		},

		Chat: ChatConfig{
			Model:     "gpt-4o",
			MaxSteps:  5,
			SkillPath: "skills/cooking-companion.md",
			Timeout:   "120s",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		c.DataDir = dir
	}
	if port := os.Getenv("PORT"); port != "" {
		c.HTTP.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}

	// Chat provider from environment
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.Chat.APIKey = key
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		c.Chat.Model = model
	}
	if url := os.Getenv("OPENAI_BASE_URL"); url != "" {
		c.Chat.BaseURL = url
	}
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.Chat.MaxSteps < 1 {
		return fmt.Errorf("chat.max_steps must be at least 1, got %d", c.Chat.MaxSteps)
	}
	if _, err := c.Watch.DebounceDuration(); err != nil {
		return err
	}
	if _, err := c.Chat.TimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// DebounceDuration parses Debounce.
func (w WatchConfig) DebounceDuration() (time.Duration, error) {
	return parseDuration("watch.debounce", w.Debounce)
}

// TimeoutDuration parses Timeout.
func (c ChatConfig) TimeoutDuration() (time.Duration, error) {
	return parseDuration("chat.timeout", c.Timeout)
}

// GuardrailModelOrDefault returns the classifier model, falling back to
// the chat model.
func (c ChatConfig) GuardrailModelOrDefault() string {
	if c.GuardrailModel != "" {
		return c.GuardrailModel
	}
	return c.Model
}

func parseDuration(key, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", key, value)
	}
	return d, nil
}
