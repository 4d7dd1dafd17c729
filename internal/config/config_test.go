package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "companion.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DATA_DIR", "PORT", "LOG_LEVEL", "OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL"} {
		t.Setenv(key, "")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, 5, cfg.Chat.MaxSteps)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
data_dir: /srv/kitchen
http:
  addr: 127.0.0.1:8080
log:
  level: debug
watch:
  enabled: false
chat:
  model: gpt-4o-mini
  guardrail_model: gpt-4o-nano
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/kitchen", cfg.DataDir)
	assert.Equal(t, "127.0.0.1:8080", cfg.HTTP.Addr)
	assert.Equal(t, "client/dist", cfg.HTTP.StaticDir, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Watch.Enabled)
	assert.Equal(t, "gpt-4o-mini", cfg.Chat.Model)
	assert.Equal(t, "gpt-4o-nano", cfg.Chat.GuardrailModelOrDefault())
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		content string
	}{
		{name: "bad yaml", content: "data_dir: [unterminated"},
		{name: "bad debounce", content: "watch:\n  debounce: soon\n"},
		{name: "negative timeout", content: "chat:\n  timeout: -1s\n"},
		{name: "zero steps", content: "chat:\n  max_steps: 0\n"},
		{name: "empty data dir", content: "data_dir: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Run("env beats file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DATA_DIR", "/tmp/recipes")
		t.Setenv("OPENAI_MODEL", "gpt-4.1")

		cfg, err := Load(writeConfig(t, "data_dir: /srv/kitchen\nchat:\n  model: gpt-4o-mini\n"))
		require.NoError(t, err)
		assert.Equal(t, "/tmp/recipes", cfg.DataDir)
		assert.Equal(t, "gpt-4.1", cfg.Chat.Model)
	})

	t.Run("PORT becomes listen address", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORT", "4000")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, ":4000", cfg.HTTP.Addr)
	})

	t.Run("provider settings", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("OPENAI_BASE_URL", "http://localhost:11434/v1")
		t.Setenv("LOG_LEVEL", "warn")

		cfg := &Config{}
		cfg.applyEnvOverrides()
		assert.Equal(t, "sk-test", cfg.Chat.APIKey)
		assert.Equal(t, "http://localhost:11434/v1", cfg.Chat.BaseURL)
		assert.Equal(t, "warn", cfg.Log.Level)
		assert.Equal(t, "", cfg.Chat.GuardrailModelOrDefault())
	})
}

func TestDurations(t *testing.T) {
	cfg := DefaultConfig()

	debounce, err := cfg.Watch.DebounceDuration()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, debounce)

	timeout, err := cfg.Chat.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, timeout)

	d, err := WatchConfig{}.DebounceDuration()
	require.NoError(t, err)
	assert.Zero(t, d)
}
