package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cooking-companion/server/internal/chat"
	"github.com/cooking-companion/server/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Chat.SkillPath = filepath.Join(t.TempDir(), "missing.md")
	return cfg
}

func TestOpen(t *testing.T) {
	cfg := testConfig(t)
	a, err := Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, a.Close()) })

	assert.FileExists(t, filepath.Join(cfg.DataDir, "taste-profile.json"))
	assert.FileExists(t, filepath.Join(cfg.DataDir, "index.json"))
	assert.Len(t, a.Toolbox.Definitions(), 16)

	recipes, err := a.Kitchen.ListRecipes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recipes)
}

func TestAssistant_NoProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.Chat.APIKey = ""
	cfg.Chat.BaseURL = ""
	a, err := Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assistant, err := a.Assistant()
	require.NoError(t, err)

	_, err = assistant.Chat(context.Background(), chat.Request{
		Messages: []chat.Message{{Role: "user", Content: "Τι να μαγειρέψω;"}},
	})
	assert.ErrorIs(t, err, chat.ErrNotConfigured)
}

func TestWatcher(t *testing.T) {
	cfg := testConfig(t)
	a, err := Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	w, err := a.Watcher()
	require.NoError(t, err)
	assert.NotNil(t, w)

	cfg.Watch.Enabled = false
	w, err = a.Watcher()
	require.NoError(t, err)
	assert.Nil(t, w)
	assert.NoError(t, a.RunWatcher(context.Background()))

	cfg.Watch.Enabled = true
	cfg.Watch.Debounce = "soon"
	_, err = a.Watcher()
	assert.Error(t, err)
}
