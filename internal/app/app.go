// Package app wires the data layer, the tools and the assistant from a
// configuration. The binaries share it.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cooking-companion/server/internal/chat"
	"github.com/cooking-companion/server/internal/config"
	"github.com/cooking-companion/server/internal/docstore"
	"github.com/cooking-companion/server/internal/kitchen"
	"github.com/cooking-companion/server/internal/schema"
	"github.com/cooking-companion/server/internal/search"
	"github.com/cooking-companion/server/internal/watch"
	"github.com/cooking-companion/server/tools"
)

const (
	Version     = "0.3.0"
	ServiceName = "cooking-companion"
)

// App holds the long-lived components.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Store    *docstore.Store
	Kitchen  *kitchen.Kitchen
	Toolbox  *tools.Toolbox
	searcher *search.Searcher
}

// Open initialises the data directory and builds the components.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	validator := schema.NewEmbeddedValidator()
	if err := validator.Warm(); err != nil {
		return nil, fmt.Errorf("failed to compile schemas: %w", err)
	}
	searcher := search.NewSearcher(logger)

	store := docstore.Open(cfg.DataDir, docstore.Options{
		Logger:    logger,
		Validator: validator,
		Searcher:  searcher,
	})
	if err := store.Init(ctx); err != nil {
		searcher.Close()
		return nil, fmt.Errorf("failed to initialize data directory %s: %w", cfg.DataDir, err)
	}

	k := kitchen.New(store, logger)
	tb, err := tools.NewToolbox(k, logger)
	if err != nil {
		searcher.Close()
		return nil, err
	}

	logger.Info("✓ Data directory ready", zap.String("dir", cfg.DataDir))
	return &App{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Kitchen:  k,
		Toolbox:  tb,
		searcher: searcher,
	}, nil
}

// Assistant builds the chat assistant. It has no provider when neither an
// API key nor a base URL is configured.
func (a *App) Assistant() (*chat.Assistant, error) {
	c := a.Config.Chat
	timeout, err := c.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	var provider chat.Provider
	if c.APIKey != "" || c.BaseURL != "" {
		provider = chat.NewOpenAIProvider(c.APIKey, c.BaseURL)
	} else {
		a.Logger.Warn("No chat provider configured; /api/chat is disabled (set OPENAI_API_KEY)")
	}

	return chat.New(chat.Options{
		Provider:       provider,
		Kitchen:        a.Kitchen,
		Toolbox:        a.Toolbox,
		Skill:          chat.NewSkillCache(c.SkillPath),
		Logger:         a.Logger,
		Model:          c.Model,
		GuardrailModel: c.GuardrailModelOrDefault(),
		MaxSteps:       c.MaxSteps,
		Timeout:        timeout,
	})
}

// Watcher builds the recipes directory watcher, or nil when disabled.
func (a *App) Watcher() (*watch.Watcher, error) {
	if !a.Config.Watch.Enabled {
		return nil, nil
	}
	debounce, err := a.Config.Watch.DebounceDuration()
	if err != nil {
		return nil, err
	}
	return watch.New(a.Store.RecipesDir(), a.Store.Recipes, debounce, a.Logger), nil
}

// RunWatcher runs the watcher until ctx is done; a disabled watcher
// returns immediately.
func (a *App) RunWatcher(ctx context.Context) error {
	w, err := a.Watcher()
	if err != nil || w == nil {
		return err
	}
	return w.Run(ctx)
}

// Close releases the search index.
func (a *App) Close() error {
	return a.searcher.Close()
}
