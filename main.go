package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/cooking-companion/server/internal/app"
	"github.com/cooking-companion/server/internal/config"
	"github.com/cooking-companion/server/internal/logging"
)

const (
	serverName  = "cooking-companion-mcp"
	serverTitle = "Cooking Companion"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("%s version %s\n", serverName, app.Version)
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serverName, err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("COMPANION_CONFIG"))
	if err != nil {
		return err
	}

	// stdout carries the protocol; logging.New writes to stderr
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logger.Info(serverName+" starting", zap.String("version", app.Version))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("Error closing search index", zap.Error(err))
		}
	}()

	server := createMCPServer(logger)
	a.Toolbox.Register(server)

	go func() {
		if err := a.RunWatcher(ctx); err != nil {
			logger.Warn("Recipe watcher stopped", zap.Error(err))
		}
	}()

	logger.Info("✓ Server ready and waiting for connections")
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func createMCPServer(logger *zap.Logger) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Title:   serverTitle,
			Version: app.Version,
		},
		nil,
	)
	logger.Info("Server initialized", zap.String("name", serverName), zap.String("version", app.Version))
	return server
}
