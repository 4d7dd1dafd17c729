package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cooking-companion/server/internal/api"
	"github.com/cooking-companion/server/internal/app"
)

func newServeCmd(c *cli) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API, the chat endpoint and the web app",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.cfg.HTTP.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return c.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config and PORT)")
	return cmd
}

func (c *cli) serve(ctx context.Context) error {
	a, err := app.Open(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			c.logger.Warn("Error closing search index", zap.Error(err))
		}
	}()

	assistant, err := a.Assistant()
	if err != nil {
		return err
	}

	router := api.NewRouter(api.Options{
		Kitchen:   a.Kitchen,
		Assistant: assistant,
		Logger:    c.logger,
		StaticDir: c.cfg.HTTP.StaticDir,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return api.Run(gctx, c.cfg.HTTP.Addr, router, c.logger)
	})
	g.Go(func() error {
		return a.RunWatcher(gctx)
	})
	return g.Wait()
}
