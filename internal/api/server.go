// Package api serves the kitchen over HTTP for the web app.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cooking-companion/server/internal/chat"
	"github.com/cooking-companion/server/internal/kitchen"
)

// Chatter answers chat turns. *chat.Assistant implements it.
type Chatter interface {
	Chat(ctx context.Context, req chat.Request) (chat.Reply, error)
}

// Options configures the router.
type Options struct {
	Kitchen *kitchen.Kitchen
	// Assistant may be nil; /api/chat then reports it is not configured
	Assistant Chatter
	Logger    *zap.Logger
	// StaticDir holds the built web app; ignored when it does not exist
	StaticDir string
}

type server struct {
	kitchen   *kitchen.Kitchen
	assistant Chatter
	logger    *zap.Logger
}

// NewRouter builds the HTTP handler.
func NewRouter(opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	s := &server{kitchen: opts.Kitchen, assistant: opts.Assistant, logger: opts.Logger}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), accessLog(opts.Logger))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", s.health)

		recipes := api.Group("/recipes")
		{
			recipes.GET("", s.listRecipes)
			recipes.GET("/search", s.searchRecipes)
			recipes.GET("/:id", s.getRecipe)
			recipes.POST("", s.createRecipe)
			recipes.PUT("/:id", s.updateRecipe)
			recipes.DELETE("/:id", s.deleteRecipe)
		}

		profile := api.Group("/profile")
		{
			profile.GET("", s.getProfile)
			profile.PATCH("", s.patchProfile)
			profile.POST("/log", s.logCook)
		}

		shelf := api.Group("/shelf")
		{
			shelf.GET("", s.getDocument(s.kitchen.GetShelf))
			shelf.PATCH("", s.patchDocument(s.kitchen.UpdateShelf))
			shelf.POST("/categories", s.addCategory(s.kitchen.AddShelfCategory))
			shelf.DELETE("/categories/:name", s.removeCategory(s.kitchen.RemoveShelfCategory))
		}

		appliances := api.Group("/appliances")
		{
			appliances.GET("", s.getDocument(s.kitchen.GetAppliances))
			appliances.PATCH("", s.patchDocument(s.kitchen.UpdateAppliances))
			appliances.POST("/categories", s.addCategory(s.kitchen.AddApplianceCategory))
			appliances.DELETE("/categories/:name", s.removeCategory(s.kitchen.RemoveApplianceCategory))
		}

		api.POST("/chat", s.chat)
	}

	router.NoRoute(spaFallback(opts.StaticDir))
	return router
}

// spaFallback serves files from the built web app and index.html for any
// other non-API path so client-side routes work on reload.
func spaFallback(dir string) gin.HandlerFunc {
	enabled := false
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			enabled = true
		}
	}
	fileServer := http.FileServer(http.Dir(dir))

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if !enabled || strings.HasPrefix(path, "/api/") || c.Request.Method != http.MethodGet {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		clean := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+path)))
		if info, err := os.Stat(clean); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(c.Writer, c.Request)
			return
		}
		c.File(filepath.Join(dir, "index.html"))
	}
}

// Run serves handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Run(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("✓ HTTP server listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	logger.Info("HTTP server stopped")
	return nil
}
