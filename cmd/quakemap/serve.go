package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/quake-map-service/internal/adapter/http"
	"github.com/couchcryptid/quake-map-service/internal/adapter/mapbox"
	"github.com/couchcryptid/quake-map-service/internal/config"
	"github.com/couchcryptid/quake-map-service/internal/observability"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the overlays and serve the map page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.HTTPAddr = addr
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().String("addr", "", "listen address (overrides HTTP_ADDR)")
	return cmd
}

func serve(parent context.Context, cfg *config.Config) error {
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	a, err := newApp(cfg, logger, metrics)
	if err != nil {
		return err
	}
	defer a.close()

	// Tile proxy, feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	var tiles mapbox.TileSource
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		tiles = mapbox.NewCachedTiles(client, cfg.MapboxCacheSize, metrics)
		metrics.TilesEnabled.Set(1)
		logger.Info("mapbox tiles enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Warn("MAPBOX_TOKEN is not set, base map tiles will not render")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, a.view, tiles, a.loader, metrics, logger)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Load overlays once; a degraded overlay keeps the page up.
	loaded := make(chan struct{})
	go func() {
		defer close(loaded)
		if err := a.loader.Run(ctx); err != nil {
			logger.Warn("map loaded with degraded overlays", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	// The Kafka writer closes on return; let in-flight publishes finish first.
	if !waitLoaded(shutdownCtx, loaded) {
		logger.Warn("loader still running at shutdown deadline")
	}

	logger.Info("shutdown complete")
	return nil
}

// waitLoaded blocks until loaded is closed or ctx ends, reporting which.
func waitLoaded(ctx context.Context, loaded <-chan struct{}) bool {
	select {
	case <-loaded:
		return true
	case <-ctx.Done():
		return false
	}
}
