package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/quake-map-service/internal/config"
	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/observability"
	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type snapshotOverlay struct {
	domain.OverlaySnapshot
	Features *geojson.FeatureCollection `json:"features"`
}

type snapshotDoc struct {
	Overlays []snapshotOverlay   `json:"overlays"`
	Legend   []domain.LegendEntry `json:"legend"`
}

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Load the overlays once and print them with the legend (JSON by default, --yaml for YAML)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			useYAML, _ := cmd.Flags().GetBool("yaml")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Logs go to stderr so stdout carries only the document.
			logger := observability.NewLoggerTo(os.Stderr, cfg.LogLevel, cfg.LogFormat)
			metrics := observability.NewMetrics()

			a, err := newApp(cfg, logger, metrics)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.loader.Run(ctx); err != nil {
				logger.Warn("snapshot has degraded overlays", "error", err)
			}
			return writeSnapshot(cmd.OutOrStdout(), a.view, useYAML)
		},
	}
	cmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	return cmd
}

// writeSnapshot prints every overlay's state and features plus the legend.
func writeSnapshot(w io.Writer, view *domain.MapViewModel, useYAML bool) error {
	doc := snapshotDoc{Legend: view.Legend}
	for _, g := range view.Overlays() {
		doc.Overlays = append(doc.Overlays, snapshotOverlay{
			OverlaySnapshot: g.Snapshot(),
			Features:        g.FeatureCollection(),
		})
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if useYAML {
		// Round-trip through JSON so GeoJSON keeps its wire shape.
		var generic any
		if err := json.Unmarshal(out, &generic); err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		if out, err = yaml.Marshal(generic); err != nil {
			return fmt.Errorf("encode snapshot yaml: %w", err)
		}
	} else {
		out = append(out, '\n')
	}

	_, err = w.Write(out)
	return err
}
