package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/observability"
	"github.com/paulmach/orb/geojson"
)

// Fetcher retrieves a GeoJSON FeatureCollection from a data source.
type Fetcher interface {
	FetchFeatureCollection(ctx context.Context, url string) (*geojson.FeatureCollection, error)
}

// Stage binds one data source to the overlay it populates.
type Stage struct {
	Name     string // overlay key
	URL      string
	Group    *domain.OverlayGroup
	Renderer Renderer

	// After names the stage that must complete, successfully or not, before
	// this one starts. Empty means no dependency.
	After string
}

// Assembler fetches a stage's dataset, renders every feature, and populates
// the stage's overlay group.
type Assembler struct {
	fetcher Fetcher
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewAssembler creates an Assembler.
func NewAssembler(fetcher Fetcher, logger *slog.Logger, metrics *observability.Metrics) *Assembler {
	return &Assembler{
		fetcher: fetcher,
		logger:  logger,
		metrics: metrics,
	}
}

// Assemble runs one stage with a single fetch attempt. On any failure the
// overlay is left empty, marked degraded, and a *domain.LoadError is
// returned. On success the overlay is populated and attached to the map.
func (a *Assembler) Assemble(ctx context.Context, st Stage) error {
	start := time.Now()
	a.metrics.OverlayPopulated.WithLabelValues(st.Name).Set(0)

	fc, err := a.fetcher.FetchFeatureCollection(ctx, st.URL)
	if err != nil {
		return a.degrade(st, start, domain.KindOf(err), err)
	}

	shapes := make([]domain.Shape, 0, len(fc.Features))
	for i, f := range fc.Features {
		shape, err := st.Renderer.Render(f)
		if err != nil {
			return a.degrade(st, start, domain.FailureRendering, fmt.Errorf("feature %d: %w", i, err))
		}
		shapes = append(shapes, shape)
	}

	if err := st.Group.Populate(shapes); err != nil {
		return fmt.Errorf("populate %s: %w", st.Name, err)
	}
	st.Group.Attach()

	elapsed := time.Since(start)
	a.metrics.FeedFetches.WithLabelValues(st.Name, "success").Inc()
	a.metrics.FeedFetchDuration.WithLabelValues(st.Name).Observe(elapsed.Seconds())
	a.metrics.FeaturesRendered.WithLabelValues(st.Name).Add(float64(len(shapes)))
	a.metrics.OverlayPopulated.WithLabelValues(st.Name).Set(1)

	a.logger.Info("overlay populated",
		"overlay", st.Name,
		"features", len(shapes),
		"duration", elapsed,
	)
	return nil
}

// degrade leaves the overlay empty and registered, and records why.
func (a *Assembler) degrade(st Stage, start time.Time, kind domain.FailureKind, cause error) error {
	if err := st.Group.MarkDegraded(kind, cause); err != nil {
		a.logger.Error("mark overlay degraded", "overlay", st.Name, "error", err)
	}
	elapsed := time.Since(start)
	a.metrics.FeedFetches.WithLabelValues(st.Name, string(kind)).Inc()
	a.metrics.FeedFetchDuration.WithLabelValues(st.Name).Observe(elapsed.Seconds())

	a.logger.Warn("overlay load failed, leaving overlay empty",
		"overlay", st.Name,
		"url", st.URL,
		"kind", kind,
		"duration", elapsed,
		"error", cause,
	)
	return &domain.LoadError{Overlay: st.Name, Kind: kind, Err: cause}
}
