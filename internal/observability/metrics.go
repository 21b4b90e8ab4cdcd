package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the map service.
type Metrics struct {
	LoaderRunning prometheus.Gauge

	// Overlay load metrics.
	FeedFetches       *prometheus.CounterVec   // labels: overlay, outcome={success,network,malformed,rendering}
	FeedFetchDuration *prometheus.HistogramVec // labels: overlay
	FeaturesRendered  *prometheus.CounterVec   // labels: overlay
	OverlayPopulated  *prometheus.GaugeVec     // labels: overlay
	OverlayEvents     *prometheus.CounterVec   // labels: outcome={success,error}

	// Tile proxy metrics.
	TileRequests    *prometheus.CounterVec // labels: outcome={success,error,unconfigured}
	TileCache       *prometheus.CounterVec // labels: result={hit,miss}
	TileAPIDuration prometheus.Histogram
	TilesEnabled    prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		LoaderRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quake_map",
			Name:      "loader_running",
			Help:      "1 while overlay stages are loading, 0 otherwise.",
		}),
		FeedFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_map",
			Name:      "feed_fetches_total",
			Help:      "Overlay feed loads by overlay and outcome.",
		}, []string{"overlay", "outcome"}),
		FeedFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "quake_map",
			Name:      "feed_fetch_duration_seconds",
			Help:      "Duration of a feed fetch, decode and render cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"overlay"}),
		FeaturesRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_map",
			Name:      "features_rendered_total",
			Help:      "Features rendered into overlay shapes.",
		}, []string{"overlay"}),
		OverlayPopulated: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "quake_map",
			Name:      "overlay_populated",
			Help:      "1 when the overlay holds data, 0 when pending or degraded.",
		}, []string{"overlay"}),
		OverlayEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_map",
			Name:      "overlay_events_published_total",
			Help:      "Overlay completion events published to Kafka by outcome.",
		}, []string{"outcome"}),
		TileRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_map",
			Name:      "tile_requests_total",
			Help:      "Proxied tile requests by outcome.",
		}, []string{"outcome"}),
		TileCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_map",
			Name:      "tile_cache_total",
			Help:      "Tile cache lookups by result.",
		}, []string{"result"}),
		TileAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quake_map",
			Name:      "tile_api_duration_seconds",
			Help:      "Mapbox tile request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		TilesEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quake_map",
			Name:      "tiles_enabled",
			Help:      "1 when a tile credential is configured, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.LoaderRunning,
		m.FeedFetches,
		m.FeedFetchDuration,
		m.FeaturesRendered,
		m.OverlayPopulated,
		m.OverlayEvents,
		m.TileRequests,
		m.TileCache,
		m.TileAPIDuration,
		m.TilesEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		LoaderRunning:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "quake_map", Name: "loader_running"}),
		FeedFetches:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "quake_map", Name: "feed_fetches_total"}, []string{"overlay", "outcome"}),
		FeedFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "quake_map", Name: "feed_fetch_duration_seconds"}, []string{"overlay"}),
		FeaturesRendered:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "quake_map", Name: "features_rendered_total"}, []string{"overlay"}),
		OverlayPopulated:  prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: "quake_map", Name: "overlay_populated"}, []string{"overlay"}),
		OverlayEvents:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "quake_map", Name: "overlay_events_published_total"}, []string{"outcome"}),
		TileRequests:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "quake_map", Name: "tile_requests_total"}, []string{"outcome"}),
		TileCache:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "quake_map", Name: "tile_cache_total"}, []string{"result"}),
		TileAPIDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "quake_map", Name: "tile_api_duration_seconds"}),
		TilesEnabled:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "quake_map", Name: "tiles_enabled"}),
	}
}
