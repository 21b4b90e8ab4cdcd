package http

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/adapter/mapbox"
	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxOverlayWait bounds how long /api/overlays/{name}?wait=1 holds a request
// open for a pending overlay. It stays under the server's WriteTimeout.
const maxOverlayWait = 5 * time.Second

//go:embed templates/page.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html.tmpl"))

// Server serves the map page, its JSON data endpoints, the tile proxy, and the
// health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	view       *domain.MapViewModel
	tiles      mapbox.TileSource
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates the HTTP server. tiles is nil when no tile credential is
// configured; the tile proxy then answers 503.
func NewServer(addr string, view *domain.MapViewModel, tiles mapbox.TileSource, ready sharedobs.ReadinessChecker, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		view:    view,
		tiles:   tiles,
		metrics: metrics,
		logger:  logger,
	}

	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /api/map", s.handleMap)
	mux.HandleFunc("GET /api/overlays/{name}", s.handleOverlay)
	mux.HandleFunc("GET /api/legend", s.handleLegend)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /tiles/{layer}/{z}/{x}/{y}", s.handleTile)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// mapSummary is the page's bootstrap data and the /api/map body.
type mapSummary struct {
	Center           domain.LatLng            `json:"center"`
	Zoom             int                      `json:"zoom"`
	MaxZoom          int                      `json:"max_zoom"`
	BaseLayers       []domain.BaseLayer       `json:"base_layers"`
	Overlays         []domain.OverlaySnapshot `json:"overlays"`
	ControlCollapsed bool                     `json:"control_collapsed"`
	TilesEnabled     bool                     `json:"tiles_enabled"`
}

type tileStatus struct {
	Enabled     bool               `json:"enabled"`
	Status      string             `json:"status"`
	FailureKind domain.FailureKind `json:"failure_kind,omitempty"`
}

type statusResponse struct {
	Degraded bool                     `json:"degraded"`
	Overlays []domain.OverlaySnapshot `json:"overlays"`
	Tiles    tileStatus               `json:"tiles"`
}

type pageData struct {
	Map    mapSummary
	Legend []domain.LegendEntry
}

func (s *Server) summary() mapSummary {
	return mapSummary{
		Center:           s.view.Center,
		Zoom:             s.view.Zoom,
		MaxZoom:          s.view.MaxZoom,
		BaseLayers:       s.view.BaseLayers,
		Overlays:         s.snapshots(),
		ControlCollapsed: s.view.ControlCollapsed,
		TilesEnabled:     s.tiles != nil,
	}
}

func (s *Server) snapshots() []domain.OverlaySnapshot {
	groups := s.view.Overlays()
	out := make([]domain.OverlaySnapshot, len(groups))
	for i, g := range groups {
		out[i] = g.Snapshot()
	}
	return out
}

func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := pageData{Map: s.summary(), Legend: s.view.Legend}
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Error("render page", "error", err)
	}
}

func (s *Server) handleMap(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.summary())
}

func (s *Server) handleLegend(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.view.Legend)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := statusResponse{
		Overlays: s.snapshots(),
		Tiles:    tileStatus{Enabled: s.tiles != nil, Status: "ok"},
	}
	if s.tiles == nil {
		resp.Tiles.Status = string(domain.OverlayDegraded)
		resp.Tiles.FailureKind = domain.FailureRendering
		resp.Degraded = true
	}
	for _, o := range resp.Overlays {
		if o.Status == domain.OverlayDegraded {
			resp.Degraded = true
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleOverlay writes an overlay as a GeoJSON FeatureCollection. With
// ?wait=1 a pending overlay is held until it completes, the client goes away,
// or maxOverlayWait passes. The overlay's status travels in X-Overlay-Status.
func (s *Server) handleOverlay(w http.ResponseWriter, r *http.Request) {
	g, ok := s.view.Overlay(r.PathValue("name"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown overlay"})
		return
	}

	if r.URL.Query().Get("wait") != "" {
		timer := time.NewTimer(maxOverlayWait)
		defer timer.Stop()
		select {
		case <-g.Done():
		case <-r.Context().Done():
			return
		case <-timer.C:
		}
	}

	body, err := json.Marshal(g.FeatureCollection())
	if err != nil {
		s.logger.Error("encode overlay", "overlay", g.Key(), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "encode overlay"})
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("X-Overlay-Status", string(g.Status()))
	w.WriteHeader(http.StatusOK)
	w.Write(body) //nolint:errcheck // client may have gone away
}

func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	if s.tiles == nil {
		s.metrics.TileRequests.WithLabelValues("unconfigured").Inc()
		http.Error(w, "tile rendering is not configured", http.StatusServiceUnavailable)
		return
	}

	layer, ok := s.view.BaseLayer(r.PathValue("layer"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	z, errZ := strconv.Atoi(r.PathValue("z"))
	x, errX := strconv.Atoi(r.PathValue("x"))
	y, errY := strconv.Atoi(r.PathValue("y"))
	if errZ != nil || errX != nil || errY != nil {
		http.Error(w, mapbox.ErrInvalidTile.Error(), http.StatusBadRequest)
		return
	}

	tile, err := s.tiles.FetchTile(r.Context(), layer.StyleID, z, x, y)
	if err != nil {
		s.metrics.TileRequests.WithLabelValues("error").Inc()
		status := tileErrorStatus(err)
		if status >= http.StatusInternalServerError {
			s.logger.Warn("tile fetch failed", "layer", layer.Key, "z", z, "x", x, "y", y, "error", err)
		}
		http.Error(w, http.StatusText(status), status)
		return
	}

	s.metrics.TileRequests.WithLabelValues("success").Inc()
	w.Header().Set("Content-Type", tile.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(tile.Data) //nolint:errcheck // client may have gone away
}

func tileErrorStatus(err error) int {
	if errors.Is(err, mapbox.ErrInvalidTile) {
		return http.StatusBadRequest
	}
	var apiErr *mapbox.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return http.StatusNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
