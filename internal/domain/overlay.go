package domain

import (
	"sync"
	"time"

	"github.com/paulmach/orb/geojson"
)

// OverlayStatus is the load state of an overlay group.
type OverlayStatus string

const (
	OverlayPending   OverlayStatus = "pending"
	OverlayPopulated OverlayStatus = "populated"
	OverlayDegraded  OverlayStatus = "degraded"
)

// Overlay keys and titles.
const (
	OverlayEarthquakes = "earthquakes"
	OverlayFaultLines  = "faultlines"
)

// OverlayGroup is a named, togglable collection of rendered shapes. It is
// completed exactly once, either populated or degraded, and never cleared.
// Readers may call any method concurrently with the single writer.
type OverlayGroup struct {
	key   string
	title string

	mu          sync.RWMutex
	shapes      []Shape
	status      OverlayStatus
	kind        FailureKind
	lastErr     string
	active      bool
	completedAt time.Time
	done        chan struct{}
}

// OverlaySnapshot is a point-in-time copy of an overlay's state.
type OverlaySnapshot struct {
	Key          string        `json:"key"`
	Title        string        `json:"title"`
	Status       OverlayStatus `json:"status"`
	FailureKind  FailureKind   `json:"failure_kind,omitempty"`
	Error        string        `json:"error,omitempty"`
	Active       bool          `json:"active"`
	FeatureCount int           `json:"feature_count"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
}

// NewOverlayGroup creates an empty, pending overlay. Active overlays are
// checked in the layer control from the start.
func NewOverlayGroup(key, title string, active bool) *OverlayGroup {
	return &OverlayGroup{
		key:    key,
		title:  title,
		status: OverlayPending,
		active: active,
		done:   make(chan struct{}),
	}
}

func (g *OverlayGroup) Key() string   { return g.key }
func (g *OverlayGroup) Title() string { return g.title }

// Populate stores the rendered shapes and marks the overlay populated.
func (g *OverlayGroup) Populate(shapes []Shape) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != OverlayPending {
		return ErrAlreadyPopulated
	}
	g.shapes = append([]Shape(nil), shapes...)
	g.complete(OverlayPopulated)
	return nil
}

// MarkDegraded records a failed load. The overlay stays empty and registered.
func (g *OverlayGroup) MarkDegraded(kind FailureKind, cause error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != OverlayPending {
		return ErrAlreadyPopulated
	}
	g.kind = kind
	if cause != nil {
		g.lastErr = cause.Error()
	}
	g.complete(OverlayDegraded)
	return nil
}

// complete must be called with mu held.
func (g *OverlayGroup) complete(status OverlayStatus) {
	g.status = status
	g.completedAt = clock.Now()
	close(g.done)
}

// Attach shows the overlay on the map.
func (g *OverlayGroup) Attach() {
	g.mu.Lock()
	g.active = true
	g.mu.Unlock()
}

// Done is closed once the overlay is populated or degraded.
func (g *OverlayGroup) Done() <-chan struct{} { return g.done }

// Status returns the current load state.
func (g *OverlayGroup) Status() OverlayStatus {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.status
}

// Shapes returns a copy of the rendered shapes.
func (g *OverlayGroup) Shapes() []Shape {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]Shape(nil), g.shapes...)
}

// Snapshot returns a copy of the overlay's state.
func (g *OverlayGroup) Snapshot() OverlaySnapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s := OverlaySnapshot{
		Key:          g.key,
		Title:        g.title,
		Status:       g.status,
		FailureKind:  g.kind,
		Error:        g.lastErr,
		Active:       g.active,
		FeatureCount: len(g.shapes),
	}
	if !g.completedAt.IsZero() {
		at := g.completedAt
		s.CompletedAt = &at
	}
	return s
}

// FeatureCollection encodes the overlay's shapes as GeoJSON.
func (g *OverlayGroup) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, s := range g.Shapes() {
		fc.Append(s.Feature())
	}
	return fc
}
