package domain

import (
	"errors"
	"fmt"
)

// LatLng is a WGS-84 coordinate in map (lat, lng) order.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BaseLayer is one full-map tile rendering. Exactly one is active.
type BaseLayer struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	StyleID string `json:"style_id"`
	Active  bool   `json:"active"`
}

// Layout is the static composition of the map before any data loads.
type Layout struct {
	Center     LatLng
	Zoom       int
	MaxZoom    int
	BaseLayers []BaseLayer
}

// DefaultLayout centers on San Francisco at zoom 4 with satellite imagery.
func DefaultLayout() Layout {
	return Layout{
		Center:  LatLng{Lat: 37.77, Lng: -122.42},
		Zoom:    4,
		MaxZoom: 18,
		BaseLayers: []BaseLayer{
			{Key: "satellite", Name: "Satellite", StyleID: "mapbox/satellite-v9", Active: true},
			{Key: "grayscale", Name: "Grayscale", StyleID: "mapbox/light-v10"},
			{Key: "outdoors", Name: "Outdoors", StyleID: "mapbox/outdoors-v11"},
		},
	}
}

// MapViewModel is everything the page is composed from. It is built once at
// startup and shared by reference with the loader and the HTTP server.
type MapViewModel struct {
	Center           LatLng
	Zoom             int
	MaxZoom          int
	BaseLayers       []BaseLayer
	Earthquakes      *OverlayGroup
	FaultLines       *OverlayGroup
	Legend           []LegendEntry
	ControlCollapsed bool
}

// NewMapViewModel validates a layout and composes the view model with both
// overlays registered. Earthquakes start active; fault lines become active
// when their load attaches them.
func NewMapViewModel(layout Layout) (*MapViewModel, error) {
	if err := validateLayout(&layout); err != nil {
		return nil, err
	}
	return &MapViewModel{
		Center:      layout.Center,
		Zoom:        layout.Zoom,
		MaxZoom:     layout.MaxZoom,
		BaseLayers:  layout.BaseLayers,
		Earthquakes: NewOverlayGroup(OverlayEarthquakes, "Earthquakes", true),
		FaultLines:  NewOverlayGroup(OverlayFaultLines, "Fault Lines", false),
		Legend:      BuildLegend(),
	}, nil
}

// Overlays returns the overlay groups in control order.
func (m *MapViewModel) Overlays() []*OverlayGroup {
	return []*OverlayGroup{m.Earthquakes, m.FaultLines}
}

// Overlay looks up an overlay group by key.
func (m *MapViewModel) Overlay(key string) (*OverlayGroup, bool) {
	for _, g := range m.Overlays() {
		if g.Key() == key {
			return g, true
		}
	}
	return nil, false
}

// BaseLayer looks up a base layer by key.
func (m *MapViewModel) BaseLayer(key string) (BaseLayer, bool) {
	for _, b := range m.BaseLayers {
		if b.Key == key {
			return b, true
		}
	}
	return BaseLayer{}, false
}

// ActiveBaseLayer returns the base layer shown on load.
func (m *MapViewModel) ActiveBaseLayer() BaseLayer {
	for _, b := range m.BaseLayers {
		if b.Active {
			return b
		}
	}
	return m.BaseLayers[0]
}

// validateLayout checks ranges and makes the first base layer active when
// none is marked.
func validateLayout(l *Layout) error {
	if l.Center.Lat < -90 || l.Center.Lat > 90 {
		return fmt.Errorf("invalid center latitude %v", l.Center.Lat)
	}
	if l.Center.Lng < -180 || l.Center.Lng > 180 {
		return fmt.Errorf("invalid center longitude %v", l.Center.Lng)
	}
	if l.MaxZoom == 0 {
		l.MaxZoom = 18
	}
	if l.Zoom < 0 || l.Zoom > l.MaxZoom {
		return fmt.Errorf("invalid zoom %d (max %d)", l.Zoom, l.MaxZoom)
	}
	if len(l.BaseLayers) == 0 {
		return errors.New("at least one base layer is required")
	}

	layers := append([]BaseLayer(nil), l.BaseLayers...)
	seen := make(map[string]bool, len(layers))
	active := 0
	for _, b := range layers {
		if b.Key == "" || b.StyleID == "" {
			return fmt.Errorf("base layer %q needs a key and a style id", b.Name)
		}
		if seen[b.Key] {
			return fmt.Errorf("duplicate base layer key %q", b.Key)
		}
		seen[b.Key] = true
		if b.Active {
			active++
		}
	}
	switch {
	case active > 1:
		return errors.New("only one base layer may be active")
	case active == 0:
		layers[0].Active = true
	}
	l.BaseLayers = layers
	return nil
}
