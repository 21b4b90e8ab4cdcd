package config

import (
	"fmt"
	"os"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"gopkg.in/yaml.v3"
)

// layoutFile is the YAML shape of MAP_LAYOUT_FILE. Omitted keys keep their
// defaults; a base_layers list replaces the default list entirely.
//
//	center: {lat: 37.77, lng: -122.42}
//	zoom: 4
//	max_zoom: 18
//	base_layers:
//	  - {key: satellite, name: Satellite, style_id: mapbox/satellite-v9, active: true}
type layoutFile struct {
	Center *struct {
		Lat float64 `yaml:"lat"`
		Lng float64 `yaml:"lng"`
	} `yaml:"center"`
	Zoom       *int `yaml:"zoom"`
	MaxZoom    *int `yaml:"max_zoom"`
	BaseLayers []struct {
		Key     string `yaml:"key"`
		Name    string `yaml:"name"`
		StyleID string `yaml:"style_id"`
		Active  bool   `yaml:"active"`
	} `yaml:"base_layers"`
}

// LoadLayout reads a YAML layout file over the default layout and validates
// the result.
func LoadLayout(path string) (domain.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Layout{}, fmt.Errorf("read layout: %w", err)
	}
	return ParseLayout(data)
}

// ParseLayout decodes YAML layout overrides over the default layout.
func ParseLayout(data []byte) (domain.Layout, error) {
	var f layoutFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return domain.Layout{}, fmt.Errorf("decode layout: %w", err)
	}

	layout := domain.DefaultLayout()
	if f.Center != nil {
		layout.Center = domain.LatLng{Lat: f.Center.Lat, Lng: f.Center.Lng}
	}
	if f.Zoom != nil {
		layout.Zoom = *f.Zoom
	}
	if f.MaxZoom != nil {
		layout.MaxZoom = *f.MaxZoom
	}
	if len(f.BaseLayers) > 0 {
		layout.BaseLayers = make([]domain.BaseLayer, len(f.BaseLayers))
		for i, b := range f.BaseLayers {
			layout.BaseLayers[i] = domain.BaseLayer{Key: b.Key, Name: b.Name, StyleID: b.StyleID, Active: b.Active}
		}
	}

	// Validate through the composer so bad files fail at startup.
	if _, err := domain.NewMapViewModel(layout); err != nil {
		return domain.Layout{}, fmt.Errorf("invalid layout: %w", err)
	}
	return layout, nil
}
