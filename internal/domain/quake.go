package domain

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Quake is one earthquake event read from a USGS feature.
type Quake struct {
	ID        string
	Point     orb.Point // [lon, lat]
	Magnitude *float64 // nil when the feed reports no magnitude
	Place     string
	Time      time.Time
}

// ParseQuake reads an earthquake from a GeoJSON feature. The geometry must be
// a Point; a null magnitude is kept as nil and a null place reads as "".
func ParseQuake(f *geojson.Feature) (Quake, error) {
	if f == nil {
		return Quake{}, fmt.Errorf("parse quake: %w: nil feature", ErrUnsupportedGeometry)
	}
	pt, ok := f.Geometry.(orb.Point)
	if !ok {
		return Quake{}, fmt.Errorf("parse quake: %w: %s", ErrUnsupportedGeometry, geometryType(f.Geometry))
	}

	mag, err := numberProperty(f.Properties, "mag")
	if err != nil {
		return Quake{}, fmt.Errorf("parse quake: %w", err)
	}
	ms, err := numberProperty(f.Properties, "time")
	if err != nil {
		return Quake{}, fmt.Errorf("parse quake: %w", err)
	}
	place, err := stringProperty(f.Properties, "place")
	if err != nil {
		return Quake{}, fmt.Errorf("parse quake: %w", err)
	}

	q := Quake{
		ID:        FeatureID(f),
		Point:     pt,
		Magnitude: mag,
		Place:     place,
	}
	if ms != nil {
		q.Time = time.UnixMilli(int64(*ms)).UTC()
	}
	return q, nil
}

// Mag returns the magnitude, or 0 when it is unknown.
func (q Quake) Mag() float64 {
	if q.Magnitude == nil {
		return 0
	}
	return *q.Magnitude
}

// numberProperty returns nil for a missing or null property.
func numberProperty(props geojson.Properties, key string) (*float64, error) {
	v, ok := props[key]
	if !ok || v == nil {
		return nil, nil
	}
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	default:
		return nil, fmt.Errorf("%w: %q is %T, want number", ErrInvalidProperty, key, v)
	}
	return &n, nil
}

func stringProperty(props geojson.Properties, key string) (string, error) {
	v, ok := props[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q is %T, want string", ErrInvalidProperty, key, v)
	}
	return s, nil
}

// FeatureID returns the feature id as text, or "" when it has none.
func FeatureID(f *geojson.Feature) string {
	switch id := f.ID.(type) {
	case nil:
		return ""
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}

func geometryType(g orb.Geometry) string {
	if g == nil {
		return "null"
	}
	return g.GeoJSONType()
}
