package domain

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ShapeKind tells the page how to draw a shape.
type ShapeKind string

const (
	ShapeCircleMarker ShapeKind = "circle_marker"
	ShapePath         ShapeKind = "path"
)

// Shape is one rendered, styled map object.
type Shape struct {
	ID       string
	Kind     ShapeKind
	Geometry orb.Geometry
	Style    Style
	Popup    string // escaped HTML, empty when the shape has no popup
}

// Feature encodes the shape as a GeoJSON feature whose properties carry the
// drawing instructions.
func (s Shape) Feature() *geojson.Feature {
	f := geojson.NewFeature(s.Geometry)
	if s.ID != "" {
		f.ID = s.ID
	}
	f.Properties["kind"] = s.Kind
	f.Properties["style"] = s.Style
	if s.Popup != "" {
		f.Properties["popup"] = s.Popup
	}
	return f
}
