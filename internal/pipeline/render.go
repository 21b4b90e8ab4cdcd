package pipeline

import (
	"fmt"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/paulmach/orb/geojson"
)

// Renderer converts one GeoJSON feature into a styled shape.
type Renderer interface {
	Render(f *geojson.Feature) (domain.Shape, error)
}

// QuakeRenderer draws earthquakes as circle markers styled by magnitude with
// a popup describing the event.
type QuakeRenderer struct{}

func (QuakeRenderer) Render(f *geojson.Feature) (domain.Shape, error) {
	q, err := domain.ParseQuake(f)
	if err != nil {
		return domain.Shape{}, err
	}
	popup, err := domain.NewPopup(q).HTML()
	if err != nil {
		return domain.Shape{}, err
	}
	return domain.Shape{
		ID:       q.ID,
		Kind:     domain.ShapeCircleMarker,
		Geometry: q.Point,
		Style:    domain.QuakeStyle(q.Mag()),
		Popup:    popup,
	}, nil
}

// FaultLineRenderer draws plate boundaries as unfilled blue outlines.
type FaultLineRenderer struct{}

func (FaultLineRenderer) Render(f *geojson.Feature) (domain.Shape, error) {
	if f == nil || f.Geometry == nil {
		return domain.Shape{}, fmt.Errorf("render fault line: %w: null geometry", domain.ErrUnsupportedGeometry)
	}
	return domain.Shape{
		ID:       domain.FeatureID(f),
		Kind:     domain.ShapePath,
		Geometry: f.Geometry,
		Style:    domain.FaultLineStyle(),
	}, nil
}
