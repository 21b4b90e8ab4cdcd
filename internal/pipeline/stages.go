package pipeline

import "github.com/couchcryptid/quake-map-service/internal/domain"

// OverlayStages returns the map's two stages: earthquakes first, then fault
// lines once the earthquake stage has completed.
func OverlayStages(m *domain.MapViewModel, quakesURL, faultsURL string) []Stage {
	return []Stage{
		{
			Name:     domain.OverlayEarthquakes,
			URL:      quakesURL,
			Group:    m.Earthquakes,
			Renderer: QuakeRenderer{},
		},
		{
			Name:     domain.OverlayFaultLines,
			URL:      faultsURL,
			Group:    m.FaultLines,
			Renderer: FaultLineRenderer{},
			After:    domain.OverlayEarthquakes,
		},
	}
}
