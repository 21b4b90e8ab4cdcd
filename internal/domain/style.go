package domain

// Color is a CSS color name understood by the map page.
type Color string

const (
	ColorPurple     Color = "purple"
	ColorMaroon     Color = "maroon"
	ColorRed        Color = "red"
	ColorDarkOrange Color = "darkorange"
	ColorYellow     Color = "yellow"
	ColorLime       Color = "lime"
	ColorGreen      Color = "green"

	ColorBlack Color = "black"
	ColorBlue  Color = "blue"
)

// MinMarkerRadius is the radius used for magnitudes at or below zero so a
// marker never collapses to nothing.
const MinMarkerRadius = 1.0

// Style is the drawing style of one shape. Field names follow the path
// options of the page's map library.
type Style struct {
	Radius      float64 `json:"radius,omitempty"`
	FillColor   Color   `json:"fillColor,omitempty"`
	Color       Color   `json:"color"`
	Weight      float64 `json:"weight"`
	Opacity     float64 `json:"opacity"`
	FillOpacity float64 `json:"fillOpacity"`
	Stroke      bool    `json:"stroke"`
	Fill        bool    `json:"fill"`
}

// MarkerRadius returns the circle marker radius for a magnitude.
func MarkerRadius(magnitude float64) float64 {
	if magnitude <= 0 {
		return MinMarkerRadius
	}
	return magnitude * 3
}

// MarkerColor buckets a magnitude into a fill color. Each threshold is an
// exclusive lower bound.
func MarkerColor(magnitude float64) Color {
	switch {
	case magnitude > 6:
		return ColorPurple
	case magnitude > 5:
		return ColorMaroon
	case magnitude > 4:
		return ColorRed
	case magnitude > 3:
		return ColorDarkOrange
	case magnitude > 2:
		return ColorYellow
	case magnitude > 1:
		return ColorLime
	default:
		return ColorGreen
	}
}

// QuakeStyle is the full marker style for an earthquake of the given magnitude.
func QuakeStyle(magnitude float64) Style {
	return Style{
		Radius:      MarkerRadius(magnitude),
		FillColor:   MarkerColor(magnitude),
		Color:       ColorBlack,
		Weight:      1,
		Opacity:     1,
		FillOpacity: 1,
		Stroke:      true,
		Fill:        true,
	}
}

// FaultLineStyle is the outline style for plate boundaries.
func FaultLineStyle() Style {
	return Style{
		Color:   ColorBlue,
		Weight:  2,
		Opacity: 1,
		Stroke:  true,
	}
}
