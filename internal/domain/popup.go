package domain

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"time"
)

// OccurredLayout formats earthquake origin times in popups.
const OccurredLayout = "Mon Jan 02 2006 15:04:05 MST"

var popupTemplate = template.Must(template.New("popup").Parse(
	`<h3 align="center">{{.Place}}</h3><hr>` +
		`<p><u>Occurrence:</u> {{.Occurred}}</p><hr>` +
		`<p><u>Magnitude:</u> {{.Magnitude}}</p>`,
))

// Popup is the view model of an earthquake popup. Fields render in
// declaration order.
type Popup struct {
	Place     string
	Occurred  string
	Magnitude string
}

// NewPopup builds the popup view model for a quake.
func NewPopup(q Quake) Popup {
	return Popup{
		Place:     q.Place,
		Occurred:  FormatOccurred(q.Time),
		Magnitude: FormatMagnitude(q.Magnitude),
	}
}

// FormatMagnitude formats a magnitude in shortest form, or "unknown" when the
// feed reported none.
func FormatMagnitude(mag *float64) string {
	if mag == nil {
		return "unknown"
	}
	return strconv.FormatFloat(*mag, 'f', -1, 64)
}

// HTML renders the popup with all fields escaped.
func (p Popup) HTML() (string, error) {
	var buf bytes.Buffer
	if err := popupTemplate.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("render popup: %w", err)
	}
	return buf.String(), nil
}

// FormatOccurred formats an origin time in UTC, or "unknown" for the zero time.
func FormatOccurred(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.UTC().Format(OccurredLayout)
}
