package domain

import "fmt"

// LegendThresholds are the magnitude buckets shown in the legend.
var LegendThresholds = []int{0, 1, 2, 3, 4, 5, 6}

// LegendEntry is one row of the magnitude legend.
type LegendEntry struct {
	Threshold int    `json:"threshold"`
	Color     Color  `json:"color"`
	Label     string `json:"label"`
}

// BuildLegend returns one entry per threshold. Each swatch shows the color of
// a magnitude one above its threshold, which is the color of the bucket that
// starts there. The last bucket is open ended.
func BuildLegend() []LegendEntry {
	entries := make([]LegendEntry, len(LegendThresholds))
	for i, t := range LegendThresholds {
		label := fmt.Sprintf("%d+", t)
		if i+1 < len(LegendThresholds) {
			label = fmt.Sprintf("%d–%d", t, LegendThresholds[i+1])
		}
		entries[i] = LegendEntry{
			Threshold: t,
			Color:     MarkerColor(float64(t + 1)),
			Label:     label,
		}
	}
	return entries
}
