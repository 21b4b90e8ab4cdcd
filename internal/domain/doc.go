// Package domain models the earthquake map: the features it draws, the style
// rules that turn a magnitude into a marker, and the view model the page is
// composed from.
//
// # Data Sources
//
// Earthquakes come from the USGS GeoJSON summary feeds, e.g.
// https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_week.geojson.
// Plate boundaries come from the PB2002 dataset converted to GeoJSON,
// https://raw.githubusercontent.com/fraxen/tectonicplates/master/GeoJSON/PB2002_boundaries.json.
// Both are read-only FeatureCollections fetched once per process.
//
// # USGS Feed Conventions
//
// Geometry is a Point with [longitude, latitude, depth_km] coordinates.
//
// Properties used here:
//
//	mag    magnitude, signed real; may be null for events not yet reviewed
//	place  human readable location, e.g. "10km N of Testville"; may be null
//	time   event origin time in milliseconds since the Unix epoch (UTC)
//
// A null magnitude is read as 0 and a null place as the empty string.
//
// # Magnitude Styling
//
// Markers are circles whose radius and fill color depend on the magnitude and
// nothing else (see [MarkerRadius] and [MarkerColor]):
//
//	radius: 3 × magnitude, floored at 1 for magnitudes ≤ 0
//	color:  >6 purple | >5 maroon | >4 red | >3 darkorange | >2 yellow | >1 lime | else green
//
// Thresholds are exclusive lower bounds: a magnitude of exactly 5 is red.
//
// # Overlays
//
// An [OverlayGroup] is populated exactly once. A failed load leaves it empty
// and marks it degraded with a [FailureKind]; it stays registered in the
// layer control either way.
package domain
