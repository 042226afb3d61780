// Package demtile resolves coordinates to ground elevations using a cascade of
// RGB-encoded DEM tile tiers.
package demtile

import "math"

// tileSize is the width and height of every tile, in pixels.
const tileSize = 256

// A GeoPosition is a WGS84 position.
type GeoPosition struct {
	Lat float64
	Lng float64
}

// A Result is the terminal outcome of a lookup. Height is NaN when no
// candidate had data at Position.
type Result struct {
	Height    float64
	TierTitle string
	Precision int
	Zoom      int
	Position  GeoPosition
}

// unknownResult returns the result of an exhausted cascade.
func unknownResult(pos GeoPosition) Result {
	return Result{
		Height:   math.NaN(),
		Position: pos,
	}
}

// HasHeight returns true if r carries an elevation.
func (r Result) HasHeight() bool {
	return !math.IsNaN(r.Height)
}

// String returns r's height formatted to its tier's precision, or the empty
// string if the height is unknown.
func (r Result) String() string {
	if !r.HasHeight() {
		return ""
	}
	return FormatHeight(r.Height, r.Precision)
}
