package domain

import (
	"math"
	"strconv"
)

// Six decimal places (~0.11 m). Every cache key and segment hash rounds to
// this precision so logically identical geometry always produces the same key.
const coordPrecision = 1e6

// Immutable geographic point (latitude, longitude).
type Coordinate struct {
	Lat float64
	Lon float64
}

// RoundCoord rounds a latitude or longitude to six decimal places.
// This is the only rounding site; callers never round ad hoc.
func RoundCoord(v float64) float64 {
	return math.Round(v*coordPrecision) / coordPrecision
}

// Finite reports whether an optional coordinate component is present and usable.
func Finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(RoundCoord(v), 'f', -1, 64)
}
