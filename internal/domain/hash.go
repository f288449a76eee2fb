package domain

import (
	"fmt"
	"strconv"
)

// rollingHash reduces a canonical string with a 32-bit multiply-by-31 hash
// rendered in base-36.
func rollingHash(s string) string {
	var h int32
	for _, b := range []byte(s) {
		h = h*31 + int32(b)
	}
	return strconv.FormatUint(uint64(uint32(h)), 36)
}

// SegmentHash derives the stable identity of a directed segment from its
// rounded endpoints, type, and positional indices. Identical inputs after
// rounding always yield the identical hash; any change to an endpoint's
// rounded coordinates, the type, or either index changes it.
func SegmentHash(fromLat, fromLon, toLat, toLon float64, typ SegmentType, fromIndex, toIndex int) string {
	canonical := fmt.Sprintf("%s,%s|%s,%s|%s|%d|%d",
		formatCoord(fromLat), formatCoord(fromLon),
		formatCoord(toLat), formatCoord(toLon),
		typ, fromIndex, toIndex,
	)
	return rollingHash(canonical)
}

// CacheKey identifies the physical geometry of a pair alone. Coarser than
// SegmentHash on purpose: two logically distinct segments over the same
// endpoints share one distance computation.
func CacheKey(fromLat, fromLon, toLat, toLon float64) string {
	return fmt.Sprintf("%s,%s|%s,%s",
		formatCoord(fromLat), formatCoord(fromLon),
		formatCoord(toLat), formatCoord(toLon),
	)
}
