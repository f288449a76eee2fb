package domain

import "time"

// SegmentType is fully determined by the roles of the segment's endpoints.
type SegmentType string

const (
	SegmentUserToRestaurant       SegmentType = "user-to-restaurant"
	SegmentRestaurantToRestaurant SegmentType = "restaurant-to-restaurant"
	SegmentRestaurantToCustomer   SegmentType = "restaurant-to-customer"
	SegmentCustomerToCustomer     SegmentType = "customer-to-customer"
)

// Segment is a directed edge between two consecutive route waypoints.
// Hash is its identity; distance fields stay absent until a computation
// succeeds for this geometry.
type Segment struct {
	FromLat float64
	FromLon float64
	ToLat   float64
	ToLon   float64

	Type      SegmentType
	FromIndex int
	ToIndex   int

	// OrderID is set only on the user-to-restaurant segment, identifying
	// which linked order's pickup it represents.
	OrderID string

	Hash string

	DistanceMiles   *float64
	DurationText    string
	DurationSeconds *int
	CalculatedAt    *time.Time

	// Errored marks a segment whose computation failed in the current run.
	// Errored segments stay in the merged list for display but are never
	// persisted.
	Errored bool
}

func NewSegment(from, to Coordinate, typ SegmentType, fromIndex, toIndex int) Segment {
	return Segment{
		FromLat:   from.Lat,
		FromLon:   from.Lon,
		ToLat:     to.Lat,
		ToLon:     to.Lon,
		Type:      typ,
		FromIndex: fromIndex,
		ToIndex:   toIndex,
		Hash:      SegmentHash(from.Lat, from.Lon, to.Lat, to.Lon, typ, fromIndex, toIndex),
	}
}

// Complete reports whether the segment carries a usable computation.
// Distance together with duration text is the sole definition of complete.
func (s Segment) Complete() bool {
	return s.DistanceMiles != nil && s.DurationText != ""
}

func (s Segment) CacheKey() string {
	return CacheKey(s.FromLat, s.FromLon, s.ToLat, s.ToLon)
}
