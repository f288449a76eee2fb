package domain

// WaypointRole is the logical role of a route point.
type WaypointRole string

const (
	RolePickup     WaypointRole = "pickup"
	RoleRestaurant WaypointRole = "restaurant"
	RoleCustomer   WaypointRole = "customer"
)

// Waypoint is a read-only projection of a record entity, rebuilt on every
// decomposition; waypoints are never persisted. Index is the global position
// within the waypoint's class (-1 for the pickup point, restaurants indexed
// across all linked orders, customers from 0).
type Waypoint struct {
	Role    WaypointRole
	Index   int
	Coord   Coordinate
	OrderID string
}

// TypeBetween returns the segment type for an edge between two waypoint
// roles. The type is never chosen arbitrarily; it follows entirely from the
// endpoint roles.
func TypeBetween(from, to WaypointRole) SegmentType {
	if from == RolePickup {
		return SegmentUserToRestaurant
	}
	if from == RoleRestaurant && to == RoleRestaurant {
		return SegmentRestaurantToRestaurant
	}
	if from == RoleRestaurant && to == RoleCustomer {
		return SegmentRestaurantToCustomer
	}
	return SegmentCustomerToCustomer
}
