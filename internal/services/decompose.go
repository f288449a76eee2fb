package services

import "route-segment-cache/internal/domain"

// ExpectedSegments decomposes a record's waypoints into the ordered list of
// directed segments the record should carry. Segments come back as skeletons:
// hashed, typed, indexed, with no distance data.
//
// Restaurants are flattened into one globally indexed sequence: each linked
// order contributes its main restaurant first, then its additional
// restaurants in array order. Entries without finite coordinates are skipped
// and produce no endpoints, so decomposition degrades instead of failing.
func ExpectedSegments(rec *domain.Record) []domain.Segment {
	if rec == nil || len(rec.Orders) == 0 {
		return nil
	}

	restaurants := flattenRestaurants(rec.Orders)
	customers := presentCustomers(rec.Customers)

	segments := make([]domain.Segment, 0, len(restaurants)+len(customers))

	// Only the first linked order's pickup connects to the restaurant chain;
	// later orders' own pickup points are intentionally not modeled.
	first := rec.Orders[0]
	if len(restaurants) > 0 && domain.Finite(first.PickupLat) && domain.Finite(first.PickupLon) {
		pickup := domain.Waypoint{
			Role:    domain.RolePickup,
			Index:   -1,
			Coord:   domain.Coordinate{Lat: *first.PickupLat, Lon: *first.PickupLon},
			OrderID: first.ID,
		}
		segments = append(segments, connect(pickup, restaurants[0]))
	}

	// Consecutive restaurants link pairwise on global indices; this covers
	// both within-order chains and the bridge between one order's last
	// restaurant and the next order's main.
	for i := 1; i < len(restaurants); i++ {
		segments = append(segments, connect(restaurants[i-1], restaurants[i]))
	}

	if len(restaurants) > 0 && len(customers) > 0 {
		segments = append(segments, connect(restaurants[len(restaurants)-1], customers[0]))
	}

	for i := 1; i < len(customers); i++ {
		segments = append(segments, connect(customers[i-1], customers[i]))
	}

	return segments
}

func connect(from, to domain.Waypoint) domain.Segment {
	seg := domain.NewSegment(
		from.Coord, to.Coord,
		domain.TypeBetween(from.Role, to.Role),
		from.Index, to.Index,
	)
	seg.OrderID = from.OrderID
	return seg
}

func flattenRestaurants(orders []domain.Order) []domain.Waypoint {
	out := make([]domain.Waypoint, 0, len(orders)*2)
	for _, o := range orders {
		if domain.Finite(o.Main.Lat) && domain.Finite(o.Main.Lon) {
			out = append(out, domain.Waypoint{
				Role:  domain.RoleRestaurant,
				Index: len(out),
				Coord: domain.Coordinate{Lat: *o.Main.Lat, Lon: *o.Main.Lon},
			})
		}
		for _, r := range o.Additional {
			if domain.Finite(r.Lat) && domain.Finite(r.Lon) {
				out = append(out, domain.Waypoint{
					Role:  domain.RoleRestaurant,
					Index: len(out),
					Coord: domain.Coordinate{Lat: *r.Lat, Lon: *r.Lon},
				})
			}
		}
	}
	return out
}

func presentCustomers(customers []domain.Customer) []domain.Waypoint {
	out := make([]domain.Waypoint, 0, len(customers))
	for _, c := range customers {
		if domain.Finite(c.Lat) && domain.Finite(c.Lon) {
			out = append(out, domain.Waypoint{
				Role:  domain.RoleCustomer,
				Index: len(out),
				Coord: domain.Coordinate{Lat: *c.Lat, Lon: *c.Lon},
			})
		}
	}
	return out
}
