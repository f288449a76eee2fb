package ports

import (
	"context"
	"route-segment-cache/internal/domain"
)

// Raw answer from an external routing provider.
type RouteResult struct {
	DistanceMeters  float64
	DurationSeconds int
	DurationText    string
}

// Contract for computing driving distance and duration between two points.
type RouteProvider interface {
	// Return travel distance and estimated duration from origin to destination.
	Route(ctx context.Context, origin, destination domain.Coordinate) (RouteResult, error)
}
