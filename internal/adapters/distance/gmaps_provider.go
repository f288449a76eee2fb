package distance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"strings"
	"time"

	"googlemaps.github.io/maps"

	"route-segment-cache/internal/domain"
	"route-segment-cache/internal/ports"
)

// GoogleRouteProvider implements RouteProvider with the Google Maps
// Directions API. Waypoints arrive as coordinate pairs, so no geocoding step
// is involved. The provider is safe for concurrent use.
type GoogleRouteProvider struct {
	client *maps.Client
}

func NewGoogleRouteProvider(apiKey string) (*GoogleRouteProvider, error) {
	if apiKey == "" {
		return nil, errors.New("google maps api key is empty")
	}

	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}

	return &GoogleRouteProvider{client: client}, nil
}

func (g *GoogleRouteProvider) Route(ctx context.Context, origin, destination domain.Coordinate) (ports.RouteResult, error) {
	req := &maps.DirectionsRequest{
		Origin:      fmt.Sprintf("%.6f,%.6f", origin.Lat, origin.Lon),
		Destination: fmt.Sprintf("%.6f,%.6f", destination.Lat, destination.Lon),
		Mode:        maps.TravelModeDriving,
	}

	routes, err := g.directionsWithRetry(ctx, req)
	if err != nil {
		return ports.RouteResult{}, fmt.Errorf("directions request: %w", err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return ports.RouteResult{}, fmt.Errorf(
			"no route from %.6f,%.6f to %.6f,%.6f",
			origin.Lat, origin.Lon, destination.Lat, destination.Lon,
		)
	}

	leg := routes[0].Legs[0]

	return ports.RouteResult{
		DistanceMeters:  float64(leg.Distance.Meters),
		DurationSeconds: int(leg.Duration / time.Second),
		DurationText:    formatDuration(leg.Duration),
	}, nil
}

// directionsWithRetry retries transient failures (network errors, quota and
// backend hiccups) with exponential backoff while respecting context
// cancellation.
func (g *GoogleRouteProvider) directionsWithRetry(ctx context.Context, req *maps.DirectionsRequest) ([]maps.Route, error) {
	const maxAttempts = 3
	backoff := 200 * time.Millisecond

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		routes, _, err := g.client.Directions(ctx, req)
		if err == nil {
			return routes, nil
		}
		lastErr = err

		if !transient(err) || attempt == maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}

func transient(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// The maps client surfaces API statuses as plain errors.
	msg := err.Error()
	return strings.Contains(msg, "OVER_QUERY_LIMIT") ||
		strings.Contains(msg, "UNKNOWN_ERROR")
}

// formatDuration renders a trip duration the way the Directions UI does
// ("4 mins", "1 hour 12 mins").
func formatDuration(d time.Duration) string {
	mins := int(math.Round(d.Minutes()))
	if mins < 1 {
		mins = 1
	}

	hours := mins / 60
	mins = mins % 60

	switch {
	case hours == 0:
		return fmt.Sprintf("%d %s", mins, plural("min", mins))
	case mins == 0:
		return fmt.Sprintf("%d %s", hours, plural("hour", hours))
	default:
		return fmt.Sprintf("%d %s %d %s", hours, plural("hour", hours), mins, plural("min", mins))
	}
}

func plural(unit string, n int) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
