package distance

import (
	"context"
	"fmt"
	"sync"

	"route-segment-cache/internal/domain"
	"route-segment-cache/internal/ports"
)

type MockLeg struct {
	FromLat, FromLon, ToLat, ToLon float64
	Meters                         float64
	Seconds                        int
	Text                           string
}

// MockRouteProvider serves fixture results keyed by rounded geometry and
// counts calls. Pairs without a fixture fail, which doubles as failure
// injection in tests.
type MockRouteProvider struct {
	mu    sync.Mutex
	m     map[string]ports.RouteResult
	calls int
}

func NewMockRouteProvider(legs []MockLeg) *MockRouteProvider {
	m := make(map[string]ports.RouteResult, len(legs))
	for _, l := range legs {
		key := domain.CacheKey(l.FromLat, l.FromLon, l.ToLat, l.ToLon)
		m[key] = ports.RouteResult{
			DistanceMeters:  l.Meters,
			DurationSeconds: l.Seconds,
			DurationText:    l.Text,
		}
	}
	return &MockRouteProvider{m: m}
}

func (p *MockRouteProvider) Route(ctx context.Context, origin, destination domain.Coordinate) (ports.RouteResult, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	key := domain.CacheKey(origin.Lat, origin.Lon, destination.Lat, destination.Lon)
	r, ok := p.m[key]
	if !ok {
		return ports.RouteResult{}, fmt.Errorf("missing leg %s", key)
	}

	return r, nil
}

// Calls reports how many times Route has been invoked.
func (p *MockRouteProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
