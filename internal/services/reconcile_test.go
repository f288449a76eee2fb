package services

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"route-segment-cache/internal/adapters/distance"
	"route-segment-cache/internal/domain"
)

// memCache is an in-memory DistanceCache for reconciler tests.
type memCache struct {
	mu sync.Mutex
	m  map[string]domain.CacheEntry
}

func (c *memCache) Get(ctx context.Context, key string) (*domain.CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.m[key]; ok {
		cp := e
		return &cp, nil
	}
	return nil, nil
}

func (c *memCache) Put(ctx context.Context, key string, entry domain.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.m == nil {
		c.m = make(map[string]domain.CacheEntry)
	}
	c.m[key] = entry
	return nil
}

// brokenCache fails every operation, standing in for an unreachable store.
type brokenCache struct{}

func (brokenCache) Get(ctx context.Context, key string) (*domain.CacheEntry, error) {
	return nil, errors.New("cache store unavailable")
}

func (brokenCache) Put(ctx context.Context, key string, entry domain.CacheEntry) error {
	return errors.New("cache store unavailable")
}

// Legs covering every pair of the multi-order fixture.
func allLegs() []distance.MockLeg {
	return []distance.MockLeg{
		{FromLat: 33.448377, FromLon: -112.074037, ToLat: 33.450100, ToLon: -112.070200, Meters: 500, Seconds: 120, Text: "2 mins"},
		{FromLat: 33.450100, FromLon: -112.070200, ToLat: 33.460300, ToLon: -112.060400, Meters: 1609.344, Seconds: 240, Text: "4 mins"},
		{FromLat: 33.460300, FromLon: -112.060400, ToLat: 33.470500, ToLon: -112.050600, Meters: 1800, Seconds: 300, Text: "5 mins"},
		{FromLat: 33.470500, FromLon: -112.050600, ToLat: 33.480700, ToLon: -112.040800, Meters: 2100, Seconds: 360, Text: "6 mins"},
		{FromLat: 33.480700, FromLon: -112.040800, ToLat: 33.490900, ToLon: -112.031000, Meters: 1500, Seconds: 270, Text: "5 mins"},
	}
}

func TestReconcileComputesEverythingOnFirstRun(t *testing.T) {
	provider := distance.NewMockRouteProvider(allLegs())
	reconciler := NewReconciler(NewDistanceService(&memCache{}, provider))

	rec := multiOrderRecord()
	result := reconciler.Reconcile(context.Background(), rec)

	if len(result.Segments) != 5 {
		t.Fatalf("merged list length = %d, want 5", len(result.Segments))
	}
	if len(result.Computed) != 5 {
		t.Fatalf("computed subset length = %d, want 5", len(result.Computed))
	}
	if result.Reused != 0 || result.Failed != 0 {
		t.Fatalf("reused=%d failed=%d, want 0/0", result.Reused, result.Failed)
	}
	if calls := provider.Calls(); calls != 5 {
		t.Fatalf("provider calls = %d, want 5", calls)
	}

	for i, s := range result.Segments {
		if !s.Complete() {
			t.Errorf("segment %d not complete", i)
		}
		if s.CalculatedAt == nil {
			t.Errorf("segment %d missing CalculatedAt", i)
		}
	}

	// 1609.344 meters is exactly one mile.
	if miles := *result.Segments[1].DistanceMiles; miles != 1.0 {
		t.Errorf("segment 1 distance = %v miles, want 1.0", miles)
	}
}

func TestReconcileIdempotentWithoutDataChange(t *testing.T) {
	store := &memCache{}
	provider := distance.NewMockRouteProvider(allLegs())
	reconciler := NewReconciler(NewDistanceService(store, provider))

	rec := multiOrderRecord()
	first := reconciler.Reconcile(context.Background(), rec)
	if len(first.Computed) != 5 {
		t.Fatalf("first run computed %d, want 5", len(first.Computed))
	}

	// Persist and run again with a fresh provider: everything must be
	// reused by hash, with zero provider calls.
	rec.Segments = first.Segments

	provider2 := distance.NewMockRouteProvider(allLegs())
	reconciler2 := NewReconciler(NewDistanceService(store, provider2))

	second := reconciler2.Reconcile(context.Background(), rec)

	if calls := provider2.Calls(); calls != 0 {
		t.Fatalf("second run made %d provider calls, want 0", calls)
	}
	if second.Reused != 5 || len(second.Computed) != 0 {
		t.Fatalf("second run reused=%d computed=%d, want 5/0", second.Reused, len(second.Computed))
	}
	if !reflect.DeepEqual(second.Segments, first.Segments) {
		t.Fatal("second run output differs from first run output")
	}
}

func TestReconcilePartialFailure(t *testing.T) {
	// Drop one leg so exactly one pair fails.
	legs := allLegs()
	legs = append(legs[:2], legs[3:]...)

	provider := distance.NewMockRouteProvider(legs)
	reconciler := NewReconciler(NewDistanceService(&memCache{}, provider))

	rec := multiOrderRecord()
	result := reconciler.Reconcile(context.Background(), rec)

	if len(result.Segments) != 5 {
		t.Fatalf("merged list length = %d, want 5", len(result.Segments))
	}
	if len(result.Computed) != 4 {
		t.Fatalf("computed subset length = %d, want 4", len(result.Computed))
	}
	if result.Failed != 1 {
		t.Fatalf("failed = %d, want 1", result.Failed)
	}

	errored := result.Segments[2]
	if !errored.Errored {
		t.Fatal("segment 2 should be marked errored")
	}
	if errored.DistanceMiles != nil || errored.DurationText != "" {
		t.Fatal("errored segment must not carry distance fields")
	}
	for _, s := range result.Computed {
		if s.Hash == errored.Hash {
			t.Fatal("errored segment leaked into the computed subset")
		}
	}
}

func TestReconcileSharedGeometryComputedOnce(t *testing.T) {
	// A -> B appears twice: as the within-order restaurant hop and as the
	// final restaurant-to-customer leg (the customer sits at B). Both share
	// one cache key and must share one provider call.
	rec := &domain.Record{
		ID: "rec-shared",
		Orders: []domain.Order{
			{
				ID:        "order-a",
				PickupLat: fptr(33.440000),
				PickupLon: fptr(-112.080000),
				Main:      domain.Restaurant{Lat: fptr(33.450000), Lon: fptr(-112.070000)},
				Additional: []domain.Restaurant{
					{Lat: fptr(33.460000), Lon: fptr(-112.060000)},
					{Lat: fptr(33.450000), Lon: fptr(-112.070000)},
				},
			},
		},
		Customers: []domain.Customer{
			{Lat: fptr(33.460000), Lon: fptr(-112.060000)},
		},
	}

	provider := distance.NewMockRouteProvider([]distance.MockLeg{
		{FromLat: 33.440000, FromLon: -112.080000, ToLat: 33.450000, ToLon: -112.070000, Meters: 400, Seconds: 90, Text: "2 mins"},
		{FromLat: 33.450000, FromLon: -112.070000, ToLat: 33.460000, ToLon: -112.060000, Meters: 900, Seconds: 180, Text: "3 mins"},
		{FromLat: 33.460000, FromLon: -112.060000, ToLat: 33.450000, ToLon: -112.070000, Meters: 950, Seconds: 200, Text: "3 mins"},
	})
	reconciler := NewReconciler(NewDistanceService(&memCache{}, provider))

	result := reconciler.Reconcile(context.Background(), rec)

	// u2r, r2r 0->1, r2r 1->2, r2c 2->0.
	if len(result.Segments) != 4 {
		t.Fatalf("merged list length = %d, want 4", len(result.Segments))
	}
	if calls := provider.Calls(); calls != 3 {
		t.Fatalf("provider calls = %d, want 3 (one per unique pair)", calls)
	}
	if len(result.Computed) != 4 {
		t.Fatalf("computed subset length = %d, want 4", len(result.Computed))
	}

	hop := result.Segments[1]
	leg := result.Segments[3]
	if hop.CacheKey() != leg.CacheKey() {
		t.Fatal("expected shared cache key for identical geometry")
	}
	if hop.Hash == leg.Hash {
		t.Fatal("distinct segment types must not share a hash")
	}
	if *hop.DistanceMiles != *leg.DistanceMiles {
		t.Fatalf("shared geometry produced different distances: %v vs %v", *hop.DistanceMiles, *leg.DistanceMiles)
	}
}

func TestReconcileUsesCacheBeforeProvider(t *testing.T) {
	rec := &domain.Record{
		ID: "rec-cached",
		Orders: []domain.Order{
			{
				ID:        "order-a",
				PickupLat: fptr(33.440000),
				PickupLon: fptr(-112.080000),
				Main:      domain.Restaurant{Lat: fptr(33.450000), Lon: fptr(-112.070000)},
			},
		},
	}

	store := &memCache{}
	miles := 0.31
	_ = store.Put(context.Background(), domain.CacheKey(33.440000, -112.080000, 33.450000, -112.070000), domain.CacheEntry{
		DistanceMeters:  500,
		DistanceMiles:   miles,
		DurationSeconds: 120,
		DurationText:    "2 mins",
	})

	// No legs: any provider call would fail.
	provider := distance.NewMockRouteProvider(nil)
	reconciler := NewReconciler(NewDistanceService(store, provider))

	result := reconciler.Reconcile(context.Background(), rec)

	if calls := provider.Calls(); calls != 0 {
		t.Fatalf("provider calls = %d, want 0 (cache hit)", calls)
	}
	if len(result.Computed) != 1 || result.Failed != 0 {
		t.Fatalf("computed=%d failed=%d, want 1/0", len(result.Computed), result.Failed)
	}
	if got := *result.Segments[0].DistanceMiles; got != miles {
		t.Fatalf("distance = %v, want %v", got, miles)
	}
}

func TestReconcileTreatsCacheFailureAsMiss(t *testing.T) {
	rec := &domain.Record{
		ID: "rec-nocache",
		Orders: []domain.Order{
			{
				ID:        "order-a",
				PickupLat: fptr(33.440000),
				PickupLon: fptr(-112.080000),
				Main:      domain.Restaurant{Lat: fptr(33.450000), Lon: fptr(-112.070000)},
			},
		},
	}

	provider := distance.NewMockRouteProvider([]distance.MockLeg{
		{FromLat: 33.440000, FromLon: -112.080000, ToLat: 33.450000, ToLon: -112.070000, Meters: 400, Seconds: 90, Text: "2 mins"},
	})
	reconciler := NewReconciler(NewDistanceService(brokenCache{}, provider))

	result := reconciler.Reconcile(context.Background(), rec)

	if calls := provider.Calls(); calls != 1 {
		t.Fatalf("provider calls = %d, want 1 (store failure falls through)", calls)
	}
	if len(result.Computed) != 1 || result.Failed != 0 {
		t.Fatalf("computed=%d failed=%d, want 1/0", len(result.Computed), result.Failed)
	}
	if !result.Segments[0].Complete() {
		t.Fatal("segment should be complete despite cache store failure")
	}
}
