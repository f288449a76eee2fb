package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"route-segment-cache/internal/domain"
	"route-segment-cache/internal/platform/obs"
	"route-segment-cache/internal/ports"
)

const (
	// Cache entries live 30 days; road networks drift slowly enough that a
	// month-old answer is still good.
	cacheTTL = 30 * 24 * time.Hour

	metersPerMile = 1609.344
)

// DistanceService answers distance queries cache-first, calling the external
// route provider only on a miss. Safe for concurrent use.
type DistanceService struct {
	Cache    ports.DistanceCache
	Provider ports.RouteProvider
}

func NewDistanceService(cache ports.DistanceCache, provider ports.RouteProvider) *DistanceService {
	return &DistanceService{Cache: cache, Provider: provider}
}

// Lookup queries the cache for a rounded coordinate pair. Reads are
// side-effect free; a cache-store failure is logged and treated as a plain
// miss so computation falls through to the provider.
func (d *DistanceService) Lookup(ctx context.Context, from, to domain.Coordinate) (*domain.CacheEntry, bool) {
	if d.Cache == nil {
		return nil, false
	}

	key := domain.CacheKey(from.Lat, from.Lon, to.Lat, to.Lon)
	entry, err := d.Cache.Get(ctx, key)
	if err != nil {
		log.Printf("distance cache read failed key=%s err=%v", key, err)
		return nil, false
	}
	if entry == nil {
		return nil, false
	}

	return entry, true
}

// ComputeAndCache calls the route provider once and stores the converted
// result under the pair's cache key with a 30 day expiry. Provider failures
// propagate without writing anything: a transient error must not poison the
// cache, and callers treat it as retryable.
func (d *DistanceService) ComputeAndCache(ctx context.Context, from, to domain.Coordinate) (_ domain.CacheEntry, err error) {
	defer obs.Time(ctx, "distance.ComputeAndCache")(&err)

	if d.Provider == nil {
		return domain.CacheEntry{}, errors.New("distance service: provider is nil")
	}

	res, err := d.Provider.Route(ctx, from, to)
	if err != nil {
		return domain.CacheEntry{}, fmt.Errorf("compute distance: %w", err)
	}

	entry := domain.CacheEntry{
		DistanceMeters:  res.DistanceMeters,
		DistanceMiles:   res.DistanceMeters / metersPerMile,
		DurationSeconds: res.DurationSeconds,
		DurationText:    res.DurationText,
		ExpiresAt:       time.Now().Add(cacheTTL),
	}

	// A failed cache write is non-fatal: the computed value is still
	// returned and the next run simply recomputes or re-caches.
	if d.Cache != nil {
		key := domain.CacheKey(from.Lat, from.Lon, to.Lat, to.Lon)
		if err := d.Cache.Put(ctx, key, entry); err != nil {
			log.Printf("distance cache write failed key=%s err=%v", key, err)
		}
	}

	return entry, nil
}
