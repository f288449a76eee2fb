package ports

import (
	"context"
	"route-segment-cache/internal/domain"
)

// DistanceCache is the durable, process-wide store of computed distance
// results, keyed purely by rounded coordinate pairs. It has no relation to
// specific records and outlives any single record's lifecycle.
type DistanceCache interface {
	// Get returns the entry under key, or (nil, nil) on a miss.
	Get(ctx context.Context, key string) (*domain.CacheEntry, error)
	// Put upserts an entry under key. Values are deterministic for the same
	// input, so concurrent last-write-wins is harmless.
	Put(ctx context.Context, key string, entry domain.CacheEntry) error
}
