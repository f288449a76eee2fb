package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"route-segment-cache/internal/domain"
)

const keyPrefix = "distance:"

// RedisDistanceCache is a Redis-backed store of computed distance results.
// Values are JSON; the entry's lifetime is carried both by the key TTL and
// by the recorded expiry inside the value. Entries are written once per
// computation and expire rather than update in place.
type RedisDistanceCache struct {
	Client *redis.Client
}

func NewRedisDistanceCache(client *redis.Client) *RedisDistanceCache {
	return &RedisDistanceCache{Client: client}
}

// Get fetches the entry stored under key. A miss returns (nil, nil).
func (c *RedisDistanceCache) Get(ctx context.Context, key string) (*domain.CacheEntry, error) {
	if c.Client == nil {
		return nil, errors.New("distance cache: client is nil")
	}

	data, err := c.Client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get distance cache: %w", err)
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("get distance cache: decode entry: %w", err)
	}

	// An entry past its recorded expiry counts as a miss even if the key
	// TTL has not fired yet.
	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		return nil, nil
	}

	return &entry, nil
}

// Put stores entry under key with a TTL matching the entry's recorded
// expiry. Writes are idempotent upserts; concurrent writers of the same key
// produce the same deterministic value, so last-write-wins is harmless.
func (c *RedisDistanceCache) Put(ctx context.Context, key string, entry domain.CacheEntry) error {
	if c.Client == nil {
		return errors.New("distance cache: client is nil")
	}

	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("put distance cache: entry expires in the past (%s)", entry.ExpiresAt)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("put distance cache: encode entry: %w", err)
	}

	if err := c.Client.Set(ctx, keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("put distance cache: %w", err)
	}

	return nil
}
