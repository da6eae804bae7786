package cache

import (
	"context"
	"encoding/json"
	"time"
)

// GetOrLoadJSON caches load's result as JSON under key. Without a cache the
// value is returned as loaded, skipping the encode/decode round trip.
func GetOrLoadJSON[T any](c *Cache, ctx context.Context, key string, ttl time.Duration, load func(context.Context) (*T, error)) (*T, error) {
	if c == nil || ttl <= 0 {
		return load(ctx)
	}
	raw, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return nil, err
	}
	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		// a stale entry from an older shape; drop it and reload
		_ = c.Del(ctx, key)
		return load(ctx)
	}
	return out, nil
}
