package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	revokedPrefix = "session:revoked:"
	// loadTimeout bounds a shared load once it is detached from its first caller.
	loadTimeout = 10 * time.Second
)

// Cache wraps Redis. A nil *Cache is valid: loads go straight to the source
// and nothing is ever revoked.
type Cache struct {
	RDB *redis.Client
	sf  singleflight.Group
}

// New returns nil when addr is empty.
func New(addr, pass string, db int) *Cache {
	if addr == "" {
		return nil
	}
	return &Cache{
		RDB: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
	}
}

func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.RDB.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.RDB.Close()
}

func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if c == nil || ttl <= 0 {
		return load(ctx)
	}
	if b, err := c.RDB.Get(ctx, key).Bytes(); err == nil {
		return b, nil
	}
	// concurrent misses share one load; it outlives the caller that started it
	ch := c.sf.DoChan(key, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		b, e := load(lctx)
		if e != nil {
			return nil, e
		}
		_ = c.RDB.Set(lctx, key, b, ttl).Err()
		return b, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.([]byte), nil
	}
}

func (c *Cache) Del(ctx context.Context, keys ...string) error {
	if c == nil || len(keys) == 0 {
		return nil
	}
	return c.RDB.Del(ctx, keys...).Err()
}

// Revoke deny-lists a session id until it would have expired anyway.
func (c *Cache) Revoke(ctx context.Context, sessionID string, until time.Time) error {
	if c == nil || sessionID == "" {
		return nil
	}
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return c.RDB.Set(ctx, revokedPrefix+sessionID, 1, ttl).Err()
}

func (c *Cache) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	if c == nil || sessionID == "" {
		return false, nil
	}
	err := c.RDB.Get(ctx, revokedPrefix+sessionID).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, err
	}
}
