package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestGetOrLoad_CachesUntilDeleted(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	var calls atomic.Int32
	load := func(context.Context) ([]byte, error) {
		calls.Add(1)
		return []byte(`{"n":1}`), nil
	}

	for i := 0; i < 3; i++ {
		b, err := c.GetOrLoad(ctx, "stats", time.Minute, load)
		require.NoError(t, err)
		assert.JSONEq(t, `{"n":1}`, string(b))
	}
	assert.EqualValues(t, 1, calls.Load())
	assert.Greater(t, mr.TTL("stats"), time.Duration(0))

	require.NoError(t, c.Del(ctx, "stats"))
	assert.False(t, mr.Exists("stats"))
	_, err := c.GetOrLoad(ctx, "stats", time.Minute, load)
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load())

	mr.FastForward(2 * time.Minute)
	_, err = c.GetOrLoad(ctx, "stats", time.Minute, load)
	require.NoError(t, err)
	assert.EqualValues(t, 3, calls.Load(), "expired entry reloads")
}

func TestGetOrLoad_CancelledCallerDoesNotAbortSharedLoad(t *testing.T) {
	c, mr := newTestCache(t)

	started, release := make(chan struct{}), make(chan struct{})
	load := func(ctx context.Context) ([]byte, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []byte(`{"n":2}`), nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.GetOrLoad(ctx, "stats", time.Minute, load)
		done <- err
	}()

	<-started
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	close(release)

	require.Eventually(t, func() bool { return mr.Exists("stats") }, time.Second, 10*time.Millisecond)
	b, err := c.GetOrLoad(context.Background(), "stats", time.Minute, func(context.Context) ([]byte, error) {
		t.Error("load ran again after the shared load finished")
		return nil, nil
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":2}`, string(b))
}

func TestGetOrLoadJSON_DropsUndecodableEntry(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("stats", "not json"))

	calls := 0
	got, err := GetOrLoadJSON(c, context.Background(), "stats", time.Minute, func(context.Context) (*payload, error) {
		calls++
		return &payload{N: 3}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, got.N)
	assert.Equal(t, 1, calls)
	assert.False(t, mr.Exists("stats"))
}

func TestRevoke_ExpiresWithSession(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Revoke(ctx, "sid", time.Now().Add(time.Minute)))
	revoked, err := c.IsRevoked(ctx, "sid")
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl := mr.TTL(revokedPrefix + "sid")
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	mr.FastForward(2 * time.Minute)
	revoked, err = c.IsRevoked(ctx, "sid")
	require.NoError(t, err)
	assert.False(t, revoked)

	// already expired sessions are not written at all
	require.NoError(t, c.Revoke(ctx, "old", time.Now().Add(-time.Second)))
	assert.False(t, mr.Exists(revokedPrefix+"old"))

	revoked, err = c.IsRevoked(ctx, "")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestIsRevoked_RedisDown(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, err := c.IsRevoked(context.Background(), "sid")
	assert.Error(t, err)
	assert.Error(t, c.Ping(context.Background()))
}
