package cache_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/meminc/powsysmon/internal/cache"
)

func newCache(t *testing.T) (cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedis(client), mr
}

func TestSetGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t)

	require.NoError(t, c.Set(ctx, "topology:connections", []byte(`[{"id":7}]`), time.Minute))

	raw, err := c.Get(ctx, "topology:connections")
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":7}]`, string(raw))
}

func TestGetMiss(t *testing.T) {
	c, _ := newCache(t)
	_, err := c.Get(context.Background(), "topology:connections")
	require.ErrorIs(t, err, cache.ErrMiss)
}

func TestEntryExpires(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)

	require.NoError(t, c.Set(ctx, "alarms:active", []byte("[]"), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := c.Get(ctx, "alarms:active")
	require.ErrorIs(t, err, cache.ErrMiss)
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t)

	require.NoError(t, c.Set(ctx, "topology:connections", []byte("[]"), time.Minute))
	require.NoError(t, c.Delete(ctx, "topology:connections"))
	require.NoError(t, c.Delete(ctx, "topology:connections"))

	_, err := c.Get(ctx, "topology:connections")
	require.ErrorIs(t, err, cache.ErrMiss)
}

func TestInvalidatePatternDropsOnlyMatchingKeys(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)

	for i := 0; i < 50; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("topology:connections:page:%d", i), []byte("[]"), time.Minute))
	}
	require.NoError(t, c.Set(ctx, "alarms:active", []byte("[]"), time.Minute))

	require.NoError(t, c.InvalidatePattern(ctx, "topology:"))

	for _, key := range mr.Keys() {
		require.NotContains(t, key, "topology:")
	}

	raw, err := c.Get(ctx, "alarms:active")
	require.NoError(t, err)
	require.Equal(t, "[]", string(raw))
}

func TestInvalidatePatternOnEmptyKeyspace(t *testing.T) {
	c, _ := newCache(t)
	require.NoError(t, c.InvalidatePattern(context.Background(), "topology:"))
}
