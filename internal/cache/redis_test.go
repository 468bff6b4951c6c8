package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TechbyAbrar/match-making-app/internal/cache"
	"github.com/TechbyAbrar/match-making-app/internal/config"
)

func setupCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()

	return cache.NewRedisCache(cfg), mr
}

func TestGetMiss(t *testing.T) {
	ctx := context.Background()
	c, _ := setupCache(t)

	_, err := c.Get(ctx, "absent")
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestSetGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	require.NoError(t, c.Set(ctx, "k", "v", 30*time.Second))

	val, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)

	// entry expires after TTL
	mr.FastForward(31 * time.Second)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestIncrementRequiresSeed(t *testing.T) {
	ctx := context.Background()
	c, _ := setupCache(t)

	// absent counter is a miss, never silently created
	_, err := c.Increment(ctx, "counter", 1)
	assert.ErrorIs(t, err, cache.ErrMiss)

	require.NoError(t, c.Set(ctx, "counter", 1, time.Hour))

	n, err := c.Increment(ctx, "counter", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestSetMarkerNX(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	created, err := c.SetMarkerNX(ctx, "marker", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, created)

	// second attempt within the window is a no-op
	created, err = c.SetMarkerNX(ctx, "marker", 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, created)

	mr.FastForward(5*time.Minute + time.Second)

	created, err = c.SetMarkerNX(ctx, "marker", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, created)
}

func TestJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := setupCache(t)

	type payload struct {
		IDs []uint64 `json:"ids"`
	}

	require.NoError(t, c.SetJSON(ctx, "k", payload{IDs: []uint64{1, 2, 3}}, time.Minute))

	var out payload
	require.NoError(t, c.GetJSON(ctx, "k", &out))
	assert.Equal(t, []uint64{1, 2, 3}, out.IDs)

	var missOut payload
	assert.ErrorIs(t, c.GetJSON(ctx, "absent", &missOut), cache.ErrMiss)
}

func TestAddToSetDeduplicates(t *testing.T) {
	ctx := context.Background()
	c, _ := setupCache(t)

	added, err := c.AddToSet(ctx, "viewers", 7, time.Hour)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = c.AddToSet(ctx, "viewers", 7, time.Hour)
	require.NoError(t, err)
	assert.False(t, added)

	members, err := c.SetMembers(ctx, "viewers")
	require.NoError(t, err)
	assert.Len(t, members, 1)
}
