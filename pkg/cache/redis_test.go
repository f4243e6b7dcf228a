package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRedisCache connects to TEST_REDIS_ADDR, skipping when Redis is not reachable
func setupRedisCache(t *testing.T) *RedisCache {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	c, err := DialRedis(ctx, addr, "", 0, "greez-test:")
	if err != nil {
		t.Skipf("Redis not available at %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisCache_SetGetDelete(t *testing.T) {
	c := setupRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "token", []byte("invitation"), time.Minute))

	value, found, err := c.Get(ctx, "token")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("invitation"), value)

	require.NoError(t, c.Delete(ctx, "token"))

	_, found, err = c.Get(ctx, "token")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDialRedis_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := DialRedis(ctx, "127.0.0.1:1", "", 0, "x:")
	assert.Error(t, err)
}
