package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCache_BasicOperations(t *testing.T) {
	cache := NewInMemoryCache(10 * time.Millisecond)
	defer cache.Close()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key1", []byte("value1"), time.Second))

	value, found, err := cache.Get(ctx, "key1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("value1"), value)

	_, found, err = cache.Get(ctx, "nonexistent")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInMemoryCache_Expiration(t *testing.T) {
	cache := NewInMemoryCache(10 * time.Millisecond)
	defer cache.Close()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "expire", []byte("value"), 50*time.Millisecond))

	_, found, _ := cache.Get(ctx, "expire")
	assert.True(t, found)

	time.Sleep(60 * time.Millisecond)

	_, found, _ = cache.Get(ctx, "expire")
	assert.False(t, found)
}

func TestInMemoryCache_Delete(t *testing.T) {
	cache := NewInMemoryCache(time.Minute)
	defer cache.Close()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key1", []byte("value1"), time.Second))
	require.NoError(t, cache.Delete(ctx, "key1"))

	_, found, _ := cache.Get(ctx, "key1")
	assert.False(t, found)
	assert.Equal(t, 0, cache.Size())
}

func TestInMemoryCache_CleanupRemovesExpired(t *testing.T) {
	cache := NewInMemoryCache(10 * time.Millisecond)
	defer cache.Close()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "short", []byte("v"), 5*time.Millisecond))
	require.NoError(t, cache.Set(ctx, "long", []byte("v"), time.Minute))

	assert.Eventually(t, func() bool {
		return cache.Size() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestInMemoryCache_ConcurrentAccess(t *testing.T) {
	cache := NewInMemoryCache(time.Minute)
	defer cache.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i)
			_ = cache.Set(ctx, key, []byte(key), time.Minute)
			_, _, _ = cache.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, cache.Size())
}

func TestInMemoryCache_CloseIsIdempotent(t *testing.T) {
	cache := NewInMemoryCache(time.Minute)
	assert.NoError(t, cache.Close())
	assert.NoError(t, cache.Close())
}
