package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketplace/storefront/internal/domain/cart"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func sampleItems() []cart.RemoteCartItem {
	return []cart.RemoteCartItem{
		{ID: 101, ProductID: 1, Quantity: 2},
		{ID: 202, ProductID: 2, Quantity: 1},
	}
}

func TestInMemoryCartCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCartCache()
	defer c.Close()

	t.Run("miss on empty cache", func(t *testing.T) {
		_, err := c.Get(ctx, "user:1")
		assert.ErrorIs(t, err, cart.ErrCacheMiss)
	})

	t.Run("hit after set", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "user:1", sampleItems(), time.Minute))

		items, err := c.Get(ctx, "user:1")
		require.NoError(t, err)
		assert.Equal(t, sampleItems(), items)
	})

	t.Run("keys are isolated per user", func(t *testing.T) {
		_, err := c.Get(ctx, "user:2")
		assert.ErrorIs(t, err, cart.ErrCacheMiss)
	})

	t.Run("empty cart is cached as a hit", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "user:3", nil, time.Minute))

		items, err := c.Get(ctx, "user:3")
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		items, err := c.Get(ctx, "user:1")
		require.NoError(t, err)
		items[0].Quantity = 99

		again, err := c.Get(ctx, "user:1")
		require.NoError(t, err)
		assert.Equal(t, 2, again[0].Quantity)
	})

	t.Run("non-positive ttl drops entry", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "user:1", sampleItems(), 0))
		_, err := c.Get(ctx, "user:1")
		assert.ErrorIs(t, err, cart.ErrCacheMiss)
	})
}

func TestInMemoryCartCache_Expiry(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := NewInMemoryCartCache(WithClock(clock.Now), WithCleanupInterval(time.Hour))
	defer c.Close()

	require.NoError(t, c.Set(ctx, "user:1", sampleItems(), 30*time.Second))

	clock.Advance(29 * time.Second)
	_, err := c.Get(ctx, "user:1")
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = c.Get(ctx, "user:1")
	assert.ErrorIs(t, err, cart.ErrCacheMiss)

	assert.Equal(t, 1, c.Size())
	c.cleanup()
	assert.Equal(t, 0, c.Size())
}

func TestInMemoryCartCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCartCache()
	defer c.Close()

	require.NoError(t, c.Set(ctx, "user:1", sampleItems(), time.Minute))
	require.NoError(t, c.Set(ctx, "user:2", sampleItems(), time.Minute))
	require.NoError(t, c.Invalidate(ctx, "user:1"))

	_, err := c.Get(ctx, "user:1")
	assert.ErrorIs(t, err, cart.ErrCacheMiss)
	_, err = c.Get(ctx, "user:2")
	assert.NoError(t, err)

	assert.NoError(t, c.Invalidate(ctx, "never-set"))
}

func TestInMemoryCartCache_CleanupLoop(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCartCache(WithCleanupInterval(10 * time.Millisecond))
	defer c.Close()

	require.NoError(t, c.Set(ctx, "user:1", sampleItems(), 5*time.Millisecond))

	assert.Eventually(t, func() bool {
		return c.Size() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestInMemoryCartCache_Close(t *testing.T) {
	c := NewInMemoryCartCache()
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestInMemoryCartCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCartCache()
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Set(ctx, "user:1", sampleItems(), time.Minute)
			_, _ = c.Get(ctx, "user:1")
			_ = c.Invalidate(ctx, "user:1")
		}()
	}
	wg.Wait()
}
