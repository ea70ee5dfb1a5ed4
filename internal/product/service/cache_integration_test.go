//go:build integration

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AliAbadiHub/val-backend/internal/platform/redis"
	"github.com/AliAbadiHub/val-backend/internal/product"
	"github.com/AliAbadiHub/val-backend/pkg/testutil/containers"
)

func newRedisCache(t *testing.T) *RedisCache {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	client, err := redis.New(ctx, containers.RedisURL(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisCache(client)
}

func TestRedisCacheRoundTrip(t *testing.T) {
	cache := newRedisCache(t)
	ctx := context.Background()

	stored := product.Product{SKU: "W-1", Name: "Widget", Inventory: 3}
	require.NoError(t, cache.SetJSON(ctx, "product:W-1", stored, time.Minute))

	var got product.Product
	found, err := cache.GetJSON(ctx, "product:W-1", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, stored, got)

	t.Run("missing key is not an error", func(t *testing.T) {
		found, err := cache.GetJSON(ctx, "product:nope", &got)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("delete removes", func(t *testing.T) {
		require.NoError(t, cache.Delete(ctx, "product:W-1"))
		found, err := cache.GetJSON(ctx, "product:W-1", &got)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("ttl expires entries", func(t *testing.T) {
		require.NoError(t, cache.SetJSON(ctx, "product:short", stored, 50*time.Millisecond))
		assert.Eventually(t, func() bool {
			found, err := cache.GetJSON(ctx, "product:short", &got)
			return err == nil && !found
		}, 2*time.Second, 50*time.Millisecond)
	})
}
