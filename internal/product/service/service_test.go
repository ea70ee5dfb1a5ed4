package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AliAbadiHub/val-backend/internal/platform/metrics"
	"github.com/AliAbadiHub/val-backend/internal/product"
	"github.com/AliAbadiHub/val-backend/internal/product/store"
	"github.com/AliAbadiHub/val-backend/internal/user"
	dErrors "github.com/AliAbadiHub/val-backend/pkg/domainerrors"
)

var (
	sharedMetrics     *metrics.Metrics
	sharedMetricsOnce sync.Once
)

func testMetrics() *metrics.Metrics {
	sharedMetricsOnce.Do(func() {
		sharedMetrics = metrics.New()
	})
	return sharedMetrics
}

// memCache is a map-backed Cache for unit tests. TTLs are ignored.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
	deletes int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (c *memCache) GetJSON(_ context.Context, key string, v any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, v)
}

func (c *memCache) SetJSON(_ context.Context, key string, v any, _ time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = raw
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.deletes++
	return nil
}

var (
	adminCaller    = user.Identity{UserID: uuid.New(), Role: user.RoleAdmin}
	verifiedCaller = user.Identity{UserID: uuid.New(), Role: user.RoleVerified}
)

func newTestService(t *testing.T) (*Service, *store.Memory, *memCache) {
	t.Helper()
	mem := store.NewMemory()
	cache := newMemCache()
	svc := New(mem, cache, time.Minute, testMetrics(), slog.New(slog.DiscardHandler))
	return svc, mem, cache
}

func createProduct(t *testing.T, svc *Service, sku string, inventory int) *product.Product {
	t.Helper()
	p, err := svc.Create(context.Background(), adminCaller, product.CreateInput{
		SKU:        sku,
		Name:       "Widget " + sku,
		PriceCents: 1999,
		Inventory:  inventory,
	})
	require.NoError(t, err)
	return p
}

func TestCreate(t *testing.T) {
	t.Run("admin creates", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		p := createProduct(t, svc, "W-1", 5)
		assert.Equal(t, "W-1", p.SKU)
		assert.Equal(t, 5, p.Inventory)
	})

	t.Run("non-admin forbidden", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.Create(context.Background(), verifiedCaller, product.CreateInput{SKU: "W-1", Name: "Widget"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("duplicate sku conflicts", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		createProduct(t, svc, "W-1", 5)
		_, err := svc.Create(context.Background(), adminCaller, product.CreateInput{SKU: "W-1", Name: "Widget"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("validation", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		for _, input := range []product.CreateInput{
			{Name: "no sku"},
			{SKU: "no-name"},
			{SKU: "W-1", Name: "Widget", PriceCents: -1},
			{SKU: "W-1", Name: "Widget", Inventory: -1},
		} {
			_, err := svc.Create(context.Background(), adminCaller, input)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest), "%+v", input)
		}
	})
}

func TestGetCacheAside(t *testing.T) {
	t.Run("miss populates, hit skips the store", func(t *testing.T) {
		svc, mem, cache := newTestService(t)
		createProduct(t, svc, "W-1", 5)

		got, err := svc.Get(context.Background(), "W-1")
		require.NoError(t, err)
		assert.Equal(t, "W-1", got.SKU)
		assert.Equal(t, 1, cache.sets, "first read fills the cache")

		// Mutate the store behind the cache's back; a hit must not see it.
		_, err = mem.AdjustInventory(context.Background(), "W-1", -1)
		require.NoError(t, err)

		got, err = svc.Get(context.Background(), "W-1")
		require.NoError(t, err)
		assert.Equal(t, 5, got.Inventory, "served from cache")
	})

	t.Run("write invalidates", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		createProduct(t, svc, "W-1", 5)

		_, err := svc.Get(context.Background(), "W-1")
		require.NoError(t, err)

		_, err = svc.AdjustInventory(context.Background(), adminCaller, "W-1", -2)
		require.NoError(t, err)

		got, err := svc.Get(context.Background(), "W-1")
		require.NoError(t, err)
		assert.Equal(t, 3, got.Inventory)
	})

	t.Run("unknown sku", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.Get(context.Background(), "nope")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
		assert.Equal(t, "Product not found", dErrors.MessageOf(err))
	})

	t.Run("nil cache reads straight through", func(t *testing.T) {
		mem := store.NewMemory()
		svc := New(mem, nil, time.Minute, testMetrics(), slog.New(slog.DiscardHandler))
		createProduct(t, svc, "W-1", 5)

		got, err := svc.Get(context.Background(), "W-1")
		require.NoError(t, err)
		assert.Equal(t, "W-1", got.SKU)
	})
}

func TestAdjustInventory(t *testing.T) {
	t.Run("applies delta", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		createProduct(t, svc, "W-1", 5)

		p, err := svc.AdjustInventory(context.Background(), adminCaller, "W-1", -3)
		require.NoError(t, err)
		assert.Equal(t, 2, p.Inventory)

		p, err = svc.AdjustInventory(context.Background(), adminCaller, "W-1", 10)
		require.NoError(t, err)
		assert.Equal(t, 12, p.Inventory)
	})

	t.Run("below zero conflicts", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		createProduct(t, svc, "W-1", 2)

		_, err := svc.AdjustInventory(context.Background(), adminCaller, "W-1", -3)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

		// Rejected adjustment leaves stock untouched.
		p, err := svc.Get(context.Background(), "W-1")
		require.NoError(t, err)
		assert.Equal(t, 2, p.Inventory)
	})

	t.Run("non-admin forbidden", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		createProduct(t, svc, "W-1", 2)

		_, err := svc.AdjustInventory(context.Background(), verifiedCaller, "W-1", -1)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("unknown sku", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.AdjustInventory(context.Background(), adminCaller, "nope", 1)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestList(t *testing.T) {
	svc, _, _ := newTestService(t)

	products, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, products, "empty catalog is an empty slice, not null")
	assert.Empty(t, products)

	createProduct(t, svc, "W-1", 1)
	createProduct(t, svc, "W-2", 2)

	products, err = svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "W-1", products[0].SKU)
}
