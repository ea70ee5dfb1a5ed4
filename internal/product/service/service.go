// Package service manages the product catalog: admin-gated writes,
// cache-aside reads, and atomic inventory adjustments.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/AliAbadiHub/val-backend/internal/platform/metrics"
	"github.com/AliAbadiHub/val-backend/internal/product"
	"github.com/AliAbadiHub/val-backend/internal/product/store"
	"github.com/AliAbadiHub/val-backend/internal/user"
	dErrors "github.com/AliAbadiHub/val-backend/pkg/domainerrors"
	"github.com/AliAbadiHub/val-backend/pkg/requestcontext"
)

const cacheKeyPrefix = "product:"

type Service struct {
	store    store.Store
	cache    Cache // nil when Redis is not configured
	cacheTTL time.Duration
	metrics  *metrics.Metrics
	logger   *slog.Logger
	tracer   trace.Tracer
}

func New(st store.Store, cache Cache, cacheTTL time.Duration, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:    st,
		cache:    cache,
		cacheTTL: cacheTTL,
		metrics:  m,
		logger:   logger,
		tracer:   otel.Tracer("val-backend/product"),
	}
}

// Create adds a product. Admin only.
func (s *Service) Create(ctx context.Context, caller user.Identity, input product.CreateInput) (*product.Product, error) {
	ctx, span := s.tracer.Start(ctx, "product.Create")
	defer span.End()

	if caller.Role != user.RoleAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "Insufficient permissions.")
	}
	if input.SKU == "" || input.Name == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "sku and name are required")
	}
	if input.PriceCents < 0 || input.Inventory < 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "price and inventory must not be negative")
	}

	now := requestcontext.Now(ctx)
	p := &product.Product{
		ID:          uuid.New(),
		SKU:         input.SKU,
		Name:        input.Name,
		Description: input.Description,
		PriceCents:  input.PriceCents,
		Inventory:   input.Inventory,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Create(ctx, p); err != nil {
		if errors.Is(err, store.ErrDuplicateSKU) {
			return nil, dErrors.New(dErrors.CodeConflict, "product already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create product")
	}

	s.dropCached(ctx, p.SKU)
	return p, nil
}

// Get reads one product, consulting the cache first. Cache failures degrade
// to a store read rather than failing the request.
func (s *Service) Get(ctx context.Context, sku string) (*product.Product, error) {
	ctx, span := s.tracer.Start(ctx, "product.Get")
	defer span.End()

	if s.cache != nil {
		var cached product.Product
		found, err := s.cache.GetJSON(ctx, cacheKeyPrefix+sku, &cached)
		if err != nil {
			s.logger.WarnContext(ctx, "product cache read failed", "sku", sku, "error", err)
		}
		if found {
			s.metrics.ProductCacheHits.Inc()
			return &cached, nil
		}
		s.metrics.ProductCacheMiss.Inc()
	}

	p, err := s.store.GetBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Product not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get product")
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKeyPrefix+sku, p, s.cacheTTL); err != nil {
			s.logger.WarnContext(ctx, "product cache write failed", "sku", sku, "error", err)
		}
	}
	return p, nil
}

// List reads the full catalog straight from the store.
func (s *Service) List(ctx context.Context) ([]product.Product, error) {
	ctx, span := s.tracer.Start(ctx, "product.List")
	defer span.End()

	products, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list products")
	}
	if products == nil {
		products = []product.Product{}
	}
	return products, nil
}

// AdjustInventory applies a signed delta to stock. Admin only; an adjustment
// that would go below zero is rejected with a conflict.
func (s *Service) AdjustInventory(ctx context.Context, caller user.Identity, sku string, delta int) (*product.Product, error) {
	ctx, span := s.tracer.Start(ctx, "product.AdjustInventory")
	defer span.End()

	if caller.Role != user.RoleAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "Insufficient permissions.")
	}

	p, err := s.store.AdjustInventory(ctx, sku, delta)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "Product not found")
		case errors.Is(err, store.ErrInsufficientInventory):
			return nil, dErrors.New(dErrors.CodeConflict, "insufficient inventory")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to adjust inventory")
		}
	}

	s.dropCached(ctx, sku)
	return p, nil
}

func (s *Service) dropCached(ctx context.Context, sku string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKeyPrefix+sku); err != nil {
		s.logger.WarnContext(ctx, "product cache invalidation failed", "sku", sku, "error", err)
	}
}
