// Package store persists catalog records. Two implementations: an in-memory
// store for tests and a pgx-backed Postgres store for production.
package store

import (
	"context"
	"errors"

	"github.com/AliAbadiHub/val-backend/internal/product"
)

var (
	ErrNotFound     = errors.New("product not found")
	ErrDuplicateSKU = errors.New("sku already exists")
	// ErrInsufficientInventory is returned when an adjustment would take
	// inventory below zero. The write is rejected atomically.
	ErrInsufficientInventory = errors.New("insufficient inventory")
)

type Store interface {
	Create(ctx context.Context, p *product.Product) error
	GetBySKU(ctx context.Context, sku string) (*product.Product, error)
	List(ctx context.Context) ([]product.Product, error)
	// AdjustInventory applies a signed delta and returns the updated record.
	AdjustInventory(ctx context.Context, sku string, delta int) (*product.Product, error)
}
