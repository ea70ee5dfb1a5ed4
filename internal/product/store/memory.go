package store

import (
	"context"
	"sync"
	"time"

	"github.com/AliAbadiHub/val-backend/internal/product"
)

// Memory is the in-memory catalog store used by unit tests and local
// development. Listings keep insertion order.
type Memory struct {
	mu       sync.RWMutex
	products map[string]product.Product // keyed by SKU
	order    []string
}

func NewMemory() *Memory {
	return &Memory{products: make(map[string]product.Product)}
}

func (m *Memory) Create(_ context.Context, p *product.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.SKU]; ok {
		return ErrDuplicateSKU
	}
	m.products[p.SKU] = *p
	m.order = append(m.order, p.SKU)
	return nil
}

func (m *Memory) GetBySKU(_ context.Context, sku string) (*product.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.products[sku]; ok {
		out := p
		return &out, nil
	}
	return nil, ErrNotFound
}

func (m *Memory) List(_ context.Context) ([]product.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]product.Product, 0, len(m.order))
	for _, sku := range m.order {
		out = append(out, m.products[sku])
	}
	return out, nil
}

func (m *Memory) AdjustInventory(_ context.Context, sku string, delta int) (*product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[sku]
	if !ok {
		return nil, ErrNotFound
	}
	next := p.Inventory + delta
	if next < 0 {
		return nil, ErrInsufficientInventory
	}
	p.Inventory = next
	p.UpdatedAt = time.Now()
	m.products[sku] = p
	out := p
	return &out, nil
}
