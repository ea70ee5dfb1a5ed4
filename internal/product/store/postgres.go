package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AliAbadiHub/val-backend/internal/product"
)

// Postgres persists the catalog in PostgreSQL. Inventory adjustments are a
// single conditional UPDATE so concurrent deltas never drive stock negative.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const productColumns = "id, sku, name, description, price_cents, inventory, created_at, updated_at"

func (s *Postgres) Create(ctx context.Context, p *product.Product) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO products (id, sku, name, description, price_cents, inventory, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.SKU, p.Name, p.Description, p.PriceCents, p.Inventory, p.CreatedAt, p.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateSKU
	}
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (s *Postgres) GetBySKU(ctx context.Context, sku string) (*product.Product, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE sku = $1`, sku)
	return scanProduct(row)
}

func (s *Postgres) List(ctx context.Context) ([]product.Product, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *Postgres) AdjustInventory(ctx context.Context, sku string, delta int) (*product.Product, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE products
		SET inventory = inventory + $2, updated_at = now()
		WHERE sku = $1 AND inventory + $2 >= 0
		RETURNING `+productColumns,
		sku, delta)

	p, err := scanProduct(row)
	if errors.Is(err, ErrNotFound) {
		// The guard clause and a missing SKU both return zero rows; one
		// extra read tells them apart.
		if _, lookupErr := s.GetBySKU(ctx, sku); lookupErr == nil {
			return nil, ErrInsufficientInventory
		}
		return nil, ErrNotFound
	}
	return p, err
}

func scanProduct(row pgx.Row) (*product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.PriceCents,
		&p.Inventory, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
