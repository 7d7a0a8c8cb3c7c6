package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-bot/internal/domain"
)

// ProductRepository encapsulates read access to the product catalog
// plus the bulk-replace path used by the CSV importer. The bot itself
// never mutates products.
type ProductRepository interface {
	Search(ctx context.Context, query string, everywhere bool, limit int) ([]domain.Product, error)
	List(ctx context.Context, limit int) ([]domain.Product, error)
	Clear(ctx context.Context) error
	Upsert(ctx context.Context, p domain.Product) error
}

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository instantiates repository.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

const productColumns = `sku, name, qty, safety_stock, in_transit, lead_time_days, price, status`

// Search performs a case-insensitive substring match, exact-name hits
// first. With everywhere=false only the name column is searched; with
// everywhere=true sku and status match too.
func (r *productRepository) Search(ctx context.Context, query string, everywhere bool, limit int) ([]domain.Product, error) {
	if query == "" {
		return nil, nil
	}
	like := "%" + query + "%"

	var sql string
	if everywhere {
		sql = `
        SELECT ` + productColumns + `
        FROM products
        WHERE sku ILIKE $1 OR name ILIKE $1 OR status ILIKE $1
        ORDER BY CASE WHEN name ILIKE $1 THEN 0 ELSE 1 END, LOWER(name) ASC
        LIMIT $2`
	} else {
		sql = `
        SELECT ` + productColumns + `
        FROM products
        WHERE name ILIKE $1
        ORDER BY CASE WHEN name ILIKE $1 THEN 0 ELSE 1 END, LOWER(name) ASC
        LIMIT $2`
	}

	rows, err := r.pool.Query(ctx, sql, like, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

// List returns the catalog ordered by name.
func (r *productRepository) List(ctx context.Context, limit int) ([]domain.Product, error) {
	const sql = `
        SELECT ` + productColumns + `
        FROM products
        ORDER BY LOWER(name) ASC
        LIMIT $1`
	rows, err := r.pool.Query(ctx, sql, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

// Clear removes every product. Used by the importer before a reload.
func (r *productRepository) Clear(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM products`)
	return err
}

// Upsert inserts or replaces one product by SKU.
func (r *productRepository) Upsert(ctx context.Context, p domain.Product) error {
	const sql = `
        INSERT INTO products (sku, name, qty, safety_stock, in_transit, lead_time_days, price, status, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW())
        ON CONFLICT (sku) DO UPDATE SET
            name=EXCLUDED.name,
            qty=EXCLUDED.qty,
            safety_stock=EXCLUDED.safety_stock,
            in_transit=EXCLUDED.in_transit,
            lead_time_days=EXCLUDED.lead_time_days,
            price=EXCLUDED.price,
            status=EXCLUDED.status,
            updated_at=NOW()`
	_, err := r.pool.Exec(ctx, sql,
		p.SKU, p.Name, p.Qty, p.SafetyStock, p.InTransit, p.LeadTimeDays, p.Price, p.Status)
	return err
}

func scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.SKU,
			&p.Name,
			&p.Qty,
			&p.SafetyStock,
			&p.InTransit,
			&p.LeadTimeDays,
			&p.Price,
			&p.Status,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
