package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"resale-price-engine/internal/domain"
	"resale-price-engine/internal/storage"
)

// ProductStore implements storage.ProductStore using PostgreSQL.
// The catalog is owned externally; this store only reads it, plus a Seed
// helper for bootstrapping test and demo data.
type ProductStore struct {
	pool *Pool
}

// NewProductStore creates a new ProductStore.
func NewProductStore(pool *Pool) *ProductStore {
	return &ProductStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ProductStore = (*ProductStore)(nil)

// Seed loads catalog products. Returns ErrDuplicateKey on a repeated product_id.
func (s *ProductStore) Seed(ctx context.Context, products ...*domain.Product) error {
	for _, p := range products {
		if p == nil || p.ProductID == "" {
			return storage.ErrInvalidInput
		}
		_, err := s.pool.Exec(ctx, `
			INSERT INTO products (product_id, sku, ean, name, brand)
			VALUES ($1, $2, $3, $4, $5)
		`, p.ProductID, p.SKU, p.EAN, p.Name, p.Brand)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("seed product: %w", err)
		}
	}
	return nil
}

// GetByID retrieves a product. Returns ErrNotFound if not exists.
func (s *ProductStore) GetByID(ctx context.Context, productID string) (*domain.Product, error) {
	return s.getOne(ctx, `SELECT product_id, sku, ean, name, brand FROM products WHERE product_id = $1`, productID)
}

// GetByEAN retrieves a product by EAN. Returns ErrNotFound if not exists.
func (s *ProductStore) GetByEAN(ctx context.Context, ean string) (*domain.Product, error) {
	if ean == "" {
		return nil, storage.ErrNotFound
	}
	return s.getOne(ctx, `SELECT product_id, sku, ean, name, brand FROM products WHERE ean = $1`, ean)
}

// GetBySKU retrieves a product by SKU. Returns ErrNotFound if not exists.
func (s *ProductStore) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	if sku == "" {
		return nil, storage.ErrNotFound
	}
	return s.getOne(ctx, `SELECT product_id, sku, ean, name, brand FROM products WHERE sku = $1`, sku)
}

// ListAll retrieves all products ordered by product_id ASC.
func (s *ProductStore) ListAll(ctx context.Context) ([]*domain.Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT product_id, sku, ean, name, brand
		FROM products
		ORDER BY product_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

func (s *ProductStore) getOne(ctx context.Context, query, arg string) (*domain.Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(&p.ProductID, &p.SKU, &p.EAN, &p.Name, &p.Brand); err != nil {
		return nil, err
	}
	return &p, nil
}
