package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"resale-price-engine/internal/domain"
	"resale-price-engine/internal/storage"
)

// InventoryStore implements storage.InventoryStore using PostgreSQL.
type InventoryStore struct {
	pool *Pool
}

// NewInventoryStore creates a new InventoryStore.
func NewInventoryStore(pool *Pool) *InventoryStore {
	return &InventoryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.InventoryStore = (*InventoryStore)(nil)

const inventoryColumns = `
	item_id, product_id, purchase_price_cents, purchase_date,
	sale_date, sale_price_cents, quantity, reserved_quantity, status,
	shelf_life_days, roi_percentage, profit_per_shelf_day
`

// Put inserts or replaces an item.
func (s *InventoryStore) Put(ctx context.Context, item *domain.InventoryItem) error {
	if item == nil || item.ItemID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO inventory_items (`+inventoryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (item_id) DO UPDATE SET
			product_id = EXCLUDED.product_id,
			purchase_price_cents = EXCLUDED.purchase_price_cents,
			purchase_date = EXCLUDED.purchase_date,
			sale_date = EXCLUDED.sale_date,
			sale_price_cents = EXCLUDED.sale_price_cents,
			quantity = EXCLUDED.quantity,
			reserved_quantity = EXCLUDED.reserved_quantity,
			status = EXCLUDED.status,
			shelf_life_days = EXCLUDED.shelf_life_days,
			roi_percentage = EXCLUDED.roi_percentage,
			profit_per_shelf_day = EXCLUDED.profit_per_shelf_day
	`,
		item.ItemID, item.ProductID, item.PurchasePriceCents, item.PurchaseDate,
		item.SaleDate, item.SalePriceCents, item.Quantity, item.ReservedQuantity, item.Status,
		item.ShelfLifeDays, item.ROIPercentage, item.ProfitPerShelfDay,
	)
	if err != nil {
		return fmt.Errorf("put inventory item: %w", err)
	}
	return nil
}

// GetByID retrieves an item. Returns ErrNotFound if not exists.
func (s *InventoryStore) GetByID(ctx context.Context, itemID string) (*domain.InventoryItem, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+inventoryColumns+`
		FROM inventory_items
		WHERE item_id = $1
	`, itemID)

	item, err := scanInventoryItem(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get inventory item by id: %w", err)
	}
	return item, nil
}

// ListAll retrieves all items ordered by purchase date ASC.
func (s *InventoryStore) ListAll(ctx context.Context) ([]*domain.InventoryItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+inventoryColumns+`
		FROM inventory_items
		ORDER BY purchase_date ASC, item_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list inventory items: %w", err)
	}
	defer rows.Close()

	var items []*domain.InventoryItem
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory rows: %w", err)
	}

	return items, nil
}

// scanInventoryItem scans a single row into an InventoryItem.
func scanInventoryItem(row pgx.Row) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := row.Scan(
		&item.ItemID, &item.ProductID, &item.PurchasePriceCents, &item.PurchaseDate,
		&item.SaleDate, &item.SalePriceCents, &item.Quantity, &item.ReservedQuantity, &item.Status,
		&item.ShelfLifeDays, &item.ROIPercentage, &item.ProfitPerShelfDay,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
