package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"resale-price-engine/internal/domain"
	"resale-price-engine/internal/storage"
)

// PriceRecordStore implements storage.PriceRecordStore using PostgreSQL.
type PriceRecordStore struct {
	pool *Pool
}

// NewPriceRecordStore creates a new PriceRecordStore.
func NewPriceRecordStore(pool *Pool) *PriceRecordStore {
	return &PriceRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PriceRecordStore = (*PriceRecordStore)(nil)

const priceRecordColumns = `
	record_id, product_id, source_type, source_product_id,
	size_kind, size_key, size_value, size_raw, size_region,
	price_type, price_cents, currency, in_stock, stock_quantity,
	source_url, supplier_ref, last_observed_at, created_at, updated_at
`

// Upsert conditionally writes a record. The row lock taken by
// SELECT ... FOR UPDATE serializes concurrent upserts on the same natural key;
// the last_observed_at comparison decides which observation wins, so arrival
// order does not matter.
func (s *PriceRecordStore) Upsert(ctx context.Context, rec *domain.CanonicalPriceRecord) (storage.UpsertOutcome, error) {
	if rec == nil || rec.RecordID == "" || rec.ProductID == "" {
		return "", storage.ErrInvalidInput
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", fmt.Errorf("begin upsert tx: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UnixMilli()

	row := tx.QueryRow(ctx, `
		SELECT price_cents, in_stock, stock_quantity, last_observed_at
		FROM price_records
		WHERE record_id = $1
		FOR UPDATE
	`, rec.RecordID)

	var (
		curPrice    int64
		curInStock  bool
		curQuantity *int64
		curObserved int64
	)
	err = row.Scan(&curPrice, &curInStock, &curQuantity, &curObserved)

	switch {
	case isNotFoundError(err):
		_, err = tx.Exec(ctx, `
			INSERT INTO price_records (`+priceRecordColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		`,
			rec.RecordID, rec.ProductID, string(rec.SourceType), rec.SourceProductID,
			string(rec.Size.Kind), rec.Size.Key(), sizeValueParam(rec.Size), rec.Size.Raw, rec.Size.Region,
			string(rec.PriceType), rec.PriceCents, rec.Currency, rec.InStock, rec.StockQuantity,
			rec.SourceURL, rec.SupplierRef, rec.LastObservedAt, now, now,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				// Lost a race with a concurrent insert; retry as an update.
				tx.Rollback(ctx)
				return s.Upsert(ctx, rec)
			}
			return "", fmt.Errorf("insert price record: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return "", fmt.Errorf("commit upsert: %w", err)
		}
		return storage.UpsertInserted, nil

	case err != nil:
		return "", fmt.Errorf("lock price record: %w", err)
	}

	if rec.LastObservedAt <= curObserved {
		return storage.UpsertStale, nil
	}

	unchanged := curPrice == rec.PriceCents &&
		curInStock == rec.InStock &&
		equalQuantity(curQuantity, rec.StockQuantity)

	_, err = tx.Exec(ctx, `
		UPDATE price_records
		SET price_type = $2, price_cents = $3, currency = $4, in_stock = $5,
		    stock_quantity = $6, source_url = $7, supplier_ref = $8,
		    last_observed_at = $9, updated_at = $10
		WHERE record_id = $1
	`,
		rec.RecordID, string(rec.PriceType), rec.PriceCents, rec.Currency, rec.InStock,
		rec.StockQuantity, rec.SourceURL, rec.SupplierRef, rec.LastObservedAt, now,
	)
	if err != nil {
		return "", fmt.Errorf("update price record: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit upsert: %w", err)
	}

	if unchanged {
		return storage.UpsertUnchanged, nil
	}
	return storage.UpsertUpdated, nil
}

// GetByRecordID retrieves a record by its ID. Returns ErrNotFound if not exists.
func (s *PriceRecordStore) GetByRecordID(ctx context.Context, recordID string) (*domain.CanonicalPriceRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+priceRecordColumns+`
		FROM price_records
		WHERE record_id = $1
	`, recordID)

	rec, err := scanPriceRecord(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get price record by id: %w", err)
	}
	return rec, nil
}

// GetByProduct retrieves all records for a product, any stock state.
func (s *PriceRecordStore) GetByProduct(ctx context.Context, productID string) ([]*domain.CanonicalPriceRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+priceRecordColumns+`
		FROM price_records
		WHERE product_id = $1
		ORDER BY price_cents ASC, record_id ASC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("get price records by product: %w", err)
	}
	defer rows.Close()

	return scanPriceRecords(rows)
}

// ListActive retrieves in-stock records for a product and price type.
func (s *PriceRecordStore) ListActive(ctx context.Context, productID string, priceType domain.PriceType) ([]*domain.CanonicalPriceRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+priceRecordColumns+`
		FROM price_records
		WHERE product_id = $1 AND price_type = $2 AND in_stock = true
		ORDER BY price_cents ASC, record_id ASC
	`, productID, string(priceType))
	if err != nil {
		return nil, fmt.Errorf("list active price records: %w", err)
	}
	defer rows.Close()

	return scanPriceRecords(rows)
}

// sizeValueParam maps the tagged size value onto a nullable column.
func sizeValueParam(size domain.Size) *float64 {
	if size.Kind != domain.SizeMatched {
		return nil
	}
	v := size.Value
	return &v
}

func equalQuantity(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// scanPriceRecord scans a single row into a CanonicalPriceRecord.
func scanPriceRecord(row pgx.Row) (*domain.CanonicalPriceRecord, error) {
	var (
		rec       domain.CanonicalPriceRecord
		sourceStr string
		sizeKind  string
		sizeKey   string
		sizeValue *float64
		priceType string
	)

	err := row.Scan(
		&rec.RecordID, &rec.ProductID, &sourceStr, &rec.SourceProductID,
		&sizeKind, &sizeKey, &sizeValue, &rec.Size.Raw, &rec.Size.Region,
		&priceType, &rec.PriceCents, &rec.Currency, &rec.InStock, &rec.StockQuantity,
		&rec.SourceURL, &rec.SupplierRef, &rec.LastObservedAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.SourceType = domain.SourceType(sourceStr)
	rec.PriceType = domain.PriceType(priceType)
	rec.Size.Kind = domain.SizeKind(sizeKind)
	if sizeValue != nil {
		rec.Size.Value = *sizeValue
	}
	return &rec, nil
}

// scanPriceRecords scans multiple rows into a slice of CanonicalPriceRecord.
func scanPriceRecords(rows pgx.Rows) ([]*domain.CanonicalPriceRecord, error) {
	var records []*domain.CanonicalPriceRecord

	for rows.Next() {
		rec, err := scanPriceRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan price record row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price record rows: %w", err)
	}

	return records, nil
}
