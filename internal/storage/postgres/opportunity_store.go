package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"resale-price-engine/internal/domain"
	"resale-price-engine/internal/storage"
)

// OpportunityStore implements storage.OpportunityStore using PostgreSQL.
type OpportunityStore struct {
	pool *Pool
}

// NewOpportunityStore creates a new OpportunityStore.
func NewOpportunityStore(pool *Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

// Compile-time interface check.
var _ storage.OpportunityStore = (*OpportunityStore)(nil)

const opportunityColumns = `
	opportunity_id, product_id, size_key,
	size_kind, size_value, size_raw, size_region,
	retail_record_id, resale_record_id,
	retail_price_cents, resale_price_cents, currency,
	profit_cents, margin_percent, score, computed_at
`

// ReplaceForKey atomically swaps the full opportunity set for a
// (product_id, size key) inside one transaction.
func (s *OpportunityStore) ReplaceForKey(ctx context.Context, productID, sizeKey string, opps []*domain.Opportunity) error {
	if productID == "" {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin replace tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		DELETE FROM opportunities WHERE product_id = $1 AND size_key = $2
	`, productID, sizeKey)
	if err != nil {
		return fmt.Errorf("delete stale opportunities: %w", err)
	}

	for _, o := range opps {
		_, err = tx.Exec(ctx, `
			INSERT INTO opportunities (`+opportunityColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		`,
			o.OpportunityID, o.ProductID, o.SizeKey,
			string(o.Size.Kind), sizeValueParam(o.Size), o.Size.Raw, o.Size.Region,
			o.RetailRecordID, o.ResaleRecordID,
			o.RetailPriceCents, o.ResalePriceCents, o.Currency,
			o.ProfitCents, o.MarginPercent, o.Score, o.ComputedAt,
		)
		if err != nil {
			return fmt.Errorf("insert opportunity: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

// GetByProduct retrieves all opportunities for a product.
func (s *OpportunityStore) GetByProduct(ctx context.Context, productID string) ([]*domain.Opportunity, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+opportunityColumns+`
		FROM opportunities
		WHERE product_id = $1
		ORDER BY score DESC, profit_cents DESC, retail_record_id ASC, resale_record_id ASC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("get opportunities by product: %w", err)
	}
	defer rows.Close()

	return scanOpportunities(rows)
}

// ListTop retrieves up to limit opportunities ordered by score DESC, profit DESC.
func (s *OpportunityStore) ListTop(ctx context.Context, limit int) ([]*domain.Opportunity, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+opportunityColumns+`
		FROM opportunities
		ORDER BY score DESC, profit_cents DESC, retail_record_id ASC, resale_record_id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list top opportunities: %w", err)
	}
	defer rows.Close()

	return scanOpportunities(rows)
}

// scanOpportunities scans multiple rows into a slice of Opportunity.
func scanOpportunities(rows pgx.Rows) ([]*domain.Opportunity, error) {
	var opps []*domain.Opportunity

	for rows.Next() {
		var (
			o         domain.Opportunity
			sizeKind  string
			sizeValue *float64
		)
		err := rows.Scan(
			&o.OpportunityID, &o.ProductID, &o.SizeKey,
			&sizeKind, &sizeValue, &o.Size.Raw, &o.Size.Region,
			&o.RetailRecordID, &o.ResaleRecordID,
			&o.RetailPriceCents, &o.ResalePriceCents, &o.Currency,
			&o.ProfitCents, &o.MarginPercent, &o.Score, &o.ComputedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan opportunity row: %w", err)
		}
		o.Size.Kind = domain.SizeKind(sizeKind)
		if sizeValue != nil {
			o.Size.Value = *sizeValue
		}
		opps = append(opps, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate opportunity rows: %w", err)
	}

	return opps, nil
}
