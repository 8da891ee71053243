package catalog

import (
	"context"
	"errors"
	"strings"

	"resale-price-engine/internal/domain"
	"resale-price-engine/internal/storage"
)

// ErrUnresolved means no catalog product matched the external reference.
var ErrUnresolved = errors.New("catalog: product reference unresolved")

// Resolver maps external product references to catalog product IDs.
// Lookup order: EAN exact, SKU exact, then normalized name+brand. Quotes
// whose reference stays unresolved are rejected, never auto-created.
type Resolver struct {
	products storage.ProductStore
}

// NewResolver creates a Resolver backed by the given catalog store.
func NewResolver(products storage.ProductStore) *Resolver {
	return &Resolver{products: products}
}

// Resolve finds the catalog product for an external reference.
// Returns ErrUnresolved when nothing matches.
func (r *Resolver) Resolve(ctx context.Context, ref domain.ProductRef) (*domain.Product, error) {
	if ref.EAN != "" {
		p, err := r.products.GetByEAN(ctx, ref.EAN)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}

	if ref.SKU != "" {
		p, err := r.products.GetBySKU(ctx, ref.SKU)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}

	if ref.Name != "" {
		p, err := r.resolveByName(ctx, ref)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}

	return nil, ErrUnresolved
}

// resolveByName scans the catalog for a normalized name+brand match.
// The catalog is small enough that a full scan is fine here.
func (r *Resolver) resolveByName(ctx context.Context, ref domain.ProductRef) (*domain.Product, error) {
	products, err := r.products.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	wantName := normalize(ref.Name)
	wantBrand := normalize(ref.Brand)

	for _, p := range products {
		if normalize(p.Name) != wantName {
			continue
		}
		// A quote without a brand matches on name alone.
		if wantBrand != "" && normalize(p.Brand) != wantBrand {
			continue
		}
		return p, nil
	}

	return nil, storage.ErrNotFound
}

// normalize lowercases and collapses runs of whitespace to single spaces.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
