package catalog

import (
	"context"
	"errors"
	"testing"

	"resale-price-engine/internal/domain"
	"resale-price-engine/internal/storage/memory"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()

	products := memory.NewProductStore()
	err := products.Seed(
		&domain.Product{ProductID: "prod-1", SKU: "DD1391-100", EAN: "4064536318152", Name: "Dunk Low Panda", Brand: "Nike"},
		&domain.Product{ProductID: "prod-2", SKU: "GZ1454", Name: "Yeezy Slide", Brand: "Adidas"},
		&domain.Product{ProductID: "prod-3", Name: "Yeezy Slide", Brand: "Fake Brand"},
	)
	if err != nil {
		t.Fatalf("seed products: %v", err)
	}

	return NewResolver(products)
}

func TestResolverEANWins(t *testing.T) {
	r := newTestResolver(t)
	ctx := context.Background()

	// EAN points at prod-1 even though SKU and name say prod-2.
	p, err := r.Resolve(ctx, domain.ProductRef{
		EAN:  "4064536318152",
		SKU:  "GZ1454",
		Name: "Yeezy Slide",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.ProductID != "prod-1" {
		t.Errorf("ProductID = %q, want prod-1", p.ProductID)
	}
}

func TestResolverFallsBackToSKU(t *testing.T) {
	r := newTestResolver(t)
	ctx := context.Background()

	p, err := r.Resolve(ctx, domain.ProductRef{
		EAN: "0000000000000", // unknown EAN
		SKU: "GZ1454",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.ProductID != "prod-2" {
		t.Errorf("ProductID = %q, want prod-2", p.ProductID)
	}
}

func TestResolverFallsBackToNameAndBrand(t *testing.T) {
	r := newTestResolver(t)
	ctx := context.Background()

	p, err := r.Resolve(ctx, domain.ProductRef{
		Name:  "  yeezy   SLIDE ",
		Brand: "adidas",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.ProductID != "prod-2" {
		t.Errorf("ProductID = %q, want prod-2", p.ProductID)
	}
}

func TestResolverNameWithoutBrand(t *testing.T) {
	r := newTestResolver(t)
	ctx := context.Background()

	// Two products share the name; without a brand the first by product_id wins.
	p, err := r.Resolve(ctx, domain.ProductRef{Name: "Yeezy Slide"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.ProductID != "prod-2" {
		t.Errorf("ProductID = %q, want prod-2", p.ProductID)
	}
}

func TestResolverUnresolved(t *testing.T) {
	r := newTestResolver(t)
	ctx := context.Background()

	_, err := r.Resolve(ctx, domain.ProductRef{Name: "Unknown Shoe", Brand: "Nobody"})
	if !errors.Is(err, ErrUnresolved) {
		t.Errorf("err = %v, want ErrUnresolved", err)
	}

	_, err = r.Resolve(ctx, domain.ProductRef{})
	if !errors.Is(err, ErrUnresolved) {
		t.Errorf("empty ref err = %v, want ErrUnresolved", err)
	}
}
