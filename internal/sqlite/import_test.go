package sqlite

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/stockroom/pkg/types"
)

func TestImport_MergeIsolatesBadRecords(t *testing.T) {
	b := newTestBackend(t)

	if _, err := b.AddProduct(types.Product{Reference: "SKU-1", Name: "Existing"}); err != nil {
		t.Fatalf("AddProduct failed: %v", err)
	}

	ds := &types.Dataset{
		Products: []types.Product{
			{Reference: "SKU-2", Name: "Good"},
			{Reference: "SKU-1", Name: "Collides"},
			{Reference: "", Name: "Invalid"},
			{Reference: "SKU-3", Name: "Also good"},
		},
		Customers: []types.Customer{
			{Name: "Alice"},
			{Name: ""},
		},
	}
	report, err := b.ImportDataset(ds, types.ImportMerge)
	if err != nil {
		t.Fatalf("ImportDataset failed: %v", err)
	}

	if report.Products != 2 {
		t.Errorf("expected 2 merged products, got %d", report.Products)
	}
	if report.Customers != 1 {
		t.Errorf("expected 1 merged customer, got %d", report.Customers)
	}
	if len(report.Failures) != 3 {
		t.Fatalf("expected 3 failures, got %d: %v", len(report.Failures), report.Failures)
	}

	// Records after a failed one must still land: the savepoint rolls
	// back only the bad record.
	products, err := b.ListProducts()
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(products) != 3 {
		t.Errorf("expected 3 products after merge, got %d", len(products))
	}
	refs := map[string]bool{}
	for _, p := range products {
		refs[p.Reference] = true
	}
	if !refs["SKU-3"] {
		t.Error("record after the failed one was not imported")
	}
}

func TestImport_MergePreservesExistingIdentity(t *testing.T) {
	b := newTestBackend(t)

	ds := &types.Dataset{
		Products: []types.Product{{
			ID:        "fixed-id",
			Reference: "SKU-1",
			Name:      "Widget",
			CreatedAt: "2023-01-01T00:00:00Z",
			UpdatedAt: "2023-06-01T00:00:00Z",
		}},
	}
	if _, err := b.ImportDataset(ds, types.ImportMerge); err != nil {
		t.Fatalf("ImportDataset failed: %v", err)
	}

	got, err := b.GetProduct("fixed-id")
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}
	if got == nil {
		t.Fatal("imported product not readable by its original id")
	}
	if got.CreatedAt != "2023-01-01T00:00:00Z" || got.UpdatedAt != "2023-06-01T00:00:00Z" {
		t.Errorf("timestamps not preserved: %+v", got)
	}
}

func TestImport_ReplaceClearsExistingData(t *testing.T) {
	b := newTestBackend(t)

	if _, err := b.AddProduct(types.Product{Reference: "OLD", Name: "Old"}); err != nil {
		t.Fatalf("AddProduct failed: %v", err)
	}
	if _, err := b.AddCategory(types.Category{Name: "Old category"}); err != nil {
		t.Fatalf("AddCategory failed: %v", err)
	}

	ds := &types.Dataset{
		Products: []types.Product{{
			Reference:     "SKU-1",
			Name:          "Widget",
			PurchasePrice: decimal.NewFromFloat(5.50),
			SellingPrice:  decimal.NewFromFloat(12.00),
		}},
		Categories: []types.Category{{Name: "Phones"}},
	}
	report, err := b.ImportDataset(ds, types.ImportReplace)
	if err != nil {
		t.Fatalf("ImportDataset failed: %v", err)
	}
	if report.Total() != 2 {
		t.Errorf("expected 2 imported records, got %d", report.Total())
	}

	products, err := b.ListProducts()
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(products) != 1 || products[0].Reference != "SKU-1" {
		t.Errorf("replace did not clear old data: %+v", products)
	}
	// The purchase price survives import unchanged.
	if !products[0].PurchasePrice.Equal(decimal.NewFromFloat(5.50)) {
		t.Errorf("purchase price lost in import: %s", products[0].PurchasePrice)
	}

	categories, err := b.ListCategories()
	if err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}
	if len(categories) != 1 || categories[0].Name != "Phones" {
		t.Errorf("replace did not clear old categories: %+v", categories)
	}
}

func TestImport_ReplaceFailsAtomically(t *testing.T) {
	b := newTestBackend(t)

	if _, err := b.AddProduct(types.Product{Reference: "KEEP", Name: "Keep me"}); err != nil {
		t.Fatalf("AddProduct failed: %v", err)
	}

	// Two products with the same reference cannot both insert; the whole
	// replace must roll back and leave the original data in place.
	ds := &types.Dataset{
		Products: []types.Product{
			{Reference: "SKU-1", Name: "A"},
			{Reference: "SKU-1", Name: "B"},
		},
	}
	if _, err := b.ImportDataset(ds, types.ImportReplace); err == nil {
		t.Fatal("expected replace to fail on duplicate reference")
	}

	products, err := b.ListProducts()
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(products) != 1 || products[0].Reference != "KEEP" {
		t.Errorf("failed replace must leave existing data intact: %+v", products)
	}
}
