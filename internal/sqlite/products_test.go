package sqlite

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/stockroom/pkg/types"
)

func TestProducts_CRUD(t *testing.T) {
	b := newTestBackend(t)

	created, err := b.AddProduct(types.Product{
		Reference:     "SKU-1",
		Name:          "Widget",
		Quantity:      10,
		PurchasePrice: decimal.NewFromFloat(5.25),
		SellingPrice:  decimal.NewFromFloat(19.99),
	})
	if err != nil {
		t.Fatalf("AddProduct failed: %v", err)
	}
	if created.ID == "" || created.CreatedAt == "" {
		t.Error("created product missing generated fields")
	}

	got, err := b.GetProduct(created.ID)
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}
	if got == nil {
		t.Fatal("product not found after insert")
	}
	// Prices must survive the TEXT column round trip exactly.
	if !got.PurchasePrice.Equal(decimal.NewFromFloat(5.25)) {
		t.Errorf("purchase price changed: %s", got.PurchasePrice)
	}
	if !got.SellingPrice.Equal(decimal.NewFromFloat(19.99)) {
		t.Errorf("selling price changed: %s", got.SellingPrice)
	}
	if got.Instances == nil {
		t.Error("instances must be non-nil after read")
	}

	updated, err := b.UpdateProduct(created.ID, types.ProductPatch{
		Quantity: intPtr(3),
		Status:   strPtr(types.ProductInactive),
	})
	if err != nil {
		t.Fatalf("UpdateProduct failed: %v", err)
	}
	if updated.Quantity != 3 || updated.Status != types.ProductInactive {
		t.Errorf("patch not applied: %+v", updated)
	}
	if updated.Name != "Widget" || !updated.SellingPrice.Equal(decimal.NewFromFloat(19.99)) {
		t.Errorf("patch clobbered untouched fields: %+v", updated)
	}
	if updated.UpdatedAt == created.UpdatedAt {
		// Same-second updates produce the same RFC 3339 string, but the
		// column must at least have been rewritten.
		t.Logf("updated_at unchanged within timestamp resolution")
	}

	deleted, err := b.DeleteProduct(created.ID)
	if err != nil || !deleted {
		t.Fatalf("DeleteProduct failed: deleted=%v err=%v", deleted, err)
	}
	gone, err := b.GetProduct(created.ID)
	if err != nil || gone != nil {
		t.Errorf("deleted product still readable: (%v, %v)", gone, err)
	}
}

func TestProducts_NotFoundContract(t *testing.T) {
	b := newTestBackend(t)

	p, err := b.GetProduct("missing")
	if err != nil || p != nil {
		t.Errorf("Get: want (nil, nil), got (%v, %v)", p, err)
	}
	up, err := b.UpdateProduct("missing", types.ProductPatch{Quantity: intPtr(1)})
	if err != nil || up != nil {
		t.Errorf("Update: want (nil, nil), got (%v, %v)", up, err)
	}
	deleted, err := b.DeleteProduct("missing")
	if err != nil || deleted {
		t.Errorf("Delete: want (false, nil), got (%v, %v)", deleted, err)
	}
}

func TestProducts_DuplicateReference(t *testing.T) {
	b := newTestBackend(t)

	if _, err := b.AddProduct(types.Product{Reference: "SKU-1", Name: "A"}); err != nil {
		t.Fatalf("first AddProduct failed: %v", err)
	}
	_, err := b.AddProduct(types.Product{Reference: "SKU-1", Name: "B"})
	if !types.IsDuplicateKey(err) {
		t.Fatalf("expected DuplicateKeyError, got %v", err)
	}

	products, err := b.ListProducts()
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(products) != 1 {
		t.Errorf("failed insert leaked rows: %d products", len(products))
	}
}

func TestProducts_InstancesCascadeOnDelete(t *testing.T) {
	b := newTestBackend(t)

	p, err := b.AddProduct(types.Product{
		Reference: "SKU-1",
		Name:      "Phone",
		Instances: []types.ProductInstance{
			{ReferenceNumber: "IMEI-1"},
			{ReferenceNumber: "IMEI-2"},
		},
	})
	if err != nil {
		t.Fatalf("AddProduct failed: %v", err)
	}
	if _, err := b.DeleteProduct(p.ID); err != nil {
		t.Fatalf("DeleteProduct failed: %v", err)
	}

	// A product reusing the instance reference numbers must succeed,
	// proving the child rows were removed.
	_, err = b.AddProduct(types.Product{
		Reference: "SKU-2",
		Name:      "Phone 2",
		Instances: []types.ProductInstance{{ReferenceNumber: "IMEI-1"}},
	})
	if err != nil {
		t.Errorf("instance rows survived parent delete: %v", err)
	}
}

func TestProducts_UpdateInstance(t *testing.T) {
	b := newTestBackend(t)

	p, err := b.AddProduct(types.Product{
		Reference: "SKU-1",
		Name:      "Phone",
		Instances: []types.ProductInstance{{ReferenceNumber: "IMEI-1"}},
	})
	if err != nil {
		t.Fatalf("AddProduct failed: %v", err)
	}
	instID := p.Instances[0].ID

	soldAt := types.Now()
	inst, err := b.UpdateInstance(p.ID, instID, types.InstancePatch{
		Status:    strPtr(types.InstanceSold),
		SoldAt:    &soldAt,
		InvoiceID: strPtr("inv-1"),
	})
	if err != nil {
		t.Fatalf("UpdateInstance failed: %v", err)
	}
	if inst.Status != types.InstanceSold || inst.SoldAt != soldAt || inst.InvoiceID != "inv-1" {
		t.Errorf("instance fields not persisted together: %+v", inst)
	}

	got, err := b.GetProduct(p.ID)
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}
	if got.AvailableStock() != 0 {
		t.Errorf("sold instance still counted as stock: %d", got.AvailableStock())
	}

	missing, err := b.UpdateInstance(p.ID, "missing", types.InstancePatch{})
	if err != nil || missing != nil {
		t.Errorf("missing instance: want (nil, nil), got (%v, %v)", missing, err)
	}
}

func TestProducts_UpdateReplacesInstances(t *testing.T) {
	b := newTestBackend(t)

	p, err := b.AddProduct(types.Product{
		Reference: "SKU-1",
		Name:      "Phone",
		Instances: []types.ProductInstance{{ReferenceNumber: "IMEI-1"}},
	})
	if err != nil {
		t.Fatalf("AddProduct failed: %v", err)
	}

	updated, err := b.UpdateProduct(p.ID, types.ProductPatch{
		Instances: &[]types.ProductInstance{
			{ReferenceNumber: "IMEI-2"},
			{ReferenceNumber: "IMEI-3"},
		},
	})
	if err != nil {
		t.Fatalf("UpdateProduct failed: %v", err)
	}
	if len(updated.Instances) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(updated.Instances))
	}
	for _, inst := range updated.Instances {
		if inst.ReferenceNumber == "IMEI-1" {
			t.Error("old instance survived replacement")
		}
		if inst.ID == "" {
			t.Error("replacement instance missing generated id")
		}
		if inst.Status != types.InstanceAvailable {
			t.Errorf("replacement instance missing default status: %+v", inst)
		}
	}
}

func TestProducts_SearchEscapesPatternCharacters(t *testing.T) {
	b := newTestBackend(t)

	for _, p := range []types.Product{
		{Reference: "SKU-1", Name: "100% Cotton Shirt"},
		{Reference: "SKU-2", Name: "Wool Shirt"},
		{Reference: "SKU-3", Name: "snake_case widget"},
	} {
		if _, err := b.AddProduct(p); err != nil {
			t.Fatalf("AddProduct failed: %v", err)
		}
	}

	// A literal % must not act as a LIKE wildcard.
	matched, err := b.SearchProducts("100%")
	if err != nil {
		t.Fatalf("SearchProducts failed: %v", err)
	}
	if len(matched) != 1 || matched[0].Reference != "SKU-1" {
		t.Errorf("expected only the literal match, got %d", len(matched))
	}

	// A literal _ must not match arbitrary characters.
	matched, err = b.SearchProducts("snake_case")
	if err != nil {
		t.Fatalf("SearchProducts failed: %v", err)
	}
	if len(matched) != 1 || matched[0].Reference != "SKU-3" {
		t.Errorf("expected only the literal match, got %d", len(matched))
	}

	// Case-insensitive substring match.
	matched, err = b.SearchProducts("shirt")
	if err != nil {
		t.Fatalf("SearchProducts failed: %v", err)
	}
	if len(matched) != 2 {
		t.Errorf("expected 2 matches, got %d", len(matched))
	}
}
