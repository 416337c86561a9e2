package sqlite

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/stockroom/pkg/types"
)

func TestStats_Counters(t *testing.T) {
	b := newTestBackend(t)

	// Quantity-tracked product, above threshold.
	if _, err := b.AddProduct(types.Product{Reference: "SKU-1", Name: "A", Quantity: 50}); err != nil {
		t.Fatalf("AddProduct failed: %v", err)
	}
	// Quantity-tracked product, at threshold.
	if _, err := b.AddProduct(types.Product{Reference: "SKU-2", Name: "B", Quantity: 5}); err != nil {
		t.Fatalf("AddProduct failed: %v", err)
	}
	// Instance-tracked product: one available of three, so low stock
	// regardless of the quantity column.
	if _, err := b.AddProduct(types.Product{
		Reference: "SKU-3", Name: "C", Quantity: 99,
		Instances: []types.ProductInstance{
			{ReferenceNumber: "I-1", Status: types.InstanceAvailable},
			{ReferenceNumber: "I-2", Status: types.InstanceSold},
			{ReferenceNumber: "I-3", Status: types.InstanceReserved},
		},
	}); err != nil {
		t.Fatalf("AddProduct failed: %v", err)
	}

	if _, err := b.AddInvoice(types.Invoice{
		CustomerName: "Alice",
		Total:        decimal.NewFromFloat(100.50),
		Status:       types.InvoicePaid,
	}); err != nil {
		t.Fatalf("AddInvoice failed: %v", err)
	}
	if _, err := b.AddInvoice(types.Invoice{
		CustomerName: "Bob",
		Total:        decimal.NewFromInt(999),
		Status:       types.InvoicePending,
	}); err != nil {
		t.Fatalf("AddInvoice failed: %v", err)
	}
	// A paid invoice outside the 30-day window counts toward total
	// revenue but not recent sales.
	old := types.Invoice{
		ID:           types.NewID(),
		CustomerName: "Carol",
		Total:        decimal.NewFromInt(40),
		Status:       types.InvoicePaid,
		CreatedAt:    time.Now().UTC().AddDate(0, -3, 0).Format(time.RFC3339),
	}
	old.UpdatedAt = old.CreatedAt
	if _, err := b.ImportDataset(&types.Dataset{Invoices: []types.Invoice{old}}, types.ImportMerge); err != nil {
		t.Fatalf("importing old invoice failed: %v", err)
	}

	stats, err := b.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.ProductCount != 3 {
		t.Errorf("product count: got %d", stats.ProductCount)
	}
	if stats.TotalStock != 56 {
		t.Errorf("total stock: got %d, want 56 (50 + 5 + 1 available instance)", stats.TotalStock)
	}
	if stats.LowStockProducts != 2 {
		t.Errorf("low stock: got %d, want 2", stats.LowStockProducts)
	}
	if stats.TotalInvoices != 3 {
		t.Errorf("invoice count: got %d", stats.TotalInvoices)
	}
	if !stats.TotalRevenue.Equal(decimal.NewFromFloat(140.50)) {
		t.Errorf("total revenue: got %s, want 140.5", stats.TotalRevenue)
	}
	if !stats.RecentSales.Equal(decimal.NewFromFloat(100.50)) {
		t.Errorf("recent sales: got %s, want 100.5", stats.RecentSales)
	}
}
