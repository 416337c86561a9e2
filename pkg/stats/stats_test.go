package stats

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/stockroom/pkg/types"
)

func paidInvoice(createdAt string, total float64, items ...types.InvoiceItem) types.Invoice {
	return types.Invoice{
		ID:           types.NewID(),
		CustomerName: "Test",
		Items:        items,
		Total:        decimal.NewFromFloat(total),
		Status:       types.InvoicePaid,
		CreatedAt:    createdAt,
	}
}

func TestRevenueByMonth(t *testing.T) {
	invoices := []types.Invoice{
		paidInvoice("2024-01-15T10:00:00Z", 100),
		paidInvoice("2024-01-20T10:00:00Z", 50),
		paidInvoice("2024-03-01T10:00:00Z", 25),
		// Pending invoices never count.
		{CustomerName: "X", Total: decimal.NewFromInt(999),
			Status: types.InvoicePending, CreatedAt: "2024-01-01T00:00:00Z"},
		// Unparseable timestamps are skipped, not fatal.
		paidInvoice("not-a-date", 999),
	}

	got := RevenueByMonth(invoices)
	if len(got) != 2 {
		t.Fatalf("expected 2 months, got %d: %v", len(got), got)
	}
	if got[0].Month != "2024-01" || !got[0].Revenue.Equal(decimal.NewFromInt(150)) {
		t.Errorf("january bucket wrong: %+v", got[0])
	}
	if got[1].Month != "2024-03" || !got[1].Revenue.Equal(decimal.NewFromInt(25)) {
		t.Errorf("march bucket wrong: %+v", got[1])
	}
}

func TestTopSellers(t *testing.T) {
	now := time.Now().UTC().Format(time.RFC3339)
	invoices := []types.Invoice{
		paidInvoice(now, 0,
			types.InvoiceItem{ProductID: "p1", ProductName: "Widget", Quantity: 5,
				Total: decimal.NewFromInt(50)},
			types.InvoiceItem{ProductID: "p2", ProductName: "Gadget", Quantity: 2,
				Total: decimal.NewFromInt(200)},
		),
		paidInvoice(now, 0,
			types.InvoiceItem{ProductID: "p1", ProductName: "Widget", Quantity: 3,
				Total: decimal.NewFromInt(30)},
		),
		// Pending invoice items never count.
		{CustomerName: "X", Status: types.InvoicePending, CreatedAt: now,
			Items: []types.InvoiceItem{{ProductID: "p3", ProductName: "Nope",
				Quantity: 99, Total: decimal.NewFromInt(9999)}}},
	}

	got := TopSellers(invoices, 10)
	if len(got) != 2 {
		t.Fatalf("expected 2 sellers, got %d", len(got))
	}
	if got[0].ProductID != "p1" || got[0].Quantity != 8 {
		t.Errorf("top seller wrong: %+v", got[0])
	}
	if !got[0].Revenue.Equal(decimal.NewFromInt(80)) {
		t.Errorf("top seller revenue wrong: %s", got[0].Revenue)
	}

	limited := TopSellers(invoices, 1)
	if len(limited) != 1 {
		t.Errorf("limit not applied: got %d", len(limited))
	}
}

func TestProfitMargins(t *testing.T) {
	products := []types.Product{
		{ID: "p1", Name: "Half", PurchasePrice: decimal.NewFromInt(50),
			SellingPrice: decimal.NewFromInt(100)},
		{ID: "p2", Name: "Thin", PurchasePrice: decimal.NewFromInt(90),
			SellingPrice: decimal.NewFromInt(100)},
		// Zero selling price is skipped, not divided by.
		{ID: "p3", Name: "Free", SellingPrice: decimal.Zero},
	}

	got := ProfitMargins(products)
	if len(got) != 2 {
		t.Fatalf("expected 2 margins, got %d", len(got))
	}
	if got[0].ProductID != "p1" || !got[0].MarginPct.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected p1 at 50%%, got %+v", got[0])
	}
	if got[1].ProductID != "p2" || !got[1].MarginPct.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected p2 at 10%%, got %+v", got[1])
	}
}

func TestLowStock(t *testing.T) {
	products := []types.Product{
		{ID: "p1", Name: "Plenty", Quantity: 50, LowStockThreshold: 5},
		{ID: "p2", Name: "Low", Quantity: 2, LowStockThreshold: 5},
		{ID: "p3", Name: "Instances", Quantity: 99, LowStockThreshold: 5,
			Instances: []types.ProductInstance{
				{ReferenceNumber: "I-1", Status: types.InstanceSold},
			}},
	}

	got := LowStock(products)
	if len(got) != 2 {
		t.Fatalf("expected 2 low-stock products, got %d", len(got))
	}
	// Most depleted first: p3 has zero available instances.
	if got[0].ID != "p3" || got[1].ID != "p2" {
		t.Errorf("unexpected order: %s, %s", got[0].ID, got[1].ID)
	}
}
