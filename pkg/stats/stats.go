// Package stats holds the chart aggregators behind the reporting views.
// Every function is pure: it takes full collection reads and returns
// derived rows, leaving storage and ordering concerns to the caller's
// backend.
package stats

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/stockroom/pkg/types"
)

// MonthRevenue is paid revenue for one calendar month.
type MonthRevenue struct {
	// Month is formatted YYYY-MM.
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// RevenueByMonth buckets paid invoice totals by calendar month, ascending.
// Invoices with unparseable timestamps are skipped.
func RevenueByMonth(invoices []types.Invoice) []MonthRevenue {
	buckets := make(map[string]decimal.Decimal)
	for i := range invoices {
		inv := &invoices[i]
		if inv.Status != types.InvoicePaid {
			continue
		}
		created, err := time.Parse(time.RFC3339, inv.CreatedAt)
		if err != nil {
			continue
		}
		month := created.UTC().Format("2006-01")
		buckets[month] = buckets[month].Add(inv.Total)
	}

	months := make([]string, 0, len(buckets))
	for month := range buckets {
		months = append(months, month)
	}
	sort.Strings(months)

	out := make([]MonthRevenue, 0, len(months))
	for _, month := range months {
		out = append(out, MonthRevenue{Month: month, Revenue: buckets[month]})
	}
	return out
}

// Seller aggregates sales of one product across invoices.
type Seller struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// TopSellers ranks products by quantity sold across paid invoices,
// falling back to revenue on ties, and returns at most n rows. The
// product name is the snapshot from the most recent line seen.
func TopSellers(invoices []types.Invoice, n int) []Seller {
	byProduct := make(map[string]*Seller)
	for i := range invoices {
		inv := &invoices[i]
		if inv.Status != types.InvoicePaid {
			continue
		}
		for _, item := range inv.Items {
			s := byProduct[item.ProductID]
			if s == nil {
				s = &Seller{ProductID: item.ProductID, Revenue: decimal.Zero}
				byProduct[item.ProductID] = s
			}
			s.ProductName = item.ProductName
			s.Quantity += item.Quantity
			s.Revenue = s.Revenue.Add(item.Total)
		}
	}

	sellers := make([]Seller, 0, len(byProduct))
	for _, s := range byProduct {
		sellers = append(sellers, *s)
	}
	sort.Slice(sellers, func(i, j int) bool {
		if sellers[i].Quantity != sellers[j].Quantity {
			return sellers[i].Quantity > sellers[j].Quantity
		}
		if !sellers[i].Revenue.Equal(sellers[j].Revenue) {
			return sellers[i].Revenue.GreaterThan(sellers[j].Revenue)
		}
		return sellers[i].ProductID < sellers[j].ProductID
	})
	if n > 0 && len(sellers) > n {
		sellers = sellers[:n]
	}
	return sellers
}

// Margin is the profit margin of one product.
type Margin struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	// MarginPct is (selling − purchase) / selling × 100, rounded to two
	// decimal places.
	MarginPct decimal.Decimal `json:"marginPct"`
}

// ProfitMargins computes per-product margins, highest first. Products
// with a zero selling price are skipped rather than divided by.
func ProfitMargins(products []types.Product) []Margin {
	hundred := decimal.NewFromInt(100)
	margins := make([]Margin, 0, len(products))
	for i := range products {
		p := &products[i]
		if p.SellingPrice.IsZero() {
			continue
		}
		pct := p.SellingPrice.Sub(p.PurchasePrice).
			Div(p.SellingPrice).
			Mul(hundred).
			Round(2)
		margins = append(margins, Margin{ProductID: p.ID, ProductName: p.Name, MarginPct: pct})
	}
	sort.Slice(margins, func(i, j int) bool {
		if !margins[i].MarginPct.Equal(margins[j].MarginPct) {
			return margins[i].MarginPct.GreaterThan(margins[j].MarginPct)
		}
		return margins[i].ProductID < margins[j].ProductID
	})
	return margins
}

// LowStock returns the products whose available stock is at or below
// their threshold, most depleted first. Available stock is instance-aware.
func LowStock(products []types.Product) []types.Product {
	low := []types.Product{}
	for i := range products {
		if products[i].LowStock() {
			low = append(low, products[i])
		}
	}
	sort.Slice(low, func(i, j int) bool {
		a, b := low[i].AvailableStock(), low[j].AvailableStock()
		if a != b {
			return a < b
		}
		return low[i].Name < low[j].Name
	})
	return low
}
