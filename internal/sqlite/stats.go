package sqlite

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/stockroom/pkg/types"
)

// Stats computes the dashboard counters. Counts and stock come from SQL;
// revenue totals are summed in Go with decimals because price columns are
// canonical decimal strings, not floats.
func (b *Backend) Stats() (*types.DashboardStats, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	stats := &types.DashboardStats{
		TotalRevenue: decimal.Zero,
		RecentSales:  decimal.Zero,
	}

	// Available stock follows the product shape: instance-tracked products
	// count their available instances, the rest use the quantity column.
	rows, err := b.db.Query(`SELECT p.quantity, p.low_stock_threshold,
    COUNT(i.id) AS instances,
    COALESCE(SUM(CASE WHEN i.status = 'available' THEN 1 ELSE 0 END), 0) AS available
FROM products p
LEFT JOIN product_instances i ON i.product_id = p.id
GROUP BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("computing stock stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var quantity, threshold, instances, available int
		if err := rows.Scan(&quantity, &threshold, &instances, &available); err != nil {
			return nil, fmt.Errorf("scanning stock stats: %w", err)
		}
		stock := quantity
		if instances > 0 {
			stock = available
		}
		stats.ProductCount++
		stats.TotalStock += stock
		if stock <= threshold {
			stats.LowStockProducts++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("computing stock stats: %w", err)
	}

	if err := b.db.QueryRow("SELECT COUNT(*) FROM invoices").Scan(&stats.TotalInvoices); err != nil {
		return nil, fmt.Errorf("counting invoices: %w", err)
	}

	paid, err := b.db.Query("SELECT total, created_at FROM invoices WHERE status = ?", types.InvoicePaid)
	if err != nil {
		return nil, fmt.Errorf("computing revenue stats: %w", err)
	}
	defer paid.Close()

	cutoff := time.Now().UTC().AddDate(0, 0, -30)
	for paid.Next() {
		var total, createdAt string
		if err := paid.Scan(&total, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning revenue stats: %w", err)
		}
		amount, err := decimal.NewFromString(total)
		if err != nil {
			return nil, fmt.Errorf("parsing invoice total: %w", err)
		}
		stats.TotalRevenue = stats.TotalRevenue.Add(amount)
		if created, err := time.Parse(time.RFC3339, createdAt); err == nil && !created.Before(cutoff) {
			stats.RecentSales = stats.RecentSales.Add(amount)
		}
	}
	if err := paid.Err(); err != nil {
		return nil, fmt.Errorf("computing revenue stats: %w", err)
	}
	return stats, nil
}
