// Stats command prints the dashboard counters and chart aggregates.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/stockroom/pkg/stats"
)

var (
	statsCharts bool
	statsTopN   int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dashboard statistics",
	Long: `Stats prints the dashboard counters: product count, total stock,
total revenue, invoice count, low-stock products and recent sales.

Use --charts to add the revenue-by-month and top-seller aggregates.

Example:
  stockroom stats
  stockroom stats --charts --top 5
  stockroom stats --json`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsCharts, "charts", false, "include chart aggregates")
	statsCmd.Flags().IntVar(&statsTopN, "top", 10, "number of top sellers to show")
}

func runStats(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	dashboard, err := s.Stats()
	if err != nil {
		return fmt.Errorf("computing stats: %w", err)
	}

	out := map[string]any{"dashboard": dashboard}
	if statsCharts {
		invoices, err := s.ListInvoices()
		if err != nil {
			return fmt.Errorf("listing invoices: %w", err)
		}
		products, err := s.ListProducts()
		if err != nil {
			return fmt.Errorf("listing products: %w", err)
		}
		out["revenueByMonth"] = stats.RevenueByMonth(invoices)
		out["topSellers"] = stats.TopSellers(invoices, statsTopN)
		out["profitMargins"] = stats.ProfitMargins(products)
	}

	if flagJSON {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal stats: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Println("Products:        ", dashboard.ProductCount)
	fmt.Println("Total stock:     ", dashboard.TotalStock)
	fmt.Println("Total revenue:   ", dashboard.TotalRevenue.StringFixed(2))
	fmt.Println("Invoices:        ", dashboard.TotalInvoices)
	fmt.Println("Low stock:       ", dashboard.LowStockProducts)
	fmt.Println("Sales (30 days): ", dashboard.RecentSales.StringFixed(2))

	if statsCharts {
		months := out["revenueByMonth"].([]stats.MonthRevenue)
		if len(months) > 0 {
			fmt.Println("\nRevenue by month:")
			for _, m := range months {
				fmt.Printf("  %s  %s\n", m.Month, m.Revenue.StringFixed(2))
			}
		}
		sellers := out["topSellers"].([]stats.Seller)
		if len(sellers) > 0 {
			fmt.Println("\nTop sellers:")
			for _, seller := range sellers {
				fmt.Printf("  %-40s %4d sold  %s\n",
					seller.ProductName, seller.Quantity, seller.Revenue.StringFixed(2))
			}
		}
	}
	return nil
}
