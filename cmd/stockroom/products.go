// Product commands: list, add, delete, search.
package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/stockroom/pkg/types"
)

var productCmd = &cobra.Command{
	Use:   "product",
	Short: "Manage products",
}

var (
	productReference     string
	productName          string
	productDescription   string
	productCategory      string
	productQuantity      int
	productPurchasePrice string
	productSellingPrice  string
	productThreshold     int
)

var productListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all products",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		products, err := s.ListProducts()
		if err != nil {
			return fmt.Errorf("list products: %w", err)
		}
		return printProducts(products)
	},
}

var productAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new product",
	Long: `Add creates a product with the given reference and name.

Example:
  stockroom product add --reference SKU-001 --name "Widget" --selling-price 19.99
  stockroom product add --reference SKU-002 --name "Gadget" --purchase-price 5 --selling-price 12.50 --quantity 40`,
	Args: cobra.NoArgs,
	RunE: runProductAdd,
}

var productDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a product and its instances",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		deleted, err := s.DeleteProduct(args[0])
		if err != nil {
			return fmt.Errorf("delete product: %w", err)
		}
		if !deleted {
			fmt.Println("No product found with id", args[0])
			return nil
		}
		fmt.Println("Deleted product", args[0])
		return nil
	},
}

var productSearchCmd = &cobra.Command{
	Use:   "search <name>",
	Short: "Search products by name substring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		products, err := s.SearchProducts(args[0])
		if err != nil {
			return fmt.Errorf("search products: %w", err)
		}
		return printProducts(products)
	},
}

func init() {
	productAddCmd.Flags().StringVar(&productReference, "reference", "", "unique product reference (required)")
	productAddCmd.Flags().StringVar(&productName, "name", "", "product name (required)")
	productAddCmd.Flags().StringVar(&productDescription, "description", "", "product description")
	productAddCmd.Flags().StringVar(&productCategory, "category", "", "category name")
	productAddCmd.Flags().IntVar(&productQuantity, "quantity", 0, "initial stock quantity")
	productAddCmd.Flags().StringVar(&productPurchasePrice, "purchase-price", "0", "purchase price")
	productAddCmd.Flags().StringVar(&productSellingPrice, "selling-price", "0", "selling price")
	productAddCmd.Flags().IntVar(&productThreshold, "low-stock-threshold", 0, "low stock threshold (default 5)")
	_ = productAddCmd.MarkFlagRequired("reference")
	_ = productAddCmd.MarkFlagRequired("name")

	productCmd.AddCommand(productListCmd)
	productCmd.AddCommand(productAddCmd)
	productCmd.AddCommand(productDeleteCmd)
	productCmd.AddCommand(productSearchCmd)
}

func runProductAdd(cmd *cobra.Command, args []string) error {
	purchase, err := decimal.NewFromString(productPurchasePrice)
	if err != nil {
		return fmt.Errorf("invalid purchase price %q: %w", productPurchasePrice, err)
	}
	selling, err := decimal.NewFromString(productSellingPrice)
	if err != nil {
		return fmt.Errorf("invalid selling price %q: %w", productSellingPrice, err)
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	created, err := s.AddProduct(types.Product{
		Reference:         productReference,
		Name:              productName,
		Description:       productDescription,
		Category:          productCategory,
		Quantity:          productQuantity,
		PurchasePrice:     purchase,
		SellingPrice:      selling,
		LowStockThreshold: productThreshold,
	})
	if err != nil {
		return fmt.Errorf("add product: %w", err)
	}

	if flagJSON {
		out, err := json.MarshalIndent(created, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal product: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}
	fmt.Println("Created product", created.ID)
	return nil
}

func printProducts(products []types.Product) error {
	if flagJSON {
		out, err := json.MarshalIndent(products, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal products: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	if len(products) == 0 {
		fmt.Println("No products found.")
		return nil
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tREFERENCE\tNAME\tSTOCK\tPRICE\tSTATUS")
	fmt.Fprintln(w, "--\t---------\t----\t-----\t-----\t------")
	for i := range products {
		p := &products[i]
		name := p.Name
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		shortID := p.ID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			shortID, p.Reference, name, p.AvailableStock(),
			p.SellingPrice.StringFixed(2), p.Status)
	}
	w.Flush()

	for _, line := range strings.Split(sb.String(), "\n") {
		fmt.Println(strings.TrimRight(line, " "))
	}
	fmt.Printf("Total: %d product(s)\n", len(products))
	return nil
}
