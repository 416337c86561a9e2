// Invoice commands: list, show.
package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Manage invoices",
}

var invoiceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all invoices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		invoices, err := s.ListInvoices()
		if err != nil {
			return fmt.Errorf("list invoices: %w", err)
		}

		if flagJSON {
			out, err := json.MarshalIndent(invoices, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal invoices: %w", err)
			}
			fmt.Println(string(out))
			return nil
		}

		if len(invoices) == 0 {
			fmt.Println("No invoices found.")
			return nil
		}

		var sb strings.Builder
		w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCUSTOMER\tITEMS\tTOTAL\tSTATUS\tCREATED")
		fmt.Fprintln(w, "--\t--------\t-----\t-----\t------\t-------")
		for i := range invoices {
			inv := &invoices[i]
			shortID := inv.ID
			if len(shortID) > 8 {
				shortID = shortID[:8]
			}
			created := inv.CreatedAt
			if len(created) > 10 {
				created = created[:10]
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
				shortID, inv.CustomerName, len(inv.Items),
				inv.Total.StringFixed(2), inv.Status, created)
		}
		w.Flush()

		for _, line := range strings.Split(sb.String(), "\n") {
			fmt.Println(strings.TrimRight(line, " "))
		}
		fmt.Printf("Total: %d invoice(s)\n", len(invoices))
		return nil
	},
}

var invoiceShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one invoice with its items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		inv, err := s.GetInvoice(args[0])
		if err != nil {
			return fmt.Errorf("get invoice: %w", err)
		}
		if inv == nil {
			fmt.Println("No invoice found with id", args[0])
			return nil
		}

		out, err := json.MarshalIndent(inv, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal invoice: %w", err)
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	invoiceCmd.AddCommand(invoiceListCmd)
	invoiceCmd.AddCommand(invoiceShowCmd)
}
