// Customer commands: list, add, delete.
package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/stockroom/pkg/types"
)

var customerCmd = &cobra.Command{
	Use:   "customer",
	Short: "Manage customers",
}

var (
	customerName    string
	customerEmail   string
	customerPhone   string
	customerAddress string
)

var customerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all customers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		customers, err := s.ListCustomers()
		if err != nil {
			return fmt.Errorf("list customers: %w", err)
		}

		if flagJSON {
			out, err := json.MarshalIndent(customers, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal customers: %w", err)
			}
			fmt.Println(string(out))
			return nil
		}

		if len(customers) == 0 {
			fmt.Println("No customers found.")
			return nil
		}

		var sb strings.Builder
		w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tPHONE")
		fmt.Fprintln(w, "--\t----\t-----\t-----")
		for i := range customers {
			c := &customers[i]
			shortID := c.ID
			if len(shortID) > 8 {
				shortID = shortID[:8]
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", shortID, c.Name, c.Email, c.Phone)
		}
		w.Flush()

		for _, line := range strings.Split(sb.String(), "\n") {
			fmt.Println(strings.TrimRight(line, " "))
		}
		fmt.Printf("Total: %d customer(s)\n", len(customers))
		return nil
	},
}

var customerAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new customer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		created, err := s.AddCustomer(types.Customer{
			Name:    customerName,
			Email:   customerEmail,
			Phone:   customerPhone,
			Address: customerAddress,
		})
		if err != nil {
			return fmt.Errorf("add customer: %w", err)
		}
		fmt.Println("Created customer", created.ID)
		return nil
	},
}

var customerDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a customer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		deleted, err := s.DeleteCustomer(args[0])
		if err != nil {
			return fmt.Errorf("delete customer: %w", err)
		}
		if !deleted {
			fmt.Println("No customer found with id", args[0])
			return nil
		}
		fmt.Println("Deleted customer", args[0])
		return nil
	},
}

func init() {
	customerAddCmd.Flags().StringVar(&customerName, "name", "", "customer name (required)")
	customerAddCmd.Flags().StringVar(&customerEmail, "email", "", "customer email")
	customerAddCmd.Flags().StringVar(&customerPhone, "phone", "", "customer phone")
	customerAddCmd.Flags().StringVar(&customerAddress, "address", "", "customer address")
	_ = customerAddCmd.MarkFlagRequired("name")

	customerCmd.AddCommand(customerListCmd)
	customerCmd.AddCommand(customerAddCmd)
	customerCmd.AddCommand(customerDeleteCmd)
}
