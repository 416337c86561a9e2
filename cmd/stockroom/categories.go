// Category commands: list, add, delete.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/stockroom/pkg/types"
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage categories",
}

var (
	categoryName        string
	categoryDescription string
)

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		categories, err := s.ListCategories()
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}

		if flagJSON {
			out, err := json.MarshalIndent(categories, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal categories: %w", err)
			}
			fmt.Println(string(out))
			return nil
		}

		if len(categories) == 0 {
			fmt.Println("No categories found.")
			return nil
		}
		for i := range categories {
			c := &categories[i]
			if c.Description != "" {
				fmt.Printf("%s  %s - %s\n", c.ID, c.Name, c.Description)
			} else {
				fmt.Printf("%s  %s\n", c.ID, c.Name)
			}
		}
		return nil
	},
}

var categoryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new category",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		created, err := s.AddCategory(types.Category{
			Name:        categoryName,
			Description: categoryDescription,
		})
		if err != nil {
			return fmt.Errorf("add category: %w", err)
		}
		fmt.Println("Created category", created.ID)
		return nil
	},
}

var categoryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a category",
	Long: `Delete removes a category. Products keep their category string;
deleting a category never cascades into the catalog.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		deleted, err := s.DeleteCategory(args[0])
		if err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		if !deleted {
			fmt.Println("No category found with id", args[0])
			return nil
		}
		fmt.Println("Deleted category", args[0])
		return nil
	},
}

func init() {
	categoryAddCmd.Flags().StringVar(&categoryName, "name", "", "category name (required)")
	categoryAddCmd.Flags().StringVar(&categoryDescription, "description", "", "category description")
	_ = categoryAddCmd.MarkFlagRequired("name")

	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categoryAddCmd)
	categoryCmd.AddCommand(categoryDeleteCmd)
}
