// Export command writes the full dataset to a JSON file.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export all data to a JSON file",
	Long: `Export writes every product, invoice, customer and category to a
single JSON document that import can restore.

Example:
  stockroom export backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.ExportTo(args[0]); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Println("Exported to", args[0])
		return nil
	},
}
