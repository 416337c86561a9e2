// Import command restores a dataset from a JSON export.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/stockroom/pkg/types"
)

var importMerge bool

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import data from a JSON export",
	Long: `Import restores an export document. By default the document
replaces the current data wholesale; --merge appends record by record
instead, skipping records that fail validation or collide with existing
natural keys.

Example:
  stockroom import backup.json
  stockroom import backup.json --merge`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importMerge, "merge", false, "merge into existing data instead of replacing it")
}

func runImport(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	var report *types.ImportReport
	if importMerge {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading import file: %w", err)
		}
		var ds types.Dataset
		if err := json.Unmarshal(data, &ds); err != nil {
			return fmt.Errorf("decoding import file: %w", err)
		}
		report, err = s.ImportMerge(&ds)
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
	} else {
		report, err = s.ImportFrom(args[0])
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
	}

	fmt.Printf("Imported %d record(s): %d products, %d invoices, %d customers, %d categories\n",
		report.Total(), report.Products, report.Invoices, report.Customers, report.Categories)
	for _, f := range report.Failures {
		fmt.Printf("  skipped %s/%s: %v\n", f.Collection, f.RecordID, f.Err)
	}
	return nil
}
