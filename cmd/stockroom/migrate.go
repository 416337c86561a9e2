// Migrate command runs the legacy-store migration on demand.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/stockroom/internal/kvstore"
	"github.com/mesh-intelligence/stockroom/internal/migrate"
	"github.com/mesh-intelligence/stockroom/internal/sqlite"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Move legacy local-store data into the SQLite database",
	Long: `Migrate moves products, invoices, customers and categories from the
legacy key-value store into the SQLite database. The migration runs at
most once: completion is recorded in the database and later runs are
skipped. Opening the store with the sqlite backend triggers the same
migration automatically; this command exists to run it explicitly and
see the report.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, err := resolveDataDir()
		if err != nil {
			return err
		}
		log := newLogger()

		dst, err := sqlite.Open(dataDir, log)
		if err != nil {
			return err
		}
		defer dst.Close()

		src, err := kvstore.Open(dataDir)
		if err != nil {
			return err
		}
		defer src.Close()

		report, err := migrate.Run(src, dst, log)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		if report.Skipped {
			fmt.Println("Migration already completed, nothing to do")
			return nil
		}
		fmt.Printf("Migrated %d record(s), %d failure(s)\n",
			report.Imported.Total(), len(report.Failures))
		for _, f := range report.Failures {
			fmt.Printf("  skipped %s/%s: %v\n", f.Collection, f.RecordID, f.Err)
		}
		return nil
	},
}
