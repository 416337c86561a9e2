// Init command for the stockroom CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize stockroom storage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}
		if err := ensureConfigDir(configDir); err != nil {
			return err
		}
		if err := ensureDefaultConfigFile(configDir); err != nil {
			return err
		}

		// Opening the store creates the data directory and, for the
		// SQLite backend, the schema.
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		fmt.Println("Stockroom initialized successfully")
		fmt.Println("  backend:", resolveBackend())
		fmt.Println("  config: ", configDir)
		fmt.Println("  data:   ", s.DataDir())
		if report := s.MigrationReport(); report != nil && !report.Skipped {
			fmt.Printf("  migrated: %d record(s), %d failure(s)\n",
				report.Imported.Total(), len(report.Failures))
		}
		return nil
	},
}
