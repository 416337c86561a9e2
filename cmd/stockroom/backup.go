// Backup command snapshots the SQLite database.
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup [dest]",
	Short: "Write a consistent snapshot of the database",
	Long: `Backup copies the SQLite database to dest while it is open. When
dest is omitted the snapshot is written next to the database with a
timestamped name. Only the sqlite backend supports backup.

Example:
  stockroom backup
  stockroom backup /mnt/backups/stockroom.db`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		dest := ""
		if len(args) == 1 {
			dest = args[0]
		} else {
			dbPath := s.DatabasePath()
			if dbPath == "" {
				return fmt.Errorf("backend %q does not support backup", resolveBackend())
			}
			dest = dbPath + "." + time.Now().UTC().Format("20060102-150405") + ".bak"
		}

		if err := s.Backup(dest); err != nil {
			return fmt.Errorf("backup: %w", err)
		}
		fmt.Println("Backup written to", dest)
		return nil
	},
}
