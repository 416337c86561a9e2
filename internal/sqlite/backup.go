package sqlite

import (
	"fmt"
	"os"
	"path/filepath"
)

// Backup writes a consistent snapshot of the database to destPath using
// VACUUM INTO, which works while the database is open and produces a
// compacted copy. The destination must not already exist.
func (b *Backend) Backup(destPath string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return err
	}

	if _, err := os.Stat(destPath); err == nil {
		return fmt.Errorf("backup destination %s already exists", destPath)
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("creating backup directory: %w", err)
	}

	if _, err := b.db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("backing up database to %s: %w", destPath, err)
	}
	b.log.Info().Str("dest", destPath).Msg("database backup written")
	return nil
}
