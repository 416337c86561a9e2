package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/stockroom/pkg/types"
)

// GetSetting returns the value stored under key. ok is false when the key
// has never been set.
func (b *Backend) GetSetting(key string) (value string, ok bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return "", false, err
	}

	err = b.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting setting %s: %w", key, err)
	}
	return value, true, nil
}

// SetSetting upserts a key/value pair.
func (b *Backend) SetSetting(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return err
	}

	_, err := b.db.Exec(
		"INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at",
		key, value, types.Now(),
	)
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}
