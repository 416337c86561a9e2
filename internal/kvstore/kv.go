// Package kvstore implements the legacy key-value storage backend. Each
// entity collection is one JSON-serialized array stored under a well-known
// key; every write re-serializes the entire array. That is O(n) per write
// and acceptable only because datasets are single-tenant desktop scale.
package kvstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Collection keys. These are the storage keys the migration engine reads
// and clears; they must not change while legacy data can still exist.
const (
	KeyProducts   = "products"
	KeyInvoices   = "invoices"
	KeyCustomers  = "customers"
	KeyCategories = "categories"
	KeyUsers      = "users"
	KeySettings   = "settings"
)

// KV is a persistent string store keyed by well-known names. It mirrors
// the localStorage surface the legacy application wrote to.
type KV interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// FileKV stores each key as one file under a directory. Writes are atomic
// (temp file and rename) so a crash never leaves a half-written value.
type FileKV struct {
	dir string
}

// NewFileKV creates the directory if needed and returns a store rooted
// there.
func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating kv directory: %w", err)
	}
	return &FileKV{dir: dir}, nil
}

// Dir returns the directory the store writes to.
func (f *FileKV) Dir() string { return f.dir }

func (f *FileKV) path(key string) string {
	// Keys are fixed collection names, never user input.
	return filepath.Join(f.dir, key+".json")
}

func (f *FileKV) Get(key string) (string, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading key %s: %w", key, err)
	}
	return string(data), true, nil
}

func (f *FileKV) Set(key, value string) error {
	tmp, err := os.CreateTemp(f.dir, ".kv-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing key %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing key %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming into key %s: %w", key, err)
	}
	return nil
}

func (f *FileKV) Delete(key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting key %s: %w", key, err)
	}
	return nil
}

// MemKV is an in-memory KV for tests.
type MemKV struct {
	mu sync.Mutex
	m  map[string]string
}

// NewMemKV returns an empty in-memory store.
func NewMemKV() *MemKV {
	return &MemKV{m: make(map[string]string)}
}

func (m *MemKV) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.m[key]
	return v, ok, nil
}

func (m *MemKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.m[key] = value
	return nil
}

func (m *MemKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.m, key)
	return nil
}

// containsFold reports whether s contains substr, case-insensitively.
// Used by the product name search so both backends match the same records.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
