package kvstore

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/stockroom/pkg/types"
)

// Compile-time interface check.
var _ types.Backend = (*Backend)(nil)

// localStoreDirName is the subdirectory of the data dir that holds the
// key files.
const localStoreDirName = "localstore"

// Backend implements types.Backend over a KV store. A single mutex
// serializes every read-modify-write cycle, so two writers in the same
// process cannot interleave a stale full-array write over a fresh one.
// Writers in other processes are not coordinated; that is a documented
// limitation of the legacy store.
type Backend struct {
	mu     sync.Mutex
	kv     KV
	closed bool
}

// NewBackend wraps an existing KV store.
func NewBackend(kv KV) *Backend {
	return &Backend{kv: kv}
}

// Open creates a file-backed backend under dataDir.
func Open(dataDir string) (*Backend, error) {
	kv, err := NewFileKV(filepath.Join(dataDir, localStoreDirName))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrBackendUnavailable, err)
	}
	return NewBackend(kv), nil
}

// LocalStoreDir returns the key directory under dataDir without opening a
// backend. The migration engine uses it to find legacy data.
func LocalStoreDir(dataDir string) string {
	return filepath.Join(dataDir, localStoreDirName)
}

// Close marks the backend closed. Idempotent.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *Backend) checkOpen() error {
	if b.closed {
		return types.ErrStoreClosed
	}
	return nil
}

// ClearCollections deletes the four collection keys. The migration engine
// calls it after moving legacy data so a later run starts from empty
// collections rather than re-importing.
func (b *Backend) ClearCollections() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return err
	}
	for _, key := range []string{KeyProducts, KeyInvoices, KeyCustomers, KeyCategories} {
		if err := b.kv.Delete(key); err != nil {
			return fmt.Errorf("clearing %s: %w", key, err)
		}
	}
	return nil
}

// readList decodes the JSON array stored under key. A missing key is an
// empty collection.
func readList[T any](kv KV, key string) ([]T, error) {
	raw, ok, err := kv.Get(key)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// writeList re-serializes and stores the entire collection.
func writeList[T any](kv KV, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return kv.Set(key, string(data))
}

// Settings are a JSON object under their own key, matching the shape of
// the relational settings table.

func (b *Backend) readSettings() (map[string]string, error) {
	raw, ok, err := b.kv.Get(KeySettings)
	if err != nil {
		return nil, err
	}
	settings := make(map[string]string)
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &settings); err != nil {
			return nil, fmt.Errorf("decoding settings: %w", err)
		}
	}
	return settings, nil
}

// GetSetting returns the value stored under key and whether it exists.
func (b *Backend) GetSetting(key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return "", false, err
	}
	settings, err := b.readSettings()
	if err != nil {
		return "", false, err
	}
	v, ok := settings[key]
	return v, ok, nil
}

// SetSetting stores value under key.
func (b *Backend) SetSetting(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return err
	}
	settings, err := b.readSettings()
	if err != nil {
		return err
	}
	settings[key] = value
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	return b.kv.Set(KeySettings, string(data))
}

// Stats computes the dashboard counters from full collection reads.
func (b *Backend) Stats() (*types.DashboardStats, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	products, err := readList[types.Product](b.kv, KeyProducts)
	if err != nil {
		return nil, err
	}
	invoices, err := readList[types.Invoice](b.kv, KeyInvoices)
	if err != nil {
		return nil, err
	}

	stats := &types.DashboardStats{
		ProductCount:  len(products),
		TotalInvoices: len(invoices),
		TotalRevenue:  decimal.Zero,
		RecentSales:   decimal.Zero,
	}
	for i := range products {
		stats.TotalStock += products[i].AvailableStock()
		if products[i].LowStock() {
			stats.LowStockProducts++
		}
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -30)
	for i := range invoices {
		inv := &invoices[i]
		if inv.Status != types.InvoicePaid {
			continue
		}
		stats.TotalRevenue = stats.TotalRevenue.Add(inv.Total)
		if created, err := time.Parse(time.RFC3339, inv.CreatedAt); err == nil && !created.Before(cutoff) {
			stats.RecentSales = stats.RecentSales.Add(inv.Total)
		}
	}
	return stats, nil
}
