// Package store is the application-facing persistence facade. It owns
// backend construction: callers hand it a validated Config and get back a
// Store wired to either the key-value or the SQLite backend, with the
// one-time legacy migration already run. Nothing below this package probes
// the environment to decide where data lives.
package store

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/stockroom/internal/kvstore"
	"github.com/mesh-intelligence/stockroom/internal/migrate"
	"github.com/mesh-intelligence/stockroom/internal/paths"
	"github.com/mesh-intelligence/stockroom/internal/sqlite"
	"github.com/mesh-intelligence/stockroom/pkg/types"
)

// Store wraps a backend with the resolved data directory and the result
// of the startup migration. All entity operations delegate to the
// backend, which does its own locking.
type Store struct {
	backend   types.Backend
	cfg       types.Config
	dataDir   string
	log       zerolog.Logger
	migration *migrate.Report
}

// Open validates the config, resolves the data directory, constructs the
// selected backend and, for the SQLite backend, runs the one-time
// migration from the legacy key-value store.
func Open(cfg types.Config, log zerolog.Logger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dataDir, err := paths.ResolveDataDir("", cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("resolving data directory: %w", err)
	}

	s := &Store{cfg: cfg, dataDir: dataDir, log: log}
	switch cfg.Backend {
	case types.BackendLocalStore:
		backend, err := kvstore.Open(dataDir)
		if err != nil {
			return nil, err
		}
		s.backend = backend
	case types.BackendSQLite:
		backend, err := sqlite.Open(dataDir, log)
		if err != nil {
			return nil, err
		}
		s.backend = backend

		legacy, err := kvstore.Open(dataDir)
		if err != nil {
			backend.Close()
			return nil, err
		}
		report, err := migrate.Run(legacy, backend, log)
		legacy.Close()
		if err != nil {
			backend.Close()
			return nil, fmt.Errorf("migrating legacy data: %w", err)
		}
		s.migration = report
	}

	log.Debug().Str("backend", cfg.Backend).Str("data_dir", dataDir).Msg("store opened")
	return s, nil
}

// NewWithBackend wraps an already-constructed backend, skipping directory
// resolution and migration. Tests and embedders use it to inject a
// backend directly.
func NewWithBackend(backend types.Backend, log zerolog.Logger) *Store {
	return &Store{backend: backend, log: log}
}

// DataDir returns the resolved data directory, empty when the store was
// built around an injected backend.
func (s *Store) DataDir() string { return s.dataDir }

// MigrationReport returns the result of the startup migration, or nil
// when no migration ran (key-value backend or injected backend).
func (s *Store) MigrationReport() *migrate.Report { return s.migration }

// Close releases the backend. Operations after Close fail with
// types.ErrStoreClosed.
func (s *Store) Close() error { return s.backend.Close() }

// backuper is implemented by backends that can snapshot themselves.
type backuper interface {
	Backup(destPath string) error
}

// Backup writes a consistent snapshot of the database to destPath. Only
// the SQLite backend supports it.
func (s *Store) Backup(destPath string) error {
	b, ok := s.backend.(backuper)
	if !ok {
		return fmt.Errorf("backend %q does not support backup", s.cfg.Backend)
	}
	return b.Backup(destPath)
}

// pather is implemented by backends with a single database file.
type pather interface {
	Path() string
}

// DatabasePath returns the database file path, or empty for backends
// without one.
func (s *Store) DatabasePath() string {
	if p, ok := s.backend.(pather); ok {
		return p.Path()
	}
	return ""
}

// Products.

func (s *Store) ListProducts() ([]types.Product, error) { return s.backend.ListProducts() }
func (s *Store) GetProduct(id string) (*types.Product, error) {
	return s.backend.GetProduct(id)
}
func (s *Store) AddProduct(p types.Product) (*types.Product, error) {
	return s.backend.AddProduct(p)
}
func (s *Store) UpdateProduct(id string, patch types.ProductPatch) (*types.Product, error) {
	return s.backend.UpdateProduct(id, patch)
}
func (s *Store) DeleteProduct(id string) (bool, error) { return s.backend.DeleteProduct(id) }
func (s *Store) UpdateInstance(productID, instanceID string, patch types.InstancePatch) (*types.ProductInstance, error) {
	return s.backend.UpdateInstance(productID, instanceID, patch)
}
func (s *Store) SearchProducts(name string) ([]types.Product, error) {
	return s.backend.SearchProducts(name)
}

// Invoices.

func (s *Store) ListInvoices() ([]types.Invoice, error) { return s.backend.ListInvoices() }
func (s *Store) GetInvoice(id string) (*types.Invoice, error) {
	return s.backend.GetInvoice(id)
}
func (s *Store) AddInvoice(inv types.Invoice) (*types.Invoice, error) {
	return s.backend.AddInvoice(inv)
}
func (s *Store) UpdateInvoice(id string, patch types.InvoicePatch) (*types.Invoice, error) {
	return s.backend.UpdateInvoice(id, patch)
}
func (s *Store) DeleteInvoice(id string) (bool, error) { return s.backend.DeleteInvoice(id) }

// Customers.

func (s *Store) ListCustomers() ([]types.Customer, error) { return s.backend.ListCustomers() }
func (s *Store) AddCustomer(c types.Customer) (*types.Customer, error) {
	return s.backend.AddCustomer(c)
}
func (s *Store) UpdateCustomer(id string, patch types.CustomerPatch) (*types.Customer, error) {
	return s.backend.UpdateCustomer(id, patch)
}
func (s *Store) DeleteCustomer(id string) (bool, error) { return s.backend.DeleteCustomer(id) }

// Categories.

func (s *Store) ListCategories() ([]types.Category, error) { return s.backend.ListCategories() }
func (s *Store) AddCategory(c types.Category) (*types.Category, error) {
	return s.backend.AddCategory(c)
}
func (s *Store) UpdateCategory(id string, patch types.CategoryPatch) (*types.Category, error) {
	return s.backend.UpdateCategory(id, patch)
}
func (s *Store) DeleteCategory(id string) (bool, error) { return s.backend.DeleteCategory(id) }

// Users.

func (s *Store) ListUsers() ([]types.User, error) { return s.backend.ListUsers() }
func (s *Store) GetUserByEmail(email string) (*types.User, error) {
	return s.backend.GetUserByEmail(email)
}
func (s *Store) AddUser(u types.User) (*types.User, error) { return s.backend.AddUser(u) }
func (s *Store) DeleteUser(id string) (bool, error)        { return s.backend.DeleteUser(id) }

// Stats computes the dashboard counters.
func (s *Store) Stats() (*types.DashboardStats, error) { return s.backend.Stats() }

// GetSetting reads one settings key.
func (s *Store) GetSetting(key string) (string, bool, error) { return s.backend.GetSetting(key) }

// SetSetting upserts one settings key.
func (s *Store) SetSetting(key, value string) error { return s.backend.SetSetting(key, value) }
