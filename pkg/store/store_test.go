package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/stockroom/internal/kvstore"
	"github.com/mesh-intelligence/stockroom/pkg/types"
)

func openBackend(t *testing.T, backend string) *Store {
	t.Helper()
	s, err := Open(types.Config{Backend: backend, DataDir: t.TempDir()}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_RejectsBadConfig(t *testing.T) {
	_, err := Open(types.Config{}, zerolog.Nop())
	assert.ErrorIs(t, err, types.ErrBackendEmpty)

	_, err = Open(types.Config{Backend: "postgres"}, zerolog.Nop())
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
}

// Both backends must expose the same behavior through the Store; the
// suite runs once per backend.
func TestStore_BackendParity(t *testing.T) {
	for _, backend := range []string{types.BackendSQLite, types.BackendLocalStore} {
		t.Run(backend, func(t *testing.T) {
			s := openBackend(t, backend)

			created, err := s.AddProduct(types.Product{
				Reference:    "SKU-1",
				Name:         "Widget",
				Quantity:     10,
				SellingPrice: decimal.NewFromFloat(19.99),
			})
			require.NoError(t, err)
			assert.NotEmpty(t, created.ID)
			assert.Equal(t, types.ProductActive, created.Status)
			assert.NotNil(t, created.Instances)

			got, err := s.GetProduct(created.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, created.ID, got.ID)
			assert.True(t, got.SellingPrice.Equal(decimal.NewFromFloat(19.99)))
			assert.NotNil(t, got.Instances, "both backends return non-nil children")

			missing, err := s.GetProduct("missing")
			require.NoError(t, err)
			assert.Nil(t, missing, "not-found is not an error")

			_, err = s.AddProduct(types.Product{Reference: "SKU-1", Name: "Dup"})
			assert.True(t, types.IsDuplicateKey(err))

			inv, err := s.AddInvoice(types.Invoice{
				CustomerName: "Alice",
				Items: []types.InvoiceItem{{
					ProductID: created.ID, ProductName: "Widget", Quantity: 1,
					Price: decimal.NewFromFloat(19.99), Total: decimal.NewFromFloat(19.99),
				}},
				Total:  decimal.NewFromFloat(19.99),
				Status: types.InvoicePaid,
			})
			require.NoError(t, err)

			stats, err := s.Stats()
			require.NoError(t, err)
			assert.Equal(t, 1, stats.ProductCount)
			assert.Equal(t, 1, stats.TotalInvoices)
			assert.True(t, stats.TotalRevenue.Equal(inv.Total))

			deleted, err := s.DeleteProduct(created.ID)
			require.NoError(t, err)
			assert.True(t, deleted)
		})
	}
}

func TestStore_ExportImportRoundTrip(t *testing.T) {
	src := openBackend(t, types.BackendSQLite)

	product, err := src.AddProduct(types.Product{
		Reference:     "SKU-1",
		Name:          "Phone",
		PurchasePrice: decimal.NewFromFloat(100.25),
		SellingPrice:  decimal.NewFromFloat(250.00),
		Instances: []types.ProductInstance{
			{ReferenceNumber: "IMEI-1"},
		},
	})
	require.NoError(t, err)
	_, err = src.AddCustomer(types.Customer{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	_, err = src.AddCategory(types.Category{Name: "Phones"})
	require.NoError(t, err)
	_, err = src.AddInvoice(types.Invoice{
		CustomerName: "Alice",
		Total:        decimal.NewFromFloat(250.00),
		Status:       types.InvoicePaid,
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, src.ExportTo(path))

	// Restore into a fresh store on the other backend.
	dst := openBackend(t, types.BackendLocalStore)
	report, err := dst.ImportFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Total())
	assert.Empty(t, report.Failures)

	got, err := dst.GetProduct(product.ID)
	require.NoError(t, err)
	require.NotNil(t, got, "ids survive the round trip")
	assert.Equal(t, product.CreatedAt, got.CreatedAt)
	assert.True(t, got.PurchasePrice.Equal(decimal.NewFromFloat(100.25)),
		"purchase price survives the round trip")
	require.Len(t, got.Instances, 1)
	assert.Equal(t, "IMEI-1", got.Instances[0].ReferenceNumber)
}

func TestStore_ImportReplacesWholesale(t *testing.T) {
	s := openBackend(t, types.BackendSQLite)

	_, err := s.AddProduct(types.Product{Reference: "OLD", Name: "Old"})
	require.NoError(t, err)

	_, err = s.Import(&types.Dataset{
		Products: []types.Product{{Reference: "NEW", Name: "New"}},
	})
	require.NoError(t, err)

	products, err := s.ListProducts()
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "NEW", products[0].Reference)
}

func TestStore_MigrationRunsOnSQLiteOpen(t *testing.T) {
	dataDir := t.TempDir()

	// Seed the legacy store the way the old application left it.
	legacy, err := kvstore.Open(dataDir)
	require.NoError(t, err)
	_, err = legacy.AddProduct(types.Product{Reference: "SKU-1", Name: "Legacy widget"})
	require.NoError(t, err)
	require.NoError(t, legacy.Close())

	s, err := Open(types.Config{Backend: types.BackendSQLite, DataDir: dataDir}, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	report := s.MigrationReport()
	require.NotNil(t, report)
	assert.False(t, report.Skipped)
	assert.Equal(t, 1, report.Imported.Products)

	products, err := s.ListProducts()
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "SKU-1", products[0].Reference)
}

func TestStore_LocalStoreSkipsMigration(t *testing.T) {
	s := openBackend(t, types.BackendLocalStore)
	assert.Nil(t, s.MigrationReport())
	assert.Empty(t, s.DatabasePath())
}

func TestStore_Backup(t *testing.T) {
	s := openBackend(t, types.BackendSQLite)

	_, err := s.AddProduct(types.Product{Reference: "SKU-1", Name: "Widget"})
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "backup.db")
	require.NoError(t, s.Backup(dest))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	// The key-value backend has no single database file to snapshot.
	kv := openBackend(t, types.BackendLocalStore)
	err = kv.Backup(filepath.Join(t.TempDir(), "nope.db"))
	assert.Error(t, err)
}

func TestStore_ClosedContract(t *testing.T) {
	s := openBackend(t, types.BackendSQLite)
	require.NoError(t, s.Close())

	_, err := s.ListProducts()
	assert.True(t, errors.Is(err, types.ErrStoreClosed))
}
