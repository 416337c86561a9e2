package migrate

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/stockroom/internal/kvstore"
	"github.com/mesh-intelligence/stockroom/internal/sqlite"
	"github.com/mesh-intelligence/stockroom/pkg/types"
)

func newLegacy(t *testing.T) *kvstore.Backend {
	t.Helper()
	src, err := kvstore.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { src.Close() })
	return src
}

func newDst(t *testing.T, dir string) *sqlite.Backend {
	t.Helper()
	dst, err := sqlite.Open(dir, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { dst.Close() })
	return dst
}

func seedLegacy(t *testing.T, src *kvstore.Backend) {
	t.Helper()
	_, err := src.AddProduct(types.Product{
		Reference:    "SKU-1",
		Name:         "Widget",
		Quantity:     10,
		SellingPrice: decimal.NewFromFloat(19.99),
	})
	require.NoError(t, err)
	_, err = src.AddInvoice(types.Invoice{
		CustomerName: "Alice",
		Total:        decimal.NewFromInt(20),
		Status:       types.InvoicePaid,
	})
	require.NoError(t, err)
	_, err = src.AddCustomer(types.Customer{Name: "Alice"})
	require.NoError(t, err)
	_, err = src.AddCategory(types.Category{Name: "Widgets"})
	require.NoError(t, err)
}

func TestRun_MovesEverything(t *testing.T) {
	src := newLegacy(t)
	dst := newDst(t, t.TempDir())
	seedLegacy(t, src)

	report, err := Run(src, dst, zerolog.Nop())
	require.NoError(t, err)
	assert.False(t, report.Skipped)
	assert.Equal(t, 4, report.Imported.Total())
	assert.Empty(t, report.Failures)

	products, err := dst.ListProducts()
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "SKU-1", products[0].Reference)
	assert.True(t, products[0].SellingPrice.Equal(decimal.NewFromFloat(19.99)))

	// The completion marker is recorded in the destination.
	v, ok, err := dst.GetSetting(SettingMigrationVersion)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, CurrentVersion, v)

	// Legacy collections are cleared so a later run finds nothing.
	legacyProducts, err := src.ListProducts()
	require.NoError(t, err)
	assert.Empty(t, legacyProducts)
}

func TestRun_PreservesIdentity(t *testing.T) {
	src := newLegacy(t)
	dst := newDst(t, t.TempDir())

	created, err := src.AddProduct(types.Product{Reference: "SKU-1", Name: "Widget"})
	require.NoError(t, err)

	_, err = Run(src, dst, zerolog.Nop())
	require.NoError(t, err)

	got, err := dst.GetProduct(created.ID)
	require.NoError(t, err)
	require.NotNil(t, got, "migrated record must keep its original id")
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
}

func TestRun_SecondRunSkips(t *testing.T) {
	src := newLegacy(t)
	dst := newDst(t, t.TempDir())
	seedLegacy(t, src)

	_, err := Run(src, dst, zerolog.Nop())
	require.NoError(t, err)

	report, err := Run(src, dst, zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, report.Skipped)
}

func TestRun_MarkerSurvivesReopen(t *testing.T) {
	src := newLegacy(t)
	dstDir := t.TempDir()

	dst, err := sqlite.Open(dstDir, zerolog.Nop())
	require.NoError(t, err)
	seedLegacy(t, src)
	_, err = Run(src, dst, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, dst.Close())

	// Seed the legacy store again; a reopened destination must still
	// refuse to migrate because the marker is persisted, not in memory.
	seedLegacy(t, src)
	reopened := newDst(t, dstDir)
	report, err := Run(src, reopened, zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, report.Skipped)

	products, err := reopened.ListProducts()
	require.NoError(t, err)
	assert.Len(t, products, 1, "skipped run must not re-import")
}

func TestRun_BadRecordDoesNotAbort(t *testing.T) {
	src := newLegacy(t)
	dst := newDst(t, t.TempDir())

	// Replace mode writes records verbatim, so an invalid one can exist
	// in the legacy store the way hand-edited data could.
	_, err := src.ImportDataset(&types.Dataset{
		Products: []types.Product{
			{Reference: "SKU-1", Name: "Good"},
			{Reference: "", Name: "Bad"},
			{Reference: "SKU-2", Name: "Also good"},
		},
	}, types.ImportReplace)
	require.NoError(t, err)

	report, err := Run(src, dst, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Imported.Products)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "products", report.Failures[0].Collection)

	// Completion is recorded and the legacy store cleared even though a
	// record failed; the survivors must not be re-imported later.
	_, ok, err := dst.GetSetting(SettingMigrationVersion)
	require.NoError(t, err)
	assert.True(t, ok)
	legacyProducts, err := src.ListProducts()
	require.NoError(t, err)
	assert.Empty(t, legacyProducts)
}

func TestRun_EmptyLegacyStillMarksDone(t *testing.T) {
	src := newLegacy(t)
	dst := newDst(t, t.TempDir())

	report, err := Run(src, dst, zerolog.Nop())
	require.NoError(t, err)
	assert.False(t, report.Skipped)
	assert.Zero(t, report.Imported.Total())

	_, ok, err := dst.GetSetting(SettingMigrationVersion)
	require.NoError(t, err)
	assert.True(t, ok)
}
