package sqlite

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/stockroom/pkg/types"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := Open(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestOpen_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	b, err := Open(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer b.Close()

	dbPath := filepath.Join(dir, DBFileName)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("%s not created", DBFileName)
	}
	if b.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", b.Path(), dbPath)
	}
}

func TestOpen_CreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	b, err := Open(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open with missing directory failed: %v", err)
	}
	defer b.Close()

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("data directory not created: %v", err)
	}
}

func TestOpen_EnablesWAL(t *testing.T) {
	dir := t.TempDir()
	b, err := Open(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer b.Close()

	var mode string
	if err := b.db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("querying journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	if _, err := b.AddProduct(types.Product{Reference: "SKU-WAL", Name: "Widget"}); err != nil {
		t.Fatalf("AddProduct failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, DBFileName+"-wal")); err != nil {
		t.Errorf("WAL sidecar file missing: %v", err)
	}
}

func TestOpen_SchemaSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	b, err := Open(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	created, err := b.AddProduct(types.Product{Reference: "SKU-1", Name: "Widget"})
	if err != nil {
		t.Fatalf("AddProduct failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetProduct(created.ID)
	if err != nil {
		t.Fatalf("GetProduct after reopen failed: %v", err)
	}
	if got == nil || got.Reference != "SKU-1" {
		t.Errorf("product did not survive reopen: %+v", got)
	}
}

func TestBackend_ClosedContract(t *testing.T) {
	b, err := Open(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("second Close should not error, got %v", err)
	}

	if _, err := b.ListProducts(); !errors.Is(err, types.ErrStoreClosed) {
		t.Errorf("expected ErrStoreClosed, got %v", err)
	}
	if _, _, err := b.GetSetting("x"); !errors.Is(err, types.ErrStoreClosed) {
		t.Errorf("expected ErrStoreClosed, got %v", err)
	}
}

func TestBackend_Settings(t *testing.T) {
	b := newTestBackend(t)

	_, ok, err := b.GetSetting("migration_version")
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if ok {
		t.Fatal("unset key should report !ok")
	}

	if err := b.SetSetting("migration_version", "1"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if err := b.SetSetting("migration_version", "2"); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	v, ok, err := b.GetSetting("migration_version")
	if err != nil || !ok {
		t.Fatalf("GetSetting failed: ok=%v err=%v", ok, err)
	}
	if v != "2" {
		t.Errorf("expected %q, got %q", "2", v)
	}
}

func TestConstraintField(t *testing.T) {
	if got := constraintField("UNIQUE constraint failed: products.reference"); got != "reference" {
		t.Errorf("expected %q, got %q", "reference", got)
	}
	if got := constraintField("UNIQUE constraint failed: users.email"); got != "email" {
		t.Errorf("expected %q, got %q", "email", got)
	}
	if got := constraintField("no marker here"); got != "key" {
		t.Errorf("expected fallback %q, got %q", "key", got)
	}
}
