package kvstore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileKV_RoundTrip(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileKV failed: %v", err)
	}

	if _, ok, _ := kv.Get(KeyProducts); ok {
		t.Fatal("missing key should report !ok")
	}

	if err := kv.Set(KeyProducts, `[{"id":"p1"}]`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, ok, err := kv.Get(KeyProducts)
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if v != `[{"id":"p1"}]` {
		t.Errorf("unexpected value %q", v)
	}

	if err := kv.Delete(KeyProducts); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := kv.Get(KeyProducts); ok {
		t.Error("deleted key should report !ok")
	}
	// Deleting a missing key is not an error.
	if err := kv.Delete(KeyProducts); err != nil {
		t.Errorf("second Delete should not error, got %v", err)
	}
}

func TestFileKV_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	kv, err := NewFileKV(dir)
	if err != nil {
		t.Fatalf("NewFileKV failed: %v", err)
	}
	if err := kv.Set(KeyCustomers, "[]"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	reopened, err := NewFileKV(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	v, ok, err := reopened.Get(KeyCustomers)
	if err != nil || !ok {
		t.Fatalf("Get after reopen failed: ok=%v err=%v", ok, err)
	}
	if v != "[]" {
		t.Errorf("unexpected value %q", v)
	}
}

func TestFileKV_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(dir)
	if err != nil {
		t.Fatalf("NewFileKV failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		if err := kv.Set(KeyInvoices, "[]"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestContainsFold(t *testing.T) {
	if !containsFold("iPhone 15 Pro", "phone") {
		t.Error("case-insensitive substring should match")
	}
	if containsFold("Widget", "phone") {
		t.Error("non-substring should not match")
	}
}
