package types

import (
	"errors"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	if err := (Config{Backend: BackendSQLite}).Validate(); err != nil {
		t.Errorf("sqlite backend rejected: %v", err)
	}
	if err := (Config{Backend: BackendLocalStore}).Validate(); err != nil {
		t.Errorf("localstore backend rejected: %v", err)
	}
	if err := (Config{}).Validate(); !errors.Is(err, ErrBackendEmpty) {
		t.Errorf("expected ErrBackendEmpty, got %v", err)
	}
	if err := (Config{Backend: "postgres"}).Validate(); !errors.Is(err, ErrBackendUnknown) {
		t.Errorf("expected ErrBackendUnknown, got %v", err)
	}
}
