package paths

import (
	"path/filepath"
	"testing"
)

func TestResolveDataDir_Precedence(t *testing.T) {
	t.Setenv(EnvDataDir, "/env/data")

	got, err := ResolveDataDir("/flag/data", "/config/data")
	if err != nil {
		t.Fatalf("ResolveDataDir failed: %v", err)
	}
	if got != "/flag/data" {
		t.Errorf("flag should win, got %q", got)
	}

	got, err = ResolveDataDir("", "/config/data")
	if err != nil {
		t.Fatalf("ResolveDataDir failed: %v", err)
	}
	if got != "/config/data" {
		t.Errorf("config should beat env, got %q", got)
	}

	got, err = ResolveDataDir("", "")
	if err != nil {
		t.Fatalf("ResolveDataDir failed: %v", err)
	}
	if got != "/env/data" {
		t.Errorf("env should beat default, got %q", got)
	}
}

func TestResolveConfigDir_Precedence(t *testing.T) {
	t.Setenv(EnvConfigDir, "/env/config")

	got, err := ResolveConfigDir("/flag/config")
	if err != nil {
		t.Fatalf("ResolveConfigDir failed: %v", err)
	}
	if got != "/flag/config" {
		t.Errorf("flag should win, got %q", got)
	}

	got, err = ResolveConfigDir("")
	if err != nil {
		t.Fatalf("ResolveConfigDir failed: %v", err)
	}
	if got != "/env/config" {
		t.Errorf("env should beat default, got %q", got)
	}
}

func TestDefaultDirs_EndWithAppName(t *testing.T) {
	t.Setenv(EnvConfigDir, "")
	t.Setenv(EnvDataDir, "")

	configDir, err := DefaultConfigDir()
	if err != nil {
		t.Fatalf("DefaultConfigDir failed: %v", err)
	}
	if filepath.Base(configDir) != appDirName {
		t.Errorf("config dir %q should end with %q", configDir, appDirName)
	}

	dataDir, err := DefaultDataDir()
	if err != nil {
		t.Fatalf("DefaultDataDir failed: %v", err)
	}
	if filepath.Base(dataDir) != appDirName {
		t.Errorf("data dir %q should end with %q", dataDir, appDirName)
	}
}
