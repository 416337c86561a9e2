package types

import "errors"

// Config selects and parameterizes the storage backend for store.Open.
type Config struct {
	Backend string `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
}

// Supported backend names.
const (
	// BackendSQLite stores entities in normalized tables inside an
	// embedded SQLite database file.
	BackendSQLite = "sqlite"
	// BackendLocalStore stores each entity collection as one JSON array
	// under a well-known key in a file-backed key-value store. This is
	// the legacy mechanism the migration engine moves data away from.
	BackendLocalStore = "localstore"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
)

var knownBackends = map[string]bool{
	BackendSQLite:     true,
	BackendLocalStore: true,
}

// Validate checks that the Config is well-formed.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	return nil
}
