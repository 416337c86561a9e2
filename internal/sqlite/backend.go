package sqlite

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/stockroom/pkg/types"
)

// DBFileName is the database file created under the data directory.
const DBFileName = "inventory.db"

// Compile-time interface check.
var _ types.Backend = (*Backend)(nil)

// Backend implements types.Backend on an embedded SQLite database.
//
// The connection pool is capped at one connection: the database file is a
// single-writer resource and a single connection keeps the per-connection
// pragmas in force for every statement.
type Backend struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	log    zerolog.Logger
	closed bool
}

// Open creates the data directory if needed, opens (or creates) the
// database file, and applies the schema. Failure to open the file is
// reported as ErrBackendUnavailable.
//
// Durability choices favor a desktop single-user workload: write-ahead
// logging for crash recovery, synchronous=NORMAL for balanced durability
// and write latency.
func Open(dataDir string, logger zerolog.Logger) (*Backend, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating data dir: %v", types.ErrBackendUnavailable, err)
	}

	path := filepath.Join(dataDir, DBFileName)
	dsn := "file:" + url.PathEscape(path) +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrBackendUnavailable, err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: applying schema: %v", types.ErrBackendUnavailable, err)
		}
	}

	logger.Debug().Str("path", path).Msg("sqlite backend opened")
	return &Backend{db: db, path: path, log: logger}, nil
}

// Path returns the database file path.
func (b *Backend) Path() string { return b.path }

// Close releases the database connection. Idempotent; operations after
// Close return ErrStoreClosed.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return fmt.Errorf("closing database: %w", err)
		}
		b.db = nil
	}
	return nil
}

func (b *Backend) checkOpen() error {
	if b.closed {
		return types.ErrStoreClosed
	}
	return nil
}

// nullable maps empty strings to NULL so optional columns stay NULL,
// matching how the legacy data was written.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// orEmpty unwraps a nullable text column scan target.
func orEmpty(s sql.NullString) string {
	if s.Valid {
		return s.String
	}
	return ""
}
