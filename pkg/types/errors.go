package types

import (
	"errors"
	"fmt"
)

// Store lifecycle errors.
var (
	// ErrBackendUnavailable means the configured backend could not be
	// reached or could not open its storage (disk permission, corruption).
	// The operation is not retried automatically.
	ErrBackendUnavailable = errors.New("storage backend unavailable")

	// ErrStoreClosed is returned by operations after Close.
	ErrStoreClosed = errors.New("store is closed")
)

// ValidationError reports malformed or constraint-violating input. It is
// returned before any persistence attempt.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DuplicateKeyError reports a unique-constraint violation (product
// reference, instance reference number, category name, user email).
type DuplicateKeyError struct {
	Field string
	Value string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate %s %q", e.Field, e.Value)
}

// MigrationRecordError reports a single record that failed to migrate or
// import. It is collected and reported, never escalated to a batch abort.
type MigrationRecordError struct {
	Collection string
	RecordID   string
	Err        error
}

func (e *MigrationRecordError) Error() string {
	return fmt.Sprintf("migrating %s record %q: %v", e.Collection, e.RecordID, e.Err)
}

func (e *MigrationRecordError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsDuplicateKey reports whether err is (or wraps) a DuplicateKeyError.
func IsDuplicateKey(err error) bool {
	var de *DuplicateKeyError
	return errors.As(err, &de)
}
