package sqlite

import (
	"errors"
	"strings"

	sqlite3 "modernc.org/sqlite"

	"github.com/mesh-intelligence/stockroom/pkg/types"
)

// SQLite extended result codes for unique-constraint violations.
const (
	codeConstraintPrimaryKey = 1555
	codeConstraintUnique     = 2067
)

// columnFields maps "table.column" from the engine's constraint message to
// the JSON field name surfaced in DuplicateKeyError.
var columnFields = map[string]string{
	"products.reference":                 "reference",
	"product_instances.reference_number": "referenceNumber",
	"categories.name":                    "name",
	"users.email":                        "email",
}

// translateErr converts a unique-constraint violation into a typed
// DuplicateKeyError carrying the offending field and value. Other engine
// errors pass through unchanged.
func translateErr(err error, value string) error {
	if err == nil {
		return nil
	}
	var se *sqlite3.Error
	if !errors.As(err, &se) {
		return err
	}
	switch se.Code() {
	case codeConstraintUnique, codeConstraintPrimaryKey:
		return &types.DuplicateKeyError{Field: constraintField(se.Error()), Value: value}
	}
	return err
}

// constraintField extracts the column name from a message like
// "constraint failed: UNIQUE constraint failed: products.reference".
func constraintField(msg string) string {
	idx := strings.LastIndex(msg, "failed: ")
	if idx == -1 {
		return "key"
	}
	col := strings.TrimSpace(msg[idx+len("failed: "):])
	if field, ok := columnFields[col]; ok {
		return field
	}
	if dot := strings.LastIndex(col, "."); dot != -1 && dot+1 < len(col) {
		return col[dot+1:]
	}
	return "key"
}
