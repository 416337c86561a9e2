// Package types defines the entity schema, validation rules, error
// taxonomy, and the Backend interface for the Stockroom storage system.
//
// JSON tags on the entity structs are a compatibility surface: they match
// the legacy key-value store and the export file format exactly, including
// the mixed snake/camel casing (purchase_price vs lowStockThreshold) that
// the legacy data carries. Do not "clean up" the tags.
package types

import "github.com/shopspring/decimal"

func init() {
	// Legacy records and export files carry prices as JSON numbers,
	// not strings.
	decimal.MarshalJSONWithoutQuotes = true
}
