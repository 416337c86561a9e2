// Package migrate moves data from the legacy key/value store into a
// relational backend, once. Completion is recorded in the destination's
// settings table so the check survives restarts; the legacy collections
// are cleared afterwards so a later run finds nothing to move.
package migrate

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/stockroom/internal/kvstore"
	"github.com/mesh-intelligence/stockroom/pkg/types"
)

// SettingMigrationVersion is the settings key that marks a completed
// migration. Its value is the schema version the data was migrated into.
const SettingMigrationVersion = "migration_version"

// CurrentVersion is written as the marker value on completion.
const CurrentVersion = "1"

// Report summarizes a migration run.
type Report struct {
	// Skipped is true when the destination already carries the
	// completion marker and nothing was examined.
	Skipped bool
	// Imported counts successfully moved records per collection.
	Imported types.ImportReport
	// Failures carries the records that could not be moved. They remain
	// in the report for the operator; the rest of the batch commits.
	Failures []types.MigrationRecordError
}

// Run migrates every legacy collection from src into dst. Records fail
// individually without aborting the batch; the completion marker is set
// and the legacy collections are cleared even on partial failure, so the
// surviving data is not re-imported on the next start.
func Run(src *kvstore.Backend, dst types.Backend, log zerolog.Logger) (*Report, error) {
	if _, done, err := dst.GetSetting(SettingMigrationVersion); err != nil {
		return nil, fmt.Errorf("checking migration marker: %w", err)
	} else if done {
		log.Debug().Msg("migration already completed, skipping")
		return &Report{Skipped: true}, nil
	}

	ds, err := readLegacy(src)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	total := len(ds.Products) + len(ds.Invoices) + len(ds.Customers) + len(ds.Categories)
	if total > 0 {
		log.Info().
			Int("products", len(ds.Products)).
			Int("invoices", len(ds.Invoices)).
			Int("customers", len(ds.Customers)).
			Int("categories", len(ds.Categories)).
			Msg("migrating legacy store")

		imported, err := dst.ImportDataset(ds, types.ImportMerge)
		if err != nil {
			return nil, fmt.Errorf("importing legacy data: %w", err)
		}
		report.Imported = *imported
		report.Failures = imported.Failures
		for _, f := range report.Failures {
			log.Warn().
				Str("collection", f.Collection).
				Str("record", f.RecordID).
				Err(f.Err).
				Msg("record skipped during migration")
		}
	}

	if err := dst.SetSetting(SettingMigrationVersion, CurrentVersion); err != nil {
		return nil, fmt.Errorf("recording migration completion: %w", err)
	}
	if err := src.ClearCollections(); err != nil {
		return nil, fmt.Errorf("clearing legacy store: %w", err)
	}

	log.Info().
		Int("migrated", report.Imported.Total()).
		Int("failed", len(report.Failures)).
		Msg("migration complete")
	return report, nil
}

func readLegacy(src *kvstore.Backend) (*types.Dataset, error) {
	products, err := src.ListProducts()
	if err != nil {
		return nil, fmt.Errorf("reading legacy products: %w", err)
	}
	invoices, err := src.ListInvoices()
	if err != nil {
		return nil, fmt.Errorf("reading legacy invoices: %w", err)
	}
	customers, err := src.ListCustomers()
	if err != nil {
		return nil, fmt.Errorf("reading legacy customers: %w", err)
	}
	categories, err := src.ListCategories()
	if err != nil {
		return nil, fmt.Errorf("reading legacy categories: %w", err)
	}
	return &types.Dataset{
		Products:   products,
		Invoices:   invoices,
		Customers:  customers,
		Categories: categories,
	}, nil
}
