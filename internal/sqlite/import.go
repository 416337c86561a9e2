package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/stockroom/pkg/types"
)

// ImportDataset writes a dataset into the database in a single
// transaction. Replace mode empties the four collections first and fails
// atomically on any bad record. Merge mode wraps every record in a
// savepoint so one bad record rolls back alone while the rest of the
// batch commits; the failures are collected in the report.
func (b *Backend) ImportDataset(ds *types.Dataset, mode types.ImportMode) (*types.ImportReport, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	tx, err := b.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning import transaction: %w", err)
	}
	defer tx.Rollback()

	var report *types.ImportReport
	if mode == types.ImportReplace {
		report, err = replaceDataset(tx, ds)
	} else {
		report, err = mergeDataset(tx, ds)
	}
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing import: %w", err)
	}
	return report, nil
}

func replaceDataset(tx *sql.Tx, ds *types.Dataset) (*types.ImportReport, error) {
	// Foreign keys cascade product_instances and invoice_items.
	for _, table := range []string{"invoices", "products", "customers", "categories"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return nil, fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	report := &types.ImportReport{}
	for _, p := range ds.Products {
		prepareProduct(&p)
		if err := insertProduct(tx, &p); err != nil {
			return nil, fmt.Errorf("importing product %s: %w", p.ID, err)
		}
		report.Products++
	}
	for _, inv := range ds.Invoices {
		prepareInvoice(&inv)
		if err := insertInvoice(tx, &inv); err != nil {
			return nil, fmt.Errorf("importing invoice %s: %w", inv.ID, err)
		}
		report.Invoices++
	}
	for _, c := range ds.Customers {
		fillRecord(&c.ID, &c.CreatedAt, nil)
		if err := insertCustomer(tx, &c); err != nil {
			return nil, fmt.Errorf("importing customer %s: %w", c.ID, err)
		}
		report.Customers++
	}
	for _, c := range ds.Categories {
		fillRecord(&c.ID, &c.CreatedAt, nil)
		if err := insertCategory(tx, &c); err != nil {
			return nil, fmt.Errorf("importing category %s: %w", c.ID, err)
		}
		report.Categories++
	}
	return report, nil
}

func mergeDataset(tx *sql.Tx, ds *types.Dataset) (*types.ImportReport, error) {
	report := &types.ImportReport{}

	for _, p := range ds.Products {
		prepareProduct(&p)
		err := p.Validate()
		if err == nil {
			err = withSavepoint(tx, func() error { return insertProduct(tx, &p) })
		}
		if err != nil {
			report.Failures = append(report.Failures, types.MigrationRecordError{
				Collection: "products", RecordID: p.ID, Err: err,
			})
			continue
		}
		report.Products++
	}

	for _, inv := range ds.Invoices {
		prepareInvoice(&inv)
		err := inv.Validate()
		if err == nil {
			err = withSavepoint(tx, func() error { return insertInvoice(tx, &inv) })
		}
		if err != nil {
			report.Failures = append(report.Failures, types.MigrationRecordError{
				Collection: "invoices", RecordID: inv.ID, Err: err,
			})
			continue
		}
		report.Invoices++
	}

	for _, c := range ds.Customers {
		fillRecord(&c.ID, &c.CreatedAt, nil)
		err := c.Validate()
		if err == nil {
			err = withSavepoint(tx, func() error { return insertCustomer(tx, &c) })
		}
		if err != nil {
			report.Failures = append(report.Failures, types.MigrationRecordError{
				Collection: "customers", RecordID: c.ID, Err: err,
			})
			continue
		}
		report.Customers++
	}

	for _, c := range ds.Categories {
		fillRecord(&c.ID, &c.CreatedAt, nil)
		err := c.Validate()
		if err == nil {
			err = withSavepoint(tx, func() error { return insertCategory(tx, &c) })
		}
		if err != nil {
			report.Failures = append(report.Failures, types.MigrationRecordError{
				Collection: "categories", RecordID: c.ID, Err: err,
			})
			continue
		}
		report.Categories++
	}

	return report, nil
}

// withSavepoint runs fn inside a savepoint on the ambient transaction,
// rolling back only fn's writes on failure.
func withSavepoint(tx *sql.Tx, fn func() error) error {
	if _, err := tx.Exec("SAVEPOINT record"); err != nil {
		return fmt.Errorf("opening savepoint: %w", err)
	}
	if err := fn(); err != nil {
		if _, rbErr := tx.Exec("ROLLBACK TO record"); rbErr != nil {
			return fmt.Errorf("rolling back savepoint after %w: %v", err, rbErr)
		}
		if _, relErr := tx.Exec("RELEASE record"); relErr != nil {
			return fmt.Errorf("releasing savepoint after %w: %v", err, relErr)
		}
		return err
	}
	if _, err := tx.Exec("RELEASE record"); err != nil {
		return fmt.Errorf("releasing savepoint: %w", err)
	}
	return nil
}

func prepareProduct(p *types.Product) {
	p.ApplyDefaults()
	fillRecord(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	for i := range p.Instances {
		if p.Instances[i].ID == "" {
			p.Instances[i].ID = types.NewID()
		}
	}
}

func prepareInvoice(inv *types.Invoice) {
	inv.ApplyDefaults()
	fillRecord(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
}

func insertCustomer(tx *sql.Tx, c *types.Customer) error {
	_, err := tx.Exec(
		"INSERT INTO customers (id, name, email, phone, address, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		c.ID, c.Name, nullable(c.Email), nullable(c.Phone), nullable(c.Address), c.CreatedAt,
	)
	if err != nil {
		return translateErr(err, c.Email)
	}
	return nil
}

func insertCategory(tx *sql.Tx, c *types.Category) error {
	_, err := tx.Exec(
		"INSERT INTO categories (id, name, description, created_at) VALUES (?, ?, ?, ?)",
		c.ID, c.Name, nullable(c.Description), c.CreatedAt,
	)
	if err != nil {
		return translateErr(err, c.Name)
	}
	return nil
}

// fillRecord generates missing identity fields on an imported record while
// preserving any the record already carries.
func fillRecord(id, createdAt, updatedAt *string) {
	if *id == "" {
		*id = types.NewID()
	}
	if *createdAt == "" {
		*createdAt = types.Now()
	}
	if updatedAt != nil && *updatedAt == "" {
		*updatedAt = *createdAt
	}
}
