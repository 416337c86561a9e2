package kvstore

import "github.com/mesh-intelligence/stockroom/pkg/types"

// ImportDataset writes a dataset into the store. Replace mode overwrites
// the four collection keys wholesale, preserving every field of every
// record. Merge mode appends record by record, generating missing ids and
// timestamps and collecting per-record failures without aborting the
// batch.
func (b *Backend) ImportDataset(ds *types.Dataset, mode types.ImportMode) (*types.ImportReport, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	if mode == types.ImportReplace {
		return b.replaceDatasetLocked(ds)
	}
	return b.mergeDatasetLocked(ds)
}

func (b *Backend) replaceDatasetLocked(ds *types.Dataset) (*types.ImportReport, error) {
	products := ds.Products
	if products == nil {
		products = []types.Product{}
	}
	for i := range products {
		if products[i].Instances == nil {
			products[i].Instances = []types.ProductInstance{}
		}
	}
	invoices := ds.Invoices
	if invoices == nil {
		invoices = []types.Invoice{}
	}
	for i := range invoices {
		if invoices[i].Items == nil {
			invoices[i].Items = []types.InvoiceItem{}
		}
	}

	if err := writeList(b.kv, KeyProducts, products); err != nil {
		return nil, err
	}
	if err := writeList(b.kv, KeyInvoices, invoices); err != nil {
		return nil, err
	}
	if err := writeList(b.kv, KeyCustomers, ds.Customers); err != nil {
		return nil, err
	}
	if err := writeList(b.kv, KeyCategories, ds.Categories); err != nil {
		return nil, err
	}
	return &types.ImportReport{
		Products:   len(products),
		Invoices:   len(invoices),
		Customers:  len(ds.Customers),
		Categories: len(ds.Categories),
	}, nil
}

func (b *Backend) mergeDatasetLocked(ds *types.Dataset) (*types.ImportReport, error) {
	report := &types.ImportReport{}

	products, err := b.listProductsLocked()
	if err != nil {
		return nil, err
	}
	for _, p := range ds.Products {
		p.ApplyDefaults()
		fillRecord(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		err := p.Validate()
		if err == nil {
			err = checkProductKeys(products, &p, "")
		}
		if err != nil {
			report.Failures = append(report.Failures, types.MigrationRecordError{
				Collection: KeyProducts, RecordID: p.ID, Err: err,
			})
			continue
		}
		for i := range p.Instances {
			if p.Instances[i].ID == "" {
				p.Instances[i].ID = types.NewID()
			}
		}
		products = append(products, p)
		report.Products++
	}
	if err := writeList(b.kv, KeyProducts, products); err != nil {
		return nil, err
	}

	invoices, err := b.listInvoicesLocked()
	if err != nil {
		return nil, err
	}
	for _, inv := range ds.Invoices {
		inv.ApplyDefaults()
		fillRecord(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
		if err := inv.Validate(); err != nil {
			report.Failures = append(report.Failures, types.MigrationRecordError{
				Collection: KeyInvoices, RecordID: inv.ID, Err: err,
			})
			continue
		}
		invoices = append(invoices, inv)
		report.Invoices++
	}
	if err := writeList(b.kv, KeyInvoices, invoices); err != nil {
		return nil, err
	}

	customers, err := readList[types.Customer](b.kv, KeyCustomers)
	if err != nil {
		return nil, err
	}
	for _, c := range ds.Customers {
		fillRecord(&c.ID, &c.CreatedAt, nil)
		if err := c.Validate(); err != nil {
			report.Failures = append(report.Failures, types.MigrationRecordError{
				Collection: KeyCustomers, RecordID: c.ID, Err: err,
			})
			continue
		}
		customers = append(customers, c)
		report.Customers++
	}
	if err := writeList(b.kv, KeyCustomers, customers); err != nil {
		return nil, err
	}

	categories, err := readList[types.Category](b.kv, KeyCategories)
	if err != nil {
		return nil, err
	}
	for _, c := range ds.Categories {
		fillRecord(&c.ID, &c.CreatedAt, nil)
		err := c.Validate()
		if err == nil {
			for i := range categories {
				if categories[i].Name == c.Name {
					err = &types.DuplicateKeyError{Field: "name", Value: c.Name}
					break
				}
			}
		}
		if err != nil {
			report.Failures = append(report.Failures, types.MigrationRecordError{
				Collection: KeyCategories, RecordID: c.ID, Err: err,
			})
			continue
		}
		categories = append(categories, c)
		report.Categories++
	}
	if err := writeList(b.kv, KeyCategories, categories); err != nil {
		return nil, err
	}

	return report, nil
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
