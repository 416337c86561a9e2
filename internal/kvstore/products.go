package kvstore

import "github.com/mesh-intelligence/stockroom/pkg/types"

// ListProducts returns the full product collection, oldest first.
func (b *Backend) ListProducts() ([]types.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	return b.listProductsLocked()
}

func (b *Backend) listProductsLocked() ([]types.Product, error) {
	products, err := readList[types.Product](b.kv, KeyProducts)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].Instances == nil {
			products[i].Instances = []types.ProductInstance{}
		}
	}
	return products, nil
}

// GetProduct returns the product with the given id, or nil if absent.
func (b *Backend) GetProduct(id string) (*types.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	products, err := b.listProductsLocked()
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			p := products[i]
			return &p, nil
		}
	}
	return nil, nil
}

// AddProduct validates, assigns id and timestamps, and appends the product.
// A duplicate reference or instance reference number fails with a
// DuplicateKeyError and leaves the collection unchanged.
func (b *Backend) AddProduct(p types.Product) (*types.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	products, err := b.listProductsLocked()
	if err != nil {
		return nil, err
	}
	if err := checkProductKeys(products, &p, ""); err != nil {
		return nil, err
	}

	now := types.Now()
	p.ID = types.NewID()
	p.CreatedAt = now
	p.UpdatedAt = now
	for i := range p.Instances {
		if p.Instances[i].ID == "" {
			p.Instances[i].ID = types.NewID()
		}
	}

	products = append(products, p)
	if err := writeList(b.kv, KeyProducts, products); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProduct applies a partial update. Returns (nil, nil) when no
// product has the given id.
func (b *Backend) UpdateProduct(id string, patch types.ProductPatch) (*types.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	products, err := b.listProductsLocked()
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range products {
		if products[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, nil
	}

	p := products[idx]
	if patch.Reference != nil {
		p.Reference = *patch.Reference
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Quantity != nil {
		p.Quantity = *patch.Quantity
	}
	if patch.PurchasePrice != nil {
		p.PurchasePrice = *patch.PurchasePrice
	}
	if patch.SellingPrice != nil {
		p.SellingPrice = *patch.SellingPrice
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.LowStockThreshold != nil {
		p.LowStockThreshold = *patch.LowStockThreshold
	}
	if patch.Instances != nil {
		p.Instances = append([]types.ProductInstance{}, (*patch.Instances)...)
		for i := range p.Instances {
			if p.Instances[i].ID == "" {
				p.Instances[i].ID = types.NewID()
			}
			if p.Instances[i].Status == "" {
				p.Instances[i].Status = types.InstanceAvailable
			}
		}
	}
	p.UpdatedAt = types.Now()

	if err := checkProductKeys(products, &p, id); err != nil {
		return nil, err
	}

	products[idx] = p
	if err := writeList(b.kv, KeyProducts, products); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProduct removes the product and, because instances are embedded in
// the same record, all of its instances with it. Returns false when no
// product has the given id.
func (b *Backend) DeleteProduct(id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return false, err
	}

	products, err := b.listProductsLocked()
	if err != nil {
		return false, err
	}
	filtered := products[:0]
	for i := range products {
		if products[i].ID != id {
			filtered = append(filtered, products[i])
		}
	}
	if len(filtered) == len(products) {
		return false, nil
	}
	if err := writeList(b.kv, KeyProducts, filtered); err != nil {
		return false, err
	}
	return true, nil
}

// UpdateInstance patches one instance of a product, persisting status,
// soldAt and invoiceId together. Returns (nil, nil) when the product or
// the instance is absent.
func (b *Backend) UpdateInstance(productID, instanceID string, patch types.InstancePatch) (*types.ProductInstance, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	products, err := b.listProductsLocked()
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID != productID {
			continue
		}
		for j := range products[i].Instances {
			inst := &products[i].Instances[j]
			if inst.ID != instanceID {
				continue
			}
			if patch.Status != nil {
				inst.Status = *patch.Status
			}
			if patch.SoldAt != nil {
				inst.SoldAt = *patch.SoldAt
			}
			if patch.InvoiceID != nil {
				inst.InvoiceID = *patch.InvoiceID
			}
			products[i].UpdatedAt = types.Now()
			if err := writeList(b.kv, KeyProducts, products); err != nil {
				return nil, err
			}
			out := *inst
			return &out, nil
		}
		return nil, nil
	}
	return nil, nil
}

// SearchProducts returns products whose name contains the given substring,
// case-insensitively.
func (b *Backend) SearchProducts(name string) ([]types.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	products, err := b.listProductsLocked()
	if err != nil {
		return nil, err
	}
	matched := []types.Product{}
	for i := range products {
		if containsFold(products[i].Name, name) {
			matched = append(matched, products[i])
		}
	}
	return matched, nil
}

// checkProductKeys enforces uniqueness of product references and instance
// reference numbers across the collection, excluding the record with
// excludeID (the one being updated).
func checkProductKeys(products []types.Product, candidate *types.Product, excludeID string) error {
	refs := make(map[string]bool)
	for i := range candidate.Instances {
		refs[candidate.Instances[i].ReferenceNumber] = true
	}
	for i := range products {
		p := &products[i]
		if p.ID == excludeID || p.ID == candidate.ID {
			continue
		}
		if p.Reference == candidate.Reference {
			return &types.DuplicateKeyError{Field: "reference", Value: candidate.Reference}
		}
		for j := range p.Instances {
			if refs[p.Instances[j].ReferenceNumber] {
				return &types.DuplicateKeyError{Field: "referenceNumber", Value: p.Instances[j].ReferenceNumber}
			}
		}
	}
	return nil
}
