package kvstore

import "github.com/mesh-intelligence/stockroom/pkg/types"

// ListCustomers returns the full customer collection, oldest first.
func (b *Backend) ListCustomers() ([]types.Customer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	return readList[types.Customer](b.kv, KeyCustomers)
}

// AddCustomer validates, assigns id and timestamp, and appends the
// customer.
func (b *Backend) AddCustomer(c types.Customer) (*types.Customer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	customers, err := readList[types.Customer](b.kv, KeyCustomers)
	if err != nil {
		return nil, err
	}
	c.ID = types.NewID()
	c.CreatedAt = types.Now()
	customers = append(customers, c)
	if err := writeList(b.kv, KeyCustomers, customers); err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateCustomer applies a partial update. Returns (nil, nil) when no
// customer has the given id. Customer records carry no updatedAt field.
func (b *Backend) UpdateCustomer(id string, patch types.CustomerPatch) (*types.Customer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	customers, err := readList[types.Customer](b.kv, KeyCustomers)
	if err != nil {
		return nil, err
	}
	for i := range customers {
		if customers[i].ID != id {
			continue
		}
		c := &customers[i]
		if patch.Name != nil {
			c.Name = *patch.Name
		}
		if patch.Email != nil {
			c.Email = *patch.Email
		}
		if patch.Address != nil {
			c.Address = *patch.Address
		}
		if patch.Phone != nil {
			c.Phone = *patch.Phone
		}
		if err := writeList(b.kv, KeyCustomers, customers); err != nil {
			return nil, err
		}
		out := *c
		return &out, nil
	}
	return nil, nil
}

// DeleteCustomer removes the customer. Returns false when no customer has
// the given id. Invoices are unaffected; they hold snapshots, not
// references.
func (b *Backend) DeleteCustomer(id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return false, err
	}

	customers, err := readList[types.Customer](b.kv, KeyCustomers)
	if err != nil {
		return false, err
	}
	filtered := customers[:0]
	for i := range customers {
		if customers[i].ID != id {
			filtered = append(filtered, customers[i])
		}
	}
	if len(filtered) == len(customers) {
		return false, nil
	}
	if err := writeList(b.kv, KeyCustomers, filtered); err != nil {
		return false, err
	}
	return true, nil
}

// ListCategories returns the full category collection, oldest first.
func (b *Backend) ListCategories() ([]types.Category, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	return readList[types.Category](b.kv, KeyCategories)
}

// AddCategory validates, assigns id and timestamp, and appends the
// category. A duplicate name fails with a DuplicateKeyError.
func (b *Backend) AddCategory(c types.Category) (*types.Category, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	categories, err := readList[types.Category](b.kv, KeyCategories)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		if categories[i].Name == c.Name {
			return nil, &types.DuplicateKeyError{Field: "name", Value: c.Name}
		}
	}
	c.ID = types.NewID()
	c.CreatedAt = types.Now()
	categories = append(categories, c)
	if err := writeList(b.kv, KeyCategories, categories); err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateCategory applies a partial update. Renaming a category does not
// touch products; they reference the category by free-text name.
func (b *Backend) UpdateCategory(id string, patch types.CategoryPatch) (*types.Category, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	categories, err := readList[types.Category](b.kv, KeyCategories)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range categories {
		if categories[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, nil
	}
	if patch.Name != nil {
		for i := range categories {
			if i != idx && categories[i].Name == *patch.Name {
				return nil, &types.DuplicateKeyError{Field: "name", Value: *patch.Name}
			}
		}
		categories[idx].Name = *patch.Name
	}
	if patch.Description != nil {
		categories[idx].Description = *patch.Description
	}
	if err := writeList(b.kv, KeyCategories, categories); err != nil {
		return nil, err
	}
	out := categories[idx]
	return &out, nil
}

// DeleteCategory removes the category. Products keep their category name
// string.
func (b *Backend) DeleteCategory(id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return false, err
	}

	categories, err := readList[types.Category](b.kv, KeyCategories)
	if err != nil {
		return false, err
	}
	filtered := categories[:0]
	for i := range categories {
		if categories[i].ID != id {
			filtered = append(filtered, categories[i])
		}
	}
	if len(filtered) == len(categories) {
		return false, nil
	}
	if err := writeList(b.kv, KeyCategories, filtered); err != nil {
		return false, err
	}
	return true, nil
}
