package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/stockroom/pkg/types"
)

// ListCustomers returns every customer, newest first.
func (b *Backend) ListCustomers() ([]types.Customer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	return b.listCustomersLocked()
}

func (b *Backend) listCustomersLocked() ([]types.Customer, error) {
	rows, err := b.db.Query("SELECT id, name, email, phone, address, created_at FROM customers ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	defer rows.Close()

	customers := []types.Customer{}
	for rows.Next() {
		var c types.Customer
		var email, phone, address sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &email, &phone, &address, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning customer: %w", err)
		}
		c.Email = orEmpty(email)
		c.Phone = orEmpty(phone)
		c.Address = orEmpty(address)
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	return customers, nil
}

// AddCustomer validates, assigns id and creation time, and inserts.
func (b *Backend) AddCustomer(c types.Customer) (*types.Customer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	c.ID = types.NewID()
	c.CreatedAt = types.Now()
	_, err := b.db.Exec(
		"INSERT INTO customers (id, name, email, phone, address, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		c.ID, c.Name, nullable(c.Email), nullable(c.Phone), nullable(c.Address), c.CreatedAt,
	)
	if err != nil {
		return nil, translateErr(err, c.Email)
	}
	return &c, nil
}

// UpdateCustomer applies a partial update. Customers carry no updated_at
// column, matching the stored shape. Returns (nil, nil) when absent.
func (b *Backend) UpdateCustomer(id string, patch types.CustomerPatch) (*types.Customer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	sets := []string{}
	args := []any{}
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, nullable(*patch.Email))
	}
	if patch.Phone != nil {
		sets = append(sets, "phone = ?")
		args = append(args, nullable(*patch.Phone))
	}
	if patch.Address != nil {
		sets = append(sets, "address = ?")
		args = append(args, nullable(*patch.Address))
	}
	if len(sets) == 0 {
		return b.getCustomerLocked(id)
	}
	args = append(args, id)

	res, err := b.db.Exec("UPDATE customers SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("updating customer %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating customer %s: %w", id, err)
	}
	if n == 0 {
		return nil, nil
	}
	return b.getCustomerLocked(id)
}

func (b *Backend) getCustomerLocked(id string) (*types.Customer, error) {
	var c types.Customer
	var email, phone, address sql.NullString
	err := b.db.QueryRow("SELECT id, name, email, phone, address, created_at FROM customers WHERE id = ?", id).
		Scan(&c.ID, &c.Name, &email, &phone, &address, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting customer %s: %w", id, err)
	}
	c.Email = orEmpty(email)
	c.Phone = orEmpty(phone)
	c.Address = orEmpty(address)
	return &c, nil
}

// DeleteCustomer removes a customer. Invoices keep their denormalized
// customer snapshot and are untouched. Returns false when absent.
func (b *Backend) DeleteCustomer(id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return false, err
	}

	res, err := b.db.Exec("DELETE FROM customers WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("deleting customer %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting customer %s: %w", id, err)
	}
	return n > 0, nil
}

// ListCategories returns every category ordered by name.
func (b *Backend) ListCategories() ([]types.Category, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	return b.listCategoriesLocked()
}

func (b *Backend) listCategoriesLocked() ([]types.Category, error) {
	rows, err := b.db.Query("SELECT id, name, description, created_at FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	categories := []types.Category{}
	for rows.Next() {
		var c types.Category
		var description sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		c.Description = orEmpty(description)
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}

// AddCategory inserts a category. A duplicate name surfaces as a
// DuplicateKeyError via the UNIQUE constraint.
func (b *Backend) AddCategory(c types.Category) (*types.Category, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	c.ID = types.NewID()
	c.CreatedAt = types.Now()
	_, err := b.db.Exec(
		"INSERT INTO categories (id, name, description, created_at) VALUES (?, ?, ?, ?)",
		c.ID, c.Name, nullable(c.Description), c.CreatedAt,
	)
	if err != nil {
		return nil, translateErr(err, c.Name)
	}
	return &c, nil
}

// UpdateCategory applies a partial update. Renaming a category does not
// rewrite the category string stored on products. Returns (nil, nil) when
// absent.
func (b *Backend) UpdateCategory(id string, patch types.CategoryPatch) (*types.Category, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	sets := []string{}
	args := []any{}
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, nullable(*patch.Description))
	}
	if len(sets) == 0 {
		return b.getCategoryLocked(id)
	}
	args = append(args, id)

	res, err := b.db.Exec("UPDATE categories SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		var name string
		if patch.Name != nil {
			name = *patch.Name
		}
		return nil, translateErr(err, name)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating category %s: %w", id, err)
	}
	if n == 0 {
		return nil, nil
	}
	return b.getCategoryLocked(id)
}

func (b *Backend) getCategoryLocked(id string) (*types.Category, error) {
	var c types.Category
	var description sql.NullString
	err := b.db.QueryRow("SELECT id, name, description, created_at FROM categories WHERE id = ?", id).
		Scan(&c.ID, &c.Name, &description, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting category %s: %w", id, err)
	}
	c.Description = orEmpty(description)
	return &c, nil
}

// DeleteCategory removes a category. Products keep their category string.
// Returns false when absent.
func (b *Backend) DeleteCategory(id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return false, err
	}

	res, err := b.db.Exec("DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("deleting category %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting category %s: %w", id, err)
	}
	return n > 0, nil
}
