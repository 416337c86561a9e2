package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/stockroom/pkg/types"
)

const productColumns = "id, reference, name, description, category, quantity, purchase_price, selling_price, status, low_stock_threshold, created_at, updated_at"

// ListProducts returns the full product collection, newest first, with
// instances attached to every product.
func (b *Backend) ListProducts() ([]types.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	return b.listProductsLocked()
}

func (b *Backend) listProductsLocked() ([]types.Product, error) {
	rows, err := b.db.Query("SELECT " + productColumns + " FROM products ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	products := []types.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	byProduct, err := b.loadInstances()
	if err != nil {
		return nil, err
	}
	for i := range products {
		if insts, ok := byProduct[products[i].ID]; ok {
			products[i].Instances = insts
		}
	}
	return products, nil
}

// GetProduct returns the product with its instances, or nil if absent.
func (b *Backend) GetProduct(id string) (*types.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	return b.getProductLocked(id)
}

func (b *Backend) getProductLocked(id string) (*types.Product, error) {
	row := b.db.QueryRow("SELECT "+productColumns+" FROM products WHERE id = ?", id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting product %s: %w", id, err)
	}
	instances, err := b.queryInstances("SELECT id, product_id, reference_number, status, sold_at, invoice_id FROM product_instances WHERE product_id = ? ORDER BY created_at, id", id)
	if err != nil {
		return nil, err
	}
	p.Instances = instances
	return p, nil
}

// AddProduct validates, assigns id and timestamps, and inserts the product
// together with its instances in one transaction: either all rows commit
// or none do.
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

	now := types.Now()
	p.ID = types.NewID()
	p.CreatedAt = now
	p.UpdatedAt = now
	for i := range p.Instances {
		if p.Instances[i].ID == "" {
			p.Instances[i].ID = types.NewID()
		}
	}

	tx, err := b.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertProduct(tx, &p); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing product: %w", err)
	}
	return &p, nil
}

// insertProduct writes the product row and its instance rows inside the
// given transaction. The product must be fully populated (id, timestamps).
func insertProduct(tx *sql.Tx, p *types.Product) error {
	_, err := tx.Exec(
		"INSERT INTO products ("+productColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.Reference, p.Name, nullable(p.Description), p.Category, p.Quantity,
		p.PurchasePrice.String(), p.SellingPrice.String(), p.Status, p.LowStockThreshold,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return translateErr(err, p.Reference)
	}
	for i := range p.Instances {
		inst := &p.Instances[i]
		_, err := tx.Exec(
			"INSERT INTO product_instances (id, product_id, reference_number, status, sold_at, invoice_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			inst.ID, p.ID, inst.ReferenceNumber, inst.Status,
			nullable(inst.SoldAt), nullable(inst.InvoiceID), p.CreatedAt,
		)
		if err != nil {
			return translateErr(err, inst.ReferenceNumber)
		}
	}
	return nil
}

// UpdateProduct applies a partial update in a single UPDATE statement
// touching only the supplied columns. Returns (nil, nil) when no product
// has the given id.
func (b *Backend) UpdateProduct(id string, patch types.ProductPatch) (*types.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	sets := []string{"updated_at = ?"}
	args := []any{types.Now()}
	dupValue := ""
	if patch.Reference != nil {
		sets = append(sets, "reference = ?")
		args = append(args, *patch.Reference)
		dupValue = *patch.Reference
	}
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, nullable(*patch.Description))
	}
	if patch.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *patch.Category)
	}
	if patch.Quantity != nil {
		sets = append(sets, "quantity = ?")
		args = append(args, *patch.Quantity)
	}
	if patch.PurchasePrice != nil {
		sets = append(sets, "purchase_price = ?")
		args = append(args, patch.PurchasePrice.String())
	}
	if patch.SellingPrice != nil {
		sets = append(sets, "selling_price = ?")
		args = append(args, patch.SellingPrice.String())
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}
	if patch.LowStockThreshold != nil {
		sets = append(sets, "low_stock_threshold = ?")
		args = append(args, *patch.LowStockThreshold)
	}
	args = append(args, id)

	tx, err := b.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec("UPDATE products SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, translateErr(err, dupValue)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating product %s: %w", id, err)
	}
	if n == 0 {
		return nil, nil
	}

	if patch.Instances != nil {
		if _, err := tx.Exec("DELETE FROM product_instances WHERE product_id = ?", id); err != nil {
			return nil, fmt.Errorf("replacing instances for product %s: %w", id, err)
		}
		now := types.Now()
		for _, inst := range *patch.Instances {
			if inst.ID == "" {
				inst.ID = types.NewID()
			}
			if inst.Status == "" {
				inst.Status = types.InstanceAvailable
			}
			_, err := tx.Exec(
				"INSERT INTO product_instances (id, product_id, reference_number, status, sold_at, invoice_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
				inst.ID, id, inst.ReferenceNumber, inst.Status,
				nullable(inst.SoldAt), nullable(inst.InvoiceID), now,
			)
			if err != nil {
				return nil, translateErr(err, inst.ReferenceNumber)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing product update: %w", err)
	}
	return b.getProductLocked(id)
}

// DeleteProduct removes the product; the ON DELETE CASCADE foreign key
// drops its instances in the same statement. Returns false when no product
// has the given id.
func (b *Backend) DeleteProduct(id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return false, err
	}

	res, err := b.db.Exec("DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("deleting product %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting product %s: %w", id, err)
	}
	return n > 0, nil
}

// UpdateInstance patches one instance in a single statement, so status,
// soldAt and invoiceId persist together. Returns (nil, nil) when the
// product or the instance is absent.
func (b *Backend) UpdateInstance(productID, instanceID string, patch types.InstancePatch) (*types.ProductInstance, error) {
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
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}
	if patch.SoldAt != nil {
		sets = append(sets, "sold_at = ?")
		args = append(args, nullable(*patch.SoldAt))
	}
	if patch.InvoiceID != nil {
		sets = append(sets, "invoice_id = ?")
		args = append(args, nullable(*patch.InvoiceID))
	}
	if len(sets) == 0 {
		return b.getInstanceLocked(productID, instanceID)
	}
	args = append(args, instanceID, productID)

	res, err := b.db.Exec(
		"UPDATE product_instances SET "+strings.Join(sets, ", ")+" WHERE id = ? AND product_id = ?",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("updating instance %s: %w", instanceID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating instance %s: %w", instanceID, err)
	}
	if n == 0 {
		return nil, nil
	}
	return b.getInstanceLocked(productID, instanceID)
}

func (b *Backend) getInstanceLocked(productID, instanceID string) (*types.ProductInstance, error) {
	instances, err := b.queryInstances(
		"SELECT id, product_id, reference_number, status, sold_at, invoice_id FROM product_instances WHERE id = ? AND product_id = ?",
		instanceID, productID,
	)
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return nil, nil
	}
	return &instances[0], nil
}

// SearchProducts matches product names by substring, case-insensitively.
// The pattern is bound as a parameter with LIKE metacharacters escaped;
// there is no path from input to query text.
func (b *Backend) SearchProducts(name string) ([]types.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	pattern := "%" + escapeLike(name) + "%"
	rows, err := b.db.Query(
		"SELECT "+productColumns+" FROM products WHERE name LIKE ? ESCAPE '\\' ORDER BY created_at DESC, id DESC",
		pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("searching products: %w", err)
	}
	defer rows.Close()

	products := []types.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("searching products: %w", err)
	}
	for i := range products {
		instances, err := b.queryInstances("SELECT id, product_id, reference_number, status, sold_at, invoice_id FROM product_instances WHERE product_id = ? ORDER BY created_at, id", products[i].ID)
		if err != nil {
			return nil, err
		}
		products[i].Instances = instances
	}
	return products, nil
}

// escapeLike escapes the LIKE metacharacters %, _ and the escape character
// itself.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// loadInstances returns every instance grouped by product id, in creation
// order.
func (b *Backend) loadInstances() (map[string][]types.ProductInstance, error) {
	instances, err := b.instanceRows("SELECT id, product_id, reference_number, status, sold_at, invoice_id FROM product_instances ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	byProduct := make(map[string][]types.ProductInstance)
	for _, inst := range instances {
		byProduct[inst.productID] = append(byProduct[inst.productID], inst.ProductInstance)
	}
	return byProduct, nil
}

// instanceRow pairs an instance with its parent id for grouping.
type instanceRow struct {
	types.ProductInstance
	productID string
}

func (b *Backend) queryInstances(query string, args ...any) ([]types.ProductInstance, error) {
	rows, err := b.instanceRows(query, args...)
	if err != nil {
		return nil, err
	}
	out := make([]types.ProductInstance, len(rows))
	for i := range rows {
		out[i] = rows[i].ProductInstance
	}
	return out, nil
}

func (b *Backend) instanceRows(query string, args ...any) ([]instanceRow, error) {
	rows, err := b.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying instances: %w", err)
	}
	defer rows.Close()

	out := []instanceRow{}
	for rows.Next() {
		var r instanceRow
		var soldAt, invoiceID sql.NullString
		if err := rows.Scan(&r.ID, &r.productID, &r.ReferenceNumber, &r.Status, &soldAt, &invoiceID); err != nil {
			return nil, fmt.Errorf("scanning instance: %w", err)
		}
		r.SoldAt = orEmpty(soldAt)
		r.InvoiceID = orEmpty(invoiceID)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("querying instances: %w", err)
	}
	return out, nil
}

// rowScanner lets scanProduct work for both QueryRow and Query results.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*types.Product, error) {
	var p types.Product
	var description sql.NullString
	var purchase, selling string
	if err := row.Scan(
		&p.ID, &p.Reference, &p.Name, &description, &p.Category, &p.Quantity,
		&purchase, &selling, &p.Status, &p.LowStockThreshold, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning product: %w", err)
	}
	p.Description = orEmpty(description)
	var err error
	if p.PurchasePrice, err = decimal.NewFromString(purchase); err != nil {
		return nil, fmt.Errorf("parsing purchase_price for product %s: %w", p.ID, err)
	}
	if p.SellingPrice, err = decimal.NewFromString(selling); err != nil {
		return nil, fmt.Errorf("parsing selling_price for product %s: %w", p.ID, err)
	}
	p.Instances = []types.ProductInstance{}
	return &p, nil
}
