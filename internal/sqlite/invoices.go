package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/stockroom/pkg/types"
)

const invoiceColumns = "id, customer_name, customer_email, customer_address, subtotal, tax, total, status, created_at, updated_at"

// ListInvoices returns the full invoice collection, newest first, with
// line items attached to every invoice.
func (b *Backend) ListInvoices() ([]types.Invoice, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	return b.listInvoicesLocked()
}

func (b *Backend) listInvoicesLocked() ([]types.Invoice, error) {
	rows, err := b.db.Query("SELECT " + invoiceColumns + " FROM invoices ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	invoices := []types.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}

	for i := range invoices {
		items, err := b.loadItems(invoices[i].ID)
		if err != nil {
			return nil, err
		}
		invoices[i].Items = items
	}
	return invoices, nil
}

// GetInvoice returns the invoice with its items, or nil if absent.
func (b *Backend) GetInvoice(id string) (*types.Invoice, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	return b.getInvoiceLocked(id)
}

func (b *Backend) getInvoiceLocked(id string) (*types.Invoice, error) {
	row := b.db.QueryRow("SELECT "+invoiceColumns+" FROM invoices WHERE id = ?", id)
	inv, err := scanInvoice(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting invoice %s: %w", id, err)
	}
	items, err := b.loadItems(id)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return inv, nil
}

// AddInvoice validates, assigns id and timestamps, and inserts the invoice
// together with its line items in one transaction. The core neither checks
// nor decrements product stock; that rule belongs to the calling layer.
func (b *Backend) AddInvoice(inv types.Invoice) (*types.Invoice, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	inv.ApplyDefaults()
	if err := inv.Validate(); err != nil {
		return nil, err
	}

	now := types.Now()
	inv.ID = types.NewID()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	tx, err := b.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertInvoice(tx, &inv); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing invoice: %w", err)
	}
	return &inv, nil
}

// insertInvoice writes the invoice row and its item rows inside the given
// transaction. The invoice must be fully populated (id, timestamps).
func insertInvoice(tx *sql.Tx, inv *types.Invoice) error {
	_, err := tx.Exec(
		"INSERT INTO invoices ("+invoiceColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		inv.ID, inv.CustomerName, nullable(inv.CustomerEmail), nullable(inv.CustomerAddress),
		inv.Subtotal.String(), inv.Tax.String(), inv.Total.String(), inv.Status,
		inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return translateErr(err, inv.ID)
	}
	for i := range inv.Items {
		if err := insertItem(tx, inv.ID, inv.CreatedAt, &inv.Items[i]); err != nil {
			return err
		}
	}
	return nil
}

func insertItem(tx *sql.Tx, invoiceID, createdAt string, item *types.InvoiceItem) error {
	var instanceIDs any
	if len(item.InstanceIDs) > 0 {
		data, err := json.Marshal(item.InstanceIDs)
		if err != nil {
			return fmt.Errorf("encoding instance ids: %w", err)
		}
		instanceIDs = string(data)
	}
	_, err := tx.Exec(
		"INSERT INTO invoice_items (id, invoice_id, product_id, product_name, quantity, price, total, instance_ids, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		types.NewID(), invoiceID, item.ProductID, item.ProductName, item.Quantity,
		item.Price.String(), item.Total.String(), instanceIDs, createdAt,
	)
	if err != nil {
		return fmt.Errorf("inserting invoice item: %w", err)
	}
	return nil
}

// UpdateInvoice applies a partial update. When Items is supplied the full
// line-item set is replaced in the same transaction. Returns (nil, nil)
// when no invoice has the given id.
func (b *Backend) UpdateInvoice(id string, patch types.InvoicePatch) (*types.Invoice, error) {
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
	if patch.CustomerName != nil {
		sets = append(sets, "customer_name = ?")
		args = append(args, *patch.CustomerName)
	}
	if patch.CustomerEmail != nil {
		sets = append(sets, "customer_email = ?")
		args = append(args, nullable(*patch.CustomerEmail))
	}
	if patch.CustomerAddress != nil {
		sets = append(sets, "customer_address = ?")
		args = append(args, nullable(*patch.CustomerAddress))
	}
	if patch.Subtotal != nil {
		sets = append(sets, "subtotal = ?")
		args = append(args, patch.Subtotal.String())
	}
	if patch.Tax != nil {
		sets = append(sets, "tax = ?")
		args = append(args, patch.Tax.String())
	}
	if patch.Total != nil {
		sets = append(sets, "total = ?")
		args = append(args, patch.Total.String())
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}
	args = append(args, id)

	tx, err := b.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec("UPDATE invoices SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("updating invoice %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating invoice %s: %w", id, err)
	}
	if n == 0 {
		return nil, nil
	}

	if patch.Items != nil {
		if _, err := tx.Exec("DELETE FROM invoice_items WHERE invoice_id = ?", id); err != nil {
			return nil, fmt.Errorf("replacing items for invoice %s: %w", id, err)
		}
		now := types.Now()
		for i := range *patch.Items {
			if err := insertItem(tx, id, now, &(*patch.Items)[i]); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing invoice update: %w", err)
	}
	return b.getInvoiceLocked(id)
}

// DeleteInvoice removes the invoice; the ON DELETE CASCADE foreign key
// drops its items in the same statement. Returns false when no invoice has
// the given id.
func (b *Backend) DeleteInvoice(id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return false, err
	}

	res, err := b.db.Exec("DELETE FROM invoices WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("deleting invoice %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting invoice %s: %w", id, err)
	}
	return n > 0, nil
}

func (b *Backend) loadItems(invoiceID string) ([]types.InvoiceItem, error) {
	rows, err := b.db.Query(
		"SELECT product_id, product_name, quantity, price, total, instance_ids FROM invoice_items WHERE invoice_id = ? ORDER BY created_at, id",
		invoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading items for invoice %s: %w", invoiceID, err)
	}
	defer rows.Close()

	items := []types.InvoiceItem{}
	for rows.Next() {
		var item types.InvoiceItem
		var price, total string
		var instanceIDs sql.NullString
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Quantity, &price, &total, &instanceIDs); err != nil {
			return nil, fmt.Errorf("scanning invoice item: %w", err)
		}
		if item.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parsing item price: %w", err)
		}
		if item.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("parsing item total: %w", err)
		}
		if instanceIDs.Valid && instanceIDs.String != "" {
			if err := json.Unmarshal([]byte(instanceIDs.String), &item.InstanceIDs); err != nil {
				return nil, fmt.Errorf("decoding instance ids: %w", err)
			}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading items for invoice %s: %w", invoiceID, err)
	}
	return items, nil
}

func scanInvoice(row rowScanner) (*types.Invoice, error) {
	var inv types.Invoice
	var email, address sql.NullString
	var subtotal, tax, total string
	if err := row.Scan(
		&inv.ID, &inv.CustomerName, &email, &address,
		&subtotal, &tax, &total, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning invoice: %w", err)
	}
	inv.CustomerEmail = orEmpty(email)
	inv.CustomerAddress = orEmpty(address)
	var err error
	if inv.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return nil, fmt.Errorf("parsing subtotal for invoice %s: %w", inv.ID, err)
	}
	if inv.Tax, err = decimal.NewFromString(tax); err != nil {
		return nil, fmt.Errorf("parsing tax for invoice %s: %w", inv.ID, err)
	}
	if inv.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("parsing total for invoice %s: %w", inv.ID, err)
	}
	inv.Items = []types.InvoiceItem{}
	return &inv, nil
}
