package kvstore

import "github.com/mesh-intelligence/stockroom/pkg/types"

// ListInvoices returns the full invoice collection, oldest first.
func (b *Backend) ListInvoices() ([]types.Invoice, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	return b.listInvoicesLocked()
}

func (b *Backend) listInvoicesLocked() ([]types.Invoice, error) {
	invoices, err := readList[types.Invoice](b.kv, KeyInvoices)
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		if invoices[i].Items == nil {
			invoices[i].Items = []types.InvoiceItem{}
		}
	}
	return invoices, nil
}

// GetInvoice returns the invoice with the given id, or nil if absent.
func (b *Backend) GetInvoice(id string) (*types.Invoice, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	invoices, err := b.listInvoicesLocked()
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		if invoices[i].ID == id {
			inv := invoices[i]
			return &inv, nil
		}
	}
	return nil, nil
}

// AddInvoice validates, assigns id and timestamps, and appends the invoice
// with its items. The core does not check or decrement product stock;
// stock adjustment is the calling layer's responsibility.
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

	invoices, err := b.listInvoicesLocked()
	if err != nil {
		return nil, err
	}

	now := types.Now()
	inv.ID = types.NewID()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	invoices = append(invoices, inv)
	if err := writeList(b.kv, KeyInvoices, invoices); err != nil {
		return nil, err
	}
	return &inv, nil
}

// UpdateInvoice applies a partial update. Returns (nil, nil) when no
// invoice has the given id.
func (b *Backend) UpdateInvoice(id string, patch types.InvoicePatch) (*types.Invoice, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	invoices, err := b.listInvoicesLocked()
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		if invoices[i].ID != id {
			continue
		}
		inv := &invoices[i]
		if patch.CustomerName != nil {
			inv.CustomerName = *patch.CustomerName
		}
		if patch.CustomerEmail != nil {
			inv.CustomerEmail = *patch.CustomerEmail
		}
		if patch.CustomerAddress != nil {
			inv.CustomerAddress = *patch.CustomerAddress
		}
		if patch.Subtotal != nil {
			inv.Subtotal = *patch.Subtotal
		}
		if patch.Tax != nil {
			inv.Tax = *patch.Tax
		}
		if patch.Total != nil {
			inv.Total = *patch.Total
		}
		if patch.Status != nil {
			inv.Status = *patch.Status
		}
		if patch.Items != nil {
			inv.Items = append([]types.InvoiceItem{}, (*patch.Items)...)
		}
		inv.UpdatedAt = types.Now()
		if err := writeList(b.kv, KeyInvoices, invoices); err != nil {
			return nil, err
		}
		out := *inv
		return &out, nil
	}
	return nil, nil
}

// DeleteInvoice removes the invoice and, because items are embedded in the
// same record, all of its line items with it. Returns false when no
// invoice has the given id.
func (b *Backend) DeleteInvoice(id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return false, err
	}

	invoices, err := b.listInvoicesLocked()
	if err != nil {
		return false, err
	}
	filtered := invoices[:0]
	for i := range invoices {
		if invoices[i].ID != id {
			filtered = append(filtered, invoices[i])
		}
	}
	if len(filtered) == len(invoices) {
		return false, nil
	}
	if err := writeList(b.kv, KeyInvoices, filtered); err != nil {
		return false, err
	}
	return true, nil
}
