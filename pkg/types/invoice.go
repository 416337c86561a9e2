package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Invoice statuses.
const (
	InvoicePaid    = "paid"
	InvoicePending = "pending"
	InvoiceOverdue = "overdue"
)

var validInvoiceStatuses = map[string]bool{
	InvoicePaid:    true,
	InvoicePending: true,
	InvoiceOverdue: true,
}

// InvoiceItem is one line of an invoice. ProductID is a lookup key into the
// product catalog, not an ownership edge; ProductName and Price are
// snapshots taken at the time of sale. InstanceIDs records which specific
// product instances the line consumed.
type InvoiceItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Total       decimal.Decimal `json:"total"`
	InstanceIDs []string        `json:"instanceIds,omitempty"`
}

// Invoice is an aggregate root. Customer fields are a denormalized snapshot
// of the customer at the time of sale, not a reference. Items are owned by
// the invoice and deleted with it.
type Invoice struct {
	ID              string          `json:"id"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	CustomerAddress string          `json:"customerAddress"`
	Items           []InvoiceItem   `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
	Status          string          `json:"status"`
	CreatedAt       string          `json:"createdAt"`
	UpdatedAt       string          `json:"updatedAt"`
}

// ApplyDefaults fills the status and guarantees a non-nil items slice.
func (inv *Invoice) ApplyDefaults() {
	if inv.Status == "" {
		inv.Status = InvoicePending
	}
	if inv.Items == nil {
		inv.Items = []InvoiceItem{}
	}
}

// Validate checks the invoice and each of its items.
func (inv *Invoice) Validate() error {
	if strings.TrimSpace(inv.CustomerName) == "" {
		return &ValidationError{Field: "customerName", Reason: "must not be empty"}
	}
	if inv.Subtotal.IsNegative() {
		return &ValidationError{Field: "subtotal", Reason: "must not be negative"}
	}
	if inv.Tax.IsNegative() {
		return &ValidationError{Field: "tax", Reason: "must not be negative"}
	}
	if inv.Total.IsNegative() {
		return &ValidationError{Field: "total", Reason: "must not be negative"}
	}
	if inv.Status != "" && !validInvoiceStatuses[inv.Status] {
		return &ValidationError{Field: "status", Reason: "unknown invoice status " + inv.Status}
	}
	for _, item := range inv.Items {
		if strings.TrimSpace(item.ProductName) == "" {
			return &ValidationError{Field: "productName", Reason: "must not be empty"}
		}
		if item.Quantity < 0 {
			return &ValidationError{Field: "quantity", Reason: "must not be negative"}
		}
		if item.Price.IsNegative() {
			return &ValidationError{Field: "price", Reason: "must not be negative"}
		}
		if item.Total.IsNegative() {
			return &ValidationError{Field: "total", Reason: "must not be negative"}
		}
	}
	return nil
}

// InvoicePatch is a partial update. Nil fields are left untouched.
type InvoicePatch struct {
	CustomerName    *string
	CustomerEmail   *string
	CustomerAddress *string
	Subtotal        *decimal.Decimal
	Tax             *decimal.Decimal
	Total           *decimal.Decimal
	Status          *string
	// Items replaces the full line-item set when non-nil.
	Items *[]InvoiceItem
}

// Validate checks the fields that are present.
func (p InvoicePatch) Validate() error {
	if p.CustomerName != nil && strings.TrimSpace(*p.CustomerName) == "" {
		return &ValidationError{Field: "customerName", Reason: "must not be empty"}
	}
	if p.Subtotal != nil && p.Subtotal.IsNegative() {
		return &ValidationError{Field: "subtotal", Reason: "must not be negative"}
	}
	if p.Tax != nil && p.Tax.IsNegative() {
		return &ValidationError{Field: "tax", Reason: "must not be negative"}
	}
	if p.Total != nil && p.Total.IsNegative() {
		return &ValidationError{Field: "total", Reason: "must not be negative"}
	}
	if p.Status != nil && !validInvoiceStatuses[*p.Status] {
		return &ValidationError{Field: "status", Reason: "unknown invoice status " + *p.Status}
	}
	if p.Items != nil {
		for _, item := range *p.Items {
			if item.Quantity < 0 {
				return &ValidationError{Field: "quantity", Reason: "must not be negative"}
			}
			if item.Price.IsNegative() {
				return &ValidationError{Field: "price", Reason: "must not be negative"}
			}
		}
	}
	return nil
}
