package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Product statuses.
const (
	ProductActive       = "active"
	ProductInactive     = "inactive"
	ProductDiscontinued = "discontinued"
)

// Product instance statuses.
const (
	InstanceAvailable = "available"
	InstanceSold      = "sold"
	InstanceReserved  = "reserved"
)

// DefaultLowStockThreshold is applied when a product is created without an
// explicit threshold.
const DefaultLowStockThreshold = 5

var validProductStatuses = map[string]bool{
	ProductActive:       true,
	ProductInactive:     true,
	ProductDiscontinued: true,
}

var validInstanceStatuses = map[string]bool{
	InstanceAvailable: true,
	InstanceSold:      true,
	InstanceReserved:  true,
}

// ProductInstance is one serialized unit of an instance-tracked product
// (for example a phone identified by IMEI). Instances are owned by their
// parent product and are deleted with it.
type ProductInstance struct {
	ID              string `json:"id"`
	ReferenceNumber string `json:"referenceNumber"`
	Status          string `json:"status"`
	SoldAt          string `json:"soldAt,omitempty"`
	InvoiceID       string `json:"invoiceId,omitempty"`
}

// Product is an aggregate root. When Instances is non-empty the available
// stock is the count of instances with status "available" and the scalar
// Quantity field is advisory only.
type Product struct {
	ID                string            `json:"id"`
	Reference         string            `json:"reference"`
	Name              string            `json:"name"`
	Description       string            `json:"description,omitempty"`
	Category          string            `json:"category"`
	Quantity          int               `json:"quantity"`
	PurchasePrice     decimal.Decimal   `json:"purchase_price"`
	SellingPrice      decimal.Decimal   `json:"selling_price"`
	Status            string            `json:"status"`
	LowStockThreshold int               `json:"lowStockThreshold"`
	Instances         []ProductInstance `json:"instances"`
	CreatedAt         string            `json:"createdAt"`
	UpdatedAt         string            `json:"updatedAt"`
}

// AvailableStock returns the sellable unit count: the number of available
// instances for instance-tracked products, the quantity counter otherwise.
func (p *Product) AvailableStock() int {
	if len(p.Instances) == 0 {
		return p.Quantity
	}
	n := 0
	for i := range p.Instances {
		if p.Instances[i].Status == InstanceAvailable {
			n++
		}
	}
	return n
}

// LowStock reports whether the available stock is at or below the
// configured threshold.
func (p *Product) LowStock() bool {
	return p.AvailableStock() <= p.LowStockThreshold
}

// ApplyDefaults fills zero-valued optional fields: status, low stock
// threshold, instance statuses, and a non-nil instances slice so both
// backends return structurally identical products.
func (p *Product) ApplyDefaults() {
	if p.Status == "" {
		p.Status = ProductActive
	}
	if p.LowStockThreshold == 0 {
		p.LowStockThreshold = DefaultLowStockThreshold
	}
	if p.Instances == nil {
		p.Instances = []ProductInstance{}
	}
	for i := range p.Instances {
		if p.Instances[i].Status == "" {
			p.Instances[i].Status = InstanceAvailable
		}
	}
}

// Validate checks the product against the schema constraints. Violations
// are reported before any persistence attempt.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Reference) == "" {
		return &ValidationError{Field: "reference", Reason: "must not be empty"}
	}
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if p.Quantity < 0 {
		return &ValidationError{Field: "quantity", Reason: "must not be negative"}
	}
	if p.PurchasePrice.IsNegative() {
		return &ValidationError{Field: "purchase_price", Reason: "must not be negative"}
	}
	if p.SellingPrice.IsNegative() {
		return &ValidationError{Field: "selling_price", Reason: "must not be negative"}
	}
	if p.LowStockThreshold < 0 {
		return &ValidationError{Field: "lowStockThreshold", Reason: "must not be negative"}
	}
	if p.Status != "" && !validProductStatuses[p.Status] {
		return &ValidationError{Field: "status", Reason: "unknown product status " + p.Status}
	}
	seen := make(map[string]bool, len(p.Instances))
	for i := range p.Instances {
		inst := &p.Instances[i]
		if strings.TrimSpace(inst.ReferenceNumber) == "" {
			return &ValidationError{Field: "referenceNumber", Reason: "must not be empty"}
		}
		if seen[inst.ReferenceNumber] {
			return &DuplicateKeyError{Field: "referenceNumber", Value: inst.ReferenceNumber}
		}
		seen[inst.ReferenceNumber] = true
		if inst.Status != "" && !validInstanceStatuses[inst.Status] {
			return &ValidationError{Field: "status", Reason: "unknown instance status " + inst.Status}
		}
	}
	return nil
}

// ProductPatch is a partial update. Nil fields are left untouched, so two
// concurrent patches to different fields both land.
type ProductPatch struct {
	Reference         *string
	Name              *string
	Description       *string
	Category          *string
	Quantity          *int
	PurchasePrice     *decimal.Decimal
	SellingPrice      *decimal.Decimal
	Status            *string
	LowStockThreshold *int
	// Instances replaces the full instance set when non-nil.
	Instances *[]ProductInstance
}

// Validate checks the fields that are present.
func (p ProductPatch) Validate() error {
	if p.Reference != nil && strings.TrimSpace(*p.Reference) == "" {
		return &ValidationError{Field: "reference", Reason: "must not be empty"}
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if p.Quantity != nil && *p.Quantity < 0 {
		return &ValidationError{Field: "quantity", Reason: "must not be negative"}
	}
	if p.PurchasePrice != nil && p.PurchasePrice.IsNegative() {
		return &ValidationError{Field: "purchase_price", Reason: "must not be negative"}
	}
	if p.SellingPrice != nil && p.SellingPrice.IsNegative() {
		return &ValidationError{Field: "selling_price", Reason: "must not be negative"}
	}
	if p.LowStockThreshold != nil && *p.LowStockThreshold < 0 {
		return &ValidationError{Field: "lowStockThreshold", Reason: "must not be negative"}
	}
	if p.Status != nil && !validProductStatuses[*p.Status] {
		return &ValidationError{Field: "status", Reason: "unknown product status " + *p.Status}
	}
	if p.Instances != nil {
		seen := make(map[string]bool, len(*p.Instances))
		for _, inst := range *p.Instances {
			if strings.TrimSpace(inst.ReferenceNumber) == "" {
				return &ValidationError{Field: "referenceNumber", Reason: "must not be empty"}
			}
			if seen[inst.ReferenceNumber] {
				return &DuplicateKeyError{Field: "referenceNumber", Value: inst.ReferenceNumber}
			}
			seen[inst.ReferenceNumber] = true
			if inst.Status != "" && !validInstanceStatuses[inst.Status] {
				return &ValidationError{Field: "status", Reason: "unknown instance status " + inst.Status}
			}
		}
	}
	return nil
}

// InstancePatch is a partial update of one product instance. Marking an
// instance sold sets Status, SoldAt and InvoiceID together.
type InstancePatch struct {
	Status    *string
	SoldAt    *string
	InvoiceID *string
}

// Validate checks the fields that are present.
func (p InstancePatch) Validate() error {
	if p.Status != nil && !validInstanceStatuses[*p.Status] {
		return &ValidationError{Field: "status", Reason: "unknown instance status " + *p.Status}
	}
	return nil
}
