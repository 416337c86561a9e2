package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Backend is the uniform storage contract implemented by both the
// key-value and the SQLite backends. The application composes with
// whichever implementation it is given; nothing probes the environment at
// call time.
//
// Not-found is not an error: Get returns (nil, nil), Update returns
// (nil, nil), Delete returns (false, nil). Errors mean the operation
// failed, so callers can tell "nothing matched" from "could not tell".
// Both implementations return structurally identical shapes: parents
// always carry their children (instances, items) populated.
type Backend interface {
	// Products.
	ListProducts() ([]Product, error)
	GetProduct(id string) (*Product, error)
	AddProduct(p Product) (*Product, error)
	UpdateProduct(id string, patch ProductPatch) (*Product, error)
	DeleteProduct(id string) (bool, error)
	// UpdateInstance patches one instance of a product; status, soldAt
	// and invoiceId changes persist together.
	UpdateInstance(productID, instanceID string, patch InstancePatch) (*ProductInstance, error)
	// SearchProducts matches product names by substring. Input is data,
	// never query text.
	SearchProducts(name string) ([]Product, error)

	// Invoices.
	ListInvoices() ([]Invoice, error)
	GetInvoice(id string) (*Invoice, error)
	AddInvoice(inv Invoice) (*Invoice, error)
	UpdateInvoice(id string, patch InvoicePatch) (*Invoice, error)
	DeleteInvoice(id string) (bool, error)

	// Customers.
	ListCustomers() ([]Customer, error)
	AddCustomer(c Customer) (*Customer, error)
	UpdateCustomer(id string, patch CustomerPatch) (*Customer, error)
	DeleteCustomer(id string) (bool, error)

	// Categories.
	ListCategories() ([]Category, error)
	AddCategory(c Category) (*Category, error)
	UpdateCategory(id string, patch CategoryPatch) (*Category, error)
	DeleteCategory(id string) (bool, error)

	// Users.
	ListUsers() ([]User, error)
	GetUserByEmail(email string) (*User, error)
	AddUser(u User) (*User, error)
	DeleteUser(id string) (bool, error)

	// Stats computes the dashboard counters from the full collections.
	Stats() (*DashboardStats, error)

	// ImportDataset writes a dataset into the backend. In merge mode each
	// record is attempted independently and individual failures are
	// reported, never aborting the batch. In replace mode the dataset
	// becomes the entire new contents of the four collections.
	ImportDataset(ds *Dataset, mode ImportMode) (*ImportReport, error)

	// Settings, a small key-value side table (migration state lives here).
	GetSetting(key string) (string, bool, error)
	SetSetting(key, value string) error

	Close() error
}

// Dataset is the export/import document: the four entity collections plus
// the export timestamp.
type Dataset struct {
	Products   []Product  `json:"products"`
	Invoices   []Invoice  `json:"invoices"`
	Customers  []Customer `json:"customers"`
	Categories []Category `json:"categories"`
	ExportDate string     `json:"exportDate"`
}

// ImportMode selects how ImportDataset treats existing data.
type ImportMode int

const (
	// ImportMerge inserts records best-effort alongside existing data.
	ImportMerge ImportMode = iota
	// ImportReplace clears the four collections first.
	ImportReplace
)

// ImportReport summarizes an ImportDataset run.
type ImportReport struct {
	Products   int
	Invoices   int
	Customers  int
	Categories int
	Failures   []MigrationRecordError
}

// Total returns the number of records written.
func (r *ImportReport) Total() int {
	return r.Products + r.Invoices + r.Customers + r.Categories
}

// DashboardStats holds the counters shown on the dashboard. RecentSales is
// paid revenue from the last 30 days.
type DashboardStats struct {
	ProductCount     int             `json:"productCount"`
	TotalStock       int             `json:"totalStock"`
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
	TotalInvoices    int             `json:"totalInvoices"`
	LowStockProducts int             `json:"lowStockProducts"`
	RecentSales      decimal.Decimal `json:"recentSales"`
}

// NewID generates a time-ordered UUID v7 entity id, falling back to v4 if
// v7 generation fails.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Now returns the current UTC time as an ISO-8601 string, the timestamp
// format used throughout the persisted data.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
