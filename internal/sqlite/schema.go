// Package sqlite implements the relational storage backend on an embedded
// SQLite database. The schema is normalized: product instances and invoice
// items live in child tables with ON DELETE CASCADE foreign keys, status
// columns carry CHECK constraints, and natural keys (product reference,
// instance reference number, category name, user email) are UNIQUE.
//
// Prices and totals are stored as TEXT holding canonical decimal strings
// so money survives storage exactly; REAL would round.
package sqlite

// DDL for all tables. CREATE TABLE IF NOT EXISTS keeps reopening an
// existing database file safe.
const (
	createProducts = `CREATE TABLE IF NOT EXISTS products (
    id TEXT PRIMARY KEY,
    reference TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    description TEXT,
    category TEXT NOT NULL,
    quantity INTEGER NOT NULL DEFAULT 0,
    purchase_price TEXT NOT NULL,
    selling_price TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive', 'discontinued')),
    low_stock_threshold INTEGER NOT NULL DEFAULT 5,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createProductInstances = `CREATE TABLE IF NOT EXISTS product_instances (
    id TEXT PRIMARY KEY,
    product_id TEXT NOT NULL,
    reference_number TEXT NOT NULL UNIQUE,
    status TEXT NOT NULL DEFAULT 'available' CHECK (status IN ('available', 'sold', 'reserved')),
    sold_at TEXT,
    invoice_id TEXT,
    created_at TEXT NOT NULL,
    FOREIGN KEY (product_id) REFERENCES products (id) ON DELETE CASCADE
);`

	createCustomers = `CREATE TABLE IF NOT EXISTS customers (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT,
    address TEXT,
    phone TEXT,
    created_at TEXT NOT NULL
);`

	createInvoices = `CREATE TABLE IF NOT EXISTS invoices (
    id TEXT PRIMARY KEY,
    customer_name TEXT NOT NULL,
    customer_email TEXT,
    customer_address TEXT,
    subtotal TEXT NOT NULL,
    tax TEXT NOT NULL DEFAULT '0',
    total TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('paid', 'pending', 'overdue')),
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createInvoiceItems = `CREATE TABLE IF NOT EXISTS invoice_items (
    id TEXT PRIMARY KEY,
    invoice_id TEXT NOT NULL,
    product_id TEXT NOT NULL,
    product_name TEXT NOT NULL,
    quantity INTEGER NOT NULL,
    price TEXT NOT NULL,
    total TEXT NOT NULL,
    instance_ids TEXT,
    created_at TEXT NOT NULL,
    FOREIGN KEY (invoice_id) REFERENCES invoices (id) ON DELETE CASCADE
);`

	createCategories = `CREATE TABLE IF NOT EXISTS categories (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    description TEXT,
    created_at TEXT NOT NULL
);`

	createUsers = `CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
    created_at TEXT NOT NULL
);`

	createSettings = `CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`
)

// Indexes for the common list and join paths.
const (
	idxProductsCategory       = `CREATE INDEX IF NOT EXISTS idx_products_category ON products (category);`
	idxProductsStatus         = `CREATE INDEX IF NOT EXISTS idx_products_status ON products (status);`
	idxInstancesProduct       = `CREATE INDEX IF NOT EXISTS idx_product_instances_product_id ON product_instances (product_id);`
	idxInstancesStatus        = `CREATE INDEX IF NOT EXISTS idx_product_instances_status ON product_instances (status);`
	idxInvoicesStatus         = `CREATE INDEX IF NOT EXISTS idx_invoices_status ON invoices (status);`
	idxInvoicesCreatedAt      = `CREATE INDEX IF NOT EXISTS idx_invoices_created_at ON invoices (created_at);`
	idxInvoiceItemsInvoice    = `CREATE INDEX IF NOT EXISTS idx_invoice_items_invoice_id ON invoice_items (invoice_id);`
	idxInvoiceItemsProduct    = `CREATE INDEX IF NOT EXISTS idx_invoice_items_product_id ON invoice_items (product_id);`
	idxCustomersEmail         = `CREATE INDEX IF NOT EXISTS idx_customers_email ON customers (email);`
)

// schemaStatements is the full DDL, executed in order on open. Parents
// before children so foreign keys resolve.
var schemaStatements = []string{
	createProducts,
	createProductInstances,
	createCustomers,
	createInvoices,
	createInvoiceItems,
	createCategories,
	createUsers,
	createSettings,
	idxProductsCategory,
	idxProductsStatus,
	idxInstancesProduct,
	idxInstancesStatus,
	idxInvoicesStatus,
	idxInvoicesCreatedAt,
	idxInvoiceItemsInvoice,
	idxInvoiceItemsProduct,
	idxCustomersEmail,
}
