package types

import "strings"

// Customer is an independent entity. Invoices copy its fields at the time
// of sale rather than referencing it live.
type Customer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	Phone     string `json:"phone,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// Validate checks the required customer fields.
func (c *Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	return nil
}

// CustomerPatch is a partial update. Nil fields are left untouched.
type CustomerPatch struct {
	Name    *string
	Email   *string
	Address *string
	Phone   *string
}

// Validate checks the fields that are present.
func (p CustomerPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	return nil
}

// Category names a product grouping. Products reference a category by its
// name string, not by id; there is no enforced referential integrity
// between the two collections.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

// Validate checks the required category fields.
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	return nil
}

// CategoryPatch is a partial update. Nil fields are left untouched.
type CategoryPatch struct {
	Name        *string
	Description *string
}

// Validate checks the fields that are present.
func (p CategoryPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	return nil
}
