package types

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var validRoles = map[string]bool{
	RoleAdmin: true,
	RoleUser:  true,
}

// bcryptCost matches the work factor used for seeded credentials.
const bcryptCost = 12

// User is an application account. Only the bcrypt hash of the password is
// ever persisted; the hash is excluded from JSON so it cannot leak through
// exports.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	CreatedAt    string `json:"createdAt"`
}

// SetPassword hashes the given password and stores the hash.
func (u *User) SetPassword(password string) error {
	if password == "" {
		return &ValidationError{Field: "password", Reason: "must not be empty"}
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(h)
	return nil
}

// CheckPassword reports whether the password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ApplyDefaults fills the role.
func (u *User) ApplyDefaults() {
	if u.Role == "" {
		u.Role = RoleUser
	}
}

// Validate checks the user fields. The password must already be hashed.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(u.Email) == "" {
		return &ValidationError{Field: "email", Reason: "must not be empty"}
	}
	if u.PasswordHash == "" {
		return &ValidationError{Field: "password", Reason: "must not be empty"}
	}
	if u.Role != "" && !validRoles[u.Role] {
		return &ValidationError{Field: "role", Reason: "unknown role " + u.Role}
	}
	return nil
}
