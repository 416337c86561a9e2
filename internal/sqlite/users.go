package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/stockroom/pkg/types"
)

// ListUsers returns every user, oldest first. Password hashes are loaded
// into the struct but never serialize to JSON.
func (b *Backend) ListUsers() ([]types.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	rows, err := b.db.Query("SELECT id, email, password_hash, name, role, created_at FROM users ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	users := []types.User{}
	for rows.Next() {
		var u types.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// GetUserByEmail returns the user with the given email, or nil if absent.
func (b *Backend) GetUserByEmail(email string) (*types.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	var u types.User
	err := b.db.QueryRow("SELECT id, email, password_hash, name, role, created_at FROM users WHERE email = ?", email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return &u, nil
}

// AddUser validates and inserts. The caller must have set the password
// hash via SetPassword; a duplicate email surfaces as a DuplicateKeyError.
func (b *Backend) AddUser(u types.User) (*types.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	u.ApplyDefaults()
	if err := u.Validate(); err != nil {
		return nil, err
	}

	u.ID = types.NewID()
	u.CreatedAt = types.Now()
	_, err := b.db.Exec(
		"INSERT INTO users (id, email, password_hash, name, role, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.CreatedAt,
	)
	if err != nil {
		return nil, translateErr(err, u.Email)
	}
	return &u, nil
}

// DeleteUser removes a user. Returns false when absent.
func (b *Backend) DeleteUser(id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return false, err
	}

	res, err := b.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("deleting user %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting user %s: %w", id, err)
	}
	return n > 0, nil
}
