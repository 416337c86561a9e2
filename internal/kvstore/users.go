package kvstore

import "github.com/mesh-intelligence/stockroom/pkg/types"

// userRecord is the persisted shape of a user. types.User excludes the
// password hash from JSON, so the store keeps its own record type; the
// hash must survive the round trip to disk but never reach an export.
type userRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	Role         string `json:"role"`
	CreatedAt    string `json:"createdAt"`
}

func toUserRecord(u *types.User) userRecord {
	return userRecord{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
	}
}

func (r *userRecord) toUser() types.User {
	return types.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         r.Role,
		CreatedAt:    r.CreatedAt,
	}
}

// ListUsers returns all users, oldest first.
func (b *Backend) ListUsers() ([]types.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	records, err := readList[userRecord](b.kv, KeyUsers)
	if err != nil {
		return nil, err
	}
	users := make([]types.User, len(records))
	for i := range records {
		users[i] = records[i].toUser()
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
	records, err := readList[userRecord](b.kv, KeyUsers)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].Email == email {
			u := records[i].toUser()
			return &u, nil
		}
	}
	return nil, nil
}

// AddUser validates and appends the user. The password must already be
// hashed via SetPassword. A duplicate email fails with a
// DuplicateKeyError.
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

	records, err := readList[userRecord](b.kv, KeyUsers)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].Email == u.Email {
			return nil, &types.DuplicateKeyError{Field: "email", Value: u.Email}
		}
	}

	u.ID = types.NewID()
	u.CreatedAt = types.Now()
	records = append(records, toUserRecord(&u))
	if err := writeList(b.kv, KeyUsers, records); err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteUser removes the user. Returns false when no user has the given
// id.
func (b *Backend) DeleteUser(id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return false, err
	}

	records, err := readList[userRecord](b.kv, KeyUsers)
	if err != nil {
		return false, err
	}
	filtered := records[:0]
	for i := range records {
		if records[i].ID != id {
			filtered = append(filtered, records[i])
		}
	}
	if len(filtered) == len(records) {
		return false, nil
	}
	if err := writeList(b.kv, KeyUsers, filtered); err != nil {
		return false, err
	}
	return true, nil
}
