package domain

import "time"

// Role governs what an authenticated user may do.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User models an account in the system.
// PasswordHash is populated only on lookups that need it (signin); every
// representation handed to the transport layer has it cleared.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// WithoutPassword returns a copy of u with the password hash removed.
func (u *User) WithoutPassword() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.PasswordHash = ""
	return &clone
}

// NewUser carries the fields required to persist a new account.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	Role         Role
}

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	Name  *string
	Email *string
	Role  *Role
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.Role == nil
}

// ChangesRole reports whether the update touches the role field.
func (u UserUpdate) ChangesRole() bool {
	return u.Role != nil
}
