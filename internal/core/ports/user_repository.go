package ports

import (
	"context"

	"github.com/acquisitions/users-api/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
// Lookups return domain.ErrUserNotFound when no row matches; Insert and
// Update return domain.ErrUserExists when the store rejects a duplicate email.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Insert persists a new user and returns it without the password hash.
	Insert(ctx context.Context, user domain.NewUser) (*domain.User, error)
	Update(ctx context.Context, id string, update domain.UserUpdate) (*domain.User, error)
	// Delete removes the user and returns the deleted identifier.
	Delete(ctx context.Context, id string) (string, error)
	// ListAll returns every user ordered by creation time, without password hashes.
	ListAll(ctx context.Context) ([]*domain.User, error)
}
