package ports

import (
	"context"

	"github.com/acquisitions/users-api/internal/core/domain"
)

// UserService defines user management use cases. Authorization is the
// caller's responsibility.
type UserService interface {
	GetAll(ctx context.Context) ([]*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, id string, update domain.UserUpdate) (*domain.User, error)
	Delete(ctx context.Context, id string) (string, error)
}
