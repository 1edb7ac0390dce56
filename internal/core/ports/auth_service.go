package ports

import (
	"context"

	"github.com/acquisitions/users-api/internal/core/domain"
)

// SignupInput is the DTO passed from the transport layer to AuthService.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// AuthService implements account creation and credential checks.
type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*domain.User, error)
	Signin(ctx context.Context, email, password string) (*domain.User, error)
}
