package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/acquisitions/users-api/internal/core/domain"
	"github.com/acquisitions/users-api/internal/core/ports"
)

// AuthService implements signup and signin.
type AuthService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	logger zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, hasher ports.PasswordHasher, logger zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, logger: logger}
}

// Signup creates the account if no user holds the email yet. The store's
// unique constraint still guards the window between lookup and insert.
func (s *AuthService) Signup(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}

	existing, err := s.repo.FindByEmail(ctx, in.Email)
	switch {
	case err == nil && existing != nil:
		s.logger.Info().Str("email", in.Email).Msg("signup rejected: email already registered")
		return nil, domain.ErrUserExists
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("signup: lookup email: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}

	created, err := s.repo.Insert(ctx, domain.NewUser{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			s.logger.Info().Str("email", in.Email).Msg("signup rejected: concurrent insert won")
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("signup: insert: %w", err)
	}

	s.logger.Info().Str("user_id", created.ID).Str("email", created.Email).Msg("user created")
	return created.WithoutPassword(), nil
}

// Signin fetches the user by email and checks the password against the stored hash.
func (s *AuthService) Signin(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("signin: lookup email: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("signin: %w", err)
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("user authenticated")
	return user.WithoutPassword(), nil
}
