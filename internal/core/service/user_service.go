package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/acquisitions/users-api/internal/core/domain"
	"github.com/acquisitions/users-api/internal/core/ports"
)

type UserService struct {
	repo   ports.UserRepository
	logger zerolog.Logger
}

func NewUserService(repo ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

func (s *UserService) GetAll(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]*domain.User, len(users))
	for i, u := range users {
		out[i] = u.WithoutPassword()
	}
	return out, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapLookup("get user", err)
	}
	return user.WithoutPassword(), nil
}

// Update applies a partial update. It performs no role checks; callers must
// authorize the principal first.
func (s *UserService) Update(ctx context.Context, id string, update domain.UserUpdate) (*domain.User, error) {
	if update.Empty() {
		return s.GetByID(ctx, id)
	}

	user, err := s.repo.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.ErrUserExists
		}
		return nil, wrapLookup("update user", err)
	}

	s.logger.Info().Str("user_id", id).Msg("user updated")
	return user.WithoutPassword(), nil
}

func (s *UserService) Delete(ctx context.Context, id string) (string, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return "", wrapLookup("delete user", err)
	}

	s.logger.Info().Str("user_id", deleted).Msg("user deleted")
	return deleted, nil
}

// wrapLookup passes not-found through untouched so callers can match it
// directly, and wraps everything else with the operation name.
func wrapLookup(op string, err error) error {
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrUserNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
