package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/acquisitions/users-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID   map[string]*domain.User
	seq    int
	err    error // if set, every call returns this error
	raceOn bool  // if set, Insert reports a unique violation regardless of state
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Insert(_ context.Context, nu domain.NewUser) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.raceOn {
		return nil, domain.ErrUserExists
	}
	for _, u := range r.byID {
		if u.Email == nu.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	u := &domain.User{
		ID:           fmt.Sprintf("user-%d", r.seq),
		Name:         nu.Name,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		Role:         nu.Role,
		CreatedAt:    time.Now().UTC(),
	}
	u.UpdatedAt = u.CreatedAt
	r.byID[u.ID] = u
	return u.WithoutPassword(), nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if upd.Email != nil {
		for _, other := range r.byID {
			if other.ID != id && other.Email == *upd.Email {
				return nil, domain.ErrUserExists
			}
		}
		u.Email = *upd.Email
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	if _, ok := r.byID[id]; !ok {
		return "", domain.ErrUserNotFound
	}
	delete(r.byID, id)
	return id, nil
}

func (r *stubUserRepo) ListAll(_ context.Context) ([]*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Stub hasher: "hashed:" prefix, with injectable primitive failures.
// ---------------------------------------------------------------------------

type stubHasher struct {
	hashErr   error
	verifyErr error
}

func (h *stubHasher) Hash(plaintext string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + plaintext, nil
}

func (h *stubHasher) Verify(plaintext, hashed string) (bool, error) {
	if h.verifyErr != nil {
		return false, h.verifyErr
	}
	if !strings.HasPrefix(hashed, "hashed:") {
		return false, errors.New("malformed hash")
	}
	return hashed == "hashed:"+plaintext, nil
}
