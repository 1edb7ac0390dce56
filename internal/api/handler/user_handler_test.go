package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/acquisitions/users-api/internal/core/domain"
)

var (
	alice = &domain.Principal{ID: aliceID, Email: "alice@x.com", Role: domain.RoleUser}
	admin = &domain.Principal{ID: bobID, Email: "bob@x.com", Role: domain.RoleAdmin}
)

func TestUserHandler_List(t *testing.T) {
	stub := &stubUserService{
		getAllFn: func(context.Context) ([]*domain.User, error) {
			return []*domain.User{
				sampleUser(aliceID, "alice@x.com", domain.RoleUser),
				sampleUser(bobID, "bob@x.com", domain.RoleAdmin),
			}, nil
		},
	}
	h := NewUserHandler(stub, zerolog.Nop())

	c, rec := newJSONContext(http.MethodGet, "/api/users", "", alice)
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	resp := decode(t, rec)
	if resp["message"] != "Users fetched successfully" || resp["count"] != float64(2) {
		t.Fatalf("unexpected response: %+v", resp)
	}
	users := resp["users"].([]any)
	first := users[0].(map[string]any)
	if first["created_at"] != "2024-05-01T10:00:00Z" {
		t.Fatalf("unexpected created_at: %v", first["created_at"])
	}
	if _, leaked := first["password"]; leaked {
		t.Fatalf("password must never be returned")
	}
}

func TestUserHandler_Get(t *testing.T) {
	stub := &stubUserService{
		getByIDFn: func(_ context.Context, id string) (*domain.User, error) {
			if id == aliceID {
				return sampleUser(aliceID, "alice@x.com", domain.RoleUser), nil
			}
			return nil, domain.ErrUserNotFound
		},
	}
	h := NewUserHandler(stub, zerolog.Nop())

	c, rec := newJSONContext(http.MethodGet, "/api/users/"+aliceID, "", nil)
	if err := h.Get(withID(c, aliceID)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decode(t, rec)
	if resp["message"] != "User fetched successfully" || resp["user"].(map[string]any)["id"] != aliceID {
		t.Fatalf("unexpected response: %+v", resp)
	}

	c, _ = newJSONContext(http.MethodGet, "/api/users/"+bobID, "", nil)
	if err := h.Get(withID(c, bobID)); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUserHandler_LogsClientFailures(t *testing.T) {
	stub := &stubUserService{
		getByIDFn: func(context.Context, string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
		deleteFn: func(context.Context, string) (string, error) {
			return "", domain.ErrUserNotFound
		},
	}
	var buf bytes.Buffer
	h := NewUserHandler(stub, zerolog.New(&buf))

	c, _ := newJSONContext(http.MethodGet, "/api/users/"+bobID, "", nil)
	if err := h.Get(withID(c, bobID)); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	c, _ = newJSONContext(http.MethodDelete, "/api/users/"+aliceID, "", alice)
	if err := h.Delete(withID(c, aliceID)); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	c, _ = newJSONContext(http.MethodGet, "/api/users/abc", "", nil)
	_ = h.Get(withID(c, "abc"))

	out := buf.String()
	for _, want := range []string{
		`"operation":"get","user_id":"` + bobID + `","outcome":"not_found"`,
		`"operation":"delete","user_id":"` + aliceID + `","outcome":"not_found"`,
		`"operation":"get","user_id":"abc","outcome":"invalid"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected log containing %s, got:\n%s", want, out)
		}
	}
}

func TestUserHandler_Get_InvalidID(t *testing.T) {
	stub := &stubUserService{
		getByIDFn: func(context.Context, string) (*domain.User, error) {
			t.Fatalf("service must not be called with an invalid id")
			return nil, nil
		},
	}
	h := NewUserHandler(stub, zerolog.Nop())

	c, _ := newJSONContext(http.MethodGet, "/api/users/abc", "", nil)
	fields := fieldErrors(t, h.Get(withID(c, "abc")))
	if fields["id"] != "id must be a valid UUID" {
		t.Fatalf("unexpected field errors: %v", fields)
	}
}

func TestUserHandler_Update_Authorization(t *testing.T) {
	updated := sampleUser(aliceID, "alice@x.com", domain.RoleUser)
	cases := []struct {
		name      string
		principal *domain.Principal
		target    string
		body      string
		wantCode  int
		wantCause error
	}{
		{"owner renames self", alice, aliceID, `{"name":"Alicia"}`, http.StatusOK, nil},
		{"user edits someone else", alice, bobID, `{"name":"Bobby"}`, http.StatusForbidden, domain.ErrForbidden},
		{"user changes own role", alice, aliceID, `{"role":"admin"}`, http.StatusForbidden, domain.ErrForbidden},
		{"admin edits someone else", admin, aliceID, `{"name":"Alicia"}`, http.StatusOK, nil},
		{"admin changes a role", admin, aliceID, `{"role":"admin"}`, http.StatusOK, nil},
		{"anonymous", nil, aliceID, `{"name":"Alicia"}`, http.StatusUnauthorized, domain.ErrUnauthenticated},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			stub := &stubUserService{
				updateFn: func(_ context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
					called = true
					return updated, nil
				},
			}
			h := NewUserHandler(stub, zerolog.Nop())

			c, rec := newJSONContext(http.MethodPut, "/api/users/"+tc.target, tc.body, tc.principal)
			err := h.Update(withID(c, tc.target))

			if tc.wantCode == http.StatusOK {
				if err != nil {
					t.Fatalf("handler error: %v", err)
				}
				if !called || rec.Code != http.StatusOK {
					t.Fatalf("expected update to run, got %d", rec.Code)
				}
				if decode(t, rec)["message"] != "User updated successfully" {
					t.Fatalf("unexpected body %s", rec.Body.String())
				}
				return
			}
			expectStatus(t, err, tc.wantCode, tc.wantCause)
			if called {
				t.Fatalf("service must not be called when authorization fails")
			}
		})
	}
}

func TestUserHandler_Update_ForbiddenMessages(t *testing.T) {
	h := NewUserHandler(&stubUserService{}, zerolog.Nop())

	c, _ := newJSONContext(http.MethodPut, "/", `{"name":"Bobby"}`, alice)
	err := h.Update(withID(c, bobID))
	if msg := httpErrorMessage(t, err); msg != "You can only update your own information" {
		t.Fatalf("unexpected message %q", msg)
	}

	c, _ = newJSONContext(http.MethodPut, "/", `{"role":"admin"}`, alice)
	err = h.Update(withID(c, aliceID))
	if msg := httpErrorMessage(t, err); msg != "Only admins can change user roles" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestUserHandler_Update_PassesFields(t *testing.T) {
	stub := &stubUserService{
		updateFn: func(_ context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
			if upd.Name != nil || upd.Email == nil || *upd.Email != "new@x.com" || upd.Role == nil || *upd.Role != domain.RoleAdmin {
				t.Fatalf("unexpected update %+v", upd)
			}
			return sampleUser(id, *upd.Email, *upd.Role), nil
		},
	}
	h := NewUserHandler(stub, zerolog.Nop())

	c, _ := newJSONContext(http.MethodPut, "/", `{"email":" NEW@x.com ","role":"admin"}`, admin)
	if err := h.Update(withID(c, aliceID)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestUserHandler_Update_Validation(t *testing.T) {
	h := NewUserHandler(&stubUserService{}, zerolog.Nop())

	c, _ := newJSONContext(http.MethodPut, "/", `{}`, alice)
	if fields := fieldErrors(t, h.Update(withID(c, aliceID))); fields["body"] == "" {
		t.Fatalf("expected an empty update to be rejected, got %v", fields)
	}

	c, _ = newJSONContext(http.MethodPut, "/", `{"email":"nope"}`, alice)
	if fields := fieldErrors(t, h.Update(withID(c, aliceID))); fields["email"] == "" {
		t.Fatalf("expected email error, got %v", fields)
	}

	c, _ = newJSONContext(http.MethodPut, "/", `{"name":"Al"}`, alice)
	if fields := fieldErrors(t, h.Update(withID(c, "abc"))); fields["id"] == "" {
		t.Fatalf("expected id error, got %v", fields)
	}
}

func TestUserHandler_Update_Conflict(t *testing.T) {
	stub := &stubUserService{
		updateFn: func(context.Context, string, domain.UserUpdate) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	h := NewUserHandler(stub, zerolog.Nop())

	c, _ := newJSONContext(http.MethodPut, "/", `{"email":"taken@x.com"}`, alice)
	if err := h.Update(withID(c, aliceID)); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestUserHandler_Delete(t *testing.T) {
	deleted := map[string]bool{}
	stub := &stubUserService{
		deleteFn: func(_ context.Context, id string) (string, error) {
			if deleted[id] {
				return "", domain.ErrUserNotFound
			}
			deleted[id] = true
			return id, nil
		},
	}
	h := NewUserHandler(stub, zerolog.Nop())

	c, rec := newJSONContext(http.MethodDelete, "/", "", alice)
	if err := h.Delete(withID(c, aliceID)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decode(t, rec)
	if resp["message"] != "User deleted successfully" || resp["data"].(map[string]any)["id"] != aliceID {
		t.Fatalf("unexpected response: %+v", resp)
	}

	for i := 0; i < 2; i++ {
		c, _ = newJSONContext(http.MethodDelete, "/", "", admin)
		if err := h.Delete(withID(c, aliceID)); !errors.Is(err, domain.ErrUserNotFound) {
			t.Fatalf("attempt %d: expected not found, got %v", i+1, err)
		}
	}
}

func TestUserHandler_Delete_Forbidden(t *testing.T) {
	stub := &stubUserService{
		deleteFn: func(context.Context, string) (string, error) {
			t.Fatalf("service must not be called")
			return "", nil
		},
	}
	h := NewUserHandler(stub, zerolog.Nop())

	c, _ := newJSONContext(http.MethodDelete, "/", "", alice)
	err := h.Delete(withID(c, bobID))
	expectStatus(t, err, http.StatusForbidden, domain.ErrForbidden)
	if msg := httpErrorMessage(t, err); msg != "You can only delete your own account" {
		t.Fatalf("unexpected message %q", msg)
	}

	c, _ = newJSONContext(http.MethodDelete, "/", "", nil)
	expectStatus(t, h.Delete(withID(c, aliceID)), http.StatusUnauthorized, domain.ErrUnauthenticated)
}
