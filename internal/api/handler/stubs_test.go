package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/acquisitions/users-api/internal/api/middleware"
	"github.com/acquisitions/users-api/internal/api/validation"
	"github.com/acquisitions/users-api/internal/core/domain"
	"github.com/acquisitions/users-api/internal/core/ports"
)

type stubAuthService struct {
	signupFn func(ctx context.Context, in ports.SignupInput) (*domain.User, error)
	signinFn func(ctx context.Context, email, password string) (*domain.User, error)
}

func (s *stubAuthService) Signup(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
	return s.signupFn(ctx, in)
}

func (s *stubAuthService) Signin(ctx context.Context, email, password string) (*domain.User, error) {
	return s.signinFn(ctx, email, password)
}

type stubUserService struct {
	getAllFn  func(ctx context.Context) ([]*domain.User, error)
	getByIDFn func(ctx context.Context, id string) (*domain.User, error)
	updateFn  func(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error)
	deleteFn  func(ctx context.Context, id string) (string, error)
}

func (s *stubUserService) GetAll(ctx context.Context) ([]*domain.User, error) {
	return s.getAllFn(ctx)
}

func (s *stubUserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubUserService) Update(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	return s.updateFn(ctx, id, upd)
}

func (s *stubUserService) Delete(ctx context.Context, id string) (string, error) {
	return s.deleteFn(ctx, id)
}

type stubTokens struct {
	issued []domain.Claims
	err    error
}

func (s *stubTokens) Issue(c domain.Claims) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.issued = append(s.issued, c)
	return "signed." + c.ID, nil
}

func (s *stubTokens) Verify(string) (*domain.Claims, error) {
	return nil, errors.New("not used")
}

const (
	aliceID = "8a1f8a8e-6a43-4d1e-9a38-0e6f2d7f0a11"
	bobID   = "0c2e6a55-3b5f-4b8c-8a56-7a6b1f4a9e22"
)

func sampleUser(id, email string, role domain.Role) *domain.User {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &domain.User{ID: id, Name: "Alice", Email: email, Role: role, CreatedAt: ts, UpdatedAt: ts}
}

// newJSONContext builds an echo context for method/path with an optional
// JSON body and principal.
func newJSONContext(method, path, body string, p *domain.Principal) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if p != nil {
		middleware.SetPrincipal(c, p)
	}
	return c, rec
}

func withID(c echo.Context, id string) echo.Context {
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v (%s)", err, rec.Body.String())
	}
	return out
}

func tokenCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.TokenCookie {
			return ck
		}
	}
	return nil
}

// fieldErrors returns the field → message map of a validation error.
func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	out := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func expectStatus(t *testing.T, err error, code int, cause error) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != code {
		t.Fatalf("expected HTTP %d, got %v", code, err)
	}
	if cause != nil && !errors.Is(err, cause) {
		t.Fatalf("expected cause %v, got %v", cause, err)
	}
}

func httpErrorMessage(t *testing.T, err error) string {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected echo.HTTPError, got %v", err)
	}
	msg, _ := he.Message.(string)
	return msg
}
