package handler

import (
	"strings"

	"github.com/acquisitions/users-api/internal/api/validation"
	"github.com/acquisitions/users-api/internal/core/domain"
)

// maxPasswordBytes is bcrypt's input limit; the max tag counts runes.
const maxPasswordBytes = 72

type signupRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"oneof=user admin"`
}

type signinRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// newSignupSchema trims input, lower-cases the email and defaults the role.
// An admin role is accepted only when self-registration as admin is enabled.
func newSignupSchema(allowAdmin bool) *validation.Schema[signupRequest] {
	return validation.NewSchema(
		validation.WithNormalize(func(in *signupRequest) {
			in.Name = strings.TrimSpace(in.Name)
			in.Email = normalizeEmail(in.Email)
			in.Role = strings.TrimSpace(in.Role)
			if in.Role == "" {
				in.Role = string(domain.RoleUser)
			}
		}),
		validation.WithRule(func(in signupRequest) []validation.FieldError {
			if len(in.Password) > maxPasswordBytes {
				return []validation.FieldError{{Field: "password", Message: "password must be at most 72 bytes"}}
			}
			return nil
		}),
		validation.WithRule(func(in signupRequest) []validation.FieldError {
			if in.Role == string(domain.RoleAdmin) && !allowAdmin {
				return []validation.FieldError{{Field: "role", Message: "role admin cannot be self-assigned"}}
			}
			return nil
		}),
	)
}

func newSigninSchema() *validation.Schema[signinRequest] {
	return validation.NewSchema(
		validation.WithNormalize(func(in *signinRequest) {
			in.Email = normalizeEmail(in.Email)
		}),
	)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
