package handler

import (
	"strings"

	"github.com/acquisitions/users-api/internal/api/validation"
	"github.com/acquisitions/users-api/internal/core/domain"
)

type userIDParams struct {
	ID string `param:"id" validate:"required,uuid"`
}

type updateUserRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Email *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Role  *string `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
}

func (r updateUserRequest) toDomain() domain.UserUpdate {
	var upd domain.UserUpdate
	upd.Name = r.Name
	upd.Email = r.Email
	if r.Role != nil {
		role := domain.Role(*r.Role)
		upd.Role = &role
	}
	return upd
}

func newUserIDSchema() *validation.Schema[userIDParams] {
	return validation.NewSchema(
		validation.WithNormalize(func(in *userIDParams) {
			in.ID = strings.ToLower(strings.TrimSpace(in.ID))
		}),
	)
}

// newUpdateUserSchema requires at least one field to be present.
func newUpdateUserSchema() *validation.Schema[updateUserRequest] {
	return validation.NewSchema(
		validation.WithNormalize(func(in *updateUserRequest) {
			if in.Name != nil {
				name := strings.TrimSpace(*in.Name)
				in.Name = &name
			}
			if in.Email != nil {
				email := normalizeEmail(*in.Email)
				in.Email = &email
			}
		}),
		validation.WithRule(func(in updateUserRequest) []validation.FieldError {
			if in.Name == nil && in.Email == nil && in.Role == nil {
				return []validation.FieldError{{Field: "body", Message: "at least one field must be provided for update"}}
			}
			return nil
		}),
	)
}
