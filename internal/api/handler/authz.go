package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/acquisitions/users-api/internal/core/domain"
)

// authorizeUpdate allows the account owner or an admin to modify a user.
// Only admins may change a role, whoever the target is.
func authorizeUpdate(p *domain.Principal, targetID string, update domain.UserUpdate) error {
	if !p.Is(targetID) && !p.IsAdmin() {
		return forbidden("You can only update your own information")
	}
	if update.ChangesRole() && !p.IsAdmin() {
		return forbidden("Only admins can change user roles")
	}
	return nil
}

// authorizeDelete allows the account owner or an admin to delete a user.
func authorizeDelete(p *domain.Principal, targetID string) error {
	if !p.Is(targetID) && !p.IsAdmin() {
		return forbidden("You can only delete your own account")
	}
	return nil
}

func forbidden(msg string) error {
	return echo.NewHTTPError(http.StatusForbidden, msg).SetInternal(domain.ErrForbidden)
}
