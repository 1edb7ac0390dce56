package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/acquisitions/users-api/internal/api/middleware"
	"github.com/acquisitions/users-api/internal/core/domain"
)

// principal returns the authenticated identity for the request, failing
// fast with 401 when the Authenticate middleware resolved none.
func principal(c echo.Context) (*domain.Principal, error) {
	p := middleware.PrincipalFrom(c)
	if p == nil || p.ID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Authentication required").
			SetInternal(domain.ErrUnauthenticated)
	}
	return p, nil
}
