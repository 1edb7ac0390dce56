package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/acquisitions/users-api/internal/core/domain"
)

// RequireAuth rejects requests that carry no principal.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if PrincipalFrom(c) == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required").
					SetInternal(domain.ErrUnauthenticated)
			}
			return next(c)
		}
	}
}
