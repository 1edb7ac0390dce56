package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/acquisitions/users-api/internal/core/domain"
	"github.com/acquisitions/users-api/internal/core/ports"
)

const (
	// TokenCookie is the cookie that carries the session token.
	TokenCookie = "token"

	principalKey = "principal"
)

// Authenticate resolves the principal from the token cookie, or from an
// Authorization bearer header when no cookie is present, and stores it on
// the context. Requests without a valid token continue with no principal;
// RequireAuth decides whether that is acceptable.
func Authenticate(tokens ports.TokenService, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFromRequest(c)
			if raw == "" {
				return next(c)
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				log.Debug().Err(err).Str("path", c.Path()).Msg("ignoring invalid session token")
				return next(c)
			}

			SetPrincipal(c, domain.PrincipalFromClaims(claims))
			return next(c)
		}
	}
}

func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// SetPrincipal stores p on the request context.
func SetPrincipal(c echo.Context, p *domain.Principal) {
	c.Set(principalKey, p)
}

// PrincipalFrom returns the principal resolved for this request, or nil.
func PrincipalFrom(c echo.Context) *domain.Principal {
	p, _ := c.Get(principalKey).(*domain.Principal)
	return p
}
