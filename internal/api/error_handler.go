package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/acquisitions/users-api/internal/api/validation"
	"github.com/acquisitions/users-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error   string                  `json:"error"`
	Message string                  `json:"message,omitempty"`
	Details []validation.FieldError `json:"details,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps validation failures to 400 with per-field details.
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors and hides their detail in production.
func NewHTTPErrorHandler(log zerolog.Logger, production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c, production)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context, production bool) (int, errorResponse) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return http.StatusBadRequest, errorResponse{Error: "Validation error", Details: verr.Fields}
	}

	// Known domain errors → deterministic HTTP codes. Authorization errors
	// arrive wrapped in an echo.HTTPError carrying the specific message.
	var he *echo.HTTPError
	hasHTTP := errors.As(err, &he)
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "Forbidden", Message: httpMessage(he, "Access forbidden")}
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, errorResponse{Error: "Unauthorized", Message: httpMessage(he, "Authentication required")}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "Unauthorized", Message: "Invalid credentials"}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Error: "Not found", Message: "User not found"}
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, errorResponse{Error: "Email already exists"}
	}

	// Echo's own errors (unknown route, 405, body limit, rate limit).
	if errors.Is(err, echo.ErrNotFound) {
		return http.StatusNotFound, errorResponse{Error: "Not Found", Message: "The requested resource does not exist"}
	}
	if hasHTTP && he.Code < http.StatusInternalServerError {
		return he.Code, errorResponse{Error: http.StatusText(he.Code), Message: httpMessage(he, "")}
	}

	// Unexpected error: log the real cause once, here.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	msg := "Something went wrong"
	if !production {
		msg = err.Error()
	}
	return http.StatusInternalServerError, errorResponse{Error: "Internal server error", Message: msg}
}

func httpMessage(he *echo.HTTPError, fallback string) string {
	if he == nil || he.Message == nil {
		return fallback
	}
	if s, ok := he.Message.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", he.Message)
}
