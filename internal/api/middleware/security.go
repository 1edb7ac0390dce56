package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/acquisitions/users-api/internal/api/metrics"
)

// SecurityConfig controls the security middleware chain.
type SecurityConfig struct {
	AllowOrigins []string
	BodyLimit    string
	Production   bool
	Skipper      echomiddleware.Skipper
}

// Security returns secure headers, CORS and a body size limit, in that order.
func Security(cfg SecurityConfig) []echo.MiddlewareFunc {
	skipper := cfg.Skipper
	if skipper == nil {
		skipper = echomiddleware.DefaultSkipper
	}

	secure := echomiddleware.SecureConfig{
		Skipper:            skipper,
		XSSProtection:      "0",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		ReferrerPolicy:     "no-referrer",
	}
	if cfg.Production {
		secure.HSTSMaxAge = 15552000
	}

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cors := echomiddleware.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: !(len(origins) == 1 && origins[0] == "*"),
	}

	limit := cfg.BodyLimit
	if limit == "" {
		limit = "1M"
	}

	return []echo.MiddlewareFunc{
		echomiddleware.SecureWithConfig(secure),
		echomiddleware.CORSWithConfig(cors),
		echomiddleware.BodyLimitWithConfig(echomiddleware.BodyLimitConfig{Skipper: skipper, Limit: limit}),
	}
}

// Limiter counts calls per key.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit rejects clients that exceed the limiter's budget with 429.
// Limiter failures let the request through.
func RateLimit(l Limiter, window time.Duration, log zerolog.Logger, skipper echomiddleware.Skipper) echo.MiddlewareFunc {
	if skipper == nil {
		skipper = echomiddleware.DefaultSkipper
	}
	retryAfter := strconv.Itoa(int(window.Seconds()))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper(c) {
				return next(c)
			}

			ip := c.RealIP()
			ok, err := l.Allow(c.Request().Context(), ip)
			if err != nil {
				log.Warn().Err(err).Str("ip", ip).Msg("rate limiter unavailable, allowing request")
				return next(c)
			}
			if !ok {
				metrics.RateLimitedTotal.Inc()
				log.Warn().Str("ip", ip).Str("path", c.Request().URL.Path).Msg("rate limit exceeded")
				c.Response().Header().Set("Retry-After", retryAfter)
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
			}
			return next(c)
		}
	}
}

// SkipPaths skips the listed exact request paths.
func SkipPaths(paths ...string) echomiddleware.Skipper {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return func(c echo.Context) bool {
		_, ok := set[c.Request().URL.Path]
		return ok
	}
}

// RequestLogger writes one access log entry per request.
func RequestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= http.StatusInternalServerError {
				evt = log.Error()
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
