package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/acquisitions/users-api/internal/api/handler"
	"github.com/acquisitions/users-api/internal/api/middleware"
	"github.com/acquisitions/users-api/internal/core/ports"
)

// RouterConfig carries the HTTP-level settings.
type RouterConfig struct {
	Production       bool
	CookieDomain     string
	AllowAdminSignup bool
	AllowOrigins     []string
	BodyLimit        string
	RateLimitWindow  time.Duration
	SessionTTL       time.Duration // cookie lifetime, equal to the token lifetime

	// Registerer and Gatherer back the request metrics and /metrics.
	// They default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// Deps are the collaborators the routes are built from.
type Deps struct {
	AuthService ports.AuthService
	UserService ports.UserService
	Tokens      ports.TokenService
	// Limiter is optional; without it no rate limit is applied.
	Limiter   middleware.Limiter
	Readiness map[string]handler.Pinger
	Logger    zerolog.Logger
	Started   time.Time
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig, deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger, cfg.Production)

	registerer := cfg.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	sessionTTL := cfg.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = time.Hour
	}

	// Probes and scrapes bypass the security chain.
	exempt := middleware.SkipPaths("/health", "/health/ready", "/metrics")

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "acquisitions",
		Registerer: registerer,
		Skipper:    exempt,
	}))
	e.Use(middleware.Security(middleware.SecurityConfig{
		AllowOrigins: cfg.AllowOrigins,
		BodyLimit:    cfg.BodyLimit,
		Production:   cfg.Production,
		Skipper:      exempt,
	})...)
	if deps.Limiter != nil {
		e.Use(middleware.RateLimit(deps.Limiter, cfg.RateLimitWindow, deps.Logger, exempt))
	}
	e.Use(middleware.Authenticate(deps.Tokens, deps.Logger))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.AuthService, deps.Tokens, handler.AuthHandlerConfig{
		Cookie: handler.CookieConfig{
			Secure: cfg.Production,
			Domain: cfg.CookieDomain,
			MaxAge: sessionTTL,
		},
		AllowAdminSignup: cfg.AllowAdminSignup,
	}, deps.Logger)
	userHandler := handler.NewUserHandler(deps.UserService, deps.Logger)
	requireAuth := middleware.RequireAuth()

	// --- Service routes ---
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Hello from Acquisitions Service!")
	})
	e.GET("/api", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Acquisitions Service API is running!"})
	})

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/signin", authHandler.Signin)
	auth.POST("/signout", authHandler.Signout)

	// --- User routes ---
	users := e.Group("/api/users")
	users.GET("", userHandler.List, requireAuth)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update, requireAuth)
	users.DELETE("/:id", userHandler.Delete, requireAuth)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler(deps.Started)
	readinessHandler := handler.NewReadinessHandler(deps.Readiness)
	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
