package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/acquisitions/users-api/internal/api/metrics"
	"github.com/acquisitions/users-api/internal/api/validation"
	"github.com/acquisitions/users-api/internal/core/domain"
	"github.com/acquisitions/users-api/internal/core/ports"
)

// AuthHandlerConfig holds the settings the auth endpoints need.
type AuthHandlerConfig struct {
	Cookie           CookieConfig
	AllowAdminSignup bool
}

type AuthHandler struct {
	authService ports.AuthService
	tokens      ports.TokenService
	cookie      CookieConfig
	signup      *validation.Schema[signupRequest]
	signin      *validation.Schema[signinRequest]
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, tokens ports.TokenService, cfg AuthHandlerConfig, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		tokens:      tokens,
		cookie:      cfg.Cookie,
		signup:      newSignupSchema(cfg.AllowAdminSignup),
		signin:      newSigninSchema(),
		log:         log,
	}
}

type authResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Signup creates a new user account and starts a session.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]any
// @Failure      409   {object}  map[string]any
// @Failure      500   {object}  map[string]any
// @Router       /api/auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := bindBody(c, &req); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("signup", "invalid").Inc()
		return err
	}
	res := h.signup.Parse(req)
	if !res.OK {
		metrics.AuthAttemptsTotal.WithLabelValues("signup", "invalid").Inc()
		return res.Err()
	}
	in := res.Data

	user, err := h.authService.Signup(c.Request().Context(), ports.SignupInput{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Role:     domain.Role(in.Role),
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.AuthAttemptsTotal.WithLabelValues("signup", "conflict").Inc()
		} else {
			metrics.AuthAttemptsTotal.WithLabelValues("signup", "error").Inc()
		}
		return err
	}

	if err := h.startSession(c, user); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("signup", "error").Inc()
		return err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("signup", "success").Inc()
	h.log.Info().Str("email", user.Email).Msg("user registered successfully")
	return c.JSON(http.StatusCreated, authResponse{
		Message: "User registered successfully",
		User:    toUserResponse(user),
	})
}

// Signin authenticates a user and starts a session.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signinRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Failure      500   {object}  map[string]any
// @Router       /api/auth/signin [post]
func (h *AuthHandler) Signin(c echo.Context) error {
	var req signinRequest
	if err := bindBody(c, &req); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("signin", "invalid").Inc()
		return err
	}
	res := h.signin.Parse(req)
	if !res.OK {
		metrics.AuthAttemptsTotal.WithLabelValues("signin", "invalid").Inc()
		return res.Err()
	}

	user, err := h.authService.Signin(c.Request().Context(), res.Data.Email, res.Data.Password)
	if err != nil {
		// Unknown email and wrong password look the same to the client.
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.AuthAttemptsTotal.WithLabelValues("signin", "invalid_credentials").Inc()
			h.log.Warn().Str("email", res.Data.Email).Err(err).Msg("signin rejected")
			return domain.ErrInvalidCredentials
		}
		metrics.AuthAttemptsTotal.WithLabelValues("signin", "error").Inc()
		return err
	}

	if err := h.startSession(c, user); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("signin", "error").Inc()
		return err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("signin", "success").Inc()
	h.log.Info().Str("email", user.Email).Msg("user signed in successfully")
	return c.JSON(http.StatusOK, authResponse{
		Message: "User signed in successfully",
		User:    toUserResponse(user),
	})
}

// Signout clears the session cookie.
//
// @Summary      Sign out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /api/auth/signout [post]
func (h *AuthHandler) Signout(c echo.Context) error {
	clearTokenCookie(c, h.cookie)

	metrics.AuthAttemptsTotal.WithLabelValues("signout", "success").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "User signed out successfully"})
}

func (h *AuthHandler) startSession(c echo.Context, user *domain.User) error {
	token, err := h.tokens.Issue(domain.Claims{ID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return err
	}
	setTokenCookie(c, h.cookie, token)
	return nil
}

// bindBody decodes the JSON body into dst. Decoding failures are reported as
// validation errors on the body.
func bindBody(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
			return err
		}
		return validation.Fail[struct{}]("body", "request body must be a valid JSON object").Err()
	}
	return nil
}
