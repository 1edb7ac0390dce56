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

// UserHandler handles HTTP requests for user accounts.
type UserHandler struct {
	service ports.UserService
	idSch   *validation.Schema[userIDParams]
	updSch  *validation.Schema[updateUserRequest]
	log     zerolog.Logger
}

func NewUserHandler(service ports.UserService, log zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		idSch:   newUserIDSchema(),
		updSch:  newUpdateUserSchema(),
		log:     log,
	}
}

type listUsersResponse struct {
	Message string         `json:"message"`
	Users   []userResponse `json:"users"`
	Count   int            `json:"count"`
}

type userEnvelope struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

type deletedUser struct {
	ID string `json:"id"`
}

type deleteUserResponse struct {
	Message string      `json:"message"`
	Data    deletedUser `json:"data"`
}

// List returns every user.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {object}  listUsersResponse
// @Failure      401  {object}  map[string]any
// @Failure      500  {object}  map[string]any
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	h.log.Info().Msg("fetching all users")

	users, err := h.service.GetAll(c.Request().Context())
	if err != nil {
		h.record(c, "list", err)
		return err
	}

	h.record(c, "list", nil)
	return c.JSON(http.StatusOK, listUsersResponse{
		Message: "Users fetched successfully",
		Users:   toUserResponses(users),
		Count:   len(users),
	})
}

// Get returns a single user.
//
// @Summary      Get user by id
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID (UUID)"
// @Success      200  {object}  userEnvelope
// @Failure      400  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Failure      500  {object}  map[string]any
// @Router       /api/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	id, err := h.parseID(c)
	if err != nil {
		h.record(c, "get", err)
		return err
	}

	h.log.Info().Str("user_id", id).Msg("fetching user")
	user, err := h.service.GetByID(c.Request().Context(), id)
	if err != nil {
		h.record(c, "get", err)
		return err
	}

	h.record(c, "get", nil)
	return c.JSON(http.StatusOK, userEnvelope{Message: "User fetched successfully", User: toUserResponse(user)})
}

// Update applies a partial update to a user. Owners may edit their own
// name and email; admins may edit anyone, including the role.
//
// @Summary      Update user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "User ID (UUID)"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  userEnvelope
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Failure      404   {object}  map[string]any
// @Failure      409   {object}  map[string]any
// @Failure      500   {object}  map[string]any
// @Router       /api/users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	id, err := h.parseID(c)
	if err != nil {
		h.record(c, "update", err)
		return err
	}

	var req updateUserRequest
	if err := bindBody(c, &req); err != nil {
		h.record(c, "update", err)
		return err
	}
	res := h.updSch.Parse(req)
	if !res.OK {
		err := res.Err()
		h.record(c, "update", err)
		return err
	}
	update := res.Data.toDomain()

	p, err := principal(c)
	if err != nil {
		h.record(c, "update", err)
		return err
	}
	if err := authorizeUpdate(p, id, update); err != nil {
		h.log.Warn().Str("user_id", id).Str("principal_id", p.ID).Msg("update forbidden")
		h.record(c, "update", err)
		return err
	}

	h.log.Info().Str("user_id", id).Msg("updating user")
	user, err := h.service.Update(c.Request().Context(), id, update)
	if err != nil {
		h.record(c, "update", err)
		return err
	}

	h.record(c, "update", nil)
	return c.JSON(http.StatusOK, userEnvelope{Message: "User updated successfully", User: toUserResponse(user)})
}

// Delete removes a user. Owners may delete themselves; admins anyone.
//
// @Summary      Delete user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID (UUID)"
// @Success      200  {object}  deleteUserResponse
// @Failure      400  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Failure      500  {object}  map[string]any
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := h.parseID(c)
	if err != nil {
		h.record(c, "delete", err)
		return err
	}

	p, err := principal(c)
	if err != nil {
		h.record(c, "delete", err)
		return err
	}
	if err := authorizeDelete(p, id); err != nil {
		h.log.Warn().Str("user_id", id).Str("principal_id", p.ID).Msg("delete forbidden")
		h.record(c, "delete", err)
		return err
	}

	h.log.Info().Str("user_id", id).Msg("deleting user")
	deleted, err := h.service.Delete(c.Request().Context(), id)
	if err != nil {
		h.record(c, "delete", err)
		return err
	}

	h.record(c, "delete", nil)
	return c.JSON(http.StatusOK, deleteUserResponse{Message: "User deleted successfully", Data: deletedUser{ID: deleted}})
}

func (h *UserHandler) parseID(c echo.Context) (string, error) {
	res := h.idSch.Parse(userIDParams{ID: c.Param("id")})
	if !res.OK {
		return "", res.Err()
	}
	return res.Data.ID, nil
}

// record counts the outcome and logs client-side failures. Forbidden
// requests are logged at the authorization check and 5xx by the error handler.
func (h *UserHandler) record(c echo.Context, op string, err error) {
	out := outcome(err)
	metrics.UserOperationsTotal.WithLabelValues(op, out).Inc()
	if err == nil || out == "error" || errors.Is(err, domain.ErrForbidden) {
		return
	}
	h.log.Info().
		Err(err).
		Str("operation", op).
		Str("user_id", c.Param("id")).
		Str("outcome", out).
		Msg("user request rejected")
}

func outcome(err error) string {
	var verr *validation.Error
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &verr):
		return "invalid"
	case errors.Is(err, domain.ErrUserNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrUnauthenticated):
		return "forbidden"
	case errors.Is(err, domain.ErrUserExists):
		return "conflict"
	default:
		return "error"
	}
}
