package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	usermodel "github.com/proveritus/estatecloud/internal/user/model"
	"github.com/proveritus/estatecloud/internal/user/service"
	"github.com/proveritus/estatecloud/pkg/apperr"
	"github.com/proveritus/estatecloud/pkg/jwtutil"
	"github.com/proveritus/estatecloud/pkg/middleware"
	"github.com/proveritus/estatecloud/pkg/pagination"
)

// UserHandler exposes user management endpoints.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List returns a page of users. Admin only.
func (h *UserHandler) List(c echo.Context) error {
	page, err := h.users.List(c.Request().Context(), pagination.FromEcho(c, 20))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// GetByID returns one user. Admins may read anyone; others only themselves.
func (h *UserHandler) GetByID(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := requireSelfOrAdmin(c, id); err != nil {
		return err
	}

	user, err := h.users.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// GetByUsername returns the user with the given username.
func (h *UserHandler) GetByUsername(c echo.Context) error {
	username := c.QueryParam("username")
	if username == "" {
		return apperr.Invalid("invalid request", "username query parameter is required")
	}

	user, err := h.users.GetByUsername(c.Request().Context(), username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// GetByIDs returns the users matching the posted id list; unknown ids are
// omitted.
func (h *UserHandler) GetByIDs(c echo.Context) error {
	var ids []uint
	if err := c.Bind(&ids); err != nil {
		return apperr.Invalid("invalid request body")
	}

	users, err := h.users.GetByIDs(c.Request().Context(), ids)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Create adds a user. Admin only.
func (h *UserHandler) Create(c echo.Context) error {
	var req service.UserInput
	if err := c.Bind(&req); err != nil {
		return apperr.Invalid("invalid request body")
	}

	user, err := h.users.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// Update changes a user. Admins may update anyone; others only themselves.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := requireSelfOrAdmin(c, id); err != nil {
		return err
	}

	var req service.UserInput
	if err := c.Bind(&req); err != nil {
		return apperr.Invalid("invalid request body")
	}

	user, err := h.users.Update(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Delete removes a user. Admin only.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.users.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, apperr.Invalid("invalid request", "id must be a positive integer")
	}
	return uint(id), nil
}

// requireSelfOrAdmin allows admins and trusted service callers through, and
// anyone else only for their own id.
func requireSelfOrAdmin(c echo.Context, id uint) error {
	claims := middleware.ClaimsFromEcho(c)
	if claims == nil {
		return apperr.Unauthorized("missing authentication")
	}
	switch {
	case claims.Role == string(usermodel.RoleAdmin):
		return nil
	case claims.Role == jwtutil.RoleService:
		return nil
	case claims.UserID == id:
		return nil
	}
	return apperr.Forbidden("insufficient role")
}
