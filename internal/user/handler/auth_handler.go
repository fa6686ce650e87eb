package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/proveritus/estatecloud/internal/user/service"
	"github.com/proveritus/estatecloud/pkg/apperr"
	"github.com/proveritus/estatecloud/pkg/jwtutil"
	"github.com/proveritus/estatecloud/pkg/logger"
	"github.com/proveritus/estatecloud/pkg/middleware"
)

// AuthHandler exposes sign-in, signup and the current-user endpoint.
type AuthHandler struct {
	users   *service.UserService
	jwtUtil *jwtutil.JWTUtil
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(users *service.UserService, jwtUtil *jwtutil.JWTUtil) *AuthHandler {
	return &AuthHandler{users: users, jwtUtil: jwtUtil}
}

type signInRequest struct {
	UsernameOrEmail string `json:"username_or_email"`
	Password        string `json:"password"`
}

// SignIn authenticates by username or email and returns a JWT.
func (h *AuthHandler) SignIn(c echo.Context) error {
	log := logger.FromEcho(c)

	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Invalid("invalid request body")
	}
	if req.UsernameOrEmail == "" || req.Password == "" {
		return apperr.Invalid("invalid request", "username or email and password are required")
	}

	user, err := h.users.Authenticate(c.Request().Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		return err
	}

	token, err := h.jwtUtil.GenerateToken(user.ID, user.Username, user.Email, string(user.Role))
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return apperr.Internal("failed to generate token", err)
	}

	log.Info("User signed in", zap.Uint("user_id", user.ID))
	return c.JSON(http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// SignUp registers a new account.
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req service.SignUpInput
	if err := c.Bind(&req); err != nil {
		return apperr.Invalid("invalid request body")
	}

	user, err := h.users.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, user)
}

// Me returns the authenticated caller's account.
func (h *AuthHandler) Me(c echo.Context) error {
	claims := middleware.ClaimsFromEcho(c)
	if claims == nil {
		return apperr.Unauthorized("missing authentication")
	}

	user, err := h.users.GetByID(c.Request().Context(), claims.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
