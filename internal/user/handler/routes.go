package handler

import (
	"github.com/labstack/echo/v4"

	usermodel "github.com/proveritus/estatecloud/internal/user/model"
	"github.com/proveritus/estatecloud/pkg/jwtutil"
	"github.com/proveritus/estatecloud/pkg/middleware"
)

// RegisterRoutes wires the auth and user endpoints onto e.
func RegisterRoutes(e *echo.Echo, auth *AuthHandler, users *UserHandler, jwtUtil *jwtutil.JWTUtil) {
	authGroup := e.Group("/auth")
	authGroup.POST("/sign-in", auth.SignIn)
	authGroup.POST("/signup", auth.SignUp)
	authGroup.GET("/me", auth.Me, middleware.JWTAuthMiddleware(jwtUtil))

	userGroup := e.Group("/api/users", middleware.JWTAuthMiddleware(jwtUtil))
	adminOnly := middleware.RequireRole(string(usermodel.RoleAdmin))

	userGroup.GET("", users.List, adminOnly)
	userGroup.GET("/by-username", users.GetByUsername)
	userGroup.POST("/by-ids", users.GetByIDs)
	userGroup.GET("/:id", users.GetByID)
	userGroup.POST("", users.Create, adminOnly)
	userGroup.PUT("/:id", users.Update)
	userGroup.DELETE("/:id", users.Delete, adminOnly)
}
