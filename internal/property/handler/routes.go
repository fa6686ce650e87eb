package handler

import (
	"github.com/labstack/echo/v4"

	usermodel "github.com/proveritus/estatecloud/internal/user/model"
	"github.com/proveritus/estatecloud/pkg/jwtutil"
	"github.com/proveritus/estatecloud/pkg/middleware"
)

// RegisterRoutes wires the property, floor, and unit endpoints onto e.
// Reads require authentication; writes additionally require the ADMIN or
// PROPERTY_MANAGER role.
func RegisterRoutes(e *echo.Echo, properties *PropertyHandler, floors *FloorHandler, units *UnitHandler, jwtUtil *jwtutil.JWTUtil) {
	canWrite := middleware.RequireRole(
		string(usermodel.RoleAdmin),
		string(usermodel.RolePropertyManager),
	)

	propertyGroup := e.Group("/api/properties", middleware.JWTAuthMiddleware(jwtUtil))
	propertyGroup.POST("", properties.Create, canWrite)
	propertyGroup.GET("", properties.List)
	propertyGroup.GET("/search", properties.Search)
	propertyGroup.GET("/count", properties.Count)
	propertyGroup.GET("/:id", properties.GetByID)
	propertyGroup.GET("/:id/stats", properties.Stats)
	propertyGroup.PUT("/:id", properties.Update, canWrite)
	propertyGroup.DELETE("/:id", properties.Delete, canWrite)

	floorGroup := e.Group("/api/floors", middleware.JWTAuthMiddleware(jwtUtil))
	floorGroup.POST("", floors.Create, canWrite)
	floorGroup.GET("", floors.List)
	floorGroup.GET("/:id", floors.GetByID)
	floorGroup.PUT("/:id", floors.Update, canWrite)
	floorGroup.DELETE("/:id", floors.Delete, canWrite)
	floorGroup.GET("/:id/occupancy-stats", floors.OccupancyStats)
	floorGroup.POST("/:id/refresh-occupancy", floors.RefreshOccupancy, canWrite)

	unitGroup := e.Group("/api/units", middleware.JWTAuthMiddleware(jwtUtil))
	unitGroup.POST("", units.Create, canWrite)
	unitGroup.GET("", units.List)
	unitGroup.GET("/search", units.Search)
	unitGroup.GET("/name/:name", units.GetByName)
	unitGroup.GET("/:id", units.GetByID)
	unitGroup.PUT("/:id", units.Update, canWrite)
	unitGroup.PATCH("/:id/occupancy", units.UpdateOccupancy, canWrite)
	unitGroup.DELETE("/:id", units.Delete, canWrite)
	unitGroup.GET("/property/:propertyId/income", units.RentalIncome)
	unitGroup.GET("/property/:propertyId/count", units.CountByProperty)
}
