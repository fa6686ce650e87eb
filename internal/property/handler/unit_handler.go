package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/proveritus/estatecloud/internal/property/audit"
	"github.com/proveritus/estatecloud/internal/property/model"
	"github.com/proveritus/estatecloud/internal/property/service"
	"github.com/proveritus/estatecloud/pkg/apperr"
	"github.com/proveritus/estatecloud/pkg/pagination"
)

// UnitHandler exposes the unit endpoints.
type UnitHandler struct {
	units    *service.UnitService
	recorder *audit.Recorder
}

// NewUnitHandler creates a UnitHandler.
func NewUnitHandler(units *service.UnitService, recorder *audit.Recorder) *UnitHandler {
	return &UnitHandler{units: units, recorder: recorder}
}

// Create adds a unit.
func (h *UnitHandler) Create(c echo.Context) error {
	var req service.UnitInput
	if err := c.Bind(&req); err != nil {
		return apperr.Invalid("invalid request body")
	}

	actor := actorFrom(c)
	unit, err := h.units.Create(c.Request().Context(), actor, req)
	if err != nil {
		return err
	}

	h.recorder.Record(c.Request().Context(), actor, "UnitService.Create", req)
	return c.JSON(http.StatusCreated, unit)
}

// List returns a page of units filtered by property, floor, and status.
func (h *UnitHandler) List(c echo.Context) error {
	var filter service.UnitFilter

	if v := c.QueryParam("propertyId"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return apperr.Invalid("invalid request", "propertyId must be a positive integer")
		}
		propertyID := uint(id)
		filter.PropertyID = &propertyID
	}
	if v := c.QueryParam("floorId"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return apperr.Invalid("invalid request", "floorId must be a positive integer")
		}
		floorID := uint(id)
		filter.FloorID = &floorID
	}
	if v := c.QueryParam("occupancyStatus"); v != "" {
		status := model.OccupancyStatus(v)
		if !status.Valid() {
			return apperr.Invalid("invalid request", "unknown occupancy status")
		}
		filter.OccupancyStatus = &status
	}

	page, err := h.units.List(c.Request().Context(), filter, pagination.FromEcho(c, 20))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// Search returns units matching the query by name or tenant.
func (h *UnitHandler) Search(c echo.Context) error {
	page, err := h.units.Search(c.Request().Context(), c.QueryParam("query"), pagination.FromEcho(c, 20))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// GetByName returns the unit with the given name within a property.
func (h *UnitHandler) GetByName(c echo.Context) error {
	propertyID, err := strconv.ParseUint(c.QueryParam("propertyId"), 10, 32)
	if err != nil {
		return apperr.Invalid("invalid request", "propertyId query parameter is required")
	}

	unit, err := h.units.GetByName(c.Request().Context(), c.Param("name"), uint(propertyID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, unit)
}

// GetByID returns one unit.
func (h *UnitHandler) GetByID(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	unit, err := h.units.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, unit)
}

// Update changes a unit.
func (h *UnitHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req service.UnitInput
	if err := c.Bind(&req); err != nil {
		return apperr.Invalid("invalid request body")
	}

	actor := actorFrom(c)
	unit, err := h.units.Update(c.Request().Context(), actor, id, req)
	if err != nil {
		return err
	}

	h.recorder.Record(c.Request().Context(), actor, "UnitService.Update", id, req)
	return c.JSON(http.StatusOK, unit)
}

// UpdateOccupancy changes a unit's occupancy status and tenant.
func (h *UnitHandler) UpdateOccupancy(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	status := model.OccupancyStatus(c.QueryParam("occupancyStatus"))
	tenant := c.QueryParam("tenant")

	actor := actorFrom(c)
	unit, err := h.units.UpdateOccupancy(c.Request().Context(), actor, id, status, tenant)
	if err != nil {
		return err
	}

	h.recorder.Record(c.Request().Context(), actor, "UnitService.UpdateOccupancy", id, status, tenant)
	return c.JSON(http.StatusOK, unit)
}

// Delete removes a unit.
func (h *UnitHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	actor := actorFrom(c)
	if err := h.units.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}

	h.recorder.Record(c.Request().Context(), actor, "UnitService.Delete", id)
	return c.NoContent(http.StatusNoContent)
}

// RentalIncome returns the occupied rental income of a property.
func (h *UnitHandler) RentalIncome(c echo.Context) error {
	id, err := parseID(c, "propertyId")
	if err != nil {
		return err
	}

	income, err := h.units.RentalIncome(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]float64{"rental_income": income})
}

// CountByProperty returns the number of units in a property.
func (h *UnitHandler) CountByProperty(c echo.Context) error {
	id, err := parseID(c, "propertyId")
	if err != nil {
		return err
	}

	count, err := h.units.CountByProperty(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int64{"count": count})
}
