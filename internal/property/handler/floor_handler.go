package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/proveritus/estatecloud/internal/property/audit"
	"github.com/proveritus/estatecloud/internal/property/service"
	"github.com/proveritus/estatecloud/pkg/apperr"
	"github.com/proveritus/estatecloud/pkg/pagination"
)

// FloorHandler exposes the floor endpoints.
type FloorHandler struct {
	floors   *service.FloorService
	recorder *audit.Recorder
}

// NewFloorHandler creates a FloorHandler.
func NewFloorHandler(floors *service.FloorService, recorder *audit.Recorder) *FloorHandler {
	return &FloorHandler{floors: floors, recorder: recorder}
}

// Create adds a floor.
func (h *FloorHandler) Create(c echo.Context) error {
	var req service.FloorInput
	if err := c.Bind(&req); err != nil {
		return apperr.Invalid("invalid request body")
	}

	actor := actorFrom(c)
	floor, err := h.floors.Create(c.Request().Context(), actor, req)
	if err != nil {
		return err
	}

	h.recorder.Record(c.Request().Context(), actor, "FloorService.Create", req)
	return c.JSON(http.StatusCreated, floor)
}

// List returns the floors of a property; size<=0 returns them all.
func (h *FloorHandler) List(c echo.Context) error {
	propertyID, err := strconv.ParseUint(c.QueryParam("propertyId"), 10, 32)
	if err != nil {
		return apperr.Invalid("invalid request", "propertyId query parameter is required")
	}

	page, err := h.floors.ListByProperty(c.Request().Context(), uint(propertyID), pagination.FromEcho(c, 0))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// GetByID returns one floor.
func (h *FloorHandler) GetByID(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	floor, err := h.floors.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, floor)
}

// Update changes a floor.
func (h *FloorHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req service.FloorInput
	if err := c.Bind(&req); err != nil {
		return apperr.Invalid("invalid request body")
	}

	actor := actorFrom(c)
	floor, err := h.floors.Update(c.Request().Context(), actor, id, req)
	if err != nil {
		return err
	}

	h.recorder.Record(c.Request().Context(), actor, "FloorService.Update", id, req)
	return c.JSON(http.StatusOK, floor)
}

// Delete removes a floor without units.
func (h *FloorHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	actor := actorFrom(c)
	if err := h.floors.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}

	h.recorder.Record(c.Request().Context(), actor, "FloorService.Delete", id)
	return c.NoContent(http.StatusNoContent)
}

// OccupancyStats returns per-status counts and rates for the floor's units.
func (h *FloorHandler) OccupancyStats(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	stats, err := h.floors.OccupancyStats(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// RefreshOccupancy recomputes the floor's cached counters on demand.
func (h *FloorHandler) RefreshOccupancy(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	floor, err := h.floors.RefreshCounters(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, floor)
}
