package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/proveritus/estatecloud/internal/property/audit"
	"github.com/proveritus/estatecloud/internal/property/model"
	"github.com/proveritus/estatecloud/internal/property/service"
	"github.com/proveritus/estatecloud/pkg/apperr"
	"github.com/proveritus/estatecloud/pkg/middleware"
	"github.com/proveritus/estatecloud/pkg/pagination"
)

// PropertyHandler exposes the property endpoints.
type PropertyHandler struct {
	properties *service.PropertyService
	recorder   *audit.Recorder
}

// NewPropertyHandler creates a PropertyHandler.
func NewPropertyHandler(properties *service.PropertyService, recorder *audit.Recorder) *PropertyHandler {
	return &PropertyHandler{properties: properties, recorder: recorder}
}

// Create adds a property.
func (h *PropertyHandler) Create(c echo.Context) error {
	var req service.PropertyInput
	if err := c.Bind(&req); err != nil {
		return apperr.Invalid("invalid request body")
	}

	actor := actorFrom(c)
	view, err := h.properties.Create(c.Request().Context(), actor, req)
	if err != nil {
		return err
	}

	h.recorder.Record(c.Request().Context(), actor, "PropertyService.Create", req)
	return c.JSON(http.StatusCreated, view)
}

// List returns a page of properties, optionally filtered by type.
func (h *PropertyHandler) List(c echo.Context) error {
	var propertyType *model.PropertyType
	if v := c.QueryParam("propertyType"); v != "" {
		t := model.PropertyType(v)
		if !t.Valid() {
			return apperr.Invalid("invalid request", "unknown property type")
		}
		propertyType = &t
	}

	page, err := h.properties.List(c.Request().Context(), propertyType, pagination.FromEcho(c, 20))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// Search returns properties matching the query by name or address.
func (h *PropertyHandler) Search(c echo.Context) error {
	page, err := h.properties.Search(c.Request().Context(), c.QueryParam("query"), pagination.FromEcho(c, 20))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// Count returns the total number of properties.
func (h *PropertyHandler) Count(c echo.Context) error {
	count, err := h.properties.Count(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int64{"count": count})
}

// GetByID returns one property with manager details.
func (h *PropertyHandler) GetByID(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	view, err := h.properties.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// Stats returns occupancy and income statistics for one property.
func (h *PropertyHandler) Stats(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	stats, err := h.properties.Stats(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// Update changes a property.
func (h *PropertyHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req service.PropertyInput
	if err := c.Bind(&req); err != nil {
		return apperr.Invalid("invalid request body")
	}

	actor := actorFrom(c)
	view, err := h.properties.Update(c.Request().Context(), actor, id, req)
	if err != nil {
		return err
	}

	h.recorder.Record(c.Request().Context(), actor, "PropertyService.Update", id, req)
	return c.JSON(http.StatusOK, view)
}

// Delete removes a property without children.
func (h *PropertyHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	actor := actorFrom(c)
	if err := h.properties.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}

	h.recorder.Record(c.Request().Context(), actor, "PropertyService.Delete", id)
	return c.NoContent(http.StatusNoContent)
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, apperr.Invalid("invalid request", name+" must be a positive integer")
	}
	return uint(id), nil
}

// actorFrom derives the audit actor from the request's JWT claims.
func actorFrom(c echo.Context) audit.Actor {
	claims := middleware.ClaimsFromEcho(c)
	if claims == nil {
		return audit.Actor{}
	}
	return audit.Actor{ID: claims.UserID, Username: claims.Username}
}
