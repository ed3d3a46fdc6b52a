package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/rentroll/internal/authz"
	apierrors "github.com/stwalsh4118/rentroll/internal/errors"
	"github.com/stwalsh4118/rentroll/internal/services"
)

// UnitHandler handles /api/units.
type UnitHandler struct {
	service services.UnitService
}

// NewUnitHandler creates a new UnitHandler.
func NewUnitHandler(service services.UnitService) *UnitHandler {
	return &UnitHandler{service: service}
}

// CreateUnitRequest is the body of POST /api/units, which names the
// property in the body rather than the path.
type CreateUnitRequest struct {
	PropertyID uint `json:"propertyId" binding:"required"`
	services.UnitInput
}

// List handles GET /api/units with an optional ?property_id filter.
func (h *UnitHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var propertyID *uint
	if raw := c.Query("property_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid property_id", map[string]interface{}{"property_id": raw})
			return
		}
		pid := uint(id)
		propertyID = &pid
	}

	units, err := h.service.List(c.Request.Context(), actor, propertyID)
	if err != nil {
		respondError(c, err, "Failed to list units")
		return
	}
	c.JSON(http.StatusOK, units)
}

// ListByProperty handles GET /api/units/property/:id.
func (h *UnitHandler) ListByProperty(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	propertyID, ok := paramID(c, "id")
	if !ok {
		return
	}

	units, err := h.service.ListByProperty(c.Request.Context(), actor, propertyID)
	if err != nil {
		respondError(c, err, "Failed to list units")
		return
	}
	c.JSON(http.StatusOK, units)
}

// Get handles GET /api/units/:id.
func (h *UnitHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	unit, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err, "Failed to load unit")
		return
	}
	c.JSON(http.StatusOK, unit)
}

// Create handles POST /api/units.
func (h *UnitHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req CreateUnitRequest
	if !bindJSON(c, &req) {
		return
	}

	h.create(c, actor, req.PropertyID, req.UnitInput)
}

// CreateForProperty handles POST /api/units/property/:id.
func (h *UnitHandler) CreateForProperty(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	propertyID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in services.UnitInput
	if !bindJSON(c, &in) {
		return
	}

	h.create(c, actor, propertyID, in)
}

func (h *UnitHandler) create(c *gin.Context, actor authz.Actor, propertyID uint, in services.UnitInput) {
	unit, err := h.service.Create(c.Request.Context(), actor, propertyID, in)
	if err != nil {
		respondError(c, err, "Failed to create unit")
		return
	}
	c.JSON(http.StatusCreated, unit)
}

// Update handles PUT /api/units/:id.
func (h *UnitHandler) Update(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var patch services.UnitPatch
	if !bindJSON(c, &patch) {
		return
	}

	unit, err := h.service.Update(c.Request.Context(), actor, id, patch)
	if err != nil {
		respondError(c, err, "Failed to update unit")
		return
	}
	c.JSON(http.StatusOK, unit)
}

// Delete handles DELETE /api/units/:id.
func (h *UnitHandler) Delete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err, "Failed to delete unit")
		return
	}
	c.Status(http.StatusNoContent)
}
