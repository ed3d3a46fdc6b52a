package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/rentroll/internal/services"
)

// LeaseHandler handles /api/leases.
type LeaseHandler struct {
	service services.LeaseService
}

// NewLeaseHandler creates a new LeaseHandler.
func NewLeaseHandler(service services.LeaseService) *LeaseHandler {
	return &LeaseHandler{service: service}
}

// List handles GET /api/leases.
func (h *LeaseHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	leases, err := h.service.List(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err, "Failed to list leases")
		return
	}
	c.JSON(http.StatusOK, leases)
}

// ListByProperty handles GET /api/leases/property/:id.
func (h *LeaseHandler) ListByProperty(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	propertyID, ok := paramID(c, "id")
	if !ok {
		return
	}

	leases, err := h.service.ListByProperty(c.Request.Context(), actor, propertyID)
	if err != nil {
		respondError(c, err, "Failed to list leases")
		return
	}
	c.JSON(http.StatusOK, leases)
}

// ListByUnit handles GET /api/leases/unit/:id.
func (h *LeaseHandler) ListByUnit(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	unitID, ok := paramID(c, "id")
	if !ok {
		return
	}

	leases, err := h.service.ListByUnit(c.Request.Context(), actor, unitID)
	if err != nil {
		respondError(c, err, "Failed to list leases")
		return
	}
	c.JSON(http.StatusOK, leases)
}

// Get handles GET /api/leases/:id.
func (h *LeaseHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	lease, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err, "Failed to load lease")
		return
	}
	c.JSON(http.StatusOK, lease)
}

// Create handles POST /api/leases. An ACTIVE lease also schedules its
// monthly payments.
func (h *LeaseHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var in services.LeaseInput
	if !bindJSON(c, &in) {
		return
	}

	lease, err := h.service.Create(c.Request.Context(), actor, in)
	if err != nil {
		respondError(c, err, "Failed to create lease")
		return
	}
	c.JSON(http.StatusCreated, lease)
}

// Update handles PUT /api/leases/:id.
func (h *LeaseHandler) Update(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var patch services.LeasePatch
	if !bindJSON(c, &patch) {
		return
	}

	lease, err := h.service.Update(c.Request.Context(), actor, id, patch)
	if err != nil {
		respondError(c, err, "Failed to update lease")
		return
	}
	c.JSON(http.StatusOK, lease)
}

// Delete handles DELETE /api/leases/:id.
func (h *LeaseHandler) Delete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err, "Failed to delete lease")
		return
	}
	c.Status(http.StatusNoContent)
}
