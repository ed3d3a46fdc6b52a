package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/rentroll/internal/services"
)

// TenantHandler handles /api/tenants.
type TenantHandler struct {
	service services.TenantService
}

// NewTenantHandler creates a new TenantHandler.
func NewTenantHandler(service services.TenantService) *TenantHandler {
	return &TenantHandler{service: service}
}

// List handles GET /api/tenants.
func (h *TenantHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	tenants, err := h.service.List(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err, "Failed to list tenants")
		return
	}
	c.JSON(http.StatusOK, tenants)
}

// Get handles GET /api/tenants/:id.
func (h *TenantHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	tenant, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err, "Failed to load tenant")
		return
	}
	c.JSON(http.StatusOK, tenant)
}

// GetByUser handles GET /api/tenants/user/:id.
func (h *TenantHandler) GetByUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}

	tenant, err := h.service.GetByUser(c.Request.Context(), actor, userID)
	if err != nil {
		respondError(c, err, "Failed to load tenant")
		return
	}
	c.JSON(http.StatusOK, tenant)
}

// Delete handles DELETE /api/tenants/:id. Tenants with an active lease
// are refused.
func (h *TenantHandler) Delete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err, "Failed to delete tenant")
		return
	}
	c.Status(http.StatusNoContent)
}
