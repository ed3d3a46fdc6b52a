package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/rentroll/internal/authz"
	"github.com/stwalsh4118/rentroll/internal/models"
	"github.com/stwalsh4118/rentroll/internal/services"
)

// PortalHandler handles /api/tenant-portal, the tenant's own records.
type PortalHandler struct {
	service services.PortalService
}

// NewPortalHandler creates a new PortalHandler.
func NewPortalHandler(service services.PortalService) *PortalHandler {
	return &PortalHandler{service: service}
}

// MyLeases handles GET /api/tenant-portal/my-leases.
func (h *PortalHandler) MyLeases(c *gin.Context) {
	serveQuery(c, "Failed to list leases", func(actor authz.Actor) ([]models.Lease, error) {
		return h.service.MyLeases(c.Request.Context(), actor)
	})
}

// MyPayments handles GET /api/tenant-portal/my-payments.
func (h *PortalHandler) MyPayments(c *gin.Context) {
	serveQuery(c, "Failed to list payments", func(actor authz.Actor) ([]models.Payment, error) {
		return h.service.MyPayments(c.Request.Context(), actor)
	})
}

// MyMaintenance handles GET /api/tenant-portal/my-maintenance.
func (h *PortalHandler) MyMaintenance(c *gin.Context) {
	serveQuery(c, "Failed to list maintenance requests", func(actor authz.Actor) ([]models.MaintenanceRequest, error) {
		return h.service.MyMaintenance(c.Request.Context(), actor)
	})
}
