package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/rentroll/internal/authz"
	"github.com/stwalsh4118/rentroll/internal/services"
)

// DashboardHandler handles /api/dashboard.
type DashboardHandler struct {
	service services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(service services.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// serveQuery runs one dashboard query for the current actor and writes its result.
func serveQuery[T any](c *gin.Context, fallback string, query func(authz.Actor) (T, error)) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	result, err := query(actor)
	if err != nil {
		respondError(c, err, fallback)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Stats handles GET /api/dashboard/stats.
func (h *DashboardHandler) Stats(c *gin.Context) {
	serveQuery(c, "Failed to load dashboard stats", func(actor authz.Actor) (*services.LandlordStats, error) {
		return h.service.Stats(c.Request.Context(), actor)
	})
}

// TenantStats handles GET /api/dashboard/tenant/stats.
func (h *DashboardHandler) TenantStats(c *gin.Context) {
	serveQuery(c, "Failed to load tenant stats", func(actor authz.Actor) (*services.TenantStats, error) {
		return h.service.TenantStats(c.Request.Context(), actor)
	})
}

// ManagerStats handles GET /api/dashboard/manager-stats.
func (h *DashboardHandler) ManagerStats(c *gin.Context) {
	serveQuery(c, "Failed to load manager stats", func(actor authz.Actor) (*services.ManagerStats, error) {
		return h.service.ManagerStats(c.Request.Context(), actor)
	})
}

// ManagerAlerts handles GET /api/dashboard/manager-alerts.
func (h *DashboardHandler) ManagerAlerts(c *gin.Context) {
	serveQuery(c, "Failed to load alerts", func(actor authz.Actor) ([]services.Alert, error) {
		return h.service.ManagerAlerts(c.Request.Context(), actor)
	})
}

// TenantAlerts handles GET /api/dashboard/tenant-alerts.
func (h *DashboardHandler) TenantAlerts(c *gin.Context) {
	serveQuery(c, "Failed to load alerts", func(actor authz.Actor) ([]services.Alert, error) {
		return h.service.TenantAlerts(c.Request.Context(), actor)
	})
}

// RecentActivity handles GET /api/dashboard/recent-activity.
func (h *DashboardHandler) RecentActivity(c *gin.Context) {
	serveQuery(c, "Failed to load recent activity", func(actor authz.Actor) ([]services.Activity, error) {
		return h.service.RecentActivity(c.Request.Context(), actor)
	})
}
