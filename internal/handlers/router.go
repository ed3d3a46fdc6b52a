package handlers

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stwalsh4118/rentroll/internal/middleware"
	"github.com/stwalsh4118/rentroll/internal/storage"
)

// Routes holds every handler the API mounts.
type Routes struct {
	Health      *HealthHandler
	Auth        *AuthHandler
	Properties  *PropertyHandler
	Units       *UnitHandler
	Leases      *LeaseHandler
	Payments    *PaymentHandler
	Maintenance *MaintenanceHandler
	Tenants     *TenantHandler
	Dashboard   *DashboardHandler
	Portal      *PortalHandler
	Webhooks    *WebhookHandler

	// Authenticator guards every route except health, sign-in and webhooks.
	Authenticator middleware.Authenticator
	// UploadDir is served read-only under storage.URLPrefix when set.
	UploadDir string
}

// Register mounts the routes on router.
func (r Routes) Register(router *gin.Engine) {
	useJSONFieldNames()

	router.GET("/", r.Health.Root)
	router.GET("/health", r.Health.Health)
	router.GET("/health/ready", r.Health.Ready)

	if r.UploadDir != "" {
		router.Static(storage.URLPrefix, r.UploadDir)
	}

	api := router.Group("/api")
	api.GET("/info", r.Health.Info)

	requireAuth := middleware.Auth(r.Authenticator)

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", r.Auth.Register)
		authRoutes.POST("/login", r.Auth.Login)
		authRoutes.POST("/google", r.Auth.Google)
		authRoutes.GET("/me", requireAuth, r.Auth.Me)
		authRoutes.GET("/verify", requireAuth, r.Auth.Verify)
	}

	api.POST("/webhooks/stripe", r.Webhooks.Stripe)

	protected := api.Group("", requireAuth)

	properties := protected.Group("/properties")
	{
		properties.GET("", r.Properties.List)
		properties.POST("", r.Properties.Create)
		properties.GET("/:id", r.Properties.Get)
		properties.PUT("/:id", r.Properties.Update)
		properties.DELETE("/:id", r.Properties.Delete)
	}

	units := protected.Group("/units")
	{
		units.GET("", r.Units.List)
		units.POST("", r.Units.Create)
		units.GET("/property/:id", r.Units.ListByProperty)
		units.POST("/property/:id", r.Units.CreateForProperty)
		units.GET("/:id", r.Units.Get)
		units.PUT("/:id", r.Units.Update)
		units.DELETE("/:id", r.Units.Delete)
	}

	leases := protected.Group("/leases")
	{
		leases.GET("", r.Leases.List)
		leases.POST("", r.Leases.Create)
		leases.GET("/property/:id", r.Leases.ListByProperty)
		leases.GET("/unit/:id", r.Leases.ListByUnit)
		leases.GET("/:id", r.Leases.Get)
		leases.PUT("/:id", r.Leases.Update)
		leases.DELETE("/:id", r.Leases.Delete)
	}

	payments := protected.Group("/payments")
	{
		payments.GET("", r.Payments.List)
		payments.POST("", r.Payments.Create)
		payments.POST("/sync", r.Payments.Sync)
		payments.GET("/:id", r.Payments.Get)
		payments.PUT("/:id", r.Payments.Update)
		payments.DELETE("/:id", r.Payments.Delete)
		payments.POST("/:id/pay", r.Payments.MarkPaid)
		payments.POST("/:id/checkout", r.Payments.Checkout)
		payments.POST("/:id/verify", r.Payments.Verify)
	}

	maintenance := protected.Group("/maintenance")
	{
		maintenance.GET("", r.Maintenance.List)
		maintenance.POST("", r.Maintenance.Create)
		maintenance.GET("/:id", r.Maintenance.Get)
		maintenance.PUT("/:id", r.Maintenance.Update)
		maintenance.DELETE("/:id", r.Maintenance.Delete)
		maintenance.POST("/:id/photos", r.Maintenance.UploadPhotos)
	}

	tenants := protected.Group("/tenants")
	{
		tenants.GET("", r.Tenants.List)
		tenants.GET("/user/:id", r.Tenants.GetByUser)
		tenants.GET("/:id", r.Tenants.Get)
		tenants.DELETE("/:id", r.Tenants.Delete)
	}

	dashboard := protected.Group("/dashboard")
	{
		dashboard.GET("/stats", r.Dashboard.Stats)
		dashboard.GET("/tenant/stats", r.Dashboard.TenantStats)
		dashboard.GET("/manager-stats", r.Dashboard.ManagerStats)
		dashboard.GET("/manager-alerts", r.Dashboard.ManagerAlerts)
		dashboard.GET("/tenant-alerts", r.Dashboard.TenantAlerts)
		dashboard.GET("/recent-activity", r.Dashboard.RecentActivity)
	}

	portal := protected.Group("/tenant-portal")
	{
		portal.GET("/my-leases", r.Portal.MyLeases)
		portal.GET("/my-payments", r.Portal.MyPayments)
		portal.GET("/my-maintenance", r.Portal.MyMaintenance)
	}
}

// useJSONFieldNames makes validation errors name fields the way clients
// send them ("unitNumber", not "UnitNumber").
func useJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}
