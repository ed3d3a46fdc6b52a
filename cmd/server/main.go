package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/rentroll/internal/auth"
	"github.com/stwalsh4118/rentroll/internal/config"
	"github.com/stwalsh4118/rentroll/internal/database"
	"github.com/stwalsh4118/rentroll/internal/handlers"
	"github.com/stwalsh4118/rentroll/internal/logger"
	"github.com/stwalsh4118/rentroll/internal/middleware"
	"github.com/stwalsh4118/rentroll/internal/payments"
	"github.com/stwalsh4118/rentroll/internal/repository"
	"github.com/stwalsh4118/rentroll/internal/services"
	"github.com/stwalsh4118/rentroll/internal/storage"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting Property Management API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	// Create database connection pool
	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db.DB); err != nil {
			log.Fatal("Failed to migrate database", err, nil)
		}
		log.Info("Database schema up to date", nil)
	}

	if cfg.Stripe.SecretKey == "" {
		log.Warn("STRIPE_SECRET_KEY not set, online payments disabled", nil)
	}
	if cfg.Google.ClientID == "" {
		log.Warn("GOOGLE_CLIENT_ID not set, Google sign-in disabled", nil)
	}

	// Initialize repository layer
	userRepo := repository.NewUserRepository(db.DB)
	tenantRepo := repository.NewTenantRepository(db.DB)
	propertyRepo := repository.NewPropertyRepository(db.DB)
	unitRepo := repository.NewUnitRepository(db.DB)
	leaseRepo := repository.NewLeaseRepository(db.DB)
	paymentRepo := repository.NewPaymentRepository(db.DB)
	maintenanceRepo := repository.NewMaintenanceRepository(db.DB)
	dashboardRepo := repository.NewDashboardRepository(db.DB)

	// Initialize external integrations
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.JWTExpiryMinutes)*time.Minute)
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	google := auth.NewGoogleVerifier(cfg.Google.ClientID)
	gateway := payments.NewStripeGateway(payments.StripeOptions{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		Logger:        log,
	})
	photos := storage.NewPhotoStore(cfg.Uploads.Dir, cfg.Uploads.MaxBytes)

	// Initialize service layer
	authService := services.NewAuthService(userRepo, tenantRepo, tokens, hasher, google, log)
	propertyService := services.NewPropertyService(propertyRepo, log)
	unitService := services.NewUnitService(unitRepo, propertyRepo, leaseRepo, log)
	leaseService := services.NewLeaseService(leaseRepo, unitRepo, propertyRepo, tenantRepo, paymentRepo, log)
	paymentService := services.NewPaymentService(paymentRepo, leaseRepo, gateway, services.PaymentConfig{
		Currency:    cfg.Stripe.Currency,
		FrontendURL: cfg.Server.FrontendURL,
	}, log)
	maintenanceService := services.NewMaintenanceService(maintenanceRepo, leaseRepo, photos, log)
	tenantService := services.NewTenantService(tenantRepo, log)
	dashboardService := services.NewDashboardService(dashboardRepo, paymentRepo, maintenanceRepo, leaseRepo, log)
	portalService := services.NewPortalService(leaseRepo, paymentRepo, maintenanceRepo)

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	handlers.Routes{
		Health:        handlers.NewHealthHandler(db, cfg.Server.Env),
		Auth:          handlers.NewAuthHandler(authService),
		Properties:    handlers.NewPropertyHandler(propertyService),
		Units:         handlers.NewUnitHandler(unitService),
		Leases:        handlers.NewLeaseHandler(leaseService),
		Payments:      handlers.NewPaymentHandler(paymentService),
		Maintenance:   handlers.NewMaintenanceHandler(maintenanceService),
		Tenants:       handlers.NewTenantHandler(tenantService),
		Dashboard:     handlers.NewDashboardHandler(dashboardService),
		Portal:        handlers.NewPortalHandler(portalService),
		Webhooks:      handlers.NewWebhookHandler(paymentService),
		Authenticator: authService,
		UploadDir:     cfg.Uploads.Dir,
	}.Register(router)

	// Create HTTP server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
