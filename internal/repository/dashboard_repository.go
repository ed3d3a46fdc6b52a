package repository

import (
	"context"
	"time"

	"github.com/stwalsh4118/rentroll/internal/authz"
	"github.com/stwalsh4118/rentroll/internal/models"
	"gorm.io/gorm"
)

// Counts aggregates the figures shown on dashboards, all within one scope.
type Counts struct {
	Properties            int64
	Units                 int64
	OccupiedUnits         int64
	ActiveLeases          int64
	PendingPayments       int64
	OverduePayments       int64
	MaintenanceTotal      int64
	PendingMaintenance    int64
	InProgressMaintenance int64
	PendingAmount         float64
	PaidAmount            float64
}

// DashboardRepository defines the aggregate queries behind dashboards.
type DashboardRepository interface {
	// Counts computes every aggregate for the scope. Payments due before
	// now that are still PENDING count as overdue.
	Counts(ctx context.Context, scope authz.Scope, now time.Time) (*Counts, error)

	// RecentProperties returns the newest properties first.
	RecentProperties(ctx context.Context, scope authz.Scope, limit int) ([]models.Property, error)

	// RecentlyUpdatedProperties returns properties edited after creation,
	// most recently updated first.
	RecentlyUpdatedProperties(ctx context.Context, scope authz.Scope, limit int) ([]models.Property, error)

	// RecentUnits returns the newest units first with their property loaded.
	RecentUnits(ctx context.Context, scope authz.Scope, limit int) ([]models.Unit, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository creates a new instance of DashboardRepository.
func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) scoped(ctx context.Context, model interface{}, table string, scope authz.Scope) *gorm.DB {
	return applyScope(r.db.WithContext(ctx).Model(model), table, scope)
}

func (r *dashboardRepository) Counts(ctx context.Context, scope authz.Scope, now time.Time) (*Counts, error) {
	var c Counts

	steps := []func() error{
		func() error {
			return r.scoped(ctx, &models.Property{}, "properties", scope).Count(&c.Properties).Error
		},
		func() error {
			return r.scoped(ctx, &models.Unit{}, "units", scope).Count(&c.Units).Error
		},
		func() error {
			return r.scoped(ctx, &models.Lease{}, "leases", scope).
				Where("leases.status = ?", models.LeaseActive).Count(&c.ActiveLeases).Error
		},
		func() error {
			return r.scoped(ctx, &models.Lease{}, "leases", scope).
				Where("leases.status = ?", models.LeaseActive).
				Distinct("leases.unit_id").Count(&c.OccupiedUnits).Error
		},
		func() error {
			return r.scoped(ctx, &models.Payment{}, "payments", scope).
				Where("payments.status = ?", models.PaymentPending).Count(&c.PendingPayments).Error
		},
		func() error {
			return r.scoped(ctx, &models.Payment{}, "payments", scope).
				Where("payments.status = ? AND payments.due_date < ?", models.PaymentPending, now).
				Count(&c.OverduePayments).Error
		},
		func() error {
			return r.scoped(ctx, &models.Payment{}, "payments", scope).
				Where("payments.status = ?", models.PaymentPending).
				Select("COALESCE(SUM(payments.amount), 0)").Scan(&c.PendingAmount).Error
		},
		func() error {
			return r.scoped(ctx, &models.Payment{}, "payments", scope).
				Where("payments.status = ?", models.PaymentPaid).
				Select("COALESCE(SUM(payments.amount), 0)").Scan(&c.PaidAmount).Error
		},
		func() error {
			return r.scoped(ctx, &models.MaintenanceRequest{}, "maintenance_requests", scope).
				Count(&c.MaintenanceTotal).Error
		},
		func() error {
			return r.scoped(ctx, &models.MaintenanceRequest{}, "maintenance_requests", scope).
				Where("maintenance_requests.status = ?", models.MaintenancePending).
				Count(&c.PendingMaintenance).Error
		},
		func() error {
			return r.scoped(ctx, &models.MaintenanceRequest{}, "maintenance_requests", scope).
				Where("maintenance_requests.status = ?", models.MaintenanceInProgress).
				Count(&c.InProgressMaintenance).Error
		},
	}

	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

func (r *dashboardRepository) RecentProperties(ctx context.Context, scope authz.Scope, limit int) ([]models.Property, error) {
	var properties []models.Property
	err := r.scoped(ctx, &models.Property{}, "properties", scope).
		Order("properties.created_at DESC, properties.id DESC").Limit(limit).
		Find(&properties).Error
	return properties, err
}

func (r *dashboardRepository) RecentlyUpdatedProperties(ctx context.Context, scope authz.Scope, limit int) ([]models.Property, error) {
	var properties []models.Property
	err := r.scoped(ctx, &models.Property{}, "properties", scope).
		Where("properties.updated_at > properties.created_at").
		Order("properties.updated_at DESC, properties.id DESC").Limit(limit).
		Find(&properties).Error
	return properties, err
}

func (r *dashboardRepository) RecentUnits(ctx context.Context, scope authz.Scope, limit int) ([]models.Unit, error) {
	var units []models.Unit
	err := r.scoped(ctx, &models.Unit{}, "units", scope).
		Preload("Property").
		Order("units.created_at DESC, units.id DESC").Limit(limit).
		Find(&units).Error
	return units, err
}
