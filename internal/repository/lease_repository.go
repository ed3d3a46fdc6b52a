package repository

import (
	"context"
	"time"

	"github.com/stwalsh4118/rentroll/internal/authz"
	"github.com/stwalsh4118/rentroll/internal/models"
	"gorm.io/gorm"
)

// LeaseFilter narrows lease listings.
type LeaseFilter struct {
	PropertyID *uint
	UnitID     *uint
	Status     *models.LeaseStatus
	// EndingBetween keeps leases whose end date falls in [From, To].
	EndingBetween *DateRange
}

// DateRange is an inclusive time interval.
type DateRange struct {
	From time.Time
	To   time.Time
}

// LeaseRepository defines data access for leases.
// Leases are returned with tenant (and user) and unit (and property) loaded.
type LeaseRepository interface {
	List(ctx context.Context, scope authz.Scope, filter LeaseFilter) ([]models.Lease, error)

	// FindByID returns nil, nil if the lease does not exist.
	FindByID(ctx context.Context, id uint) (*models.Lease, error)

	// FindActiveByUnit returns the unit's ACTIVE lease, or nil, nil.
	FindActiveByUnit(ctx context.Context, unitID uint) (*models.Lease, error)

	// Create inserts the lease. A second ACTIVE lease for the same unit
	// fails with ErrDuplicate.
	Create(ctx context.Context, lease *models.Lease) error

	// Update saves the lease's columns, with the same ErrDuplicate rule as Create.
	Update(ctx context.Context, lease *models.Lease) error

	// Delete removes the lease with its payments and maintenance requests.
	Delete(ctx context.Context, id uint) error
}

type leaseRepository struct {
	db *gorm.DB
}

// NewLeaseRepository creates a new instance of LeaseRepository.
func NewLeaseRepository(db *gorm.DB) LeaseRepository {
	return &leaseRepository{db: db}
}

func preloadLease(db *gorm.DB, prefix string) *gorm.DB {
	return db.Preload(prefix + "Tenant.User").Preload(prefix + "Unit.Property")
}

func (r *leaseRepository) List(ctx context.Context, scope authz.Scope, filter LeaseFilter) ([]models.Lease, error) {
	q := applyScope(r.db.WithContext(ctx).Model(&models.Lease{}), "leases", scope)
	if filter.UnitID != nil {
		q = q.Where("leases.unit_id = ?", *filter.UnitID)
	}
	if filter.PropertyID != nil {
		q = q.Where("leases.unit_id IN (SELECT id FROM units WHERE property_id = ?)", *filter.PropertyID)
	}
	if filter.Status != nil {
		q = q.Where("leases.status = ?", *filter.Status)
	}
	if filter.EndingBetween != nil {
		q = q.Where("leases.end_date >= ? AND leases.end_date <= ?", filter.EndingBetween.From, filter.EndingBetween.To)
	}

	var leases []models.Lease
	if err := preloadLease(q, "").Order("leases.start_date DESC, leases.id DESC").Find(&leases).Error; err != nil {
		return nil, err
	}
	return leases, nil
}

func (r *leaseRepository) FindByID(ctx context.Context, id uint) (*models.Lease, error) {
	var lease models.Lease
	found, err := first(preloadLease(r.db.WithContext(ctx), ""), &lease, id)
	if err != nil || !found {
		return nil, err
	}
	return &lease, nil
}

func (r *leaseRepository) FindActiveByUnit(ctx context.Context, unitID uint) (*models.Lease, error) {
	var lease models.Lease
	q := r.db.WithContext(ctx).Where("unit_id = ? AND status = ?", unitID, models.LeaseActive)
	found, err := first(q, &lease)
	if err != nil || !found {
		return nil, err
	}
	return &lease, nil
}

func (r *leaseRepository) Create(ctx context.Context, lease *models.Lease) error {
	return translate(r.db.WithContext(ctx).Omit("Tenant", "Unit").Create(lease).Error)
}

func (r *leaseRepository) Update(ctx context.Context, lease *models.Lease) error {
	return translate(r.db.WithContext(ctx).Omit("Tenant", "Unit").Save(lease).Error)
}

func (r *leaseRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteLeasesWhere(tx, "id = ?", id)
	})
}
