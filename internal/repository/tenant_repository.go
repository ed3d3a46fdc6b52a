package repository

import (
	"context"

	"github.com/stwalsh4118/rentroll/internal/authz"
	"github.com/stwalsh4118/rentroll/internal/models"
	"gorm.io/gorm"
)

// TenantRepository defines data access for tenant records.
// Every tenant is returned with its user loaded.
type TenantRepository interface {
	List(ctx context.Context, scope authz.Scope) ([]models.Tenant, error)

	// FindByID returns nil, nil if the tenant does not exist.
	FindByID(ctx context.Context, id uint) (*models.Tenant, error)

	// FindByUserID returns nil, nil if the user has no tenant record.
	FindByUserID(ctx context.Context, userID uint) (*models.Tenant, error)

	// CountActiveLeases counts the tenant's ACTIVE leases.
	CountActiveLeases(ctx context.Context, tenantID uint) (int64, error)

	// DeleteWithUser removes the tenant, its leases and their dependents,
	// and the owning user in one transaction.
	DeleteWithUser(ctx context.Context, tenant *models.Tenant) error
}

type tenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a new instance of TenantRepository.
func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) List(ctx context.Context, scope authz.Scope) ([]models.Tenant, error) {
	var tenants []models.Tenant
	q := applyScope(r.db.WithContext(ctx).Model(&models.Tenant{}), "tenants", scope)
	if err := q.Preload("User").Order("tenants.id").Find(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}

func (r *tenantRepository) FindByID(ctx context.Context, id uint) (*models.Tenant, error) {
	var tenant models.Tenant
	found, err := first(r.db.WithContext(ctx).Preload("User"), &tenant, id)
	if err != nil || !found {
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepository) FindByUserID(ctx context.Context, userID uint) (*models.Tenant, error) {
	var tenant models.Tenant
	found, err := first(r.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID), &tenant)
	if err != nil || !found {
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepository) CountActiveLeases(ctx context.Context, tenantID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Lease{}).
		Where("tenant_id = ? AND status = ?", tenantID, models.LeaseActive).
		Count(&n).Error
	return n, err
}

func (r *tenantRepository) DeleteWithUser(ctx context.Context, tenant *models.Tenant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteUserCascade(tx, tenant.UserID)
	})
}
