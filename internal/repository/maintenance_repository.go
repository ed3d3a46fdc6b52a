package repository

import (
	"context"

	"github.com/stwalsh4118/rentroll/internal/authz"
	"github.com/stwalsh4118/rentroll/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaintenanceFilter narrows maintenance listings.
type MaintenanceFilter struct {
	Statuses []models.MaintenanceStatus
	// Limit caps the result count when positive.
	Limit int
	// RecentFirst orders by last update instead of creation.
	RecentFirst bool
}

// MaintenanceRepository defines data access for maintenance requests.
// Requests are returned with lease, tenant (and user), unit (and property) loaded.
type MaintenanceRepository interface {
	List(ctx context.Context, scope authz.Scope, filter MaintenanceFilter) ([]models.MaintenanceRequest, error)

	// FindByID returns nil, nil if the request does not exist.
	FindByID(ctx context.Context, id uint) (*models.MaintenanceRequest, error)

	Create(ctx context.Context, request *models.MaintenanceRequest) error
	Update(ctx context.Context, request *models.MaintenanceRequest) error
	Delete(ctx context.Context, id uint) error

	// AppendPhotos adds urls to the request's photo list and returns the
	// full list. The row is locked for the read-modify-write where the
	// database supports it.
	AppendPhotos(ctx context.Context, id uint, urls []string) ([]string, error)
}

type maintenanceRepository struct {
	db *gorm.DB
}

// NewMaintenanceRepository creates a new instance of MaintenanceRepository.
func NewMaintenanceRepository(db *gorm.DB) MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

func (r *maintenanceRepository) List(ctx context.Context, scope authz.Scope, filter MaintenanceFilter) ([]models.MaintenanceRequest, error) {
	q := applyScope(r.db.WithContext(ctx).Model(&models.MaintenanceRequest{}), "maintenance_requests", scope)
	if len(filter.Statuses) > 0 {
		q = q.Where("maintenance_requests.status IN ?", filter.Statuses)
	}
	if filter.RecentFirst {
		q = q.Order("maintenance_requests.updated_at DESC, maintenance_requests.id DESC")
	} else {
		q = q.Order("maintenance_requests.created_at DESC, maintenance_requests.id DESC")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var requests []models.MaintenanceRequest
	if err := preloadLease(q.Preload("Lease"), "Lease.").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *maintenanceRepository) FindByID(ctx context.Context, id uint) (*models.MaintenanceRequest, error) {
	var request models.MaintenanceRequest
	q := preloadLease(r.db.WithContext(ctx).Preload("Lease"), "Lease.")
	found, err := first(q, &request, id)
	if err != nil || !found {
		return nil, err
	}
	return &request, nil
}

func (r *maintenanceRepository) Create(ctx context.Context, request *models.MaintenanceRequest) error {
	if request.Photos == nil {
		request.Photos = []string{}
	}
	return translate(r.db.WithContext(ctx).Omit("Lease").Create(request).Error)
}

func (r *maintenanceRepository) Update(ctx context.Context, request *models.MaintenanceRequest) error {
	if request.Photos == nil {
		request.Photos = []string{}
	}
	return translate(r.db.WithContext(ctx).Omit("Lease").Save(request).Error)
}

func (r *maintenanceRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.MaintenanceRequest{}).Error
}

func (r *maintenanceRepository) AppendPhotos(ctx context.Context, id uint, urls []string) ([]string, error) {
	var photos []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request models.MaintenanceRequest
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(&request, id).Error; err != nil {
			return err
		}
		photos = append([]string(request.Photos), urls...)
		return tx.Model(&request).Update("photos", datatypes.JSONSlice[string](photos)).Error
	})
	if err != nil {
		return nil, err
	}
	return photos, nil
}
