package repository

import (
	"context"

	"github.com/stwalsh4118/rentroll/internal/authz"
	"github.com/stwalsh4118/rentroll/internal/models"
	"gorm.io/gorm"
)

// PropertyRepository defines data access for properties.
type PropertyRepository interface {
	List(ctx context.Context, scope authz.Scope) ([]models.Property, error)

	// FindByID returns nil, nil if the property does not exist.
	FindByID(ctx context.Context, id uint) (*models.Property, error)

	Create(ctx context.Context, property *models.Property) error
	Update(ctx context.Context, property *models.Property) error

	// Delete removes the property with its units, their leases, and the
	// leases' payments and maintenance requests.
	Delete(ctx context.Context, id uint) error
}

type propertyRepository struct {
	db *gorm.DB
}

// NewPropertyRepository creates a new instance of PropertyRepository.
func NewPropertyRepository(db *gorm.DB) PropertyRepository {
	return &propertyRepository{db: db}
}

func (r *propertyRepository) List(ctx context.Context, scope authz.Scope) ([]models.Property, error) {
	var properties []models.Property
	q := applyScope(r.db.WithContext(ctx).Model(&models.Property{}), "properties", scope)
	if err := q.Order("properties.created_at DESC, properties.id DESC").Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

func (r *propertyRepository) FindByID(ctx context.Context, id uint) (*models.Property, error) {
	var property models.Property
	found, err := first(r.db.WithContext(ctx), &property, id)
	if err != nil || !found {
		return nil, err
	}
	return &property, nil
}

func (r *propertyRepository) Create(ctx context.Context, property *models.Property) error {
	return translate(r.db.WithContext(ctx).Omit("Landlord").Create(property).Error)
}

func (r *propertyRepository) Update(ctx context.Context, property *models.Property) error {
	return translate(r.db.WithContext(ctx).Omit("Landlord").Save(property).Error)
}

func (r *propertyRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deletePropertiesWhere(tx, "id = ?", id)
	})
}
