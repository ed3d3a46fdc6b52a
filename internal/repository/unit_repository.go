package repository

import (
	"context"

	"github.com/stwalsh4118/rentroll/internal/authz"
	"github.com/stwalsh4118/rentroll/internal/models"
	"gorm.io/gorm"
)

// UnitFilter narrows unit listings.
type UnitFilter struct {
	PropertyID *uint
}

// UnitRepository defines data access for units.
// Every unit it returns has Status computed from the unit's ACTIVE leases
// at read time.
type UnitRepository interface {
	List(ctx context.Context, scope authz.Scope, filter UnitFilter) ([]models.Unit, error)

	// FindByID returns the unit with its property loaded, or nil, nil.
	FindByID(ctx context.Context, id uint) (*models.Unit, error)

	Create(ctx context.Context, unit *models.Unit) error
	Update(ctx context.Context, unit *models.Unit) error

	// Delete removes the unit with its leases and their dependents.
	Delete(ctx context.Context, id uint) error

	// HasActiveLease reports whether the unit has an ACTIVE lease.
	HasActiveLease(ctx context.Context, unitID uint) (bool, error)
}

type unitRepository struct {
	db *gorm.DB
}

// NewUnitRepository creates a new instance of UnitRepository.
func NewUnitRepository(db *gorm.DB) UnitRepository {
	return &unitRepository{db: db}
}

func (r *unitRepository) List(ctx context.Context, scope authz.Scope, filter UnitFilter) ([]models.Unit, error) {
	var units []models.Unit
	q := applyScope(r.db.WithContext(ctx).Model(&models.Unit{}), "units", scope)
	if filter.PropertyID != nil {
		q = q.Where("units.property_id = ?", *filter.PropertyID)
	}
	if err := q.Order("units.id").Find(&units).Error; err != nil {
		return nil, err
	}
	if err := r.attachStatuses(ctx, units); err != nil {
		return nil, err
	}
	return units, nil
}

func (r *unitRepository) FindByID(ctx context.Context, id uint) (*models.Unit, error) {
	var unit models.Unit
	found, err := first(r.db.WithContext(ctx).Preload("Property"), &unit, id)
	if err != nil || !found {
		return nil, err
	}
	active, err := r.HasActiveLease(ctx, unit.ID)
	if err != nil {
		return nil, err
	}
	unit.Status = models.StatusFor(active)
	return &unit, nil
}

func (r *unitRepository) Create(ctx context.Context, unit *models.Unit) error {
	if err := r.db.WithContext(ctx).Omit("Property").Create(unit).Error; err != nil {
		return translate(err)
	}
	unit.Status = models.UnitAvailable
	return nil
}

func (r *unitRepository) Update(ctx context.Context, unit *models.Unit) error {
	if err := r.db.WithContext(ctx).Omit("Property").Save(unit).Error; err != nil {
		return translate(err)
	}
	active, err := r.HasActiveLease(ctx, unit.ID)
	if err != nil {
		return err
	}
	unit.Status = models.StatusFor(active)
	return nil
}

func (r *unitRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteUnitsWhere(tx, "id = ?", id)
	})
}

func (r *unitRepository) HasActiveLease(ctx context.Context, unitID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Lease{}).
		Where("unit_id = ? AND status = ?", unitID, models.LeaseActive).
		Count(&n).Error
	return n > 0, err
}

// attachStatuses sets Status on every unit using one grouped query.
func (r *unitRepository) attachStatuses(ctx context.Context, units []models.Unit) error {
	if len(units) == 0 {
		return nil
	}
	ids := make([]uint, len(units))
	for i := range units {
		ids[i] = units[i].ID
	}

	var occupied []uint
	err := r.db.WithContext(ctx).Model(&models.Lease{}).
		Where("unit_id IN ? AND status = ?", ids, models.LeaseActive).
		Distinct().Pluck("unit_id", &occupied).Error
	if err != nil {
		return err
	}

	set := make(map[uint]bool, len(occupied))
	for _, id := range occupied {
		set[id] = true
	}
	for i := range units {
		units[i].Status = models.StatusFor(set[units[i].ID])
	}
	return nil
}
