package services

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/rentroll/internal/authz"
	"github.com/stwalsh4118/rentroll/internal/logger"
	"github.com/stwalsh4118/rentroll/internal/models"
	"github.com/stwalsh4118/rentroll/internal/repository"
)

// UnitInput is the body of a unit creation.
type UnitInput struct {
	UnitNumber string  `json:"unitNumber" binding:"required,max=50"`
	Bedrooms   int     `json:"bedrooms" binding:"gte=0"`
	Bathrooms  int     `json:"bathrooms" binding:"gte=0"`
	RentAmount float64 `json:"rentAmount" binding:"gte=0"`
}

// UnitPatch is a partial unit update; nil fields are left unchanged.
type UnitPatch struct {
	UnitNumber *string  `json:"unitNumber" binding:"omitempty,min=1,max=50"`
	Bedrooms   *int     `json:"bedrooms" binding:"omitempty,gte=0"`
	Bathrooms  *int     `json:"bathrooms" binding:"omitempty,gte=0"`
	RentAmount *float64 `json:"rentAmount" binding:"omitempty,gte=0"`
}

// UnitService defines unit operations. Every returned unit carries its
// current occupancy status.
type UnitService interface {
	// List returns the units visible to the actor, optionally within one property.
	List(ctx context.Context, actor authz.Actor, propertyID *uint) ([]models.Unit, error)
	// ListByProperty is List for a property that must exist.
	ListByProperty(ctx context.Context, actor authz.Actor, propertyID uint) ([]models.Unit, error)
	Get(ctx context.Context, actor authz.Actor, id uint) (*models.Unit, error)
	Create(ctx context.Context, actor authz.Actor, propertyID uint, in UnitInput) (*models.Unit, error)
	Update(ctx context.Context, actor authz.Actor, id uint, patch UnitPatch) (*models.Unit, error)
	// Delete removes the unit with its leases and their dependents.
	Delete(ctx context.Context, actor authz.Actor, id uint) error
}

type unitService struct {
	units      repository.UnitRepository
	properties repository.PropertyRepository
	leases     repository.LeaseRepository
	log        *logger.Logger
}

// NewUnitService creates a new instance of UnitService.
func NewUnitService(
	units repository.UnitRepository,
	properties repository.PropertyRepository,
	leases repository.LeaseRepository,
	log *logger.Logger,
) UnitService {
	return &unitService{units: units, properties: properties, leases: leases, log: log}
}

func (s *unitService) List(ctx context.Context, actor authz.Actor, propertyID *uint) ([]models.Unit, error) {
	if !authz.Can(actor, authz.ResourceUnit, authz.ActionList) {
		return nil, fmt.Errorf("%w: Not authorized to view units", ErrForbidden)
	}
	units, err := s.units.List(ctx, authz.ListScope(actor), repository.UnitFilter{PropertyID: propertyID})
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	return units, nil
}

func (s *unitService) ListByProperty(ctx context.Context, actor authz.Actor, propertyID uint) ([]models.Unit, error) {
	property, err := s.properties.FindByID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load property: %w", err)
	}
	if property == nil {
		return nil, notFound("Property")
	}
	return s.List(ctx, actor, &propertyID)
}

func (s *unitService) Get(ctx context.Context, actor authz.Actor, id uint) (*models.Unit, error) {
	return s.load(ctx, actor, id, authz.ActionRead, "Not authorized to view this unit")
}

func (s *unitService) Create(ctx context.Context, actor authz.Actor, propertyID uint, in UnitInput) (*models.Unit, error) {
	property, err := s.properties.FindByID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load property: %w", err)
	}
	if property == nil {
		return nil, notFound("Property")
	}
	if err := authorize(actor, authz.ResourceUnit, authz.ActionCreate, authz.Owner{LandlordID: property.LandlordID},
		"Not authorized to add units to this property"); err != nil {
		return nil, err
	}

	unit := &models.Unit{
		UnitNumber: in.UnitNumber,
		Bedrooms:   in.Bedrooms,
		Bathrooms:  in.Bathrooms,
		RentAmount: in.RentAmount,
		PropertyID: property.ID,
	}
	if err := s.units.Create(ctx, unit); err != nil {
		return nil, fmt.Errorf("failed to create unit: %w", err)
	}

	s.log.Info("Unit created", map[string]interface{}{
		"unit_id":     unit.ID,
		"property_id": property.ID,
	})
	return unit, nil
}

func (s *unitService) Update(ctx context.Context, actor authz.Actor, id uint, patch UnitPatch) (*models.Unit, error) {
	unit, err := s.load(ctx, actor, id, authz.ActionUpdate, "Not authorized to update this unit")
	if err != nil {
		return nil, err
	}

	setString(&unit.UnitNumber, patch.UnitNumber)
	if patch.Bedrooms != nil {
		unit.Bedrooms = *patch.Bedrooms
	}
	if patch.Bathrooms != nil {
		unit.Bathrooms = *patch.Bathrooms
	}
	if patch.RentAmount != nil {
		unit.RentAmount = *patch.RentAmount
	}

	if err := s.units.Update(ctx, unit); err != nil {
		return nil, fmt.Errorf("failed to update unit: %w", err)
	}
	return unit, nil
}

func (s *unitService) Delete(ctx context.Context, actor authz.Actor, id uint) error {
	if _, err := s.load(ctx, actor, id, authz.ActionDelete, "Not authorized to delete this unit"); err != nil {
		return err
	}
	if err := s.units.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete unit: %w", err)
	}

	s.log.Info("Unit deleted", map[string]interface{}{
		"unit_id": id,
		"user_id": actor.UserID,
	})
	return nil
}

func (s *unitService) load(ctx context.Context, actor authz.Actor, id uint, act authz.Action, denied string) (*models.Unit, error) {
	unit, err := s.units.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load unit: %w", err)
	}
	if unit == nil {
		return nil, notFound("Unit")
	}

	owner := authz.Owner{}
	if unit.Property != nil {
		owner.LandlordID = unit.Property.LandlordID
	}
	if actor.IsTenant() {
		leases, err := s.leases.List(ctx, authz.ListScope(actor), repository.LeaseFilter{UnitID: &unit.ID})
		if err != nil {
			return nil, fmt.Errorf("failed to load unit leases: %w", err)
		}
		owner.TenantIDs = tenantIDs(leases)
	}

	if err := authorize(actor, authz.ResourceUnit, act, owner, denied); err != nil {
		return nil, err
	}
	return unit, nil
}

func tenantIDs(leases []models.Lease) []uint {
	ids := make([]uint, 0, len(leases))
	for _, l := range leases {
		ids = append(ids, l.TenantID)
	}
	return ids
}
