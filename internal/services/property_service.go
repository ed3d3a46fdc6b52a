package services

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/rentroll/internal/authz"
	"github.com/stwalsh4118/rentroll/internal/logger"
	"github.com/stwalsh4118/rentroll/internal/models"
	"github.com/stwalsh4118/rentroll/internal/repository"
)

// PropertyInput is the body of a property creation.
type PropertyInput struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Address     string  `json:"address" binding:"required,max=500"`
	City        string  `json:"city" binding:"required,max=100"`
	Province    string  `json:"province" binding:"required,max=100"`
	PostalCode  string  `json:"postalCode" binding:"required,max=20"`
	Description *string `json:"description"`
}

// PropertyPatch is a partial property update; nil fields are left unchanged.
type PropertyPatch struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=255"`
	Address     *string `json:"address" binding:"omitempty,min=1,max=500"`
	City        *string `json:"city" binding:"omitempty,min=1,max=100"`
	Province    *string `json:"province" binding:"omitempty,min=1,max=100"`
	PostalCode  *string `json:"postalCode" binding:"omitempty,min=1,max=20"`
	Description *string `json:"description"`
}

// PropertyService defines property operations.
type PropertyService interface {
	List(ctx context.Context, actor authz.Actor) ([]models.Property, error)
	Get(ctx context.Context, actor authz.Actor, id uint) (*models.Property, error)
	// Create adds a property owned by the acting landlord.
	Create(ctx context.Context, actor authz.Actor, in PropertyInput) (*models.Property, error)
	Update(ctx context.Context, actor authz.Actor, id uint, patch PropertyPatch) (*models.Property, error)
	// Delete removes the property with its units, leases and their dependents.
	Delete(ctx context.Context, actor authz.Actor, id uint) error
}

type propertyService struct {
	repo repository.PropertyRepository
	log  *logger.Logger
}

// NewPropertyService creates a new instance of PropertyService.
func NewPropertyService(repo repository.PropertyRepository, log *logger.Logger) PropertyService {
	return &propertyService{repo: repo, log: log}
}

func (s *propertyService) List(ctx context.Context, actor authz.Actor) ([]models.Property, error) {
	if !authz.Can(actor, authz.ResourceProperty, authz.ActionList) {
		return nil, fmt.Errorf("%w: Not authorized to view properties", ErrForbidden)
	}
	properties, err := s.repo.List(ctx, authz.ListScope(actor))
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return properties, nil
}

func (s *propertyService) Get(ctx context.Context, actor authz.Actor, id uint) (*models.Property, error) {
	return s.load(ctx, actor, id, authz.ActionRead, "Not authorized to view this property")
}

func (s *propertyService) Create(ctx context.Context, actor authz.Actor, in PropertyInput) (*models.Property, error) {
	if err := authorize(actor, authz.ResourceProperty, authz.ActionCreate, authz.Owner{LandlordID: actor.UserID},
		"Only landlords can create properties"); err != nil {
		return nil, err
	}

	property := &models.Property{
		Title:       in.Title,
		Address:     in.Address,
		City:        in.City,
		Province:    in.Province,
		PostalCode:  in.PostalCode,
		Description: in.Description,
		LandlordID:  actor.UserID,
	}
	if err := s.repo.Create(ctx, property); err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	s.log.Info("Property created", map[string]interface{}{
		"property_id": property.ID,
		"landlord_id": actor.UserID,
	})
	return property, nil
}

func (s *propertyService) Update(ctx context.Context, actor authz.Actor, id uint, patch PropertyPatch) (*models.Property, error) {
	property, err := s.load(ctx, actor, id, authz.ActionUpdate, "Not authorized to update this property")
	if err != nil {
		return nil, err
	}

	setString(&property.Title, patch.Title)
	setString(&property.Address, patch.Address)
	setString(&property.City, patch.City)
	setString(&property.Province, patch.Province)
	setString(&property.PostalCode, patch.PostalCode)
	if patch.Description != nil {
		property.Description = patch.Description
	}

	if err := s.repo.Update(ctx, property); err != nil {
		return nil, fmt.Errorf("failed to update property: %w", err)
	}
	return property, nil
}

func (s *propertyService) Delete(ctx context.Context, actor authz.Actor, id uint) error {
	if _, err := s.load(ctx, actor, id, authz.ActionDelete, "Not authorized to delete this property"); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}

	s.log.Info("Property deleted", map[string]interface{}{
		"property_id": id,
		"user_id":     actor.UserID,
	})
	return nil
}

func (s *propertyService) load(ctx context.Context, actor authz.Actor, id uint, act authz.Action, denied string) (*models.Property, error) {
	property, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load property: %w", err)
	}
	if property == nil {
		return nil, notFound("Property")
	}
	if err := authorize(actor, authz.ResourceProperty, act, authz.Owner{LandlordID: property.LandlordID}, denied); err != nil {
		return nil, err
	}
	return property, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
