package services

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/rentroll/internal/authz"
	"github.com/stwalsh4118/rentroll/internal/logger"
	"github.com/stwalsh4118/rentroll/internal/models"
	"github.com/stwalsh4118/rentroll/internal/repository"
)

// TenantService defines tenant record operations.
type TenantService interface {
	List(ctx context.Context, actor authz.Actor) ([]models.Tenant, error)
	Get(ctx context.Context, actor authz.Actor, id uint) (*models.Tenant, error)
	GetByUser(ctx context.Context, actor authz.Actor, userID uint) (*models.Tenant, error)

	// Delete removes the tenant and its user account. Tenants with an
	// ACTIVE lease cannot be deleted.
	Delete(ctx context.Context, actor authz.Actor, id uint) error
}

type tenantService struct {
	repo repository.TenantRepository
	log  *logger.Logger
}

// NewTenantService creates a new instance of TenantService.
func NewTenantService(repo repository.TenantRepository, log *logger.Logger) TenantService {
	return &tenantService{repo: repo, log: log}
}

func (s *tenantService) List(ctx context.Context, actor authz.Actor) ([]models.Tenant, error) {
	if !authz.Can(actor, authz.ResourceTenant, authz.ActionList) {
		return nil, fmt.Errorf("%w: Not authorized to view tenants", ErrForbidden)
	}
	tenants, err := s.repo.List(ctx, authz.ListScope(actor))
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	return tenants, nil
}

func (s *tenantService) Get(ctx context.Context, actor authz.Actor, id uint) (*models.Tenant, error) {
	tenant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}
	if tenant == nil {
		return nil, notFound("Tenant")
	}
	if err := authorize(actor, authz.ResourceTenant, authz.ActionRead, authz.Owner{UserID: tenant.UserID},
		"Not authorized to view this tenant"); err != nil {
		return nil, err
	}
	return tenant, nil
}

func (s *tenantService) GetByUser(ctx context.Context, actor authz.Actor, userID uint) (*models.Tenant, error) {
	tenant, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}
	if tenant == nil {
		return nil, fmt.Errorf("%w: Tenant not found for this user", ErrNotFound)
	}
	if err := authorize(actor, authz.ResourceTenant, authz.ActionRead, authz.Owner{UserID: tenant.UserID},
		"Not authorized to view this tenant"); err != nil {
		return nil, err
	}
	return tenant, nil
}

func (s *tenantService) Delete(ctx context.Context, actor authz.Actor, id uint) error {
	tenant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load tenant: %w", err)
	}
	if tenant == nil {
		return notFound("Tenant")
	}
	if err := authorize(actor, authz.ResourceTenant, authz.ActionDelete, authz.Owner{UserID: tenant.UserID},
		"Not authorized to delete tenants"); err != nil {
		return err
	}

	active, err := s.repo.CountActiveLeases(ctx, tenant.ID)
	if err != nil {
		return fmt.Errorf("failed to count active leases: %w", err)
	}
	if active > 0 {
		return fmt.Errorf("%w: Cannot delete tenant with %d active lease(s). Please end all leases first.", ErrConflict, active)
	}

	if err := s.repo.DeleteWithUser(ctx, tenant); err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}

	s.log.Info("Tenant deleted", map[string]interface{}{
		"tenant_id":  tenant.ID,
		"user_id":    tenant.UserID,
		"deleted_by": actor.UserID,
	})
	return nil
}
