package services

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/rentroll/internal/authz"
	"github.com/stwalsh4118/rentroll/internal/models"
	"github.com/stwalsh4118/rentroll/internal/repository"
)

// PortalService serves a tenant's own records. A tenant-role user without
// a tenant record gets empty lists.
type PortalService interface {
	MyLeases(ctx context.Context, actor authz.Actor) ([]models.Lease, error)
	MyPayments(ctx context.Context, actor authz.Actor) ([]models.Payment, error)
	MyMaintenance(ctx context.Context, actor authz.Actor) ([]models.MaintenanceRequest, error)
}

type portalService struct {
	leases      repository.LeaseRepository
	payments    repository.PaymentRepository
	maintenance repository.MaintenanceRepository
}

// NewPortalService creates a new instance of PortalService.
func NewPortalService(
	leases repository.LeaseRepository,
	payments repository.PaymentRepository,
	maintenance repository.MaintenanceRepository,
) PortalService {
	return &portalService{leases: leases, payments: payments, maintenance: maintenance}
}

func (s *portalService) scope(actor authz.Actor) (authz.Scope, error) {
	if !authz.Can(actor, authz.ResourcePortal, authz.ActionRead) {
		return authz.Scope{}, fmt.Errorf("%w: Not authorized. Tenant access required.", ErrForbidden)
	}
	return authz.ListScope(actor), nil
}

func (s *portalService) MyLeases(ctx context.Context, actor authz.Actor) ([]models.Lease, error) {
	scope, err := s.scope(actor)
	if err != nil {
		return nil, err
	}
	leases, err := s.leases.List(ctx, scope, repository.LeaseFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list leases: %w", err)
	}
	return leases, nil
}

func (s *portalService) MyPayments(ctx context.Context, actor authz.Actor) ([]models.Payment, error) {
	scope, err := s.scope(actor)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments.List(ctx, scope, repository.PaymentFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (s *portalService) MyMaintenance(ctx context.Context, actor authz.Actor) ([]models.MaintenanceRequest, error) {
	scope, err := s.scope(actor)
	if err != nil {
		return nil, err
	}
	requests, err := s.maintenance.List(ctx, scope, repository.MaintenanceFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list maintenance requests: %w", err)
	}
	return requests, nil
}
