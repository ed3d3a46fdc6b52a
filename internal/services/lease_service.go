package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/stwalsh4118/rentroll/internal/authz"
	"github.com/stwalsh4118/rentroll/internal/logger"
	"github.com/stwalsh4118/rentroll/internal/models"
	"github.com/stwalsh4118/rentroll/internal/repository"
)

// LeaseInput is the body of a lease creation.
type LeaseInput struct {
	TenantID  uint               `json:"tenantId" binding:"required"`
	UnitID    uint               `json:"unitId" binding:"required"`
	StartDate *DateTime          `json:"startDate" binding:"required"`
	EndDate   *DateTime          `json:"endDate"`
	Rent      *float64           `json:"rent" binding:"omitempty,gte=0"`
	Status    models.LeaseStatus `json:"status" binding:"omitempty,oneof=ACTIVE TERMINATED EXPIRED"`
}

// LeasePatch is a partial lease update; nil fields are left unchanged.
type LeasePatch struct {
	StartDate *DateTime           `json:"startDate"`
	EndDate   *DateTime           `json:"endDate"`
	Rent      *float64            `json:"rent" binding:"omitempty,gte=0"`
	Status    *models.LeaseStatus `json:"status" binding:"omitempty,oneof=ACTIVE TERMINATED EXPIRED"`
}

// LeaseService defines lease operations. Leases are returned with tenant
// (and user) and unit (and property) loaded.
type LeaseService interface {
	List(ctx context.Context, actor authz.Actor) ([]models.Lease, error)
	ListByProperty(ctx context.Context, actor authz.Actor, propertyID uint) ([]models.Lease, error)
	ListByUnit(ctx context.Context, actor authz.Actor, unitID uint) ([]models.Lease, error)
	Get(ctx context.Context, actor authz.Actor, id uint) (*models.Lease, error)

	// Create adds a lease. An ACTIVE lease on a unit that already has one
	// returns ErrConflict naming the blocking lease. ACTIVE leases get a
	// monthly payment schedule.
	Create(ctx context.Context, actor authz.Actor, in LeaseInput) (*models.Lease, error)

	// Update applies patch under the same one-active-lease rule as Create.
	Update(ctx context.Context, actor authz.Actor, id uint, patch LeasePatch) (*models.Lease, error)

	// Delete removes the lease with its payments and maintenance requests.
	Delete(ctx context.Context, actor authz.Actor, id uint) error
}

type leaseService struct {
	leases     repository.LeaseRepository
	units      repository.UnitRepository
	properties repository.PropertyRepository
	tenants    repository.TenantRepository
	payments   repository.PaymentRepository
	log        *logger.Logger
}

// NewLeaseService creates a new instance of LeaseService.
func NewLeaseService(
	leases repository.LeaseRepository,
	units repository.UnitRepository,
	properties repository.PropertyRepository,
	tenants repository.TenantRepository,
	payments repository.PaymentRepository,
	log *logger.Logger,
) LeaseService {
	return &leaseService{
		leases:     leases,
		units:      units,
		properties: properties,
		tenants:    tenants,
		payments:   payments,
		log:        log,
	}
}

func (s *leaseService) List(ctx context.Context, actor authz.Actor) ([]models.Lease, error) {
	return s.list(ctx, actor, repository.LeaseFilter{})
}

func (s *leaseService) ListByProperty(ctx context.Context, actor authz.Actor, propertyID uint) ([]models.Lease, error) {
	property, err := s.properties.FindByID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load property: %w", err)
	}
	if property == nil {
		return nil, notFound("Property")
	}
	if !authz.ListScope(actor).Covers(authz.Owner{LandlordID: property.LandlordID}) {
		return nil, fmt.Errorf("%w: Not authorized to view leases for this property", ErrForbidden)
	}
	return s.list(ctx, actor, repository.LeaseFilter{PropertyID: &propertyID})
}

func (s *leaseService) ListByUnit(ctx context.Context, actor authz.Actor, unitID uint) ([]models.Lease, error) {
	unit, err := s.units.FindByID(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unit: %w", err)
	}
	if unit == nil {
		return nil, notFound("Unit")
	}
	if !authz.ListScope(actor).Covers(authz.Owner{LandlordID: unitLandlord(unit)}) {
		return nil, fmt.Errorf("%w: Not authorized to view leases for this unit", ErrForbidden)
	}
	return s.list(ctx, actor, repository.LeaseFilter{UnitID: &unitID})
}

func unitLandlord(unit *models.Unit) uint {
	if unit.Property == nil {
		return 0
	}
	return unit.Property.LandlordID
}

func (s *leaseService) list(ctx context.Context, actor authz.Actor, filter repository.LeaseFilter) ([]models.Lease, error) {
	if !authz.Can(actor, authz.ResourceLease, authz.ActionList) {
		return nil, fmt.Errorf("%w: Not authorized to view leases", ErrForbidden)
	}
	leases, err := s.leases.List(ctx, authz.ListScope(actor), filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list leases: %w", err)
	}
	return leases, nil
}

func (s *leaseService) Get(ctx context.Context, actor authz.Actor, id uint) (*models.Lease, error) {
	return s.load(ctx, actor, id, authz.ActionRead, "Not authorized to view this lease")
}

func (s *leaseService) Create(ctx context.Context, actor authz.Actor, in LeaseInput) (*models.Lease, error) {
	unit, err := s.units.FindByID(ctx, in.UnitID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unit: %w", err)
	}
	if unit == nil {
		return nil, notFound("Unit")
	}
	if err := authorize(actor, authz.ResourceLease, authz.ActionCreate, unitOwner(unit),
		"Not authorized to create lease for this unit"); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = models.LeaseActive
	}
	if status == models.LeaseActive {
		if err := s.ensureNoActiveLease(ctx, unit.ID, 0); err != nil {
			return nil, err
		}
	}

	tenant, err := s.tenants.FindByID(ctx, in.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}
	if tenant == nil {
		return nil, notFound("Tenant")
	}

	start := in.StartDate.Time
	end := start.AddDate(1, 0, 0)
	if in.EndDate != nil {
		end = in.EndDate.Time
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: endDate must not be before startDate", ErrBadRequest)
	}
	rent := unit.RentAmount
	if in.Rent != nil {
		rent = *in.Rent
	}

	lease := &models.Lease{
		StartDate: start,
		EndDate:   end,
		Rent:      rent,
		Status:    status,
		TenantID:  tenant.ID,
		UnitID:    unit.ID,
	}
	if err := s.leases.Create(ctx, lease); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, s.activeLeaseConflict(ctx, unit.ID)
		}
		return nil, fmt.Errorf("failed to create lease: %w", err)
	}

	s.log.Info("Lease created", map[string]interface{}{
		"lease_id":  lease.ID,
		"unit_id":   unit.ID,
		"tenant_id": tenant.ID,
		"status":    lease.Status,
	})

	if lease.IsActive() {
		s.generatePayments(ctx, lease)
	}

	return s.reload(ctx, lease.ID)
}

func (s *leaseService) Update(ctx context.Context, actor authz.Actor, id uint, patch LeasePatch) (*models.Lease, error) {
	lease, err := s.load(ctx, actor, id, authz.ActionUpdate, "Not authorized to update this lease")
	if err != nil {
		return nil, err
	}

	if patch.Status != nil && *patch.Status == models.LeaseActive && !lease.IsActive() {
		if err := s.ensureNoActiveLease(ctx, lease.UnitID, lease.ID); err != nil {
			return nil, err
		}
	}

	if patch.StartDate != nil {
		lease.StartDate = patch.StartDate.Time
	}
	if patch.EndDate != nil {
		lease.EndDate = patch.EndDate.Time
	}
	if lease.EndDate.Before(lease.StartDate) {
		return nil, fmt.Errorf("%w: endDate must not be before startDate", ErrBadRequest)
	}
	if patch.Rent != nil {
		lease.Rent = *patch.Rent
	}
	if patch.Status != nil {
		lease.Status = *patch.Status
	}

	if err := s.leases.Update(ctx, lease); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, s.activeLeaseConflict(ctx, lease.UnitID)
		}
		return nil, fmt.Errorf("failed to update lease: %w", err)
	}

	s.log.Info("Lease updated", map[string]interface{}{
		"lease_id": lease.ID,
		"status":   lease.Status,
	})
	return s.reload(ctx, lease.ID)
}

func (s *leaseService) Delete(ctx context.Context, actor authz.Actor, id uint) error {
	if _, err := s.load(ctx, actor, id, authz.ActionDelete, "Not authorized to delete this lease"); err != nil {
		return err
	}
	if err := s.leases.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete lease: %w", err)
	}

	s.log.Info("Lease deleted", map[string]interface{}{
		"lease_id": id,
		"user_id":  actor.UserID,
	})
	return nil
}

// ensureNoActiveLease rejects a unit that has an ACTIVE lease other than except.
func (s *leaseService) ensureNoActiveLease(ctx context.Context, unitID, except uint) error {
	active, err := s.leases.FindActiveByUnit(ctx, unitID)
	if err != nil {
		return fmt.Errorf("failed to check active lease: %w", err)
	}
	if active != nil && active.ID != except {
		return activeLeaseError(active.ID)
	}
	return nil
}

// activeLeaseConflict builds the conflict for an insert the unique index rejected.
func (s *leaseService) activeLeaseConflict(ctx context.Context, unitID uint) error {
	active, err := s.leases.FindActiveByUnit(ctx, unitID)
	if err != nil || active == nil {
		return fmt.Errorf("%w: Unit already has an active lease. Please end the current lease before creating a new one.", ErrConflict)
	}
	return activeLeaseError(active.ID)
}

func activeLeaseError(leaseID uint) error {
	return fmt.Errorf("%w: Unit already has an active lease (Lease ID: %d). Please end the current lease before creating a new one.",
		ErrConflict, leaseID)
}

// generatePayments creates the lease's PENDING installments. Failures are
// logged and do not fail the lease.
func (s *leaseService) generatePayments(ctx context.Context, lease *models.Lease) {
	dues := PaymentSchedule(lease.StartDate, lease.EndDate)
	payments := make([]models.Payment, 0, len(dues))
	for _, due := range dues {
		payments = append(payments, models.Payment{
			Amount:  lease.Rent,
			DueDate: due,
			Status:  models.PaymentPending,
			LeaseID: lease.ID,
		})
	}

	if err := s.payments.CreateBatch(ctx, payments); err != nil {
		s.log.Error("Failed to generate lease payments", err, map[string]interface{}{
			"lease_id": lease.ID,
		})
		return
	}

	s.log.Info("Lease payments generated", map[string]interface{}{
		"lease_id": lease.ID,
		"count":    len(payments),
	})
}

func (s *leaseService) load(ctx context.Context, actor authz.Actor, id uint, act authz.Action, denied string) (*models.Lease, error) {
	lease, err := s.leases.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load lease: %w", err)
	}
	if lease == nil {
		return nil, notFound("Lease")
	}
	if err := authorize(actor, authz.ResourceLease, act, leaseOwner(lease), denied); err != nil {
		return nil, err
	}
	return lease, nil
}

func (s *leaseService) reload(ctx context.Context, id uint) (*models.Lease, error) {
	lease, err := s.leases.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load lease: %w", err)
	}
	if lease == nil {
		return nil, notFound("Lease")
	}
	return lease, nil
}

func unitOwner(unit *models.Unit) authz.Owner {
	if unit == nil || unit.Property == nil {
		return authz.Owner{}
	}
	return authz.Owner{LandlordID: unit.Property.LandlordID}
}

// leaseOwner expects the lease's unit and property to be loaded.
func leaseOwner(lease *models.Lease) authz.Owner {
	owner := unitOwner(lease.Unit)
	owner.TenantIDs = []uint{lease.TenantID}
	return owner
}
