package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/rentroll/internal/models"
	"github.com/stwalsh4118/rentroll/internal/testutil"
)

func TestLeaseService_CreateGeneratesMonthlyPayments(t *testing.T) {
	e := newEnv(t)
	p := e.portfolio()
	ctx := context.Background()
	rent := 1200.0

	lease, err := e.leases.Create(ctx, landlordActor(p.landlord), LeaseInput{
		TenantID:  p.tenant.ID,
		UnitID:    p.unit.ID,
		StartDate: date("2024-01-01"),
		EndDate:   date("2024-04-01"),
		Rent:      &rent,
	})
	require.NoError(t, err)

	assert.Equal(t, models.LeaseActive, lease.Status)
	require.NotNil(t, lease.Tenant)
	require.NotNil(t, lease.Tenant.User)
	require.NotNil(t, lease.Unit)
	require.NotNil(t, lease.Unit.Property)

	var payments []models.Payment
	require.NoError(t, e.db.Where("lease_id = ?", lease.ID).Order("due_date").Find(&payments).Error)
	require.Len(t, payments, 4)
	for i, payment := range payments {
		assert.Equal(t, models.PaymentPending, payment.Status)
		assert.Equal(t, 1200.0, payment.Amount)
		assert.True(t, testutil.Date(2024, time.Month(1+i), 1).Equal(payment.DueDate), "payment %d due %s", i, payment.DueDate)
	}
}

func TestLeaseService_CreateDefaults(t *testing.T) {
	e := newEnv(t)
	p := e.portfolio()

	lease, err := e.leases.Create(context.Background(), landlordActor(p.landlord), LeaseInput{
		TenantID:  p.tenant.ID,
		UnitID:    p.unit.ID,
		StartDate: date("2024-02-01"),
	})
	require.NoError(t, err)

	assert.Equal(t, p.unit.RentAmount, lease.Rent)
	assert.True(t, testutil.Date(2025, 2, 1).Equal(lease.EndDate))

	var count int64
	require.NoError(t, e.db.Model(&models.Payment{}).Where("lease_id = ?", lease.ID).Count(&count).Error)
	assert.Equal(t, int64(MaxScheduledPayments), count)
}

func TestLeaseService_SecondActiveLeaseRejected(t *testing.T) {
	e := newEnv(t)
	p := e.portfolio()
	other := e.fx.Tenant()
	ctx := context.Background()
	actor := landlordActor(p.landlord)

	first, err := e.leases.Create(ctx, actor, LeaseInput{TenantID: p.tenant.ID, UnitID: p.unit.ID, StartDate: date("2024-01-01")})
	require.NoError(t, err)

	for _, tenantID := range []uint{p.tenant.ID, other.ID} {
		_, err = e.leases.Create(ctx, actor, LeaseInput{TenantID: tenantID, UnitID: p.unit.ID, StartDate: date("2024-06-01")})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConflict)
		assert.Equal(t,
			fmt.Sprintf("Unit already has an active lease (Lease ID: %d). Please end the current lease before creating a new one.", first.ID),
			Message(err))
	}

	// A non-active lease does not compete for the unit and gets no schedule
	ended, err := e.leases.Create(ctx, actor, LeaseInput{
		TenantID: other.ID, UnitID: p.unit.ID, StartDate: date("2023-01-01"), Status: models.LeaseTerminated,
	})
	require.NoError(t, err)
	var count int64
	require.NoError(t, e.db.Model(&models.Payment{}).Where("lease_id = ?", ended.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestLeaseService_UnitStatusFollowsLease(t *testing.T) {
	e := newEnv(t)
	p := e.portfolio()
	ctx := context.Background()
	actor := landlordActor(p.landlord)

	unit, err := e.units.Get(ctx, actor, p.unit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitAvailable, unit.Status)

	lease, err := e.leases.Create(ctx, actor, LeaseInput{TenantID: p.tenant.ID, UnitID: p.unit.ID, StartDate: date("2024-01-01")})
	require.NoError(t, err)

	unit, err = e.units.Get(ctx, actor, p.unit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitOccupied, unit.Status)

	terminated := models.LeaseTerminated
	_, err = e.leases.Update(ctx, actor, lease.ID, LeasePatch{Status: &terminated})
	require.NoError(t, err)

	unit, err = e.units.Get(ctx, actor, p.unit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitAvailable, unit.Status)
}

func TestLeaseService_ReactivationRespectsActiveLease(t *testing.T) {
	e := newEnv(t)
	p := e.portfolio()
	ctx := context.Background()
	actor := landlordActor(p.landlord)

	old := e.fx.Lease(p.tenant.ID, p.unit.ID, models.LeaseTerminated, testutil.Date(2023, 1, 1))
	current := e.fx.Lease(e.fx.Tenant().ID, p.unit.ID, models.LeaseActive, testutil.Date(2024, 1, 1))

	active := models.LeaseActive
	_, err := e.leases.Update(ctx, actor, old.ID, LeasePatch{Status: &active})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, Message(err), fmt.Sprintf("Lease ID: %d", current.ID))

	// Updating the active lease itself is fine
	rent := 1300.0
	updated, err := e.leases.Update(ctx, actor, current.ID, LeasePatch{Status: &active, Rent: &rent})
	require.NoError(t, err)
	assert.Equal(t, 1300.0, updated.Rent)
}

func TestLeaseService_CreateErrors(t *testing.T) {
	e := newEnv(t)
	p := e.portfolio()
	stranger := e.fx.User(models.RoleLandlord)
	ctx := context.Background()

	_, err := e.leases.Create(ctx, landlordActor(p.landlord), LeaseInput{TenantID: p.tenant.ID, UnitID: 9999, StartDate: date("2024-01-01")})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Unit not found", Message(err))

	_, err = e.leases.Create(ctx, landlordActor(stranger), LeaseInput{TenantID: p.tenant.ID, UnitID: p.unit.ID, StartDate: date("2024-01-01")})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = e.leases.Create(ctx, tenantActor(p.tenant), LeaseInput{TenantID: p.tenant.ID, UnitID: p.unit.ID, StartDate: date("2024-01-01")})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = e.leases.Create(ctx, landlordActor(p.landlord), LeaseInput{TenantID: 9999, UnitID: p.unit.ID, StartDate: date("2024-01-01")})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Tenant not found", Message(err))

	_, err = e.leases.Create(ctx, landlordActor(p.landlord), LeaseInput{
		TenantID: p.tenant.ID, UnitID: p.unit.ID, StartDate: date("2024-05-01"), EndDate: date("2024-01-01"),
	})
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestLeaseService_ListIsScopedByRole(t *testing.T) {
	e := newEnv(t)
	a := e.portfolio()
	b := e.portfolio()
	ctx := context.Background()

	leaseA := e.fx.Lease(a.tenant.ID, a.unit.ID, models.LeaseActive, testutil.Date(2024, 1, 1))
	leaseB := e.fx.Lease(b.tenant.ID, b.unit.ID, models.LeaseActive, testutil.Date(2024, 1, 1))

	got, err := e.leases.List(ctx, tenantActor(a.tenant))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, leaseA.ID, got[0].ID)

	got, err = e.leases.List(ctx, landlordActor(b.landlord))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, leaseB.ID, got[0].ID)

	got, err = e.leases.List(ctx, adminActor(e.fx.User(models.RoleAdmin)))
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = e.leases.Get(ctx, tenantActor(a.tenant), leaseB.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	byProperty, err := e.leases.ListByProperty(ctx, landlordActor(a.landlord), a.property.ID)
	require.NoError(t, err)
	assert.Len(t, byProperty, 1)

	_, err = e.leases.ListByProperty(ctx, landlordActor(a.landlord), b.property.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	byUnit, err := e.leases.ListByUnit(ctx, landlordActor(b.landlord), b.unit.ID)
	require.NoError(t, err)
	assert.Len(t, byUnit, 1)

	_, err = e.leases.ListByUnit(ctx, landlordActor(a.landlord), b.unit.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	mineOnly, err := e.leases.ListByProperty(ctx, tenantActor(a.tenant), b.property.ID)
	require.NoError(t, err)
	assert.Empty(t, mineOnly)
}

func TestLeaseService_DeleteRemovesDependents(t *testing.T) {
	e := newEnv(t)
	p := e.portfolio()
	ctx := context.Background()
	actor := landlordActor(p.landlord)

	lease, err := e.leases.Create(ctx, actor, LeaseInput{
		TenantID: p.tenant.ID, UnitID: p.unit.ID, StartDate: date("2024-01-01"), EndDate: date("2024-03-01"),
	})
	require.NoError(t, err)
	e.fx.Maintenance(lease.ID, models.MaintenancePending, models.PriorityLow)

	require.NoError(t, e.leases.Delete(ctx, actor, lease.ID))

	var payments, requests int64
	require.NoError(t, e.db.Model(&models.Payment{}).Where("lease_id = ?", lease.ID).Count(&payments).Error)
	require.NoError(t, e.db.Model(&models.MaintenanceRequest{}).Where("lease_id = ?", lease.ID).Count(&requests).Error)
	assert.Zero(t, payments)
	assert.Zero(t, requests)

	_, err = e.leases.Get(ctx, actor, lease.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
