package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/rentroll/internal/models"
	"github.com/stwalsh4118/rentroll/internal/testutil"
)

func TestPropertyService_CRUD(t *testing.T) {
	e := newEnv(t)
	landlord := e.fx.User(models.RoleLandlord)
	ctx := context.Background()
	actor := landlordActor(landlord)

	created, err := e.properties.Create(ctx, actor, PropertyInput{
		Title:      "Maple Court",
		Address:    "12 Maple Ave",
		City:       "Ottawa",
		Province:   "ON",
		PostalCode: "K1A 0B1",
	})
	require.NoError(t, err)
	assert.Equal(t, landlord.ID, created.LandlordID)

	title := "Maple Court East"
	updated, err := e.properties.Update(ctx, actor, created.ID, PropertyPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Maple Court East", updated.Title)
	assert.Equal(t, "Ottawa", updated.City)

	got, err := e.properties.Get(ctx, actor, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maple Court East", got.Title)

	require.NoError(t, e.properties.Delete(ctx, actor, created.ID))
	_, err = e.properties.Get(ctx, actor, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Property not found", Message(err))
}

func TestPropertyService_Access(t *testing.T) {
	e := newEnv(t)
	a := e.portfolio()
	b := e.portfolio()
	ctx := context.Background()
	e.fx.Lease(a.tenant.ID, a.unit.ID, models.LeaseActive, testutil.Date(2024, 1, 1))

	_, err := e.properties.Create(ctx, tenantActor(a.tenant), PropertyInput{Title: "x", Address: "x", City: "x", Province: "x", PostalCode: "x"})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "Only landlords can create properties", Message(err))

	admin := adminActor(e.fx.User(models.RoleAdmin))
	_, err = e.properties.Create(ctx, admin, PropertyInput{Title: "x", Address: "x", City: "x", Province: "x", PostalCode: "x"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = e.properties.Get(ctx, landlordActor(a.landlord), b.property.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	err = e.properties.Delete(ctx, landlordActor(a.landlord), b.property.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	mine, err := e.properties.List(ctx, landlordActor(a.landlord))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, a.property.ID, mine[0].ID)

	_, err = e.properties.List(ctx, tenantActor(a.tenant))
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = e.properties.Get(ctx, tenantActor(a.tenant), a.property.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	all, err := e.properties.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, e.properties.Delete(ctx, admin, b.property.ID))
}

func TestPropertyService_DeleteCascades(t *testing.T) {
	e := newEnv(t)
	p := e.portfolio()
	ctx := context.Background()
	lease := e.fx.Lease(p.tenant.ID, p.unit.ID, models.LeaseActive, testutil.Date(2024, 1, 1))
	e.fx.Payment(lease.ID, 1200, models.PaymentPending, testutil.Date(2024, 2, 1))
	e.fx.Maintenance(lease.ID, models.MaintenancePending, models.PriorityLow)

	require.NoError(t, e.properties.Delete(ctx, landlordActor(p.landlord), p.property.ID))

	for _, model := range []interface{}{&models.Unit{}, &models.Lease{}, &models.Payment{}, &models.MaintenanceRequest{}} {
		var count int64
		require.NoError(t, e.db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "%T", model)
	}

	// The tenant keeps their account
	_, err := e.tenants.Get(ctx, landlordActor(p.landlord), p.tenant.ID)
	assert.NoError(t, err)
}
