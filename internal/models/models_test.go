package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleLandlord.Valid())
	assert.True(t, RoleTenant.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("OWNER").Valid())
	assert.False(t, Role("").Valid())
}

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		input string
		want  Role
	}{
		{"LANDLORD", RoleLandlord},
		{"landlord", RoleLandlord},
		{" admin ", RoleAdmin},
		{"tenant", RoleTenant},
		{"superuser", RoleTenant},
		{"", RoleTenant},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeRole(tt.input))
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, UnitOccupied, StatusFor(true))
	assert.Equal(t, UnitAvailable, StatusFor(false))
}

func TestLeaseAndPaymentPredicates(t *testing.T) {
	lease := &Lease{Status: LeaseActive}
	assert.True(t, lease.IsActive())
	lease.Status = LeaseTerminated
	assert.False(t, lease.IsActive())

	payment := &Payment{Status: PaymentPending}
	assert.False(t, payment.IsPaid())
	payment.Status = PaymentPaid
	assert.True(t, payment.IsPaid())
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "users", User{}.TableName())
	assert.Equal(t, "tenants", Tenant{}.TableName())
	assert.Equal(t, "properties", Property{}.TableName())
	assert.Equal(t, "units", Unit{}.TableName())
	assert.Equal(t, "leases", Lease{}.TableName())
	assert.Equal(t, "payments", Payment{}.TableName())
	assert.Equal(t, "maintenance_requests", MaintenanceRequest{}.TableName())
	assert.Len(t, All(), 7)
}
