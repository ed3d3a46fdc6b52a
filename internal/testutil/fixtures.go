package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/stwalsh4118/rentroll/internal/models"
	"gorm.io/gorm"
)

// Fixtures inserts rows directly for tests that need a populated database.
type Fixtures struct {
	t  *testing.T
	db *gorm.DB
	n  int
}

// NewFixtures returns a fixture builder bound to db.
func NewFixtures(t *testing.T, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: db}
}

func (f *Fixtures) create(v interface{}) {
	f.t.Helper()
	if err := f.db.Create(v).Error; err != nil {
		f.t.Fatalf("failed to create fixture %T: %v", v, err)
	}
}

// User inserts a user with the given role and a unique email.
func (f *Fixtures) User(role models.Role) *models.User {
	f.t.Helper()
	f.n++
	u := &models.User{
		Name:     fmt.Sprintf("%s %d", role, f.n),
		Email:    fmt.Sprintf("user%d@example.com", f.n),
		Password: "not-a-hash",
		Role:     role,
	}
	f.create(u)
	return u
}

// Tenant inserts a TENANT user together with its tenant record.
func (f *Fixtures) Tenant() *models.Tenant {
	f.t.Helper()
	u := f.User(models.RoleTenant)
	tenant := &models.Tenant{UserID: u.ID}
	f.create(tenant)
	tenant.User = u
	return tenant
}

// Property inserts a property owned by landlordID.
func (f *Fixtures) Property(landlordID uint) *models.Property {
	f.t.Helper()
	f.n++
	p := &models.Property{
		Title:      fmt.Sprintf("Property %d", f.n),
		Address:    fmt.Sprintf("%d Main St", f.n),
		City:       "Toronto",
		Province:   "ON",
		PostalCode: "M5V 1A1",
		LandlordID: landlordID,
	}
	f.create(p)
	return p
}

// Unit inserts a unit under propertyID.
func (f *Fixtures) Unit(propertyID uint, rent float64) *models.Unit {
	f.t.Helper()
	f.n++
	u := &models.Unit{
		UnitNumber: fmt.Sprintf("%d", 100+f.n),
		Bedrooms:   2,
		Bathrooms:  1,
		RentAmount: rent,
		PropertyID: propertyID,
	}
	f.create(u)
	return u
}

// Lease inserts a one-year lease starting at start.
func (f *Fixtures) Lease(tenantID, unitID uint, status models.LeaseStatus, start time.Time) *models.Lease {
	f.t.Helper()
	l := &models.Lease{
		StartDate: start,
		EndDate:   start.AddDate(1, 0, 0),
		Rent:      1200,
		Status:    status,
		TenantID:  tenantID,
		UnitID:    unitID,
	}
	f.create(l)
	return l
}

// Payment inserts a payment under leaseID.
func (f *Fixtures) Payment(leaseID uint, amount float64, status models.PaymentStatus, due time.Time) *models.Payment {
	f.t.Helper()
	p := &models.Payment{
		Amount:  amount,
		DueDate: due,
		Status:  status,
		LeaseID: leaseID,
	}
	f.create(p)
	return p
}

// Maintenance inserts a maintenance request under leaseID.
func (f *Fixtures) Maintenance(leaseID uint, status models.MaintenanceStatus, priority models.Priority) *models.MaintenanceRequest {
	f.t.Helper()
	f.n++
	m := &models.MaintenanceRequest{
		Title:    fmt.Sprintf("Request %d", f.n),
		Status:   status,
		Priority: priority,
		Photos:   []string{},
		LeaseID:  leaseID,
	}
	f.create(m)
	return m
}

// Date returns midnight UTC on the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
