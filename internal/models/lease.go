package models

import (
	"time"

	"gorm.io/datatypes"
)

// Lease binds a tenant to a unit for a date range.
// At most one ACTIVE lease may exist per unit; a partial unique index
// created by the migration enforces it.
type Lease struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	StartDate time.Time   `gorm:"not null;column:start_date" json:"startDate"`
	EndDate   time.Time   `gorm:"not null;column:end_date" json:"endDate"`
	Rent      float64     `gorm:"not null;default:0;column:rent" json:"rent"`
	Status    LeaseStatus `gorm:"size:20;not null;default:ACTIVE;index;column:status" json:"status"`
	TenantID  uint        `gorm:"index;not null;column:tenant_id" json:"tenantId"`
	Tenant    *Tenant     `gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE" json:"tenant,omitempty"`
	UnitID    uint        `gorm:"index;not null;column:unit_id" json:"unitId"`
	Unit      *Unit       `gorm:"foreignKey:UnitID;constraint:OnDelete:CASCADE" json:"unit,omitempty"`
	CreatedAt time.Time   `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time   `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name for GORM.
func (Lease) TableName() string {
	return "leases"
}

// Payment is one rent installment owed under a lease.
type Payment struct {
	ID                    uint          `gorm:"primaryKey" json:"id"`
	Amount                float64       `gorm:"not null;column:amount" json:"amount"`
	DueDate               time.Time     `gorm:"not null;index;column:due_date" json:"dueDate"`
	Status                PaymentStatus `gorm:"size:20;not null;default:PENDING;index;column:status" json:"status"`
	PaidAt                *time.Time    `gorm:"column:paid_at" json:"paidAt,omitempty"`
	StripePaymentIntentID *string       `gorm:"size:255;column:stripe_payment_intent_id" json:"stripePaymentIntentId,omitempty"`
	LeaseID               uint          `gorm:"index;not null;column:lease_id" json:"leaseId"`
	Lease                 *Lease        `gorm:"foreignKey:LeaseID;constraint:OnDelete:CASCADE" json:"lease,omitempty"`
	CreatedAt             time.Time     `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt             time.Time     `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name for GORM.
func (Payment) TableName() string {
	return "payments"
}

// MaintenanceRequest is a repair ticket raised against a lease.
type MaintenanceRequest struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	Title       string                      `gorm:"size:255;not null;column:title" json:"title"`
	Description *string                     `gorm:"type:text;column:description" json:"description,omitempty"`
	Status      MaintenanceStatus           `gorm:"size:20;not null;default:PENDING;index;column:status" json:"status"`
	Priority    Priority                    `gorm:"size:20;not null;default:MEDIUM;column:priority" json:"priority"`
	Contractor  *string                     `gorm:"size:255;column:contractor" json:"contractor,omitempty"`
	Photos      datatypes.JSONSlice[string] `gorm:"column:photos" json:"photos"`
	CompletedAt *time.Time                  `gorm:"column:completed_at" json:"completedAt,omitempty"`
	LeaseID     uint                        `gorm:"index;not null;column:lease_id" json:"leaseId"`
	Lease       *Lease                      `gorm:"foreignKey:LeaseID;constraint:OnDelete:CASCADE" json:"lease,omitempty"`
	CreatedAt   time.Time                   `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time                   `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name for GORM.
func (MaintenanceRequest) TableName() string {
	return "maintenance_requests"
}
