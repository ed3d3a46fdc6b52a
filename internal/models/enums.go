package models

// Role is the kind of account a user holds.
type Role string

const (
	RoleLandlord Role = "LANDLORD"
	RoleTenant   Role = "TENANT"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleLandlord, RoleTenant, RoleAdmin:
		return true
	}
	return false
}

// LeaseStatus is the lifecycle state of a lease.
type LeaseStatus string

const (
	LeaseActive     LeaseStatus = "ACTIVE"
	LeaseTerminated LeaseStatus = "TERMINATED"
	LeaseExpired    LeaseStatus = "EXPIRED"
)

// PaymentStatus is the settlement state of a payment.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

// MaintenanceStatus is the progress of a maintenance request.
type MaintenanceStatus string

const (
	MaintenancePending    MaintenanceStatus = "PENDING"
	MaintenanceInProgress MaintenanceStatus = "IN_PROGRESS"
	MaintenanceCompleted  MaintenanceStatus = "COMPLETED"
	MaintenanceCanceled   MaintenanceStatus = "CANCELED"
)

// Priority is the urgency of a maintenance request.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// UnitStatus is the derived occupancy of a unit. It is never stored.
type UnitStatus string

const (
	UnitAvailable UnitStatus = "AVAILABLE"
	UnitOccupied  UnitStatus = "OCCUPIED"
)
