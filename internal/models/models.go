// Package models defines the persisted entities of the rental domain.
package models

import "strings"

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Tenant{},
		&Property{},
		&Unit{},
		&Lease{},
		&Payment{},
		&MaintenanceRequest{},
	}
}

// IsActive reports whether the lease is in force.
func (l *Lease) IsActive() bool {
	return l.Status == LeaseActive
}

// IsPaid reports whether the payment has been settled.
func (p *Payment) IsPaid() bool {
	return p.Status == PaymentPaid
}

// StatusFor maps the presence of an active lease to a unit status.
func StatusFor(hasActiveLease bool) UnitStatus {
	if hasActiveLease {
		return UnitOccupied
	}
	return UnitAvailable
}

// NormalizeRole maps free-form input onto a role, falling back to TENANT.
func NormalizeRole(s string) Role {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if r.Valid() {
		return r
	}
	return RoleTenant
}
