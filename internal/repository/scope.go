package repository

import (
	"github.com/stwalsh4118/rentroll/internal/authz"
	"gorm.io/gorm"
)

const (
	landlordPropertyIDs = "SELECT id FROM properties WHERE landlord_id = ?"
	landlordUnitIDs     = "SELECT units.id FROM units JOIN properties ON properties.id = units.property_id WHERE properties.landlord_id = ?"
	landlordLeaseIDs    = "SELECT leases.id FROM leases JOIN units ON units.id = leases.unit_id JOIN properties ON properties.id = units.property_id WHERE properties.landlord_id = ?"
	tenantUnitIDs       = "SELECT unit_id FROM leases WHERE tenant_id = ?"
	tenantLeaseIDs      = "SELECT id FROM leases WHERE tenant_id = ?"
)

// applyScope narrows a query on table to the rows the scope may see.
// This is the only place list visibility is translated into SQL.
func applyScope(db *gorm.DB, table string, scope authz.Scope) *gorm.DB {
	switch scope.Kind {
	case authz.ScopeAll:
		return db
	case authz.ScopeLandlord:
		switch table {
		case "properties":
			return db.Where("properties.landlord_id = ?", scope.LandlordID)
		case "units":
			return db.Where("units.property_id IN ("+landlordPropertyIDs+")", scope.LandlordID)
		case "leases":
			return db.Where("leases.unit_id IN ("+landlordUnitIDs+")", scope.LandlordID)
		case "payments", "maintenance_requests":
			return db.Where(table+".lease_id IN ("+landlordLeaseIDs+")", scope.LandlordID)
		case "tenants":
			// Landlords pick tenants from the full list when drafting leases.
			return db
		}
	case authz.ScopeTenant:
		switch table {
		case "units":
			return db.Where("units.id IN ("+tenantUnitIDs+")", scope.TenantID)
		case "leases":
			return db.Where("leases.tenant_id = ?", scope.TenantID)
		case "payments", "maintenance_requests":
			return db.Where(table+".lease_id IN ("+tenantLeaseIDs+")", scope.TenantID)
		case "tenants":
			return db.Where("tenants.id = ?", scope.TenantID)
		}
	}
	return db.Where("1 = 0")
}
