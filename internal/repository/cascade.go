package repository

import (
	"github.com/stwalsh4118/rentroll/internal/models"
	"gorm.io/gorm"
)

// The helpers below remove dependents bottom-up inside an open transaction.
// The schema also declares ON DELETE CASCADE; deleting explicitly keeps the
// behavior identical on databases with foreign keys disabled.

func deleteLeasesWhere(tx *gorm.DB, query string, args ...interface{}) error {
	leaseIDs := tx.Table("leases").Select("id").Where(query, args...)
	if err := tx.Where("lease_id IN (?)", leaseIDs).Delete(&models.Payment{}).Error; err != nil {
		return err
	}
	if err := tx.Where("lease_id IN (?)", leaseIDs).Delete(&models.MaintenanceRequest{}).Error; err != nil {
		return err
	}
	return tx.Where(query, args...).Delete(&models.Lease{}).Error
}

func deleteUnitsWhere(tx *gorm.DB, query string, args ...interface{}) error {
	unitIDs := tx.Table("units").Select("id").Where(query, args...)
	if err := deleteLeasesWhere(tx, "unit_id IN (?)", unitIDs); err != nil {
		return err
	}
	return tx.Where(query, args...).Delete(&models.Unit{}).Error
}

func deletePropertiesWhere(tx *gorm.DB, query string, args ...interface{}) error {
	propertyIDs := tx.Table("properties").Select("id").Where(query, args...)
	if err := deleteUnitsWhere(tx, "property_id IN (?)", propertyIDs); err != nil {
		return err
	}
	return tx.Where(query, args...).Delete(&models.Property{}).Error
}

func deleteUserCascade(tx *gorm.DB, userID uint) error {
	tenantIDs := tx.Table("tenants").Select("id").Where("user_id = ?", userID)
	if err := deleteLeasesWhere(tx, "tenant_id IN (?)", tenantIDs); err != nil {
		return err
	}
	if err := tx.Where("user_id = ?", userID).Delete(&models.Tenant{}).Error; err != nil {
		return err
	}
	if err := deletePropertiesWhere(tx, "landlord_id = ?", userID); err != nil {
		return err
	}
	return tx.Where("id = ?", userID).Delete(&models.User{}).Error
}
