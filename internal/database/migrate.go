package database

import (
	"fmt"

	"github.com/stwalsh4118/rentroll/internal/models"
	"gorm.io/gorm"
)

// ActiveLeaseIndex is the partial unique index that allows at most one
// ACTIVE lease per unit. Both PostgreSQL and SQLite accept the syntax.
const ActiveLeaseIndex = "idx_leases_one_active_per_unit"

const createActiveLeaseIndex = "CREATE UNIQUE INDEX IF NOT EXISTS " + ActiveLeaseIndex +
	" ON leases (unit_id) WHERE status = 'ACTIVE'"

// Migrate creates or updates every table and the indexes gorm tags cannot express.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	if err := db.Exec(createActiveLeaseIndex).Error; err != nil {
		return fmt.Errorf("failed to create %s: %w", ActiveLeaseIndex, err)
	}
	return nil
}
