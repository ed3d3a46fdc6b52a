// Package repository implements data access over gorm.
//
// Lookups by id return nil, nil when the row does not exist. Unique
// constraint violations are reported as ErrDuplicate.
package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrDuplicate is returned when a write violates a unique constraint.
var ErrDuplicate = errors.New("duplicate record")

// translate maps driver errors onto repository sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

// first loads a single row into dest, reporting whether it was found.
func first(db *gorm.DB, dest interface{}, conds ...interface{}) (bool, error) {
	err := db.First(dest, conds...).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
