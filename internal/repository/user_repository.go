package repository

import (
	"context"

	"github.com/stwalsh4118/rentroll/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines data access for user accounts.
type UserRepository interface {
	// FindByID returns nil, nil if the user does not exist.
	FindByID(ctx context.Context, id uint) (*models.User, error)

	// FindByEmail returns nil, nil if no user has the email.
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// Create inserts the user, and a tenant record for it when tenant is non-nil,
	// in one transaction. Returns ErrDuplicate when the email is taken.
	Create(ctx context.Context, user *models.User, tenant *models.Tenant) error

	// Delete removes the user and everything that depends on it.
	Delete(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	found, err := first(r.db.WithContext(ctx), &user, id)
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	found, err := first(r.db.WithContext(ctx).Where("email = ?", email), &user)
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User, tenant *models.Tenant) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if tenant == nil {
			return nil
		}
		tenant.UserID = user.ID
		return tx.Omit("User").Create(tenant).Error
	})
	return translate(err)
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteUserCascade(tx, id)
	})
}
