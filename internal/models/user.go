package models

import "time"

// User is an account that can sign in. Landlords own properties; tenants
// have exactly one Tenant record.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;column:name" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null;column:email" json:"email"`
	Password  string    `gorm:"size:255;not null;column:password" json:"-"`
	Role      Role      `gorm:"size:20;not null;default:TENANT;index;column:role" json:"role"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}

// Tenant wraps a tenant-role user and owns that user's leases.
type Tenant struct {
	ID     uint    `gorm:"primaryKey" json:"id"`
	Phone  *string `gorm:"size:50;column:phone" json:"phone,omitempty"`
	UserID uint    `gorm:"uniqueIndex;not null;column:user_id" json:"userId"`
	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

// TableName specifies the table name for GORM.
func (Tenant) TableName() string {
	return "tenants"
}
