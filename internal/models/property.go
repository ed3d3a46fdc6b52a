package models

import "time"

// Property is a building or lot owned by a landlord.
type Property struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null;column:title" json:"title"`
	Address     string    `gorm:"size:500;not null;column:address" json:"address"`
	City        string    `gorm:"size:100;not null;column:city" json:"city"`
	Province    string    `gorm:"size:100;not null;column:province" json:"province"`
	PostalCode  string    `gorm:"size:20;not null;column:postal_code" json:"postalCode"`
	Description *string   `gorm:"type:text;column:description" json:"description,omitempty"`
	LandlordID  uint      `gorm:"index;not null;column:landlord_id" json:"landlordId"`
	Landlord    *User     `gorm:"foreignKey:LandlordID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name for GORM.
func (Property) TableName() string {
	return "properties"
}

// Unit is a rentable space inside a property.
// Status is computed from the unit's leases on every read.
type Unit struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UnitNumber string     `gorm:"size:50;not null;column:unit_number" json:"unitNumber"`
	Bedrooms   int        `gorm:"not null;default:0;column:bedrooms" json:"bedrooms"`
	Bathrooms  int        `gorm:"not null;default:0;column:bathrooms" json:"bathrooms"`
	RentAmount float64    `gorm:"not null;default:0;column:rent_amount" json:"rentAmount"`
	PropertyID uint       `gorm:"index;not null;column:property_id" json:"propertyId"`
	Property   *Property  `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"property,omitempty"`
	Status     UnitStatus `gorm:"-" json:"status,omitempty"`
	CreatedAt  time.Time  `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt  time.Time  `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name for GORM.
func (Unit) TableName() string {
	return "units"
}
