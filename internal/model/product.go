package model

import (
	"errors"
	"strings"
	"time"
)

// ProductModel is a financing product. Deactivation is a soft delete: inactive
// products no longer appear in submission pickers but stay referenced by
// historical applications.
type ProductModel struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	ProductCode *string   `gorm:"type:varchar(32)" json:"product_code"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

// TableName specifies the table name.
func (ProductModel) TableName() string {
	return "products"
}

// Validate validates the product model.
func (pm *ProductModel) Validate() error {
	if pm.ID == "" {
		return errors.New("product ID is required")
	}
	if strings.TrimSpace(pm.Name) == "" {
		return errors.New("product name is required")
	}
	return nil
}
