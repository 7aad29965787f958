package model

import (
	"errors"
	"strings"
	"time"
)

// DistrictModel is a flat reference entity owning branches.
type DistrictModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	Code      *string   `gorm:"type:varchar(32);uniqueIndex" json:"code"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName specifies the table name.
func (DistrictModel) TableName() string {
	return "districts"
}

// Validate validates the district model.
func (dm *DistrictModel) Validate() error {
	if dm.ID == "" {
		return errors.New("district ID is required")
	}
	if strings.TrimSpace(dm.Name) == "" {
		return errors.New("district name is required")
	}
	return nil
}
