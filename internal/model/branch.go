package model

import (
	"errors"
	"strings"
	"time"
)

// BranchModel belongs to a district. Name is unique within its district.
type BranchModel struct {
	ID         string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name       string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_branch_district_name" json:"name"`
	Code       *string   `gorm:"type:varchar(32)" json:"code"`
	DistrictID string    `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_branch_district_name" json:"district_id"`
	Address    *string   `gorm:"type:text" json:"address"`
	Phone      *string   `gorm:"type:varchar(32)" json:"phone"`
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

// TableName specifies the table name.
func (BranchModel) TableName() string {
	return "branches"
}

// Validate validates the branch model.
func (bm *BranchModel) Validate() error {
	if bm.ID == "" {
		return errors.New("branch ID is required")
	}
	if strings.TrimSpace(bm.Name) == "" {
		return errors.New("branch name is required")
	}
	if bm.DistrictID == "" {
		return errors.New("district ID is required")
	}
	return nil
}
