package model

import (
	"errors"
	"strings"
	"time"
)

// User roles.
const (
	RoleBranchUser         = "branch_user"
	RoleHeadOfficeApprover = "head_office_approver"
	RoleSystemAdmin        = "system_admin"
)

// UserModel is a portal principal. BranchID is required for branch users and
// must be empty for every other role.
type UserModel struct {
	ID           string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	FullName     string     `gorm:"type:varchar(255);not null" json:"full_name"`
	Role         string     `gorm:"type:varchar(32);not null;index" json:"role"`
	BranchID     *string    `gorm:"type:varchar(64);index" json:"branch_id"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}

// TableName specifies the table name.
func (UserModel) TableName() string {
	return "users"
}

// Validate validates the user model, including the role/branch invariant.
func (um *UserModel) Validate() error {
	if um.ID == "" {
		return errors.New("user ID is required")
	}
	if strings.TrimSpace(um.Email) == "" {
		return errors.New("email is required")
	}
	if strings.TrimSpace(um.FullName) == "" {
		return errors.New("full name is required")
	}
	if !ValidRole(um.Role) {
		return errors.New("invalid user role")
	}
	if um.Role == RoleBranchUser {
		if um.BranchID == nil || *um.BranchID == "" {
			return errors.New("branch is required for branch users")
		}
	} else if um.BranchID != nil && *um.BranchID != "" {
		return errors.New("branch must not be set for non-branch roles")
	}
	if um.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	return nil
}

// ValidRole reports whether r is a known user role.
func ValidRole(r string) bool {
	switch r {
	case RoleBranchUser, RoleHeadOfficeApprover, RoleSystemAdmin:
		return true
	}
	return false
}
