package model

import (
	"errors"
	"time"
)

// Assignment scope dimensions. Each assignment binds an approver to exactly
// one dimension; multiple assignments accumulate into an OR routing policy.
const (
	ScopeDistrict = "district"
	ScopeBranch   = "branch"
	ScopeProduct  = "product"
)

// ApproverAssignmentModel routes applications to a head office approver by
// district, branch or product. The (scope_type, scope_id) pair replaces the
// original three nullable foreign keys, so a row always targets exactly one
// dimension.
type ApproverAssignmentModel struct {
	ID         string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ApproverID string    `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_assignment_scope" json:"approver_id"`
	ScopeType  string    `gorm:"type:varchar(16);not null;uniqueIndex:idx_assignment_scope" json:"scope_type"`
	ScopeID    string    `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_assignment_scope" json:"scope_id"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

// TableName specifies the table name.
func (ApproverAssignmentModel) TableName() string {
	return "approver_assignments"
}

// Validate validates the assignment model.
func (aam *ApproverAssignmentModel) Validate() error {
	if aam.ID == "" {
		return errors.New("assignment ID is required")
	}
	if aam.ApproverID == "" {
		return errors.New("approver ID is required")
	}
	if !ValidScopeType(aam.ScopeType) {
		return errors.New("invalid assignment scope type")
	}
	if aam.ScopeID == "" {
		return errors.New("scope target ID is required")
	}
	return nil
}

// ValidScopeType reports whether s is a known assignment scope dimension.
func ValidScopeType(s string) bool {
	switch s {
	case ScopeDistrict, ScopeBranch, ScopeProduct:
		return true
	}
	return false
}
