package model

import (
	"errors"
	"time"
)

// AuditLogModel records an administrative action against reference data
// (users, districts, branches, products, assignments). Application status
// transitions are tracked separately in StatusHistoryModel.
type AuditLogModel struct {
	ID           string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	UserID       string    `gorm:"type:varchar(64);not null;index" json:"user_id"`
	Action       string    `gorm:"type:varchar(64);not null;index" json:"action"` // create/update/delete/deactivate
	ResourceType string    `gorm:"type:varchar(32);not null" json:"resource_type"`
	ResourceID   string    `gorm:"type:varchar(64);not null;index" json:"resource_id"`
	RequestID    string    `gorm:"type:varchar(64);index" json:"request_id"`
	IP           string    `gorm:"type:varchar(45)" json:"ip"` // IPv4 or IPv6
	UserAgent    string    `gorm:"type:text" json:"user_agent"`
	Details      []byte    `gorm:"type:jsonb" json:"details"`
	CreatedAt    time.Time `gorm:"not null;index" json:"created_at"`
}

// TableName specifies the table name.
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// Validate validates the audit log model.
func (alm *AuditLogModel) Validate() error {
	if alm.ID == "" {
		return errors.New("audit log ID is required")
	}
	if alm.UserID == "" {
		return errors.New("user ID is required")
	}
	if alm.Action == "" {
		return errors.New("action is required")
	}
	if alm.ResourceType == "" {
		return errors.New("resource type is required")
	}
	if alm.ResourceID == "" {
		return errors.New("resource ID is required")
	}
	return nil
}
