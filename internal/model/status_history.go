package model

import (
	"errors"
	"time"
)

// StatusHistoryModel is one entry of an application's immutable audit trail.
// FromStatus is empty only for the initial submission entry. Rows are never
// updated or deleted; ordered by CreatedAt they form a connected path through
// the application state machine.
type StatusHistoryModel struct {
	ID            string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ApplicationID string    `gorm:"type:varchar(64);not null;index" json:"application_id"`
	FromStatus    *string   `gorm:"type:varchar(32)" json:"from_status"`
	ToStatus      string    `gorm:"type:varchar(32);not null" json:"to_status"`
	ActionBy      string    `gorm:"type:varchar(64);not null" json:"action_by"`
	// ActionByRole is a snapshot of the actor's role at the time of the action.
	// It is never recomputed, even if the user's role changes later.
	ActionByRole string    `gorm:"type:varchar(32);not null" json:"action_by_role"`
	Reason       *string   `gorm:"type:text" json:"reason"`
	Comments     *string   `gorm:"type:text" json:"comments"`
	CreatedAt    time.Time `gorm:"not null;index" json:"created_at"`
}

// TableName specifies the table name.
func (StatusHistoryModel) TableName() string {
	return "application_status_history"
}

// Validate validates the status history model.
func (shm *StatusHistoryModel) Validate() error {
	if shm.ID == "" {
		return errors.New("history ID is required")
	}
	if shm.ApplicationID == "" {
		return errors.New("application ID is required")
	}
	if !ValidStatus(shm.ToStatus) {
		return errors.New("invalid to status")
	}
	if shm.FromStatus != nil && !ValidStatus(*shm.FromStatus) {
		return errors.New("invalid from status")
	}
	if shm.ActionBy == "" {
		return errors.New("acting user is required")
	}
	if shm.ActionByRole == "" {
		return errors.New("acting role is required")
	}
	return nil
}
