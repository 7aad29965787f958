package model

import (
	"errors"
	"time"
)

// Notification types.
const (
	NotificationStatusChanged = "status_changed"
	NotificationReturned      = "returned"
	NotificationSubmitted     = "application_submitted"
)

// NotificationModel is an inbox message for a single user. Only IsRead is ever
// mutated after creation.
type NotificationModel struct {
	ID                   string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	UserID               string    `gorm:"type:varchar(64);not null;index" json:"user_id"`
	Title                string    `gorm:"type:varchar(255);not null" json:"title"`
	Message              string    `gorm:"type:text;not null" json:"message"`
	Type                 string    `gorm:"type:varchar(32);not null" json:"type"`
	IsRead               bool      `gorm:"not null;default:false;index" json:"is_read"`
	RelatedApplicationID *string   `gorm:"type:varchar(64);index" json:"related_application_id"`
	CreatedAt            time.Time `gorm:"not null;index" json:"created_at"`
}

// TableName specifies the table name.
func (NotificationModel) TableName() string {
	return "notifications"
}

// Validate validates the notification model.
func (nm *NotificationModel) Validate() error {
	if nm.ID == "" {
		return errors.New("notification ID is required")
	}
	if nm.UserID == "" {
		return errors.New("recipient user ID is required")
	}
	if nm.Title == "" {
		return errors.New("notification title is required")
	}
	if nm.Message == "" {
		return errors.New("notification message is required")
	}
	switch nm.Type {
	case NotificationStatusChanged, NotificationReturned, NotificationSubmitted:
	default:
		return errors.New("invalid notification type")
	}
	return nil
}
