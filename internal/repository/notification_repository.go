package repository

import (
	"github.com/miftajuneidi2008/ansar-dfp/internal/model"
	"gorm.io/gorm"
)

// NotificationRepository persists user inbox notifications.
type NotificationRepository interface {
	Save(n *model.NotificationModel) error
	FindByID(id string) (*model.NotificationModel, error)
	FindByUserID(userID string) ([]*model.NotificationModel, error)
	CountUnread(userID string) (int64, error)
	MarkRead(userID string, id string) error
	MarkAllRead(userID string) error
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a notification repository.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Save persists a notification.
func (r *notificationRepository) Save(n *model.NotificationModel) error {
	return r.db.Save(n).Error
}

// FindByID finds a notification by ID.
func (r *notificationRepository) FindByID(id string) (*model.NotificationModel, error) {
	var n model.NotificationModel
	if err := r.db.Where("id = ?", id).First(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// FindByUserID returns a user's notifications, newest first.
func (r *notificationRepository) FindByUserID(userID string) ([]*model.NotificationModel, error) {
	var ns []*model.NotificationModel
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&ns).Error
	return ns, err
}

// CountUnread counts a user's unread notifications.
func (r *notificationRepository) CountUnread(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.NotificationModel{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead flips one notification to read. Idempotent; scoped to the owner so
// a user cannot mark another user's notification.
func (r *notificationRepository) MarkRead(userID string, id string) error {
	return r.db.Model(&model.NotificationModel{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true).Error
}

// MarkAllRead flips all of a user's notifications to read. Idempotent.
func (r *notificationRepository) MarkAllRead(userID string) error {
	return r.db.Model(&model.NotificationModel{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}
