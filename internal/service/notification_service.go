package service

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/miftajuneidi2008/ansar-dfp/internal/auth"
	"github.com/miftajuneidi2008/ansar-dfp/internal/metrics"
	"github.com/miftajuneidi2008/ansar-dfp/internal/model"
	"github.com/miftajuneidi2008/ansar-dfp/internal/repository"
	"github.com/sirupsen/logrus"
)

// Publisher delivers a created notification to any live channel for the
// recipient. Delivery is best-effort; the websocket hub implements this.
type Publisher interface {
	BroadcastToUser(userID string, message []byte)
}

// NotificationService is the user inbox: enqueue on lifecycle events, list,
// and flip read flags.
type NotificationService interface {
	Notify(userID, title, message, notificationType string, relatedApplicationID *string) (*model.NotificationModel, error)
	ListForUser(actor auth.Actor) ([]*model.NotificationModel, error)
	UnreadCount(actor auth.Actor) (int64, error)
	MarkRead(actor auth.Actor, id string) error
	MarkAllRead(actor auth.Actor) error
}

type notificationService struct {
	repo      repository.NotificationRepository
	publisher Publisher
	logger    *logrus.Logger
}

// NewNotificationService creates a notification service. publisher may be nil
// when no live channel is configured.
func NewNotificationService(repo repository.NotificationRepository, publisher Publisher, logger *logrus.Logger) NotificationService {
	if logger == nil {
		logger = logrus.New()
	}
	return &notificationService{repo: repo, publisher: publisher, logger: logger}
}

// Notify enqueues an inbox notification and pushes it to any live channel.
func (s *notificationService) Notify(userID, title, message, notificationType string, relatedApplicationID *string) (*model.NotificationModel, error) {
	n := &model.NotificationModel{
		ID:                   uuid.New().String(),
		UserID:               userID,
		Title:                title,
		Message:              message,
		Type:                 notificationType,
		IsRead:               false,
		RelatedApplicationID: relatedApplicationID,
		CreatedAt:            time.Now(),
	}
	if err := n.Validate(); err != nil {
		return nil, NewValidationError("invalid notification: %v", err)
	}
	if err := s.repo.Save(n); err != nil {
		return nil, NewStorageError("save notification", err)
	}

	metrics.RecordNotificationSent(notificationType)

	// Live push failures are logged and swallowed; the inbox row is already
	// committed.
	if s.publisher != nil {
		payload, err := json.Marshal(n)
		if err != nil {
			s.logger.WithError(err).Warn("failed to encode notification for live push")
		} else {
			s.publisher.BroadcastToUser(userID, payload)
		}
	}

	return n, nil
}

// ListForUser returns the actor's notifications, newest first.
func (s *notificationService) ListForUser(actor auth.Actor) ([]*model.NotificationModel, error) {
	ns, err := s.repo.FindByUserID(actor.ID)
	if err != nil {
		return nil, NewStorageError("list notifications", err)
	}
	return ns, nil
}

// UnreadCount returns the actor's unread notification count.
func (s *notificationService) UnreadCount(actor auth.Actor) (int64, error) {
	count, err := s.repo.CountUnread(actor.ID)
	if err != nil {
		return 0, NewStorageError("count notifications", err)
	}
	return count, nil
}

// MarkRead marks one of the actor's notifications as read. Idempotent, and a
// no-op when the notification belongs to another user.
func (s *notificationService) MarkRead(actor auth.Actor, id string) error {
	if err := s.repo.MarkRead(actor.ID, id); err != nil {
		return NewStorageError("mark notification read", err)
	}
	return nil
}

// MarkAllRead marks all of the actor's notifications as read. Idempotent.
func (s *notificationService) MarkAllRead(actor auth.Actor) error {
	if err := s.repo.MarkAllRead(actor.ID); err != nil {
		return NewStorageError("mark notifications read", err)
	}
	return nil
}
