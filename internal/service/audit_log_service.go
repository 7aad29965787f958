package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/miftajuneidi2008/ansar-dfp/internal/model"
	"github.com/miftajuneidi2008/ansar-dfp/internal/repository"
	"github.com/miftajuneidi2008/ansar-dfp/internal/utils"
)

// AuditLogService records administrative actions against reference data.
type AuditLogService interface {
	RecordAction(ctx context.Context, userID string, action string, resourceType string, resourceID string, details interface{}) error
}

type auditLogService struct {
	auditRepo repository.AuditLogRepository
}

// NewAuditLogService creates an audit log service.
func NewAuditLogService(auditRepo repository.AuditLogRepository) AuditLogService {
	return &auditLogService{auditRepo: auditRepo}
}

// RecordAction writes one audit log entry. Request metadata (request ID, IP,
// user agent) is picked up from the context when the API middleware put it
// there.
func (s *auditLogService) RecordAction(
	ctx context.Context,
	userID string,
	action string,
	resourceType string,
	resourceID string,
	details interface{},
) error {
	// details lands in a jsonb column, so anything passed here is marshaled
	// exactly once. Raw JSON goes through untouched.
	var detailsJSON []byte
	switch d := details.(type) {
	case nil:
	case json.RawMessage:
		detailsJSON = d
	default:
		var err error
		detailsJSON, err = json.Marshal(details)
		if err != nil {
			return err
		}
	}

	requestID := utils.RequestIDFromContext(ctx)
	ip := utils.ClientIPFromContext(ctx)
	userAgent := utils.UserAgentFromContext(ctx)

	auditLog := &model.AuditLogModel{
		ID:           uuid.New().String(),
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		RequestID:    requestID,
		IP:           ip,
		UserAgent:    userAgent,
		Details:      detailsJSON,
		CreatedAt:    time.Now(),
	}

	return s.auditRepo.Save(auditLog)
}
