package repository

import (
	"github.com/miftajuneidi2008/ansar-dfp/internal/model"
	"gorm.io/gorm"
)

// StatusHistoryRepository is the append-only audit trail of status
// transitions. There is deliberately no update or delete method.
type StatusHistoryRepository interface {
	Append(entry *model.StatusHistoryModel) error
	FindByApplicationID(applicationID string) ([]*model.StatusHistoryModel, error)
}

type statusHistoryRepository struct {
	db *gorm.DB
}

// NewStatusHistoryRepository creates a status history repository.
func NewStatusHistoryRepository(db *gorm.DB) StatusHistoryRepository {
	return &statusHistoryRepository{db: db}
}

// Append inserts a new history entry.
func (r *statusHistoryRepository) Append(entry *model.StatusHistoryModel) error {
	return r.db.Create(entry).Error
}

// FindByApplicationID returns the trail for an application, oldest first.
// Ordered this way the entries chain from_status onto the previous to_status.
func (r *statusHistoryRepository) FindByApplicationID(applicationID string) ([]*model.StatusHistoryModel, error) {
	var entries []*model.StatusHistoryModel
	err := r.db.Where("application_id = ?", applicationID).Order("created_at ASC").Find(&entries).Error
	return entries, err
}
