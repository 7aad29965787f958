package repository

import (
	"github.com/miftajuneidi2008/ansar-dfp/internal/model"
	"gorm.io/gorm"
)

// AssignmentRepository persists approver routing rules.
type AssignmentRepository interface {
	Save(a *model.ApproverAssignmentModel) error
	Delete(id string) error
	FindByID(id string) (*model.ApproverAssignmentModel, error)
	FindAll() ([]*model.ApproverAssignmentModel, error)
	FindByApprover(approverID string) ([]*model.ApproverAssignmentModel, error)
	FindMatching(districtID, branchID, productID string) ([]*model.ApproverAssignmentModel, error)
	Exists(approverID, scopeType, scopeID string) (bool, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository creates an assignment repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

// Save persists an assignment.
func (r *assignmentRepository) Save(a *model.ApproverAssignmentModel) error {
	return r.db.Save(a).Error
}

// Delete removes an assignment.
func (r *assignmentRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.ApproverAssignmentModel{}).Error
}

// FindByID finds an assignment by ID.
func (r *assignmentRepository) FindByID(id string) (*model.ApproverAssignmentModel, error) {
	var a model.ApproverAssignmentModel
	if err := r.db.Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// FindAll returns all assignments, newest first.
func (r *assignmentRepository) FindAll() ([]*model.ApproverAssignmentModel, error) {
	var as []*model.ApproverAssignmentModel
	err := r.db.Order("created_at DESC").Find(&as).Error
	return as, err
}

// FindByApprover returns one approver's assignments.
func (r *assignmentRepository) FindByApprover(approverID string) ([]*model.ApproverAssignmentModel, error) {
	var as []*model.ApproverAssignmentModel
	err := r.db.Where("approver_id = ?", approverID).Order("created_at DESC").Find(&as).Error
	return as, err
}

// FindMatching returns every assignment whose scope matches any one of the
// application's district, branch or product dimensions.
func (r *assignmentRepository) FindMatching(districtID, branchID, productID string) ([]*model.ApproverAssignmentModel, error) {
	var as []*model.ApproverAssignmentModel
	err := r.db.
		Where("(scope_type = ? AND scope_id = ?) OR (scope_type = ? AND scope_id = ?) OR (scope_type = ? AND scope_id = ?)",
			model.ScopeDistrict, districtID,
			model.ScopeBranch, branchID,
			model.ScopeProduct, productID).
		Find(&as).Error
	return as, err
}

// Exists reports whether an identical routing rule already exists.
func (r *assignmentRepository) Exists(approverID, scopeType, scopeID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.ApproverAssignmentModel{}).
		Where("approver_id = ? AND scope_type = ? AND scope_id = ?", approverID, scopeType, scopeID).
		Count(&count).Error
	return count > 0, err
}
