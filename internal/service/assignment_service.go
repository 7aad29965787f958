package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/miftajuneidi2008/ansar-dfp/internal/auth"
	"github.com/miftajuneidi2008/ansar-dfp/internal/model"
	"github.com/miftajuneidi2008/ansar-dfp/internal/repository"
	"gorm.io/gorm"
)

// AssignmentService owns approver routing rules and resolves the approver
// fan-out set for an application.
type AssignmentService interface {
	// ResolveApprovers returns the IDs of every approver holding at least one
	// assignment matching the application's district, branch or product.
	// Deduplicated, sorted, side-effect free.
	ResolveApprovers(districtID, branchID, productID string) ([]string, error)
	Create(ctx context.Context, actor auth.Actor, req *CreateAssignmentRequest) (*model.ApproverAssignmentModel, error)
	Delete(ctx context.Context, actor auth.Actor, id string) error
	List(actor auth.Actor) ([]*model.ApproverAssignmentModel, error)
	ListByApprover(actor auth.Actor, approverID string) ([]*model.ApproverAssignmentModel, error)
}

// CreateAssignmentRequest binds an approver to one routing dimension.
type CreateAssignmentRequest struct {
	ApproverID string `json:"approver_id" binding:"required"`
	ScopeType  string `json:"scope_type" binding:"required"`
	ScopeID    string `json:"scope_id" binding:"required"`
}

type assignmentService struct {
	repo         repository.AssignmentRepository
	userRepo     repository.UserRepository
	districtRepo repository.DistrictRepository
	branchRepo   repository.BranchRepository
	productRepo  repository.ProductRepository
	auditLogSvc  AuditLogService
}

// NewAssignmentService creates an assignment service.
func NewAssignmentService(
	repo repository.AssignmentRepository,
	userRepo repository.UserRepository,
	districtRepo repository.DistrictRepository,
	branchRepo repository.BranchRepository,
	productRepo repository.ProductRepository,
	auditLogSvc AuditLogService,
) AssignmentService {
	return &assignmentService{
		repo:         repo,
		userRepo:     userRepo,
		districtRepo: districtRepo,
		branchRepo:   branchRepo,
		productRepo:  productRepo,
		auditLogSvc:  auditLogSvc,
	}
}

// ResolveApprovers computes the routing fan-out. One matching assignment on
// any dimension makes an approver eligible; multiple matches still yield one
// entry. An empty result means the application is invisible to every approval
// queue until an admin configures routing.
func (s *assignmentService) ResolveApprovers(districtID, branchID, productID string) ([]string, error) {
	matches, err := s.repo.FindMatching(districtID, branchID, productID)
	if err != nil {
		return nil, NewStorageError("resolve approvers", err)
	}

	seen := make(map[string]struct{}, len(matches))
	approvers := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m.ApproverID]; ok {
			continue
		}
		seen[m.ApproverID] = struct{}{}
		approvers = append(approvers, m.ApproverID)
	}
	sort.Strings(approvers)
	return approvers, nil
}

// Create adds a routing rule. Admin only; the approver must be an active head
// office approver and the scope target must exist.
func (s *assignmentService) Create(ctx context.Context, actor auth.Actor, req *CreateAssignmentRequest) (*model.ApproverAssignmentModel, error) {
	if !auth.PermissionsFor(actor.Role).CanManageOrganization {
		return nil, NewAuthorizationError("only system administrators can manage approver assignments")
	}
	if !model.ValidScopeType(req.ScopeType) {
		return nil, NewValidationError("invalid scope type %q", req.ScopeType)
	}

	approver, err := s.userRepo.FindByID(req.ApproverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("approver", req.ApproverID)
		}
		return nil, NewStorageError("load approver", err)
	}
	if approver.Role != model.RoleHeadOfficeApprover {
		return nil, NewValidationError("user %s is not a head office approver", approver.Email)
	}
	if !approver.IsActive {
		return nil, NewValidationError("approver %s is deactivated", approver.Email)
	}

	if err := s.scopeTargetExists(req.ScopeType, req.ScopeID); err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(req.ApproverID, req.ScopeType, req.ScopeID)
	if err != nil {
		return nil, NewStorageError("check assignment", err)
	}
	if exists {
		return nil, NewValidationError("assignment already exists for this approver and scope")
	}

	assignment := &model.ApproverAssignmentModel{
		ID:         uuid.New().String(),
		ApproverID: req.ApproverID,
		ScopeType:  req.ScopeType,
		ScopeID:    req.ScopeID,
		CreatedAt:  time.Now(),
	}
	if err := assignment.Validate(); err != nil {
		return nil, NewValidationError("invalid assignment: %v", err)
	}
	if err := s.repo.Save(assignment); err != nil {
		return nil, NewStorageError("save assignment", err)
	}

	if s.auditLogSvc != nil {
		details := map[string]string{
			"approver_id": req.ApproverID,
			"scope_type":  req.ScopeType,
			"scope_id":    req.ScopeID,
		}
		_ = s.auditLogSvc.RecordAction(ctx, actor.ID, "create", "assignment", assignment.ID, details)
	}

	return assignment, nil
}

// Delete removes a routing rule. Admin only.
func (s *assignmentService) Delete(ctx context.Context, actor auth.Actor, id string) error {
	if !auth.PermissionsFor(actor.Role).CanManageOrganization {
		return NewAuthorizationError("only system administrators can manage approver assignments")
	}
	if _, err := s.repo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError("assignment", id)
		}
		return NewStorageError("load assignment", err)
	}
	if err := s.repo.Delete(id); err != nil {
		return NewStorageError("delete assignment", err)
	}

	if s.auditLogSvc != nil {
		_ = s.auditLogSvc.RecordAction(ctx, actor.ID, "delete", "assignment", id, nil)
	}
	return nil
}

// List returns all routing rules. Admin only.
func (s *assignmentService) List(actor auth.Actor) ([]*model.ApproverAssignmentModel, error) {
	if !auth.PermissionsFor(actor.Role).CanManageOrganization {
		return nil, NewAuthorizationError("only system administrators can view approver assignments")
	}
	as, err := s.repo.FindAll()
	if err != nil {
		return nil, NewStorageError("list assignments", err)
	}
	return as, nil
}

// ListByApprover returns one approver's rules. Admins, or the approver
// themselves.
func (s *assignmentService) ListByApprover(actor auth.Actor, approverID string) ([]*model.ApproverAssignmentModel, error) {
	if !actor.IsAdmin() && actor.ID != approverID {
		return nil, NewAuthorizationError("cannot view another approver's assignments")
	}
	as, err := s.repo.FindByApprover(approverID)
	if err != nil {
		return nil, NewStorageError("list assignments", err)
	}
	return as, nil
}

func (s *assignmentService) scopeTargetExists(scopeType, scopeID string) error {
	var err error
	switch scopeType {
	case model.ScopeDistrict:
		_, err = s.districtRepo.FindByID(scopeID)
	case model.ScopeBranch:
		_, err = s.branchRepo.FindByID(scopeID)
	case model.ScopeProduct:
		_, err = s.productRepo.FindByID(scopeID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError(scopeType, scopeID)
		}
		return NewStorageError("load scope target", err)
	}
	return nil
}
