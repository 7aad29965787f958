package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/miftajuneidi2008/ansar-dfp/internal/auth"
	"github.com/miftajuneidi2008/ansar-dfp/internal/metrics"
	"github.com/miftajuneidi2008/ansar-dfp/internal/model"
	"github.com/miftajuneidi2008/ansar-dfp/internal/repository"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Decision actions an approver may take on a pending application.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
	DecisionReturn  = "return"
)

// ApplicationService is the lifecycle engine: it owns the application state
// machine, writes the immutable status history, and triggers notifications.
type ApplicationService interface {
	Submit(ctx context.Context, actor auth.Actor, req *SubmitApplicationRequest) (*model.ApplicationModel, error)
	Decide(ctx context.Context, actor auth.Actor, id string, req *DecisionRequest) error
	Get(actor auth.Actor, id string) (*model.ApplicationModel, error)
	History(actor auth.Actor, id string) ([]*model.StatusHistoryModel, error)
	ListForActor(actor auth.Actor, filter *ListApplicationsRequest) ([]*model.ApplicationModel, int64, error)
}

// SubmitApplicationRequest carries a new financing application.
type SubmitApplicationRequest struct {
	ProductID          string   `json:"product_id" binding:"required"`
	CustomerName       string   `json:"customer_name" binding:"required"`
	CustomerID         *string  `json:"customer_id"`
	PhoneNumber        string   `json:"phone_number" binding:"required"`
	ApplicationAmount  float64  `json:"application_amount" binding:"required"`
	InterestRate       *float64 `json:"interest_rate"`
	TenureMonths       *int     `json:"tenure_months"`
	MonthlyInstallment *float64 `json:"monthly_installment"`
	Remarks            *string  `json:"remarks"`
}

// DecisionRequest carries an approver's decision. Reason is mandatory for
// reject and return.
type DecisionRequest struct {
	Action   string  `json:"action"`
	Reason   *string `json:"reason"`
	Comments *string `json:"comments"`
}

// ListApplicationsRequest narrows the actor's application listing.
// PageSize <= 0 disables paging.
type ListApplicationsRequest struct {
	Status   *string `form:"status"`
	Search   *string `form:"search"`
	Sort     string  `form:"sort"`
	Order    string  `form:"order"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}

type applicationService struct {
	db            *gorm.DB
	appRepo       repository.ApplicationRepository
	historyRepo   repository.StatusHistoryRepository
	branchRepo    repository.BranchRepository
	productRepo   repository.ProductRepository
	assignmentSvc AssignmentService
	notifier      NotificationService
	logger        *logrus.Logger

	// locks serializes decisions per application so a losing racer observes
	// the already-committed transition instead of a write conflict.
	locks sync.Map
}

// NewApplicationService creates the lifecycle engine.
func NewApplicationService(
	db *gorm.DB,
	appRepo repository.ApplicationRepository,
	historyRepo repository.StatusHistoryRepository,
	branchRepo repository.BranchRepository,
	productRepo repository.ProductRepository,
	assignmentSvc AssignmentService,
	notifier NotificationService,
	logger *logrus.Logger,
) ApplicationService {
	if logger == nil {
		logger = logrus.New()
	}
	return &applicationService{
		db:            db,
		appRepo:       appRepo,
		historyRepo:   historyRepo,
		branchRepo:    branchRepo,
		productRepo:   productRepo,
		assignmentSvc: assignmentSvc,
		notifier:      notifier,
		logger:        logger,
	}
}

// Submit creates an application in pending state, writes the initial history
// entry in the same transaction, then fans out notifications to the eligible
// approvers.
func (s *applicationService) Submit(ctx context.Context, actor auth.Actor, req *SubmitApplicationRequest) (*model.ApplicationModel, error) {
	if !auth.PermissionsFor(actor.Role).CanSubmitApplications {
		return nil, NewValidationError("only branch users can submit applications")
	}
	if actor.BranchID == nil || *actor.BranchID == "" {
		return nil, NewValidationError("submitting user has no branch")
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, NewValidationError("customer name is required")
	}
	if strings.TrimSpace(req.PhoneNumber) == "" {
		return nil, NewValidationError("phone number is required")
	}
	if req.ApplicationAmount <= 0 {
		return nil, NewValidationError("application amount must be positive")
	}

	branch, err := s.branchRepo.FindByID(*actor.BranchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("branch", *actor.BranchID)
		}
		return nil, NewStorageError("load branch", err)
	}

	product, err := s.productRepo.FindByID(req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("product", req.ProductID)
		}
		return nil, NewStorageError("load product", err)
	}
	if !product.IsActive {
		return nil, NewValidationError("product %s is no longer available", product.Name)
	}

	now := time.Now()
	app := &model.ApplicationModel{
		ID:                 uuid.New().String(),
		ApplicationNumber:  GenerateApplicationNumber(now),
		CustomerName:       strings.TrimSpace(req.CustomerName),
		CustomerID:         req.CustomerID,
		PhoneNumber:        strings.TrimSpace(req.PhoneNumber),
		ProductID:          product.ID,
		BranchID:           branch.ID,
		Status:             model.StatusPending,
		ApplicationAmount:  req.ApplicationAmount,
		InterestRate:       req.InterestRate,
		TenureMonths:       req.TenureMonths,
		MonthlyInstallment: req.MonthlyInstallment,
		Remarks:            req.Remarks,
		SubmittedBy:        actor.ID,
		SubmittedAt:        now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := app.Validate(); err != nil {
		return nil, NewValidationError("invalid application: %v", err)
	}

	entry := &model.StatusHistoryModel{
		ID:            uuid.New().String(),
		ApplicationID: app.ID,
		FromStatus:    nil,
		ToStatus:      model.StatusPending,
		ActionBy:      actor.ID,
		ActionByRole:  actor.Role,
		CreatedAt:     now,
	}

	// Application and initial history entry must land together.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(app).Error; err != nil {
			return err
		}
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, NewStorageError("create application", err)
	}

	metrics.RecordApplicationSubmitted()

	s.notifyApprovers(app, branch)

	return app, nil
}

// Decide validates and applies an approver's decision on a pending
// application. The status update and the history entry commit atomically; the
// submitter's notification is best-effort afterwards.
func (s *applicationService) Decide(ctx context.Context, actor auth.Actor, id string, req *DecisionRequest) error {
	if !auth.PermissionsFor(actor.Role).CanApproveApplications {
		return NewAuthorizationError("only head office approvers can act on applications")
	}

	toStatus, reasonRequired, err := decisionTarget(req.Action)
	if err != nil {
		return err
	}

	var reason *string
	if reasonRequired {
		if req.Reason == nil || strings.TrimSpace(*req.Reason) == "" {
			return NewValidationError("a reason is required to %s an application", req.Action)
		}
		trimmed := strings.TrimSpace(*req.Reason)
		reason = &trimmed
	}

	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	app, err := s.appRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError("application", id)
		}
		return NewStorageError("load application", err)
	}
	if app.Status != model.StatusPending {
		return NewInvalidStateError(app.Status, "application %s is %s and can no longer be acted on", app.ApplicationNumber, app.Status)
	}

	branch, err := s.branchRepo.FindByID(app.BranchID)
	if err != nil {
		return NewStorageError("load branch", err)
	}
	eligible, err := s.isEligible(actor.ID, branch.DistrictID, app.BranchID, app.ProductID)
	if err != nil {
		return err
	}
	if !eligible {
		return NewAuthorizationError("application %s is not routed to you", app.ApplicationNumber)
	}

	now := time.Now()
	entry := &model.StatusHistoryModel{
		ID:            uuid.New().String(),
		ApplicationID: app.ID,
		FromStatus:    strPtr(model.StatusPending),
		ToStatus:      toStatus,
		ActionBy:      actor.ID,
		ActionByRole:  actor.Role,
		Reason:        reason,
		Comments:      req.Comments,
		CreatedAt:     now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Conditional update: only the first decision moves the row out of
		// pending; a concurrent winner leaves nothing for us to update.
		res := tx.Model(&model.ApplicationModel{}).
			Where("id = ? AND status = ?", app.ID, model.StatusPending).
			Updates(map[string]interface{}{
				"status":     toStatus,
				"decided_at": now,
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(entry).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			current, loadErr := s.appRepo.FindByID(id)
			if loadErr == nil {
				return NewInvalidStateError(current.Status, "application %s is %s and can no longer be acted on", current.ApplicationNumber, current.Status)
			}
			return NewInvalidStateError("", "application %s can no longer be acted on", app.ApplicationNumber)
		}
		return NewStorageError("apply decision", err)
	}

	metrics.RecordDecision(req.Action)

	s.notifySubmitter(app, toStatus, reason)

	return nil
}

// Get returns one application within the actor's visibility window.
func (s *applicationService) Get(actor auth.Actor, id string) (*model.ApplicationModel, error) {
	app, err := s.appRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("application", id)
		}
		return nil, NewStorageError("load application", err)
	}
	if err := s.checkVisibility(actor, app); err != nil {
		return nil, err
	}
	return app, nil
}

// History returns the application's audit trail, most recent first.
func (s *applicationService) History(actor auth.Actor, id string) ([]*model.StatusHistoryModel, error) {
	if _, err := s.Get(actor, id); err != nil {
		return nil, err
	}
	entries, err := s.historyRepo.FindByApplicationID(id)
	if err != nil {
		return nil, NewStorageError("load history", err)
	}
	// Stored oldest-first; displayed newest-first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// ListForActor lists the applications the actor may see: branch users their
// own, approvers their assigned scope, admins everything. The second return
// value is the total match count before paging.
func (s *applicationService) ListForActor(actor auth.Actor, filter *ListApplicationsRequest) ([]*model.ApplicationModel, int64, error) {
	repoFilter := &repository.ApplicationFilter{}
	if filter != nil {
		repoFilter.Status = filter.Status
		repoFilter.Search = filter.Search
		repoFilter.Sort = filter.Sort
		repoFilter.Order = filter.Order
		repoFilter.Page = filter.Page
		repoFilter.PageSize = filter.PageSize
	}

	switch {
	case actor.IsBranchUser():
		repoFilter.SubmittedBy = &actor.ID
	case actor.IsApprover():
		assignments, err := s.assignmentSvc.ListByApprover(actor, actor.ID)
		if err != nil {
			return nil, 0, err
		}
		if len(assignments) == 0 {
			return []*model.ApplicationModel{}, 0, nil
		}
		for _, a := range assignments {
			switch a.ScopeType {
			case model.ScopeDistrict:
				repoFilter.DistrictIDs = append(repoFilter.DistrictIDs, a.ScopeID)
			case model.ScopeBranch:
				repoFilter.BranchIDs = append(repoFilter.BranchIDs, a.ScopeID)
			case model.ScopeProduct:
				repoFilter.ProductIDs = append(repoFilter.ProductIDs, a.ScopeID)
			}
		}
	case actor.IsAdmin():
		// unrestricted
	default:
		return nil, 0, NewAuthorizationError("unknown role %q", actor.Role)
	}

	apps, err := s.appRepo.FindByFilter(repoFilter)
	if err != nil {
		return nil, 0, NewStorageError("list applications", err)
	}
	total, err := s.appRepo.CountByFilter(repoFilter)
	if err != nil {
		return nil, 0, NewStorageError("count applications", err)
	}
	return apps, total, nil
}

func (s *applicationService) checkVisibility(actor auth.Actor, app *model.ApplicationModel) error {
	switch {
	case actor.IsAdmin():
		return nil
	case actor.IsBranchUser():
		if app.SubmittedBy == actor.ID {
			return nil
		}
		return NewAuthorizationError("application %s was not submitted by you", app.ApplicationNumber)
	case actor.IsApprover():
		branch, err := s.branchRepo.FindByID(app.BranchID)
		if err != nil {
			return NewStorageError("load branch", err)
		}
		eligible, err := s.isEligible(actor.ID, branch.DistrictID, app.BranchID, app.ProductID)
		if err != nil {
			return err
		}
		if eligible {
			return nil
		}
		return NewAuthorizationError("application %s is not routed to you", app.ApplicationNumber)
	}
	return NewAuthorizationError("unknown role %q", actor.Role)
}

func (s *applicationService) isEligible(approverID, districtID, branchID, productID string) (bool, error) {
	approvers, err := s.assignmentSvc.ResolveApprovers(districtID, branchID, productID)
	if err != nil {
		return false, err
	}
	for _, id := range approvers {
		if id == approverID {
			return true, nil
		}
	}
	return false, nil
}

// notifyApprovers fans out "new application" notifications to the resolved
// approver set. Failures never unwind the committed submission.
func (s *applicationService) notifyApprovers(app *model.ApplicationModel, branch *model.BranchModel) {
	approvers, err := s.assignmentSvc.ResolveApprovers(branch.DistrictID, app.BranchID, app.ProductID)
	if err != nil {
		s.logger.WithError(err).WithField("application", app.ApplicationNumber).
			Warn("failed to resolve approvers for new application")
		return
	}
	if len(approvers) == 0 {
		// Routing gap: the application will not appear in any approval queue
		// until an admin configures a matching assignment.
		s.logger.WithFields(logrus.Fields{
			"application": app.ApplicationNumber,
			"branch":      app.BranchID,
			"product":     app.ProductID,
		}).Warn("no approver assignment matches this application")
		return
	}

	title := "New Application Submitted"
	message := fmt.Sprintf("Application %s for %s has been submitted by %s branch and is awaiting your review.",
		app.ApplicationNumber, app.CustomerName, branch.Name)
	for _, approverID := range approvers {
		if _, err := s.notifier.Notify(approverID, title, message, model.NotificationSubmitted, &app.ID); err != nil {
			s.logger.WithError(err).WithField("user", approverID).Warn("failed to notify approver")
		}
	}
}

// notifySubmitter informs the original submitter of a decision, embedding the
// reason verbatim for reject and return.
func (s *applicationService) notifySubmitter(app *model.ApplicationModel, toStatus string, reason *string) {
	var title, message, notificationType string
	switch toStatus {
	case model.StatusApproved:
		title = "Application Approved"
		message = fmt.Sprintf("Your application %s for %s has been approved.", app.ApplicationNumber, app.CustomerName)
		notificationType = model.NotificationStatusChanged
	case model.StatusRejected:
		title = "Application Rejected"
		message = fmt.Sprintf("Your application %s for %s has been rejected. Reason: %s", app.ApplicationNumber, app.CustomerName, *reason)
		notificationType = model.NotificationStatusChanged
	case model.StatusReturned:
		title = "Application Returned"
		message = fmt.Sprintf("Your application %s for %s has been returned. Please review and resubmit. Reason: %s", app.ApplicationNumber, app.CustomerName, *reason)
		notificationType = model.NotificationReturned
	default:
		return
	}

	if _, err := s.notifier.Notify(app.SubmittedBy, title, message, notificationType, &app.ID); err != nil {
		s.logger.WithError(err).WithField("user", app.SubmittedBy).Warn("failed to notify submitter")
	}
}

func (s *applicationService) lockFor(id string) *sync.Mutex {
	lock, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func decisionTarget(action string) (toStatus string, reasonRequired bool, err error) {
	switch action {
	case DecisionApprove:
		return model.StatusApproved, false, nil
	case DecisionReject:
		return model.StatusRejected, true, nil
	case DecisionReturn:
		return model.StatusReturned, true, nil
	default:
		return "", false, NewValidationError("unknown decision action %q", action)
	}
}

// GenerateApplicationNumber builds a human-readable unique application number
// like APP-20250114-8F3C2A.
func GenerateApplicationNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("APP-%s-%s", at.Format("20060102"), suffix)
}

func strPtr(s string) *string {
	return &s
}
