package service_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/miftajuneidi2008/ansar-dfp/internal/auth"
	"github.com/miftajuneidi2008/ansar-dfp/internal/database"
	"github.com/miftajuneidi2008/ansar-dfp/internal/model"
	"github.com/miftajuneidi2008/ansar-dfp/internal/repository"
	"github.com/miftajuneidi2008/ansar-dfp/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// serviceFixture wires the full service graph on an in-memory database with
// one district, branch, product, branch user, approver and admin.
type serviceFixture struct {
	db *gorm.DB

	apps          service.ApplicationService
	assignments   service.AssignmentService
	notifications service.NotificationService
	directory     service.DirectoryService
	users         service.UserService
	stats         service.StatisticsService

	district   *model.DistrictModel
	branch     *model.BranchModel
	product    *model.ProductModel
	branchUser *model.UserModel
	approver   *model.UserModel
	admin      *model.UserModel
}

func setupServiceTest(t *testing.T) *serviceFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	now := time.Now()
	district := &model.DistrictModel{ID: uuid.New().String(), Name: "Central District", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.Create(district).Error)

	branch := &model.BranchModel{ID: uuid.New().String(), Name: "Main Branch", DistrictID: district.ID, IsActive: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.Create(branch).Error)

	product := &model.ProductModel{ID: uuid.New().String(), Name: "Murabaha Financing", IsActive: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.Create(product).Error)

	hash, err := auth.HashPassword("password1")
	require.NoError(t, err)

	branchUser := &model.UserModel{
		ID: uuid.New().String(), Email: "branch@example.com", FullName: "Branch User",
		Role: model.RoleBranchUser, BranchID: &branch.ID, PasswordHash: hash, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}
	approver := &model.UserModel{
		ID: uuid.New().String(), Email: "approver@example.com", FullName: "Head Office Approver",
		Role: model.RoleHeadOfficeApprover, PasswordHash: hash, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}
	admin := &model.UserModel{
		ID: uuid.New().String(), Email: "admin@example.com", FullName: "System Admin",
		Role: model.RoleSystemAdmin, PasswordHash: hash, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}
	for _, u := range []*model.UserModel{branchUser, approver, admin} {
		require.NoError(t, db.Create(u).Error)
	}

	appRepo := repository.NewApplicationRepository(db)
	historyRepo := repository.NewStatusHistoryRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	districtRepo := repository.NewDistrictRepository(db)
	branchRepo := repository.NewBranchRepository(db)
	productRepo := repository.NewProductRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditLogSvc := service.NewAuditLogService(repository.NewAuditLogRepository(db))

	notificationSvc := service.NewNotificationService(notificationRepo, nil, nil)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, userRepo, districtRepo, branchRepo, productRepo, auditLogSvc)
	applicationSvc := service.NewApplicationService(db, appRepo, historyRepo, branchRepo, productRepo, assignmentSvc, notificationSvc, nil)
	directorySvc := service.NewDirectoryService(districtRepo, branchRepo, productRepo, userRepo, appRepo, auditLogSvc)

	tokens, err := auth.NewTokenManager("test-secret-test-secret-test-secret", "test", time.Hour)
	require.NoError(t, err)
	userSvc := service.NewUserService(userRepo, branchRepo, tokens, auditLogSvc)
	statsSvc := service.NewStatisticsService(applicationSvc, appRepo)

	return &serviceFixture{
		db:            db,
		apps:          applicationSvc,
		assignments:   assignmentSvc,
		notifications: notificationSvc,
		directory:     directorySvc,
		users:         userSvc,
		stats:         statsSvc,
		district:      district,
		branch:        branch,
		product:       product,
		branchUser:    branchUser,
		approver:      approver,
		admin:         admin,
	}
}

func (f *serviceFixture) actor(u *model.UserModel) auth.Actor {
	return auth.ActorFromUser(u)
}

// assignApprover routes the fixture approver to the given scope.
func (f *serviceFixture) assignApprover(t *testing.T, scopeType, scopeID string) {
	t.Helper()
	_, err := f.assignments.Create(context.Background(), f.actor(f.admin), &service.CreateAssignmentRequest{
		ApproverID: f.approver.ID,
		ScopeType:  scopeType,
		ScopeID:    scopeID,
	})
	require.NoError(t, err)
}

func (f *serviceFixture) submit(t *testing.T) *model.ApplicationModel {
	t.Helper()
	app, err := f.apps.Submit(context.Background(), f.actor(f.branchUser), &service.SubmitApplicationRequest{
		ProductID:         f.product.ID,
		CustomerName:      "Ahmed Kedir",
		PhoneNumber:       "0911000000",
		ApplicationAmount: 250000,
	})
	require.NoError(t, err)
	return app
}

func TestApplicationService_SubmitCreatesPendingWithHistory(t *testing.T) {
	f := setupServiceTest(t)
	f.assignApprover(t, model.ScopeBranch, f.branch.ID)

	app := f.submit(t)

	assert.Equal(t, model.StatusPending, app.Status)
	assert.True(t, strings.HasPrefix(app.ApplicationNumber, "APP-"))
	assert.Equal(t, f.branchUser.ID, app.SubmittedBy)
	assert.Equal(t, f.branch.ID, app.BranchID)
	assert.Nil(t, app.DecidedAt)

	history, err := f.apps.History(f.actor(f.branchUser), app.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].FromStatus)
	assert.Equal(t, model.StatusPending, history[0].ToStatus)
	assert.Equal(t, f.branchUser.ID, history[0].ActionBy)
	assert.Equal(t, model.RoleBranchUser, history[0].ActionByRole)
}

func TestApplicationService_SubmitNotifiesAssignedApprovers(t *testing.T) {
	f := setupServiceTest(t)
	f.assignApprover(t, model.ScopeBranch, f.branch.ID)

	app := f.submit(t)

	inbox, err := f.notifications.ListForUser(f.actor(f.approver))
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "New Application Submitted", inbox[0].Title)
	assert.Contains(t, inbox[0].Message, app.ApplicationNumber)
	assert.Contains(t, inbox[0].Message, "Main Branch branch")
	assert.Equal(t, model.NotificationSubmitted, inbox[0].Type)
	require.NotNil(t, inbox[0].RelatedApplicationID)
	assert.Equal(t, app.ID, *inbox[0].RelatedApplicationID)
}

func TestApplicationService_SubmitWithRoutingGapStillSucceeds(t *testing.T) {
	f := setupServiceTest(t)
	// No assignment configured at all.

	app := f.submit(t)
	assert.Equal(t, model.StatusPending, app.Status)

	inbox, err := f.notifications.ListForUser(f.actor(f.approver))
	require.NoError(t, err)
	assert.Empty(t, inbox)
}

func TestApplicationService_SubmitRejectsNonBranchRoles(t *testing.T) {
	f := setupServiceTest(t)

	for _, u := range []*model.UserModel{f.approver, f.admin} {
		_, err := f.apps.Submit(context.Background(), f.actor(u), &service.SubmitApplicationRequest{
			ProductID:         f.product.ID,
			CustomerName:      "Ahmed Kedir",
			PhoneNumber:       "0911000000",
			ApplicationAmount: 250000,
		})
		assert.True(t, service.IsValidation(err), "role %s: expected validation error, got %v", u.Role, err)
	}
}

func TestApplicationService_SubmitValidation(t *testing.T) {
	f := setupServiceTest(t)
	actor := f.actor(f.branchUser)

	cases := []struct {
		name string
		req  service.SubmitApplicationRequest
	}{
		{"blank customer name", service.SubmitApplicationRequest{ProductID: f.product.ID, CustomerName: "   ", PhoneNumber: "0911", ApplicationAmount: 100}},
		{"blank phone", service.SubmitApplicationRequest{ProductID: f.product.ID, CustomerName: "A B", PhoneNumber: " ", ApplicationAmount: 100}},
		{"zero amount", service.SubmitApplicationRequest{ProductID: f.product.ID, CustomerName: "A B", PhoneNumber: "0911", ApplicationAmount: 0}},
		{"negative amount", service.SubmitApplicationRequest{ProductID: f.product.ID, CustomerName: "A B", PhoneNumber: "0911", ApplicationAmount: -5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.apps.Submit(context.Background(), actor, &tc.req)
			assert.True(t, service.IsValidation(err), "got %v", err)
		})
	}
}

func TestApplicationService_SubmitRetiredProduct(t *testing.T) {
	f := setupServiceTest(t)
	require.NoError(t, f.db.Model(&model.ProductModel{}).Where("id = ?", f.product.ID).Update("is_active", false).Error)

	_, err := f.apps.Submit(context.Background(), f.actor(f.branchUser), &service.SubmitApplicationRequest{
		ProductID:         f.product.ID,
		CustomerName:      "Ahmed Kedir",
		PhoneNumber:       "0911000000",
		ApplicationAmount: 250000,
	})
	assert.True(t, service.IsValidation(err), "got %v", err)
}

func TestApplicationService_ApproveFlow(t *testing.T) {
	f := setupServiceTest(t)
	f.assignApprover(t, model.ScopeBranch, f.branch.ID)
	app := f.submit(t)

	err := f.apps.Decide(context.Background(), f.actor(f.approver), app.ID, &service.DecisionRequest{
		Action: service.DecisionApprove,
	})
	require.NoError(t, err)

	got, err := f.apps.Get(f.actor(f.branchUser), app.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, got.Status)
	assert.NotNil(t, got.DecidedAt)

	history, err := f.apps.History(f.actor(f.branchUser), app.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	// Newest first.
	require.NotNil(t, history[0].FromStatus)
	assert.Equal(t, model.StatusPending, *history[0].FromStatus)
	assert.Equal(t, model.StatusApproved, history[0].ToStatus)
	assert.Equal(t, f.approver.ID, history[0].ActionBy)
	assert.Equal(t, model.RoleHeadOfficeApprover, history[0].ActionByRole)

	inbox, err := f.notifications.ListForUser(f.actor(f.branchUser))
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "Application Approved", inbox[0].Title)
	assert.Contains(t, inbox[0].Message, "has been approved.")
}

func TestApplicationService_RejectRequiresReason(t *testing.T) {
	f := setupServiceTest(t)
	f.assignApprover(t, model.ScopeBranch, f.branch.ID)
	app := f.submit(t)

	for _, reason := range []*string{nil, strPtr(""), strPtr("   ")} {
		err := f.apps.Decide(context.Background(), f.actor(f.approver), app.ID, &service.DecisionRequest{
			Action: service.DecisionReject,
			Reason: reason,
		})
		assert.True(t, service.IsValidation(err), "got %v", err)
	}

	// Still pending after the failed attempts.
	got, err := f.apps.Get(f.actor(f.approver), app.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, got.Status)
}

func TestApplicationService_ReturnKeepsReasonVerbatim(t *testing.T) {
	f := setupServiceTest(t)
	f.assignApprover(t, model.ScopeDistrict, f.district.ID)
	app := f.submit(t)

	err := f.apps.Decide(context.Background(), f.actor(f.approver), app.ID, &service.DecisionRequest{
		Action: service.DecisionReturn,
		Reason: strPtr("  missing collateral valuation  "),
	})
	require.NoError(t, err)

	history, err := f.apps.History(f.actor(f.branchUser), app.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.NotNil(t, history[0].Reason)
	assert.Equal(t, "missing collateral valuation", *history[0].Reason)

	inbox, err := f.notifications.ListForUser(f.actor(f.branchUser))
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "Application Returned", inbox[0].Title)
	assert.Contains(t, inbox[0].Message, "Please review and resubmit. Reason: missing collateral valuation")
	assert.Equal(t, model.NotificationReturned, inbox[0].Type)
}

func TestApplicationService_DecideRequiresApproverRole(t *testing.T) {
	f := setupServiceTest(t)
	f.assignApprover(t, model.ScopeBranch, f.branch.ID)
	app := f.submit(t)

	for _, u := range []*model.UserModel{f.branchUser, f.admin} {
		err := f.apps.Decide(context.Background(), f.actor(u), app.ID, &service.DecisionRequest{
			Action: service.DecisionApprove,
		})
		assert.True(t, service.IsAuthorization(err), "role %s: got %v", u.Role, err)
	}
}

func TestApplicationService_DecideNotRouted(t *testing.T) {
	f := setupServiceTest(t)
	f.assignApprover(t, model.ScopeBranch, f.branch.ID)
	app := f.submit(t)

	// A second approver with no matching assignment.
	now := time.Now()
	other := &model.UserModel{
		ID: uuid.New().String(), Email: "other@example.com", FullName: "Other Approver",
		Role: model.RoleHeadOfficeApprover, PasswordHash: "x", IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, f.db.Create(other).Error)

	err := f.apps.Decide(context.Background(), f.actor(other), app.ID, &service.DecisionRequest{
		Action: service.DecisionApprove,
	})
	assert.True(t, service.IsAuthorization(err), "got %v", err)
}

func TestApplicationService_DecideUnknownAction(t *testing.T) {
	f := setupServiceTest(t)
	f.assignApprover(t, model.ScopeBranch, f.branch.ID)
	app := f.submit(t)

	err := f.apps.Decide(context.Background(), f.actor(f.approver), app.ID, &service.DecisionRequest{
		Action: "escalate",
	})
	assert.True(t, service.IsValidation(err), "got %v", err)
}

func TestApplicationService_SecondDecisionConflicts(t *testing.T) {
	f := setupServiceTest(t)
	f.assignApprover(t, model.ScopeBranch, f.branch.ID)
	app := f.submit(t)

	err := f.apps.Decide(context.Background(), f.actor(f.approver), app.ID, &service.DecisionRequest{
		Action: service.DecisionApprove,
	})
	require.NoError(t, err)

	err = f.apps.Decide(context.Background(), f.actor(f.approver), app.ID, &service.DecisionRequest{
		Action: service.DecisionReject,
		Reason: strPtr("changed my mind"),
	})
	assert.True(t, service.IsInvalidState(err), "got %v", err)

	// The audit trail records only the winning decision.
	history, err := f.apps.History(f.actor(f.approver), app.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestApplicationService_ConcurrentDecisionsExactlyOneWins(t *testing.T) {
	f := setupServiceTest(t)
	f.assignApprover(t, model.ScopeBranch, f.branch.ID)
	app := f.submit(t)

	actions := []*service.DecisionRequest{
		{Action: service.DecisionApprove},
		{Action: service.DecisionReject, Reason: strPtr("insufficient income")},
	}

	errs := make([]error, len(actions))
	var wg sync.WaitGroup
	for i, req := range actions {
		wg.Add(1)
		go func(i int, req *service.DecisionRequest) {
			defer wg.Done()
			errs[i] = f.apps.Decide(context.Background(), f.actor(f.approver), app.ID, req)
		}(i, req)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case service.IsInvalidState(err):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, conflicts)

	got, err := f.apps.Get(f.actor(f.approver), app.ID)
	require.NoError(t, err)
	assert.Contains(t, []string{model.StatusApproved, model.StatusRejected}, got.Status)

	history, err := f.apps.History(f.actor(f.approver), app.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestApplicationService_DecideMissingApplication(t *testing.T) {
	f := setupServiceTest(t)

	err := f.apps.Decide(context.Background(), f.actor(f.approver), uuid.New().String(), &service.DecisionRequest{
		Action: service.DecisionApprove,
	})
	assert.True(t, service.IsNotFound(err), "got %v", err)
}

func TestApplicationService_VisibilityScopes(t *testing.T) {
	f := setupServiceTest(t)
	f.assignApprover(t, model.ScopeProduct, f.product.ID)
	app := f.submit(t)

	// A branch user from another branch sees nothing.
	now := time.Now()
	otherBranch := &model.BranchModel{ID: uuid.New().String(), Name: "East Branch", DistrictID: f.district.ID, IsActive: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, f.db.Create(otherBranch).Error)
	outsider := &model.UserModel{
		ID: uuid.New().String(), Email: "outsider@example.com", FullName: "Other Branch User",
		Role: model.RoleBranchUser, BranchID: &otherBranch.ID, PasswordHash: "x", IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, f.db.Create(outsider).Error)

	_, err := f.apps.Get(f.actor(outsider), app.ID)
	assert.True(t, service.IsAuthorization(err), "got %v", err)

	listed, total, err := f.apps.ListForActor(f.actor(outsider), nil)
	require.NoError(t, err)
	assert.Empty(t, listed)
	assert.Zero(t, total)

	// The submitter, the routed approver and the admin all see it.
	for _, u := range []*model.UserModel{f.branchUser, f.approver, f.admin} {
		listed, total, err := f.apps.ListForActor(f.actor(u), nil)
		require.NoError(t, err)
		require.Len(t, listed, 1, "role %s", u.Role)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, app.ID, listed[0].ID)
	}
}

func TestApplicationService_ListFilterByStatus(t *testing.T) {
	f := setupServiceTest(t)
	f.assignApprover(t, model.ScopeBranch, f.branch.ID)
	first := f.submit(t)
	second := f.submit(t)

	require.NoError(t, f.apps.Decide(context.Background(), f.actor(f.approver), first.ID, &service.DecisionRequest{
		Action: service.DecisionApprove,
	}))

	pending := model.StatusPending
	listed, total, err := f.apps.ListForActor(f.actor(f.admin), &service.ListApplicationsRequest{Status: &pending})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, second.ID, listed[0].ID)
}

func TestApplicationService_ListPagination(t *testing.T) {
	f := setupServiceTest(t)
	for i := 0; i < 3; i++ {
		f.submit(t)
	}

	page1, total, err := f.apps.ListForActor(f.actor(f.branchUser), &service.ListApplicationsRequest{Page: 1, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, int64(3), total)

	page2, total, err := f.apps.ListForActor(f.actor(f.branchUser), &service.ListApplicationsRequest{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, int64(3), total)

	// The pages partition the full listing.
	seen := map[string]bool{}
	for _, app := range append(page1, page2...) {
		seen[app.ID] = true
	}
	assert.Len(t, seen, 3)
}

func TestGenerateApplicationNumber(t *testing.T) {
	at := time.Date(2025, 1, 14, 10, 0, 0, 0, time.UTC)
	n := service.GenerateApplicationNumber(at)

	assert.True(t, strings.HasPrefix(n, "APP-20250114-"), n)
	suffix := strings.TrimPrefix(n, "APP-20250114-")
	assert.Len(t, suffix, 6)
	assert.Equal(t, strings.ToUpper(suffix), suffix)

	// Two numbers from the same instant differ.
	assert.NotEqual(t, n, service.GenerateApplicationNumber(at))
}

func strPtr(s string) *string {
	return &s
}
