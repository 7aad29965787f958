package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/miftajuneidi2008/ansar-dfp/internal/auth"
	"github.com/miftajuneidi2008/ansar-dfp/internal/model"
	"github.com/miftajuneidi2008/ansar-dfp/internal/repository"
	"gorm.io/gorm"
)

// UserService manages portal principals and sessions.
type UserService interface {
	Create(ctx context.Context, actor auth.Actor, req *CreateUserRequest) (*model.UserModel, error)
	Update(ctx context.Context, actor auth.Actor, id string, req *UpdateUserRequest) (*model.UserModel, error)
	SetActive(ctx context.Context, actor auth.Actor, id string, active bool) (*model.UserModel, error)
	List(actor auth.Actor) ([]*model.UserModel, error)
	Get(id string) (*model.UserModel, error)
	Login(email, password string) (string, *model.UserModel, error)
	// Bootstrap creates the first system administrator. It refuses to run
	// once any admin exists.
	Bootstrap(ctx context.Context, req *CreateUserRequest) (*model.UserModel, error)
}

// CreateUserRequest creates a principal.
type CreateUserRequest struct {
	Email    string  `json:"email" binding:"required" validate:"required,email"`
	FullName string  `json:"full_name" binding:"required" validate:"required,min=3"`
	Password string  `json:"password" binding:"required" validate:"required,min=6"`
	Role     string  `json:"role" binding:"required"`
	BranchID *string `json:"branch_id"`
}

// UpdateUserRequest edits a principal. Password is optional.
type UpdateUserRequest struct {
	Email    string  `json:"email" binding:"required" validate:"required,email"`
	FullName string  `json:"full_name" binding:"required" validate:"required,min=3"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	Role     string  `json:"role" binding:"required"`
	BranchID *string `json:"branch_id"`
}

type userService struct {
	userRepo    repository.UserRepository
	branchRepo  repository.BranchRepository
	tokens      *auth.TokenManager
	auditLogSvc AuditLogService
	validate    *validator.Validate
}

// NewUserService creates a user service.
func NewUserService(userRepo repository.UserRepository, branchRepo repository.BranchRepository, tokens *auth.TokenManager, auditLogSvc AuditLogService) UserService {
	return &userService{
		userRepo:    userRepo,
		branchRepo:  branchRepo,
		tokens:      tokens,
		auditLogSvc: auditLogSvc,
		validate:    validator.New(),
	}
}

// Create adds a user. Admin only; enforces the role/branch invariant and
// email uniqueness.
func (s *userService) Create(ctx context.Context, actor auth.Actor, req *CreateUserRequest) (*model.UserModel, error) {
	if !auth.PermissionsFor(actor.Role).CanManageUsers {
		return nil, NewAuthorizationError("only system administrators can manage users")
	}
	u, err := s.buildUser(req)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(u); err != nil {
		return nil, NewStorageError("save user", err)
	}
	if s.auditLogSvc != nil {
		_ = s.auditLogSvc.RecordAction(ctx, actor.ID, "create", "user", u.ID, map[string]string{"email": u.Email, "role": u.Role})
	}
	return u, nil
}

// Update edits a user. Admin only. Role stays editable here even though it is
// immutable by convention elsewhere.
func (s *userService) Update(ctx context.Context, actor auth.Actor, id string, req *UpdateUserRequest) (*model.UserModel, error) {
	if !auth.PermissionsFor(actor.Role).CanManageUsers {
		return nil, NewAuthorizationError("only system administrators can manage users")
	}
	u, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("user", id)
		}
		return nil, NewStorageError("load user", err)
	}

	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid user: %v", err)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if other, err := s.userRepo.FindByEmail(email); err == nil && other.ID != id {
		return nil, NewValidationError("email %s is already in use", email)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewStorageError("check email", err)
	}

	branchID, err := s.branchForRole(req.Role, req.BranchID)
	if err != nil {
		return nil, err
	}

	u.Email = email
	u.FullName = strings.TrimSpace(req.FullName)
	u.Role = req.Role
	u.BranchID = branchID
	if req.Password != nil && *req.Password != "" {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, NewValidationError("%v", err)
		}
		u.PasswordHash = hash
	}
	u.UpdatedAt = time.Now()

	if err := u.Validate(); err != nil {
		return nil, NewValidationError("invalid user: %v", err)
	}
	if err := s.userRepo.Save(u); err != nil {
		return nil, NewStorageError("save user", err)
	}
	if s.auditLogSvc != nil {
		_ = s.auditLogSvc.RecordAction(ctx, actor.ID, "update", "user", u.ID, map[string]string{"email": u.Email, "role": u.Role})
	}
	return u, nil
}

// SetActive activates or deactivates a user. Admin only; admins cannot
// deactivate themselves.
func (s *userService) SetActive(ctx context.Context, actor auth.Actor, id string, active bool) (*model.UserModel, error) {
	if !auth.PermissionsFor(actor.Role).CanManageUsers {
		return nil, NewAuthorizationError("only system administrators can manage users")
	}
	if !active && actor.ID == id {
		return nil, NewValidationError("cannot deactivate your own account")
	}
	u, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("user", id)
		}
		return nil, NewStorageError("load user", err)
	}
	u.IsActive = active
	u.UpdatedAt = time.Now()
	if err := s.userRepo.Save(u); err != nil {
		return nil, NewStorageError("save user", err)
	}
	action := "deactivate"
	if active {
		action = "activate"
	}
	if s.auditLogSvc != nil {
		_ = s.auditLogSvc.RecordAction(ctx, actor.ID, action, "user", u.ID, nil)
	}
	return u, nil
}

// List returns all users. Admin only.
func (s *userService) List(actor auth.Actor) ([]*model.UserModel, error) {
	if !auth.PermissionsFor(actor.Role).CanManageUsers {
		return nil, NewAuthorizationError("only system administrators can view users")
	}
	us, err := s.userRepo.FindAll()
	if err != nil {
		return nil, NewStorageError("list users", err)
	}
	return us, nil
}

// Get returns one user by ID.
func (s *userService) Get(id string) (*model.UserModel, error) {
	u, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("user", id)
		}
		return nil, NewStorageError("load user", err)
	}
	return u, nil
}

// Login verifies credentials and issues a session token. Deactivated users
// cannot log in.
func (s *userService) Login(email, password string) (string, *model.UserModel, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, NewAuthorizationError("invalid email or password")
		}
		return "", nil, NewStorageError("load user", err)
	}
	if !u.IsActive {
		return "", nil, NewAuthorizationError("account is deactivated")
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return "", nil, NewAuthorizationError("invalid email or password")
	}

	now := time.Now()
	if err := s.userRepo.TouchLastLogin(u.ID, now); err != nil {
		return "", nil, NewStorageError("record login", err)
	}
	u.LastLogin = &now

	token, err := s.tokens.Issue(auth.ActorFromUser(u), u.Email)
	if err != nil {
		return "", nil, NewStorageError("issue token", err)
	}
	return token, u, nil
}

// Bootstrap creates the first system admin for a fresh install.
func (s *userService) Bootstrap(ctx context.Context, req *CreateUserRequest) (*model.UserModel, error) {
	admins, err := s.userRepo.CountByRole(model.RoleSystemAdmin)
	if err != nil {
		return nil, NewStorageError("count admins", err)
	}
	if admins > 0 {
		return nil, NewInvalidStateError("", "a system administrator already exists")
	}
	req.Role = model.RoleSystemAdmin
	req.BranchID = nil
	u, err := s.buildUser(req)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(u); err != nil {
		return nil, NewStorageError("save user", err)
	}
	if s.auditLogSvc != nil {
		_ = s.auditLogSvc.RecordAction(ctx, u.ID, "create", "user", u.ID, map[string]bool{"bootstrap": true})
	}
	return u, nil
}

func (s *userService) buildUser(req *CreateUserRequest) (*model.UserModel, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid user: %v", err)
	}
	if !model.ValidRole(req.Role) {
		return nil, NewValidationError("invalid role %q", req.Role)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, NewValidationError("email %s is already in use", email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewStorageError("check email", err)
	}

	branchID, err := s.branchForRole(req.Role, req.BranchID)
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, NewValidationError("%v", err)
	}

	now := time.Now()
	u := &model.UserModel{
		ID:           uuid.New().String(),
		Email:        email,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         req.Role,
		BranchID:     branchID,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.Validate(); err != nil {
		return nil, NewValidationError("invalid user: %v", err)
	}
	return u, nil
}

// branchForRole enforces the role/branch invariant: branch users must name an
// existing branch, everyone else must not carry one.
func (s *userService) branchForRole(role string, branchID *string) (*string, error) {
	if role == model.RoleBranchUser {
		if branchID == nil || *branchID == "" {
			return nil, NewValidationError("a branch is required for branch users")
		}
		if _, err := s.branchRepo.FindByID(*branchID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NewNotFoundError("branch", *branchID)
			}
			return nil, NewStorageError("load branch", err)
		}
		return branchID, nil
	}
	if branchID != nil && *branchID != "" {
		return nil, NewValidationError("a branch can only be set for branch users")
	}
	return nil, nil
}
