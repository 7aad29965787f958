package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/miftajuneidi2008/ansar-dfp/internal/auth"
	"github.com/miftajuneidi2008/ansar-dfp/internal/model"
	"github.com/miftajuneidi2008/ansar-dfp/internal/repository"
	"gorm.io/gorm"
)

// DirectoryService is the admin CRUD surface for reference data: districts,
// branches and products.
type DirectoryService interface {
	CreateDistrict(ctx context.Context, actor auth.Actor, req *DistrictRequest) (*model.DistrictModel, error)
	UpdateDistrict(ctx context.Context, actor auth.Actor, id string, req *DistrictRequest) (*model.DistrictModel, error)
	DeleteDistrict(ctx context.Context, actor auth.Actor, id string) error
	ListDistricts() ([]*model.DistrictModel, error)

	CreateBranch(ctx context.Context, actor auth.Actor, req *BranchRequest) (*model.BranchModel, error)
	UpdateBranch(ctx context.Context, actor auth.Actor, id string, req *BranchRequest) (*model.BranchModel, error)
	DeleteBranch(ctx context.Context, actor auth.Actor, id string) error
	ListBranches(districtID *string) ([]*model.BranchModel, error)

	CreateProduct(ctx context.Context, actor auth.Actor, req *ProductRequest) (*model.ProductModel, error)
	UpdateProduct(ctx context.Context, actor auth.Actor, id string, req *ProductRequest) (*model.ProductModel, error)
	SetProductActive(ctx context.Context, actor auth.Actor, id string, active bool) (*model.ProductModel, error)
	ListProducts(activeOnly bool) ([]*model.ProductModel, error)

	GetDistrictForBranch(branchID string) (*model.DistrictModel, error)
}

// DistrictRequest creates or updates a district.
type DistrictRequest struct {
	Name string  `json:"name" binding:"required"`
	Code *string `json:"code"`
}

// BranchRequest creates or updates a branch.
type BranchRequest struct {
	Name       string  `json:"name" binding:"required"`
	Code       *string `json:"code"`
	DistrictID string  `json:"district_id" binding:"required"`
	Address    *string `json:"address"`
	Phone      *string `json:"phone"`
	IsActive   *bool   `json:"is_active"`
}

// ProductRequest creates or updates a product.
type ProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	ProductCode *string `json:"product_code"`
}

type directoryService struct {
	districtRepo repository.DistrictRepository
	branchRepo   repository.BranchRepository
	productRepo  repository.ProductRepository
	userRepo     repository.UserRepository
	appRepo      repository.ApplicationRepository
	auditLogSvc  AuditLogService
}

// NewDirectoryService creates a directory service.
func NewDirectoryService(
	districtRepo repository.DistrictRepository,
	branchRepo repository.BranchRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	appRepo repository.ApplicationRepository,
	auditLogSvc AuditLogService,
) DirectoryService {
	return &directoryService{
		districtRepo: districtRepo,
		branchRepo:   branchRepo,
		productRepo:  productRepo,
		userRepo:     userRepo,
		appRepo:      appRepo,
		auditLogSvc:  auditLogSvc,
	}
}

func (s *directoryService) requireAdmin(actor auth.Actor) error {
	if !auth.PermissionsFor(actor.Role).CanManageOrganization {
		return NewAuthorizationError("only system administrators can manage reference data")
	}
	return nil
}

// CreateDistrict adds a district with a unique non-empty name.
func (s *directoryService) CreateDistrict(ctx context.Context, actor auth.Actor, req *DistrictRequest) (*model.DistrictModel, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, NewValidationError("district name is required")
	}
	if _, err := s.districtRepo.FindByName(name); err == nil {
		return nil, NewValidationError("district %q already exists", name)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewStorageError("check district name", err)
	}

	now := time.Now()
	d := &model.DistrictModel{
		ID:        uuid.New().String(),
		Name:      name,
		Code:      normalizeCode(req.Code),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.districtRepo.Save(d); err != nil {
		return nil, NewStorageError("save district", err)
	}
	s.audit(ctx, actor, "create", "district", d.ID, map[string]string{"name": name})
	return d, nil
}

// UpdateDistrict renames or recodes a district.
func (s *directoryService) UpdateDistrict(ctx context.Context, actor auth.Actor, id string, req *DistrictRequest) (*model.DistrictModel, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	d, err := s.districtRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("district", id)
		}
		return nil, NewStorageError("load district", err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, NewValidationError("district name is required")
	}
	if other, err := s.districtRepo.FindByName(name); err == nil && other.ID != id {
		return nil, NewValidationError("district %q already exists", name)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewStorageError("check district name", err)
	}

	d.Name = name
	d.Code = normalizeCode(req.Code)
	d.UpdatedAt = time.Now()
	if err := s.districtRepo.Save(d); err != nil {
		return nil, NewStorageError("save district", err)
	}
	s.audit(ctx, actor, "update", "district", d.ID, map[string]string{"name": name})
	return d, nil
}

// DeleteDistrict removes a district that no branch references.
func (s *directoryService) DeleteDistrict(ctx context.Context, actor auth.Actor, id string) error {
	if err := s.requireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.districtRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError("district", id)
		}
		return NewStorageError("load district", err)
	}
	count, err := s.branchRepo.CountByDistrict(id)
	if err != nil {
		return NewStorageError("count branches", err)
	}
	if count > 0 {
		return NewValidationError("district still has %d branches", count)
	}
	if err := s.districtRepo.Delete(id); err != nil {
		return NewStorageError("delete district", err)
	}
	s.audit(ctx, actor, "delete", "district", id, nil)
	return nil
}

// ListDistricts returns all districts.
func (s *directoryService) ListDistricts() ([]*model.DistrictModel, error) {
	ds, err := s.districtRepo.FindAll()
	if err != nil {
		return nil, NewStorageError("list districts", err)
	}
	return ds, nil
}

// CreateBranch adds a branch, unique by name within its district.
func (s *directoryService) CreateBranch(ctx context.Context, actor auth.Actor, req *BranchRequest) (*model.BranchModel, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, NewValidationError("branch name is required")
	}
	if _, err := s.districtRepo.FindByID(req.DistrictID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("district", req.DistrictID)
		}
		return nil, NewStorageError("load district", err)
	}
	if _, err := s.branchRepo.FindByDistrictAndName(req.DistrictID, name); err == nil {
		return nil, NewValidationError("branch %q already exists in this district", name)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewStorageError("check branch name", err)
	}

	now := time.Now()
	b := &model.BranchModel{
		ID:         uuid.New().String(),
		Name:       name,
		Code:       normalizeCode(req.Code),
		DistrictID: req.DistrictID,
		Address:    req.Address,
		Phone:      req.Phone,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}
	if err := s.branchRepo.Save(b); err != nil {
		return nil, NewStorageError("save branch", err)
	}
	s.audit(ctx, actor, "create", "branch", b.ID, map[string]string{"name": name, "district_id": req.DistrictID})
	return b, nil
}

// UpdateBranch edits a branch.
func (s *directoryService) UpdateBranch(ctx context.Context, actor auth.Actor, id string, req *BranchRequest) (*model.BranchModel, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	b, err := s.branchRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("branch", id)
		}
		return nil, NewStorageError("load branch", err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, NewValidationError("branch name is required")
	}
	if other, err := s.branchRepo.FindByDistrictAndName(req.DistrictID, name); err == nil && other.ID != id {
		return nil, NewValidationError("branch %q already exists in this district", name)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewStorageError("check branch name", err)
	}

	b.Name = name
	b.Code = normalizeCode(req.Code)
	b.DistrictID = req.DistrictID
	b.Address = req.Address
	b.Phone = req.Phone
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}
	b.UpdatedAt = time.Now()
	if err := s.branchRepo.Save(b); err != nil {
		return nil, NewStorageError("save branch", err)
	}
	s.audit(ctx, actor, "update", "branch", b.ID, map[string]string{"name": name})
	return b, nil
}

// DeleteBranch removes a branch that no active user and no in-flight
// application references.
func (s *directoryService) DeleteBranch(ctx context.Context, actor auth.Actor, id string) error {
	if err := s.requireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.branchRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError("branch", id)
		}
		return NewStorageError("load branch", err)
	}
	users, err := s.userRepo.CountActiveByBranch(id)
	if err != nil {
		return NewStorageError("count branch users", err)
	}
	if users > 0 {
		return NewValidationError("branch still has %d active users", users)
	}
	apps, err := s.appRepo.CountNonTerminalByBranch(id)
	if err != nil {
		return NewStorageError("count branch applications", err)
	}
	if apps > 0 {
		return NewValidationError("branch still has %d applications in flight", apps)
	}
	if err := s.branchRepo.Delete(id); err != nil {
		return NewStorageError("delete branch", err)
	}
	s.audit(ctx, actor, "delete", "branch", id, nil)
	return nil
}

// ListBranches returns branches, optionally limited to one district.
func (s *directoryService) ListBranches(districtID *string) ([]*model.BranchModel, error) {
	var (
		bs  []*model.BranchModel
		err error
	)
	if districtID != nil && *districtID != "" {
		bs, err = s.branchRepo.FindByDistrict(*districtID)
	} else {
		bs, err = s.branchRepo.FindAll()
	}
	if err != nil {
		return nil, NewStorageError("list branches", err)
	}
	return bs, nil
}

// CreateProduct adds a product with a unique non-empty name.
func (s *directoryService) CreateProduct(ctx context.Context, actor auth.Actor, req *ProductRequest) (*model.ProductModel, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, NewValidationError("product name is required")
	}
	if _, err := s.productRepo.FindByName(name); err == nil {
		return nil, NewValidationError("product %q already exists", name)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewStorageError("check product name", err)
	}

	now := time.Now()
	p := &model.ProductModel{
		ID:          uuid.New().String(),
		Name:        name,
		Description: req.Description,
		ProductCode: normalizeCode(req.ProductCode),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.productRepo.Save(p); err != nil {
		return nil, NewStorageError("save product", err)
	}
	s.audit(ctx, actor, "create", "product", p.ID, map[string]string{"name": name})
	return p, nil
}

// UpdateProduct edits a product.
func (s *directoryService) UpdateProduct(ctx context.Context, actor auth.Actor, id string, req *ProductRequest) (*model.ProductModel, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	p, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("product", id)
		}
		return nil, NewStorageError("load product", err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, NewValidationError("product name is required")
	}
	if other, err := s.productRepo.FindByName(name); err == nil && other.ID != id {
		return nil, NewValidationError("product %q already exists", name)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewStorageError("check product name", err)
	}

	p.Name = name
	p.Description = req.Description
	p.ProductCode = normalizeCode(req.ProductCode)
	p.UpdatedAt = time.Now()
	if err := s.productRepo.Save(p); err != nil {
		return nil, NewStorageError("save product", err)
	}
	s.audit(ctx, actor, "update", "product", p.ID, map[string]string{"name": name})
	return p, nil
}

// SetProductActive soft-deletes or restores a product. Historical
// applications keep their reference either way.
func (s *directoryService) SetProductActive(ctx context.Context, actor auth.Actor, id string, active bool) (*model.ProductModel, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	p, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("product", id)
		}
		return nil, NewStorageError("load product", err)
	}
	p.IsActive = active
	p.UpdatedAt = time.Now()
	if err := s.productRepo.Save(p); err != nil {
		return nil, NewStorageError("save product", err)
	}
	action := "deactivate"
	if active {
		action = "activate"
	}
	s.audit(ctx, actor, action, "product", p.ID, nil)
	return p, nil
}

// ListProducts returns products; activeOnly yields the submission picker view.
func (s *directoryService) ListProducts(activeOnly bool) ([]*model.ProductModel, error) {
	var (
		ps  []*model.ProductModel
		err error
	)
	if activeOnly {
		ps, err = s.productRepo.FindActive()
	} else {
		ps, err = s.productRepo.FindAll()
	}
	if err != nil {
		return nil, NewStorageError("list products", err)
	}
	return ps, nil
}

// GetDistrictForBranch resolves the owning district of a branch.
func (s *directoryService) GetDistrictForBranch(branchID string) (*model.DistrictModel, error) {
	b, err := s.branchRepo.FindByID(branchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("branch", branchID)
		}
		return nil, NewStorageError("load branch", err)
	}
	d, err := s.districtRepo.FindByID(b.DistrictID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("district", b.DistrictID)
		}
		return nil, NewStorageError("load district", err)
	}
	return d, nil
}

func (s *directoryService) audit(ctx context.Context, actor auth.Actor, action, resourceType, resourceID string, details interface{}) {
	if s.auditLogSvc != nil {
		_ = s.auditLogSvc.RecordAction(ctx, actor.ID, action, resourceType, resourceID, details)
	}
}

func normalizeCode(code *string) *string {
	if code == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*code)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
