package repository

import (
	"time"

	"github.com/miftajuneidi2008/ansar-dfp/internal/model"
	"gorm.io/gorm"
)

// UserRepository persists portal principals.
type UserRepository interface {
	Save(u *model.UserModel) error
	FindByID(id string) (*model.UserModel, error)
	FindByEmail(email string) (*model.UserModel, error)
	FindAll() ([]*model.UserModel, error)
	FindActiveApprovers() ([]*model.UserModel, error)
	CountActiveByBranch(branchID string) (int64, error)
	CountByRole(role string) (int64, error)
	TouchLastLogin(id string, at time.Time) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Save persists a user.
func (r *userRepository) Save(u *model.UserModel) error {
	return r.db.Save(u).Error
}

// FindByID finds a user by ID.
func (r *userRepository) FindByID(id string) (*model.UserModel, error) {
	var u model.UserModel
	if err := r.db.Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByEmail finds a user by email.
func (r *userRepository) FindByEmail(email string) (*model.UserModel, error) {
	var u model.UserModel
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindAll returns all users ordered by full name.
func (r *userRepository) FindAll() ([]*model.UserModel, error) {
	var us []*model.UserModel
	err := r.db.Order("full_name ASC").Find(&us).Error
	return us, err
}

// FindActiveApprovers returns active head office approvers.
func (r *userRepository) FindActiveApprovers() ([]*model.UserModel, error) {
	var us []*model.UserModel
	err := r.db.Where("role = ? AND is_active = ?", model.RoleHeadOfficeApprover, true).
		Order("full_name ASC").Find(&us).Error
	return us, err
}

// CountActiveByBranch counts active users attached to a branch. Used to guard
// branch deletion.
func (r *userRepository) CountActiveByBranch(branchID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.UserModel{}).
		Where("branch_id = ? AND is_active = ?", branchID, true).
		Count(&count).Error
	return count, err
}

// CountByRole counts users holding a role.
func (r *userRepository) CountByRole(role string) (int64, error) {
	var count int64
	err := r.db.Model(&model.UserModel{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

// TouchLastLogin stamps a successful login.
func (r *userRepository) TouchLastLogin(id string, at time.Time) error {
	return r.db.Model(&model.UserModel{}).Where("id = ?", id).Update("last_login", at).Error
}
