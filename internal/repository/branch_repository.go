package repository

import (
	"github.com/miftajuneidi2008/ansar-dfp/internal/model"
	"gorm.io/gorm"
)

// BranchRepository persists branches.
type BranchRepository interface {
	Save(b *model.BranchModel) error
	Delete(id string) error
	FindByID(id string) (*model.BranchModel, error)
	FindAll() ([]*model.BranchModel, error)
	FindByDistrict(districtID string) ([]*model.BranchModel, error)
	FindByDistrictAndName(districtID, name string) (*model.BranchModel, error)
	CountByDistrict(districtID string) (int64, error)
}

type branchRepository struct {
	db *gorm.DB
}

// NewBranchRepository creates a branch repository.
func NewBranchRepository(db *gorm.DB) BranchRepository {
	return &branchRepository{db: db}
}

// Save persists a branch.
func (r *branchRepository) Save(b *model.BranchModel) error {
	return r.db.Save(b).Error
}

// Delete removes a branch.
func (r *branchRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.BranchModel{}).Error
}

// FindByID finds a branch by ID.
func (r *branchRepository) FindByID(id string) (*model.BranchModel, error) {
	var b model.BranchModel
	if err := r.db.Where("id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// FindAll returns all branches ordered by name.
func (r *branchRepository) FindAll() ([]*model.BranchModel, error) {
	var bs []*model.BranchModel
	err := r.db.Order("name ASC").Find(&bs).Error
	return bs, err
}

// FindByDistrict returns the branches of one district.
func (r *branchRepository) FindByDistrict(districtID string) ([]*model.BranchModel, error) {
	var bs []*model.BranchModel
	err := r.db.Where("district_id = ?", districtID).Order("name ASC").Find(&bs).Error
	return bs, err
}

// FindByDistrictAndName finds a branch by name inside a district.
func (r *branchRepository) FindByDistrictAndName(districtID, name string) (*model.BranchModel, error) {
	var b model.BranchModel
	if err := r.db.Where("district_id = ? AND name = ?", districtID, name).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// CountByDistrict counts the branches referencing a district.
func (r *branchRepository) CountByDistrict(districtID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.BranchModel{}).Where("district_id = ?", districtID).Count(&count).Error
	return count, err
}
