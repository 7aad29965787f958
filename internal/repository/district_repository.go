package repository

import (
	"github.com/miftajuneidi2008/ansar-dfp/internal/model"
	"gorm.io/gorm"
)

// DistrictRepository persists districts.
type DistrictRepository interface {
	Save(d *model.DistrictModel) error
	Delete(id string) error
	FindByID(id string) (*model.DistrictModel, error)
	FindByName(name string) (*model.DistrictModel, error)
	FindAll() ([]*model.DistrictModel, error)
}

type districtRepository struct {
	db *gorm.DB
}

// NewDistrictRepository creates a district repository.
func NewDistrictRepository(db *gorm.DB) DistrictRepository {
	return &districtRepository{db: db}
}

// Save persists a district.
func (r *districtRepository) Save(d *model.DistrictModel) error {
	return r.db.Save(d).Error
}

// Delete removes a district.
func (r *districtRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.DistrictModel{}).Error
}

// FindByID finds a district by ID.
func (r *districtRepository) FindByID(id string) (*model.DistrictModel, error) {
	var d model.DistrictModel
	if err := r.db.Where("id = ?", id).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// FindByName finds a district by its unique name.
func (r *districtRepository) FindByName(name string) (*model.DistrictModel, error) {
	var d model.DistrictModel
	if err := r.db.Where("name = ?", name).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// FindAll returns all districts ordered by name.
func (r *districtRepository) FindAll() ([]*model.DistrictModel, error) {
	var ds []*model.DistrictModel
	err := r.db.Order("name ASC").Find(&ds).Error
	return ds, err
}
