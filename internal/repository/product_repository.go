package repository

import (
	"github.com/miftajuneidi2008/ansar-dfp/internal/model"
	"gorm.io/gorm"
)

// ProductRepository persists financing products.
type ProductRepository interface {
	Save(p *model.ProductModel) error
	FindByID(id string) (*model.ProductModel, error)
	FindByName(name string) (*model.ProductModel, error)
	FindAll() ([]*model.ProductModel, error)
	FindActive() ([]*model.ProductModel, error)
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a product repository.
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Save persists a product.
func (r *productRepository) Save(p *model.ProductModel) error {
	return r.db.Save(p).Error
}

// FindByID finds a product by ID.
func (r *productRepository) FindByID(id string) (*model.ProductModel, error) {
	var p model.ProductModel
	if err := r.db.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByName finds a product by its unique name.
func (r *productRepository) FindByName(name string) (*model.ProductModel, error) {
	var p model.ProductModel
	if err := r.db.Where("name = ?", name).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindAll returns all products ordered by name.
func (r *productRepository) FindAll() ([]*model.ProductModel, error) {
	var ps []*model.ProductModel
	err := r.db.Order("name ASC").Find(&ps).Error
	return ps, err
}

// FindActive returns active products only. This is the submission picker
// view: deactivated products stay on historical applications but are hidden
// here.
func (r *productRepository) FindActive() ([]*model.ProductModel, error) {
	var ps []*model.ProductModel
	err := r.db.Where("is_active = ?", true).Order("name ASC").Find(&ps).Error
	return ps, err
}
