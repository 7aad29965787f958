package repository

import (
	"github.com/miftajuneidi2008/ansar-dfp/internal/model"
	"github.com/miftajuneidi2008/ansar-dfp/internal/utils"
	"gorm.io/gorm"
)

// ApplicationRepository persists financing applications.
type ApplicationRepository interface {
	Create(app *model.ApplicationModel) error
	Save(app *model.ApplicationModel) error
	FindByID(id string) (*model.ApplicationModel, error)
	FindByFilter(filter *ApplicationFilter) ([]*model.ApplicationModel, error)
	CountByFilter(filter *ApplicationFilter) (int64, error)
	CountByStatus() (map[string]int64, error)
	CountNonTerminalByBranch(branchID string) (int64, error)
}

// ApplicationFilter narrows application listing. Nil fields are ignored.
// PageSize <= 0 disables paging.
type ApplicationFilter struct {
	Status      *string
	BranchID    *string
	BranchIDs   []string
	ProductIDs  []string
	DistrictIDs []string
	SubmittedBy *string
	Search      *string
	Sort        string
	Order       string
	Page        int
	PageSize    int
}

type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates an application repository.
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

// Create inserts a new application.
func (r *applicationRepository) Create(app *model.ApplicationModel) error {
	return r.db.Create(app).Error
}

// Save persists an application.
func (r *applicationRepository) Save(app *model.ApplicationModel) error {
	return r.db.Save(app).Error
}

// FindByID finds an application by ID.
func (r *applicationRepository) FindByID(id string) (*model.ApplicationModel, error) {
	var app model.ApplicationModel
	if err := r.db.Where("id = ?", id).First(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// FindByFilter finds applications matching the filter, newest first.
func (r *applicationRepository) FindByFilter(filter *ApplicationFilter) ([]*model.ApplicationModel, error) {
	var apps []*model.ApplicationModel
	query := r.filtered(filter).Order(sortClause(filter))

	if filter != nil && filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	err := query.Find(&apps).Error
	return apps, err
}

// CountByFilter counts applications matching the filter, ignoring paging.
func (r *applicationRepository) CountByFilter(filter *ApplicationFilter) (int64, error) {
	var count int64
	err := r.filtered(filter).Count(&count).Error
	return count, err
}

func (r *applicationRepository) filtered(filter *ApplicationFilter) *gorm.DB {
	query := r.db.Model(&model.ApplicationModel{})

	if filter != nil {
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		if filter.BranchID != nil {
			query = query.Where("branch_id = ?", *filter.BranchID)
		}
		if filter.SubmittedBy != nil {
			query = query.Where("submitted_by = ?", *filter.SubmittedBy)
		}
		if filter.Search != nil && *filter.Search != "" {
			like := "%" + *filter.Search + "%"
			query = query.Where("application_number LIKE ? OR customer_name LIKE ?", like, like)
		}
		// Approver visibility: union over assigned districts, branches and
		// products. District scope is resolved through the branch table.
		if len(filter.BranchIDs) > 0 || len(filter.ProductIDs) > 0 || len(filter.DistrictIDs) > 0 {
			scoped := r.db.Where("1 = 0")
			if len(filter.BranchIDs) > 0 {
				scoped = scoped.Or("branch_id IN ?", filter.BranchIDs)
			}
			if len(filter.ProductIDs) > 0 {
				scoped = scoped.Or("product_id IN ?", filter.ProductIDs)
			}
			if len(filter.DistrictIDs) > 0 {
				scoped = scoped.Or("branch_id IN (?)",
					r.db.Model(&model.BranchModel{}).Select("id").Where("district_id IN ?", filter.DistrictIDs))
			}
			query = query.Where(scoped)
		}
	}

	return query
}

// sortableColumns whitelists the columns a client may sort on.
var sortableColumns = map[string]bool{
	"submitted_at":       true,
	"application_amount": true,
	"customer_name":      true,
	"application_number": true,
	"status":             true,
}

func sortClause(filter *ApplicationFilter) string {
	column := "submitted_at"
	order := "DESC"
	if filter != nil {
		field := utils.SanitizeSortField(filter.Sort)
		if sortableColumns[field] && utils.ValidateSortField(field) == nil {
			column = field
		}
		if filter.Order != "" {
			order = utils.SanitizeSortOrder(filter.Order)
		}
	}
	return column + " " + order
}

// CountByStatus returns the number of applications per status.
func (r *applicationRepository) CountByStatus() (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.Model(&model.ApplicationModel{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Count
	}
	return counts, nil
}

// CountNonTerminalByBranch counts applications of a branch that are still in
// flight. Used to guard branch deletion.
func (r *applicationRepository) CountNonTerminalByBranch(branchID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.ApplicationModel{}).
		Where("branch_id = ? AND status NOT IN ?", branchID, []string{model.StatusApproved, model.StatusRejected}).
		Count(&count).Error
	return count, err
}
