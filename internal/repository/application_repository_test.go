package repository_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/miftajuneidi2008/ansar-dfp/internal/database"
	"github.com/miftajuneidi2008/ansar-dfp/internal/model"
	"github.com/miftajuneidi2008/ansar-dfp/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRepoDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// seedApplication inserts an application with sensible defaults, overridable
// through mutate.
func seedApplication(t *testing.T, db *gorm.DB, branchID, productID string, mutate func(*model.ApplicationModel)) *model.ApplicationModel {
	t.Helper()
	now := time.Now()
	app := &model.ApplicationModel{
		ID:                uuid.New().String(),
		ApplicationNumber: fmt.Sprintf("APP-TEST-%s", uuid.New().String()[:8]),
		CustomerName:      "Fatima Ali",
		PhoneNumber:       "0911000000",
		ProductID:         productID,
		BranchID:          branchID,
		Status:            model.StatusPending,
		ApplicationAmount: 100000,
		SubmittedBy:       uuid.New().String(),
		SubmittedAt:       now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if mutate != nil {
		mutate(app)
	}
	require.NoError(t, db.Create(app).Error)
	return app
}

func seedBranch(t *testing.T, db *gorm.DB, districtID, name string) *model.BranchModel {
	t.Helper()
	now := time.Now()
	b := &model.BranchModel{ID: uuid.New().String(), Name: name, DistrictID: districtID, IsActive: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.Create(b).Error)
	return b
}

func seedDistrict(t *testing.T, db *gorm.DB, name string) *model.DistrictModel {
	t.Helper()
	now := time.Now()
	d := &model.DistrictModel{ID: uuid.New().String(), Name: name, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.Create(d).Error)
	return d
}

func TestApplicationRepository_FilterByStatusAndBranch(t *testing.T) {
	db := setupRepoDB(t)
	repo := repository.NewApplicationRepository(db)
	d := seedDistrict(t, db, "D1")
	b1 := seedBranch(t, db, d.ID, "B1")
	b2 := seedBranch(t, db, d.ID, "B2")

	pending := seedApplication(t, db, b1.ID, "p1", nil)
	seedApplication(t, db, b1.ID, "p1", func(a *model.ApplicationModel) { a.Status = model.StatusApproved })
	seedApplication(t, db, b2.ID, "p1", nil)

	status := model.StatusPending
	got, err := repo.FindByFilter(&repository.ApplicationFilter{Status: &status, BranchID: &b1.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, pending.ID, got[0].ID)
}

func TestApplicationRepository_ScopeUnion(t *testing.T) {
	db := setupRepoDB(t)
	repo := repository.NewApplicationRepository(db)

	d1 := seedDistrict(t, db, "D1")
	d2 := seedDistrict(t, db, "D2")
	b1 := seedBranch(t, db, d1.ID, "B1")
	b2 := seedBranch(t, db, d2.ID, "B2")
	b3 := seedBranch(t, db, d2.ID, "B3")

	inDistrict := seedApplication(t, db, b1.ID, "p1", nil)
	byBranch := seedApplication(t, db, b2.ID, "p2", nil)
	byProduct := seedApplication(t, db, b3.ID, "p3", nil)
	seedApplication(t, db, b3.ID, "p4", nil) // matches nothing

	got, err := repo.FindByFilter(&repository.ApplicationFilter{
		DistrictIDs: []string{d1.ID},
		BranchIDs:   []string{b2.ID},
		ProductIDs:  []string{"p3"},
	})
	require.NoError(t, err)

	ids := make(map[string]bool, len(got))
	for _, a := range got {
		ids[a.ID] = true
	}
	assert.Len(t, got, 3)
	assert.True(t, ids[inDistrict.ID])
	assert.True(t, ids[byBranch.ID])
	assert.True(t, ids[byProduct.ID])
}

func TestApplicationRepository_EmptyScopeMatchesNothing(t *testing.T) {
	db := setupRepoDB(t)
	repo := repository.NewApplicationRepository(db)
	d := seedDistrict(t, db, "D1")
	b := seedBranch(t, db, d.ID, "B1")
	seedApplication(t, db, b.ID, "p1", nil)

	// An approver with a single assignment to an empty dimension set.
	got, err := repo.FindByFilter(&repository.ApplicationFilter{BranchIDs: []string{"no-such-branch"}})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestApplicationRepository_SearchMatchesNumberAndCustomer(t *testing.T) {
	db := setupRepoDB(t)
	repo := repository.NewApplicationRepository(db)
	d := seedDistrict(t, db, "D1")
	b := seedBranch(t, db, d.ID, "B1")

	target := seedApplication(t, db, b.ID, "p1", func(a *model.ApplicationModel) {
		a.ApplicationNumber = "APP-20250114-ABCDEF"
		a.CustomerName = "Hanan Mohammed"
	})
	seedApplication(t, db, b.ID, "p1", func(a *model.ApplicationModel) {
		a.CustomerName = "Someone Else"
	})

	for _, term := range []string{"ABCDEF", "Hanan"} {
		got, err := repo.FindByFilter(&repository.ApplicationFilter{Search: &term})
		require.NoError(t, err)
		require.Len(t, got, 1, "term %q", term)
		assert.Equal(t, target.ID, got[0].ID)
	}
}

func TestApplicationRepository_SortWhitelist(t *testing.T) {
	db := setupRepoDB(t)
	repo := repository.NewApplicationRepository(db)
	d := seedDistrict(t, db, "D1")
	b := seedBranch(t, db, d.ID, "B1")

	small := seedApplication(t, db, b.ID, "p1", func(a *model.ApplicationModel) { a.ApplicationAmount = 100 })
	large := seedApplication(t, db, b.ID, "p1", func(a *model.ApplicationModel) { a.ApplicationAmount = 900 })

	got, err := repo.FindByFilter(&repository.ApplicationFilter{Sort: "application_amount", Order: "asc"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, small.ID, got[0].ID)
	assert.Equal(t, large.ID, got[1].ID)

	// A hostile sort field falls back to the default ordering instead of
	// reaching the SQL layer.
	_, err = repo.FindByFilter(&repository.ApplicationFilter{Sort: "amount; DROP TABLE applications"})
	require.NoError(t, err)
	var count int64
	require.NoError(t, db.Model(&model.ApplicationModel{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestApplicationRepository_DefaultOrderNewestFirst(t *testing.T) {
	db := setupRepoDB(t)
	repo := repository.NewApplicationRepository(db)
	d := seedDistrict(t, db, "D1")
	b := seedBranch(t, db, d.ID, "B1")

	older := seedApplication(t, db, b.ID, "p1", func(a *model.ApplicationModel) {
		a.SubmittedAt = time.Now().Add(-time.Hour)
	})
	newer := seedApplication(t, db, b.ID, "p1", nil)

	got, err := repo.FindByFilter(nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, older.ID, got[1].ID)
}

func TestApplicationRepository_CountByStatus(t *testing.T) {
	db := setupRepoDB(t)
	repo := repository.NewApplicationRepository(db)
	d := seedDistrict(t, db, "D1")
	b := seedBranch(t, db, d.ID, "B1")

	seedApplication(t, db, b.ID, "p1", nil)
	seedApplication(t, db, b.ID, "p1", nil)
	seedApplication(t, db, b.ID, "p1", func(a *model.ApplicationModel) { a.Status = model.StatusRejected })

	counts, err := repo.CountByStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[model.StatusPending])
	assert.Equal(t, int64(1), counts[model.StatusRejected])
}

func TestApplicationRepository_CountNonTerminalByBranch(t *testing.T) {
	db := setupRepoDB(t)
	repo := repository.NewApplicationRepository(db)
	d := seedDistrict(t, db, "D1")
	b := seedBranch(t, db, d.ID, "B1")

	seedApplication(t, db, b.ID, "p1", nil)
	seedApplication(t, db, b.ID, "p1", func(a *model.ApplicationModel) { a.Status = model.StatusApproved })
	seedApplication(t, db, b.ID, "p1", func(a *model.ApplicationModel) { a.Status = model.StatusRejected })
	seedApplication(t, db, b.ID, "p1", func(a *model.ApplicationModel) { a.Status = model.StatusReturned })

	count, err := repo.CountNonTerminalByBranch(b.ID)
	require.NoError(t, err)
	// Pending and returned are still in flight.
	assert.Equal(t, int64(2), count)
}

func TestApplicationRepository_PaginationAndCount(t *testing.T) {
	db := setupRepoDB(t)
	repo := repository.NewApplicationRepository(db)
	d := seedDistrict(t, db, "D1")
	b := seedBranch(t, db, d.ID, "B1")

	base := time.Now()
	for i := 0; i < 5; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		seedApplication(t, db, b.ID, "p1", func(a *model.ApplicationModel) { a.SubmittedAt = at })
	}

	total, err := repo.CountByFilter(&repository.ApplicationFilter{BranchID: &b.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)

	// Count ignores paging, Find honors it.
	filter := &repository.ApplicationFilter{BranchID: &b.ID, Page: 2, PageSize: 2}
	total, err = repo.CountByFilter(filter)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)

	got, err := repo.FindByFilter(filter)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Page past the end is empty, not an error.
	got, err = repo.FindByFilter(&repository.ApplicationFilter{BranchID: &b.ID, Page: 4, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, got)

	// PageSize 0 returns everything.
	got, err = repo.FindByFilter(&repository.ApplicationFilter{BranchID: &b.ID})
	require.NoError(t, err)
	assert.Len(t, got, 5)
}
