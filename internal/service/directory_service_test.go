package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/miftajuneidi2008/ansar-dfp/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryService_DistrictCRUD(t *testing.T) {
	f := setupServiceTest(t)
	admin := f.actor(f.admin)
	ctx := context.Background()

	d, err := f.directory.CreateDistrict(ctx, admin, &service.DistrictRequest{Name: "  West District  "})
	require.NoError(t, err)
	assert.Equal(t, "West District", d.Name)

	// Duplicate name.
	_, err = f.directory.CreateDistrict(ctx, admin, &service.DistrictRequest{Name: "West District"})
	assert.True(t, service.IsValidation(err), "got %v", err)

	// Blank name.
	_, err = f.directory.CreateDistrict(ctx, admin, &service.DistrictRequest{Name: "   "})
	assert.True(t, service.IsValidation(err), "got %v", err)

	// Non-admin.
	_, err = f.directory.CreateDistrict(ctx, f.actor(f.branchUser), &service.DistrictRequest{Name: "East"})
	assert.True(t, service.IsAuthorization(err), "got %v", err)

	updated, err := f.directory.UpdateDistrict(ctx, admin, d.ID, &service.DistrictRequest{Name: "West Zone"})
	require.NoError(t, err)
	assert.Equal(t, "West Zone", updated.Name)

	ds, err := f.directory.ListDistricts()
	require.NoError(t, err)
	assert.Len(t, ds, 2)

	require.NoError(t, f.directory.DeleteDistrict(ctx, admin, d.ID))
	err = f.directory.DeleteDistrict(ctx, admin, d.ID)
	assert.True(t, service.IsNotFound(err), "got %v", err)
}

func TestDirectoryService_DeleteDistrictBlockedByBranches(t *testing.T) {
	f := setupServiceTest(t)

	err := f.directory.DeleteDistrict(context.Background(), f.actor(f.admin), f.district.ID)
	assert.True(t, service.IsValidation(err), "got %v", err)
}

func TestDirectoryService_BranchCRUD(t *testing.T) {
	f := setupServiceTest(t)
	admin := f.actor(f.admin)
	ctx := context.Background()

	b, err := f.directory.CreateBranch(ctx, admin, &service.BranchRequest{
		Name: "South Branch", DistrictID: f.district.ID,
	})
	require.NoError(t, err)
	assert.True(t, b.IsActive)

	// Same name within the district.
	_, err = f.directory.CreateBranch(ctx, admin, &service.BranchRequest{
		Name: "South Branch", DistrictID: f.district.ID,
	})
	assert.True(t, service.IsValidation(err), "got %v", err)

	// Unknown district.
	_, err = f.directory.CreateBranch(ctx, admin, &service.BranchRequest{
		Name: "Orphan Branch", DistrictID: uuid.New().String(),
	})
	assert.True(t, service.IsNotFound(err), "got %v", err)

	// District-scoped listing.
	bs, err := f.directory.ListBranches(&f.district.ID)
	require.NoError(t, err)
	assert.Len(t, bs, 2)

	// Fresh branch with no users or applications deletes cleanly.
	require.NoError(t, f.directory.DeleteBranch(ctx, admin, b.ID))
}

func TestDirectoryService_DeleteBranchBlockedByUsers(t *testing.T) {
	f := setupServiceTest(t)

	// The fixture branch has an active user.
	err := f.directory.DeleteBranch(context.Background(), f.actor(f.admin), f.branch.ID)
	assert.True(t, service.IsValidation(err), "got %v", err)
}

func TestDirectoryService_DeleteBranchBlockedByApplications(t *testing.T) {
	f := setupServiceTest(t)
	admin := f.actor(f.admin)
	ctx := context.Background()

	f.submit(t)

	// Deactivate the submitter so only the pending application blocks.
	_, err := f.users.SetActive(ctx, admin, f.branchUser.ID, false)
	require.NoError(t, err)

	err = f.directory.DeleteBranch(ctx, admin, f.branch.ID)
	assert.True(t, service.IsValidation(err), "got %v", err)
	assert.Contains(t, err.Error(), "in flight")
}

func TestDirectoryService_ProductLifecycle(t *testing.T) {
	f := setupServiceTest(t)
	admin := f.actor(f.admin)
	ctx := context.Background()

	p, err := f.directory.CreateProduct(ctx, admin, &service.ProductRequest{Name: "Qard Hasan"})
	require.NoError(t, err)
	assert.True(t, p.IsActive)

	_, err = f.directory.CreateProduct(ctx, admin, &service.ProductRequest{Name: "Qard Hasan"})
	assert.True(t, service.IsValidation(err), "got %v", err)

	// Retire and confirm the submission picker hides it.
	_, err = f.directory.SetProductActive(ctx, admin, p.ID, false)
	require.NoError(t, err)

	active, err := f.directory.ListProducts(true)
	require.NoError(t, err)
	for _, got := range active {
		assert.NotEqual(t, p.ID, got.ID)
	}

	all, err := f.directory.ListProducts(false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Restore.
	restored, err := f.directory.SetProductActive(ctx, admin, p.ID, true)
	require.NoError(t, err)
	assert.True(t, restored.IsActive)
}

func TestDirectoryService_GetDistrictForBranch(t *testing.T) {
	f := setupServiceTest(t)

	d, err := f.directory.GetDistrictForBranch(f.branch.ID)
	require.NoError(t, err)
	assert.Equal(t, f.district.ID, d.ID)

	_, err = f.directory.GetDistrictForBranch(uuid.New().String())
	assert.True(t, service.IsNotFound(err), "got %v", err)
}
