package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/miftajuneidi2008/ansar-dfp/internal/service"
	"github.com/miftajuneidi2008/ansar-dfp/internal/utils"
)

// DirectoryController manages the organizational reference data: districts,
// branches and financing products.
type DirectoryController struct {
	directoryService service.DirectoryService
}

// NewDirectoryController creates a directory controller.
func NewDirectoryController(directoryService service.DirectoryService) *DirectoryController {
	return &DirectoryController{
		directoryService: directoryService,
	}
}

func (c *DirectoryController) validateID(ctx *gin.Context, id string) bool {
	if err := utils.ValidateResourceID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid ID", err.Error())
		return false
	}
	return true
}

// CreateDistrict creates a district.
func (c *DirectoryController) CreateDistrict(ctx *gin.Context) {
	actor, ok := CurrentActor(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}

	var req service.DistrictRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		_ = ctx.Error(WrapError(err, http.StatusBadRequest, "invalid request"))
		return
	}

	district, err := c.directoryService.CreateDistrict(ctx.Request.Context(), actor, &req)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, district)
}

// UpdateDistrict renames a district.
func (c *DirectoryController) UpdateDistrict(ctx *gin.Context) {
	actor, ok := CurrentActor(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}

	id := ctx.Param("id")
	if !c.validateID(ctx, id) {
		return
	}

	var req service.DistrictRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		_ = ctx.Error(WrapError(err, http.StatusBadRequest, "invalid request"))
		return
	}

	district, err := c.directoryService.UpdateDistrict(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, district)
}

// DeleteDistrict removes an empty district.
func (c *DirectoryController) DeleteDistrict(ctx *gin.Context) {
	actor, ok := CurrentActor(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}

	id := ctx.Param("id")
	if !c.validateID(ctx, id) {
		return
	}

	if err := c.directoryService.DeleteDistrict(ctx.Request.Context(), actor, id); err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, nil)
}

// ListDistricts lists all districts.
func (c *DirectoryController) ListDistricts(ctx *gin.Context) {
	districts, err := c.directoryService.ListDistricts()
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, districts)
}

// CreateBranch creates a branch inside a district.
func (c *DirectoryController) CreateBranch(ctx *gin.Context) {
	actor, ok := CurrentActor(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}

	var req service.BranchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		_ = ctx.Error(WrapError(err, http.StatusBadRequest, "invalid request"))
		return
	}

	branch, err := c.directoryService.CreateBranch(ctx.Request.Context(), actor, &req)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, branch)
}

// UpdateBranch edits a branch.
func (c *DirectoryController) UpdateBranch(ctx *gin.Context) {
	actor, ok := CurrentActor(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}

	id := ctx.Param("id")
	if !c.validateID(ctx, id) {
		return
	}

	var req service.BranchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		_ = ctx.Error(WrapError(err, http.StatusBadRequest, "invalid request"))
		return
	}

	branch, err := c.directoryService.UpdateBranch(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, branch)
}

// DeleteBranch removes a branch with no active users or open applications.
func (c *DirectoryController) DeleteBranch(ctx *gin.Context) {
	actor, ok := CurrentActor(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}

	id := ctx.Param("id")
	if !c.validateID(ctx, id) {
		return
	}

	if err := c.directoryService.DeleteBranch(ctx.Request.Context(), actor, id); err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, nil)
}

// ListBranches lists branches, optionally narrowed to one district.
func (c *DirectoryController) ListBranches(ctx *gin.Context) {
	var districtID *string
	if v := ctx.Query("district_id"); v != "" {
		districtID = &v
	}

	branches, err := c.directoryService.ListBranches(districtID)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, branches)
}

// CreateProduct creates a financing product.
func (c *DirectoryController) CreateProduct(ctx *gin.Context) {
	actor, ok := CurrentActor(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}

	var req service.ProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		_ = ctx.Error(WrapError(err, http.StatusBadRequest, "invalid request"))
		return
	}

	product, err := c.directoryService.CreateProduct(ctx.Request.Context(), actor, &req)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, product)
}

// UpdateProduct edits a financing product.
func (c *DirectoryController) UpdateProduct(ctx *gin.Context) {
	actor, ok := CurrentActor(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}

	id := ctx.Param("id")
	if !c.validateID(ctx, id) {
		return
	}

	var req service.ProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		_ = ctx.Error(WrapError(err, http.StatusBadRequest, "invalid request"))
		return
	}

	product, err := c.directoryService.UpdateProduct(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, product)
}

// SetProductActive toggles a product's availability for new applications.
func (c *DirectoryController) SetProductActive(ctx *gin.Context) {
	actor, ok := CurrentActor(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}

	id := ctx.Param("id")
	if !c.validateID(ctx, id) {
		return
	}

	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		_ = ctx.Error(WrapError(err, http.StatusBadRequest, "invalid request"))
		return
	}

	product, err := c.directoryService.SetProductActive(ctx.Request.Context(), actor, id, *req.Active)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, product)
}

// ListProducts lists products. active_only=true hides retired products.
func (c *DirectoryController) ListProducts(ctx *gin.Context) {
	activeOnly, _ := strconv.ParseBool(ctx.DefaultQuery("active_only", "false"))

	products, err := c.directoryService.ListProducts(activeOnly)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, products)
}
