package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/miftajuneidi2008/ansar-dfp/internal/service"
	"github.com/miftajuneidi2008/ansar-dfp/internal/utils"
)

// Paging bounds for application listings.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ApplicationController handles the financing application lifecycle.
type ApplicationController struct {
	appService   service.ApplicationService
	statsService service.StatisticsService
}

// NewApplicationController creates an application controller.
func NewApplicationController(appService service.ApplicationService, statsService service.StatisticsService) *ApplicationController {
	return &ApplicationController{
		appService:   appService,
		statsService: statsService,
	}
}

func (c *ApplicationController) validateID(ctx *gin.Context, id string) bool {
	if err := utils.ValidateResourceID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid application ID", err.Error())
		return false
	}
	return true
}

// Submit creates and submits a financing application.
func (c *ApplicationController) Submit(ctx *gin.Context) {
	actor, ok := CurrentActor(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}

	var req service.SubmitApplicationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		_ = ctx.Error(WrapError(err, http.StatusBadRequest, "invalid request"))
		return
	}

	app, err := c.appService.Submit(ctx.Request.Context(), actor, &req)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, app)
}

// List returns the applications visible to the caller.
func (c *ApplicationController) List(ctx *gin.Context) {
	actor, ok := CurrentActor(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}

	var filter service.ListApplicationsRequest
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		_ = ctx.Error(WrapError(err, http.StatusBadRequest, "invalid query"))
		return
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = defaultPageSize
	} else if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}

	apps, total, err := c.appService.ListForActor(actor, &filter)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	totalPage := int((total + int64(filter.PageSize) - 1) / int64(filter.PageSize))
	Paginated(ctx, apps, PaginationInfo{
		Page:      filter.Page,
		PageSize:  filter.PageSize,
		Total:     total,
		TotalPage: totalPage,
	})
}

// Get returns one application if the caller may see it.
func (c *ApplicationController) Get(ctx *gin.Context) {
	actor, ok := CurrentActor(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}

	id := ctx.Param("id")
	if !c.validateID(ctx, id) {
		return
	}

	app, err := c.appService.Get(actor, id)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, app)
}

// History returns the status trail of an application, newest first.
func (c *ApplicationController) History(ctx *gin.Context) {
	actor, ok := CurrentActor(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}

	id := ctx.Param("id")
	if !c.validateID(ctx, id) {
		return
	}

	history, err := c.appService.History(actor, id)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, history)
}

// Approve records an approval decision.
func (c *ApplicationController) Approve(ctx *gin.Context) {
	c.decide(ctx, service.DecisionApprove)
}

// Reject records a rejection. A reason is mandatory.
func (c *ApplicationController) Reject(ctx *gin.Context) {
	c.decide(ctx, service.DecisionReject)
}

// Return sends the application back to the submitter. A reason is mandatory.
func (c *ApplicationController) Return(ctx *gin.Context) {
	c.decide(ctx, service.DecisionReturn)
}

func (c *ApplicationController) decide(ctx *gin.Context, action string) {
	actor, ok := CurrentActor(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}

	id := ctx.Param("id")
	if !c.validateID(ctx, id) {
		return
	}

	// Approvals may carry no body at all.
	var req service.DecisionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		_ = ctx.Error(WrapError(err, http.StatusBadRequest, "invalid request"))
		return
	}
	req.Action = action

	if err := c.appService.Decide(ctx.Request.Context(), actor, id, &req); err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, nil)
}

// Dashboard returns per-status application counts scoped to the caller.
func (c *ApplicationController) Dashboard(ctx *gin.Context) {
	actor, ok := CurrentActor(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}

	stats, err := c.statsService.Dashboard(actor)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, stats)
}
