package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/miftajuneidi2008/ansar-dfp/internal/service"
	"github.com/miftajuneidi2008/ansar-dfp/internal/utils"
)

// AssignmentController manages approver routing assignments.
type AssignmentController struct {
	assignmentService service.AssignmentService
}

// NewAssignmentController creates an assignment controller.
func NewAssignmentController(assignmentService service.AssignmentService) *AssignmentController {
	return &AssignmentController{
		assignmentService: assignmentService,
	}
}

// Create binds an approver to a district, branch or product. Admin only.
func (c *AssignmentController) Create(ctx *gin.Context) {
	actor, ok := CurrentActor(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}

	var req service.CreateAssignmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		_ = ctx.Error(WrapError(err, http.StatusBadRequest, "invalid request"))
		return
	}

	assignment, err := c.assignmentService.Create(ctx.Request.Context(), actor, &req)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, assignment)
}

// Delete removes a routing assignment. Admin only.
func (c *AssignmentController) Delete(ctx *gin.Context) {
	actor, ok := CurrentActor(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}

	id := ctx.Param("id")
	if err := utils.ValidateResourceID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid assignment ID", err.Error())
		return
	}

	if err := c.assignmentService.Delete(ctx.Request.Context(), actor, id); err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, nil)
}

// List returns all routing assignments. Admin only.
func (c *AssignmentController) List(ctx *gin.Context) {
	actor, ok := CurrentActor(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}

	assignments, err := c.assignmentService.List(actor)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, assignments)
}

// ListByApprover returns one approver's assignments. Admins may query any
// approver; approvers only themselves.
func (c *AssignmentController) ListByApprover(ctx *gin.Context) {
	actor, ok := CurrentActor(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}

	approverID := ctx.Param("id")
	if err := utils.ValidateResourceID(approverID); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid approver ID", err.Error())
		return
	}

	assignments, err := c.assignmentService.ListByApprover(actor, approverID)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, assignments)
}
