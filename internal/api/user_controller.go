package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/miftajuneidi2008/ansar-dfp/internal/service"
	"github.com/miftajuneidi2008/ansar-dfp/internal/utils"
)

// UserController handles authentication and user administration.
type UserController struct {
	userService service.UserService
}

// NewUserController creates a user controller.
func NewUserController(userService service.UserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

// LoginRequest carries the credentials for a login attempt.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates a user and returns a bearer token.
func (c *UserController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		_ = ctx.Error(WrapError(err, http.StatusBadRequest, "invalid request"))
		return
	}

	token, user, err := c.userService.Login(req.Email, req.Password)
	if err != nil {
		// A single message for every credential failure keeps account
		// enumeration off the table.
		if service.IsValidation(err) || service.IsAuthorization(err) || service.IsNotFound(err) {
			Error(ctx, http.StatusUnauthorized, "unauthorized", "invalid credentials")
			return
		}
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, gin.H{
		"token": token,
		"user":  user,
	})
}

// Me returns the authenticated user's profile.
func (c *UserController) Me(ctx *gin.Context) {
	actor, ok := CurrentActor(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}

	user, err := c.userService.Get(actor.ID)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, user)
}

// Create creates a user. Admin only.
func (c *UserController) Create(ctx *gin.Context) {
	actor, ok := CurrentActor(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}

	var req service.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		_ = ctx.Error(WrapError(err, http.StatusBadRequest, "invalid request"))
		return
	}

	user, err := c.userService.Create(ctx.Request.Context(), actor, &req)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, user)
}

// Update edits a user. Admin only.
func (c *UserController) Update(ctx *gin.Context) {
	actor, ok := CurrentActor(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}

	id := ctx.Param("id")
	if err := utils.ValidateResourceID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid user ID", err.Error())
		return
	}

	var req service.UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		_ = ctx.Error(WrapError(err, http.StatusBadRequest, "invalid request"))
		return
	}

	user, err := c.userService.Update(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, user)
}

// SetActive activates or deactivates a user. Admin only.
func (c *UserController) SetActive(ctx *gin.Context) {
	actor, ok := CurrentActor(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}

	id := ctx.Param("id")
	if err := utils.ValidateResourceID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid user ID", err.Error())
		return
	}

	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		_ = ctx.Error(WrapError(err, http.StatusBadRequest, "invalid request"))
		return
	}

	user, err := c.userService.SetActive(ctx.Request.Context(), actor, id, *req.Active)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, user)
}

// List returns all users. Admin only.
func (c *UserController) List(ctx *gin.Context) {
	actor, ok := CurrentActor(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}

	users, err := c.userService.List(actor)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, users)
}
