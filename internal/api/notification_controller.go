package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/miftajuneidi2008/ansar-dfp/internal/service"
	"github.com/miftajuneidi2008/ansar-dfp/internal/utils"
)

// NotificationController serves the caller's notification inbox.
type NotificationController struct {
	notificationService service.NotificationService
}

// NewNotificationController creates a notification controller.
func NewNotificationController(notificationService service.NotificationService) *NotificationController {
	return &NotificationController{
		notificationService: notificationService,
	}
}

// List returns the caller's notifications, newest first.
func (c *NotificationController) List(ctx *gin.Context) {
	actor, ok := CurrentActor(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}

	notifications, err := c.notificationService.ListForUser(actor)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, notifications)
}

// UnreadCount returns the caller's unread notification count.
func (c *NotificationController) UnreadCount(ctx *gin.Context) {
	actor, ok := CurrentActor(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}

	count, err := c.notificationService.UnreadCount(actor)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, gin.H{"unread": count})
}

// MarkRead marks one of the caller's notifications as read.
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	actor, ok := CurrentActor(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}

	id := ctx.Param("id")
	if err := utils.ValidateResourceID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid notification ID", err.Error())
		return
	}

	if err := c.notificationService.MarkRead(actor, id); err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, nil)
}

// MarkAllRead marks every notification of the caller as read.
func (c *NotificationController) MarkAllRead(ctx *gin.Context) {
	actor, ok := CurrentActor(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}

	if err := c.notificationService.MarkAllRead(actor); err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, nil)
}
