package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/miftajuneidi2008/ansar-dfp/internal/auth"
	"github.com/miftajuneidi2008/ansar-dfp/internal/config"
	"github.com/miftajuneidi2008/ansar-dfp/internal/model"
	"github.com/miftajuneidi2008/ansar-dfp/internal/websocket"
)

// Controllers bundles everything SetupRoutes mounts.
type Controllers struct {
	Health        *HealthController
	Applications  *ApplicationController
	Notifications *NotificationController
	Directory     *DirectoryController
	Users         *UserController
	Assignments   *AssignmentController
}

// SetupRoutes builds the gin engine: middleware chain, infrastructure
// endpoints and the /api/v1 surface. hub may be nil to disable the
// realtime channel.
func SetupRoutes(ctrl Controllers, hub *websocket.Hub, tokens *auth.TokenManager, cfg *config.Config) *gin.Engine {
	router := gin.Default()

	router.Use(RequestIDMiddleware())
	router.Use(RequestLogMiddleware())
	// Sits below the request logger so the rendered status is what gets logged.
	router.Use(ErrorHandlerMiddleware())
	router.Use(SecurityHeadersMiddleware())
	if cfg != nil {
		router.Use(CORSMiddleware(cfg.CORS.AllowedOrigins))
		if cfg.RateLimit.Enabled {
			router.Use(RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	router.GET("/health", ctrl.Health.Check)
	router.GET("/metrics", MetricsHandler)

	if hub != nil && tokens != nil {
		router.GET("/ws/notifications", websocket.NotificationHandler(hub, tokens))
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/login", ctrl.Users.Login)

		authed := v1.Group("")
		authed.Use(AuthMiddleware(tokens))
		{
			authed.GET("/auth/me", ctrl.Users.Me)

			applications := authed.Group("/applications")
			{
				applications.POST("", ctrl.Applications.Submit)
				applications.GET("", ctrl.Applications.List)
				applications.GET("/statistics", ctrl.Applications.Dashboard)
				applications.GET("/:id", ctrl.Applications.Get)
				applications.GET("/:id/history", ctrl.Applications.History)
				applications.POST("/:id/approve", ctrl.Applications.Approve)
				applications.POST("/:id/reject", ctrl.Applications.Reject)
				applications.POST("/:id/return", ctrl.Applications.Return)
			}

			notifications := authed.Group("/notifications")
			{
				notifications.GET("", ctrl.Notifications.List)
				notifications.GET("/unread", ctrl.Notifications.UnreadCount)
				notifications.POST("/:id/read", ctrl.Notifications.MarkRead)
				notifications.POST("/read-all", ctrl.Notifications.MarkAllRead)
			}

			// Reference data is readable by every authenticated role.
			authed.GET("/districts", ctrl.Directory.ListDistricts)
			authed.GET("/branches", ctrl.Directory.ListBranches)
			authed.GET("/products", ctrl.Directory.ListProducts)

			admin := authed.Group("")
			admin.Use(RequireRole(model.RoleSystemAdmin))
			{
				admin.POST("/districts", ctrl.Directory.CreateDistrict)
				admin.PUT("/districts/:id", ctrl.Directory.UpdateDistrict)
				admin.DELETE("/districts/:id", ctrl.Directory.DeleteDistrict)

				admin.POST("/branches", ctrl.Directory.CreateBranch)
				admin.PUT("/branches/:id", ctrl.Directory.UpdateBranch)
				admin.DELETE("/branches/:id", ctrl.Directory.DeleteBranch)

				admin.POST("/products", ctrl.Directory.CreateProduct)
				admin.PUT("/products/:id", ctrl.Directory.UpdateProduct)
				admin.PATCH("/products/:id/active", ctrl.Directory.SetProductActive)

				admin.POST("/users", ctrl.Users.Create)
				admin.GET("/users", ctrl.Users.List)
				admin.PUT("/users/:id", ctrl.Users.Update)
				admin.PATCH("/users/:id/active", ctrl.Users.SetActive)

				admin.POST("/assignments", ctrl.Assignments.Create)
				admin.GET("/assignments", ctrl.Assignments.List)
				admin.DELETE("/assignments/:id", ctrl.Assignments.Delete)
			}

			// Approvers may inspect their own routing scope.
			authed.GET("/assignments/approver/:id", ctrl.Assignments.ListByApprover)
		}
	}

	// Unmatched routes answer JSON, not HTML.
	router.NoRoute(func(c *gin.Context) {
		Error(c, http.StatusNotFound, "route not found", "the requested route does not exist")
	})

	return router
}
