package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/miftajuneidi2008/ansar-dfp/internal/websocket"
	"gorm.io/gorm"
)

// HealthController reports service health for probes.
type HealthController struct {
	db  *gorm.DB
	hub *websocket.Hub
}

// NewHealthController creates a health controller. hub may be nil when the
// realtime channel is disabled.
func NewHealthController(db *gorm.DB, hub *websocket.Hub) *HealthController {
	return &HealthController{
		db:  db,
		hub: hub,
	}
}

// Check runs the health probes and reports per-component status.
func (c *HealthController) Check(ctx *gin.Context) {
	status := "healthy"
	checks := make(map[string]string)

	if c.db != nil {
		if err := c.checkDatabase(ctx.Request.Context()); err != nil {
			status = "unhealthy"
			checks["database"] = "unhealthy: " + err.Error()
		} else {
			checks["database"] = "healthy"
		}
	} else {
		checks["database"] = "not configured"
	}

	if c.hub != nil {
		checks["websocket"] = "healthy"
	} else {
		checks["websocket"] = "not configured"
	}

	httpStatus := http.StatusOK
	if status == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	response := gin.H{
		"status":    status,
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	}
	if c.hub != nil {
		response["websocket_clients"] = c.hub.GetClientCount()
	}

	ctx.JSON(httpStatus, response)
}

func (c *HealthController) checkDatabase(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return sqlDB.PingContext(ctx)
}
