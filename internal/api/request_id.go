package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/miftajuneidi2008/ansar-dfp/internal/utils"
)

// RequestIDMiddleware assigns every request an ID, honoring an inbound
// X-Request-ID header so IDs survive proxies. The ID is stored on the gin
// context, mirrored into the request context for the service layer, and
// echoed on the response.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		ctx := utils.WithRequestMeta(c.Request.Context(), requestID, c.ClientIP(), c.Request.UserAgent())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
