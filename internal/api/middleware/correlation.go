package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/vidgrab/internal/utils"
)

const (
	CorrelationIDHeader = "X-Correlation-ID"
	RequestIDHeader     = "X-Request-ID"
)

func CorrelationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Reuse the caller's correlation ID or start a new one
		correlationID := c.GetHeader(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = utils.GenerateCorrelationID()
		}
		requestID := utils.GenerateRequestID()

		// Store in gin context for handlers
		c.Set("correlation_id", correlationID)
		c.Set("request_id", requestID)

		// Add to response headers
		c.Header(CorrelationIDHeader, correlationID)
		c.Header(RequestIDHeader, requestID)

		// Add to request context for logging
		ctx := c.Request.Context()
		ctx = utils.WithCorrelationID(ctx, correlationID)
		ctx = utils.WithRequestID(ctx, requestID)
		c.Request = c.Request.WithContext(ctx)

		utils.LogDebug(ctx, "Incoming request", utils.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"ip":     c.ClientIP(),
		})

		c.Next()

		// Session middleware runs later in the chain, so read the id back
		// from the finished request.
		utils.LogInfo(c.Request.Context(), "Request completed", utils.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
			"bytes":  c.Writer.Size(),
		})
	}
}
