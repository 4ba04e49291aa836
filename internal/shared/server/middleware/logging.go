package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"business-navigator/internal/shared/telemetry"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"user_id":     UserIDFromContext(c),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if planID := c.GetString("planId"); planID != "" {
			fields["plan_id"] = planID
		}
		if kind := c.GetString("generationKind"); kind != "" {
			fields["generation_kind"] = kind
		}
		telemetry.Info("request.complete", fields)
	}
}
