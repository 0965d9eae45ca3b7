// Package middleware provides shared gin middleware.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/soundfoundry/releasedesk/internal/logger"
)

// RequestLogger logs request outcomes. Health checks are skipped.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/api/health" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		logger.Debug("http %s %s status=%d duration=%s size=%d",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start),
			c.Writer.Size(),
		)
	}
}
