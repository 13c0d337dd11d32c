package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/crediscore/pkg/logger"
	"go.uber.org/zap"
)

// RequestLogger writes one structured line per request. Health checks and
// the metrics scrape are logged at debug.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Int("bytes", c.Writer.Size()),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}

		log := logger.WithContext(c.Request.Context())
		switch {
		case len(c.Errors) > 0:
			log.Error("request failed", append(fields, zap.String("errors", c.Errors.String()))...)
		case status >= 500:
			log.Warn("request completed with server error", fields...)
		case isHealthRoute(c.Request.URL.Path):
			log.Debug("request completed", fields...)
		default:
			log.Info("request completed", fields...)
		}
	}
}

func isHealthRoute(path string) bool {
	switch path {
	case "/healthz", "/health/live", "/metrics":
		return true
	}
	return false
}
