package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/writify/writify-backend/internal/domain/ports"
)

const (
	RequestIDHeader     = "X-Request-ID"
	RequestIDContextKey = "request_id"
	LoggerContextKey    = "logger"
)

// RequestLogger tags each request with an id and logs it when it completes.
// Handlers find a logger carrying the id under LoggerContextKey.
func RequestLogger(logger ports.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDContextKey, requestID)
		c.Header(RequestIDHeader, requestID)

		reqLogger := logger.With("request_id", requestID)
		c.Set(LoggerContextKey, reqLogger)

		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			args = append(args, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			reqLogger.Error("request failed", args...)
		case status >= 400:
			reqLogger.Warn("request rejected", args...)
		default:
			reqLogger.Info("request handled", args...)
		}
	}
}

// LoggerFrom returns the request logger, or fallback outside RequestLogger.
func LoggerFrom(c *gin.Context, fallback ports.Logger) ports.Logger {
	if v, ok := c.Get(LoggerContextKey); ok {
		if l, ok := v.(ports.Logger); ok {
			return l
		}
	}
	return fallback
}
