package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/rentroll/internal/logger"
)

// LoggerKey is the context key holding the request-scoped logger.
const LoggerKey = "logger"

// quietPaths are probed by load balancers and only logged at debug level.
var quietPaths = map[string]bool{
	"/health":       true,
	"/health/ready": true,
}

// Logger stores a request-scoped logger in the context and writes one
// access line per request once the handler chain has finished.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestLogger := log.WithRequestID(GetRequestID(c))
		c.Set(LoggerKey, requestLogger)

		c.Next()

		status := c.Writer.Status()
		fields := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
			"bytes":       c.Writer.Size(),
		}
		if route := c.FullPath(); route != "" && route != c.Request.URL.Path {
			fields["route"] = route
		}
		if c.Request.URL.RawQuery != "" {
			fields["query"] = c.Request.URL.RawQuery
		}
		if actor, ok := GetActor(c); ok {
			fields["user_id"] = actor.UserID
			fields["role"] = string(actor.Role)
		}
		var lastErr error
		if len(c.Errors) > 0 {
			fields["errors"] = strings.TrimSpace(c.Errors.String())
			lastErr = c.Errors.Last().Err
		}

		switch {
		case status >= 500:
			requestLogger.Error("Request failed", lastErr, fields)
		case status >= 400:
			requestLogger.Warn("Request rejected", fields)
		case quietPaths[c.Request.URL.Path]:
			requestLogger.Debug("Request completed", fields)
		default:
			requestLogger.Info("Request completed", fields)
		}
	}
}

// GetLogger returns the request-scoped logger, or nil outside the Logger
// middleware.
func GetLogger(c *gin.Context) *logger.Logger {
	if v, exists := c.Get(LoggerKey); exists {
		if l, ok := v.(*logger.Logger); ok {
			return l
		}
	}
	return nil
}

// LoggerOr returns the request-scoped logger, falling back to log.
func LoggerOr(c *gin.Context, log *logger.Logger) *logger.Logger {
	if l := GetLogger(c); l != nil {
		return l
	}
	return log
}
