package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/valter-silva-au/taskflow/internal/core"
)

// OwnerHeader names the request header carrying the acting owner id.
const OwnerHeader = "X-Owner-ID"

const serviceKey = "taskflow.service"

// GinZapMiddleware logs one line per request; 5xx responses log at Error.
func GinZapMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("owner", c.GetHeader(OwnerHeader)),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("http request", fields...)
			return
		}
		logger.Info("http request", fields...)
	}
}

// OwnerMiddleware binds an owner-scoped service to the request, rejecting
// requests without an owner.
func (h *TaskHandler) OwnerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := strings.TrimSpace(c.GetHeader(OwnerHeader))
		if owner == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, newErrorResponse(codeMissingOwner, OwnerHeader+" header is required"))
			return
		}
		c.Set(serviceKey, h.svc.ForOwner(owner))
		c.Next()
	}
}

func serviceFrom(c *gin.Context) core.TaskService {
	return c.MustGet(serviceKey).(core.TaskService)
}
