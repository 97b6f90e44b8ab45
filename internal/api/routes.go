// Package api serves the task service over HTTP with gin.
package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/valter-silva-au/taskflow/internal/core"
)

// NewRouter builds the HTTP engine. Every /api/tasks route acts for the
// owner named in the X-Owner-ID header.
func NewRouter(svc core.TaskService, logger *zap.Logger, version string) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery(), GinZapMiddleware(logger))
	RegisterRoutes(r, NewHealthHandler(version), NewTaskHandler(svc))
	return r
}

// RegisterRoutes mounts the health and task routes on r.
func RegisterRoutes(r *gin.Engine, healthHandler *HealthHandler, taskHandler *TaskHandler) {
	r.GET("/health", healthHandler.CheckHealth)

	tasks := r.Group("/api/tasks")
	tasks.Use(taskHandler.OwnerMiddleware())
	{
		tasks.GET("", taskHandler.ListTasks)
		tasks.POST("", taskHandler.CreateTask)
		tasks.GET("/overdue", taskHandler.CheckOverdue)
		tasks.GET("/due-soon", taskHandler.CheckDueSoon)
		tasks.GET("/export", taskHandler.ExportTasks)
		tasks.GET("/:id", taskHandler.GetTask)
		tasks.PATCH("/:id", taskHandler.UpdateTask)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
		tasks.POST("/:id/complete", taskHandler.CompleteTask)
		tasks.POST("/:id/reopen", taskHandler.ReopenTask)
	}
}
