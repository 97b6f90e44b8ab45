package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/valter-silva-au/taskflow/internal/core"
	"github.com/valter-silva-au/taskflow/internal/exchange"
	"github.com/valter-silva-au/taskflow/pkg/models"
)

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	version string
}

// NewHealthHandler reports version in every health response.
func NewHealthHandler(version string) *HealthHandler {
	if version == "" {
		version = "dev"
	}
	return &HealthHandler{version: version}
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status            string `json:"status"`
	AppVersion        string `json:"app_version"`
	CurrentSystemTime string `json:"current_system_time"`
}

// CheckHealth answers GET /health.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthStatus{
		Status:            "ok",
		AppVersion:        h.version,
		CurrentSystemTime: time.Now().Format("2006-01-02 15:04:05"),
	})
}

// TaskHandler serves the /api/tasks routes for the request owner.
type TaskHandler struct {
	svc core.TaskService
}

// NewTaskHandler wraps svc; each request works on svc.ForOwner(owner).
func NewTaskHandler(svc core.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// ListTasks answers GET /api/tasks, applying the tag, status, overdue,
// due range and sort query parameters.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	svc := serviceFrom(c)

	overdue := false
	if raw := c.Query("overdue"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, newErrorResponse(codeValidation, "invalid overdue: want true or false"))
			return
		}
		overdue = parsed
	}

	criteria, err := core.ListQuery{
		Tags:      c.QueryArray("tag"),
		Status:    c.Query("status"),
		Overdue:   overdue,
		DueBefore: c.Query("due_before"),
		DueAfter:  c.Query("due_after"),
		DueOn:     c.Query("due_on"),
		Sort:      c.Query("sort"),
	}.Criteria()
	if err != nil {
		respondError(c, "list tasks", err)
		return
	}

	tasks, err := svc.ListTasks(criteria)
	if err != nil {
		respondError(c, "list tasks", err)
		return
	}
	c.JSON(http.StatusOK, toTaskItems(tasks, svc.Today()))
}

// CreateTask answers POST /api/tasks with 201 and the stored task.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	svc := serviceFrom(c)

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, newErrorResponse(codeInvalidPayload, "invalid task payload"))
		return
	}
	attrs, err := req.attrs()
	if err != nil {
		respondError(c, "create task", err)
		return
	}

	task, err := svc.AddTask(attrs)
	if err != nil {
		respondError(c, "create task", err)
		return
	}
	c.JSON(http.StatusCreated, toTaskItem(task, svc.Today()))
}

// GetTask answers GET /api/tasks/:id.
func (h *TaskHandler) GetTask(c *gin.Context) {
	svc := serviceFrom(c)
	task, err := svc.FindTaskByID(c.Param("id"))
	if err != nil {
		respondError(c, "get task", err)
		return
	}
	c.JSON(http.StatusOK, toTaskItem(task, svc.Today()))
}

// UpdateTask answers PATCH /api/tasks/:id.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	svc := serviceFrom(c)

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, newErrorResponse(codeInvalidPayload, "invalid task payload"))
		return
	}
	attrs, err := req.attrs()
	if err != nil {
		respondError(c, "update task", err)
		return
	}

	task, err := svc.UpdateTask(c.Param("id"), attrs)
	if err != nil {
		respondError(c, "update task", err)
		return
	}
	c.JSON(http.StatusOK, toTaskItem(task, svc.Today()))
}

// CompleteTask answers POST /api/tasks/:id/complete.
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	svc := serviceFrom(c)
	task, err := svc.CompleteTask(c.Param("id"))
	if err != nil {
		respondError(c, "complete task", err)
		return
	}
	c.JSON(http.StatusOK, toTaskItem(task, svc.Today()))
}

// ReopenTask answers POST /api/tasks/:id/reopen.
func (h *TaskHandler) ReopenTask(c *gin.Context) {
	svc := serviceFrom(c)
	task, err := svc.ReopenTask(c.Param("id"))
	if err != nil {
		respondError(c, "reopen task", err)
		return
	}
	c.JSON(http.StatusOK, toTaskItem(task, svc.Today()))
}

// DeleteTask answers DELETE /api/tasks/:id with 204.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	if err := serviceFrom(c).DeleteTask(c.Param("id")); err != nil {
		respondError(c, "delete task", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CheckOverdue answers GET /api/tasks/overdue and publishes an
// overdue_check event per match.
func (h *TaskHandler) CheckOverdue(c *gin.Context) {
	svc := serviceFrom(c)
	tasks, err := svc.CheckOverdueTasks()
	if err != nil {
		respondError(c, "check overdue tasks", err)
		return
	}
	c.JSON(http.StatusOK, toTaskItems(tasks, svc.Today()))
}

// CheckDueSoon answers GET /api/tasks/due-soon.
func (h *TaskHandler) CheckDueSoon(c *gin.Context) {
	svc := serviceFrom(c)
	tasks, err := svc.CheckDueSoonTasks()
	if err != nil {
		respondError(c, "check tasks due soon", err)
		return
	}
	c.JSON(http.StatusOK, toTaskItems(tasks, svc.Today()))
}

var contentTypes = map[string]string{
	"csv":  "text/csv",
	"json": "application/json",
	"yaml": "application/yaml",
}

// ExportTasks streams the owner's tasks as an attachment. The service
// exports to a file, so the body is staged in a temporary directory.
func (h *TaskHandler) ExportTasks(c *gin.Context) {
	svc := serviceFrom(c)
	codec, err := exchange.Lookup(c.DefaultQuery("format", "csv"), time.UTC)
	if err != nil {
		respondError(c, "export tasks", err)
		return
	}

	dir, err := os.MkdirTemp("", "taskflow-export-")
	if err != nil {
		respondError(c, "export tasks", err)
		return
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			zap.L().Warn("failed to remove export directory", zap.String("dir", dir), zap.Error(err))
		}
	}()

	name := "tasks." + codec.Format()
	path := filepath.Join(dir, name)
	if _, err := svc.ExportTasks(codec.Format(), path); err != nil {
		respondError(c, "export tasks", err)
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		respondError(c, "export tasks", &models.FileError{Op: "read", Path: path, Err: err})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, contentTypes[codec.Format()], data)
}
