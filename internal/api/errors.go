package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/valter-silva-au/taskflow/pkg/models"
)

const (
	codeValidation        = "validation_error"
	codeNotFound          = "not_found"
	codeDuplicate         = "duplicate"
	codeConflict          = "conflict"
	codeUnsupportedFormat = "unsupported_format"
	codeInvalidPayload    = "invalid_payload"
	codeMissingOwner      = "missing_owner"
	codeInternal          = "internal_error"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails carries a machine-readable code and a message.
type ErrorDetails struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetails{Code: code, Message: message}}
}

// statusFor maps the typed service errors onto HTTP statuses.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest, codeValidation
	case errors.Is(err, models.ErrUnsupportedFormat):
		return http.StatusBadRequest, codeUnsupportedFormat
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, models.ErrDuplicate):
		return http.StatusConflict, codeDuplicate
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict, codeConflict
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

func respondError(c *gin.Context, action string, err error) {
	status, code := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		zap.L().Error("failed to "+action, zap.String("task_id", c.Param("id")), zap.Error(err))
		message = "failed to " + action
	}
	_ = c.Error(err)
	c.JSON(status, newErrorResponse(code, message))
}
