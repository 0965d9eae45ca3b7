// Package api provides error handling utilities for HTTP APIs
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soundfoundry/releasedesk/internal/logger"
	"github.com/soundfoundry/releasedesk/internal/types"
)

// ErrorResponse represents the standard error response format
type ErrorResponse struct {
	Error   ErrorDetails `json:"error"`
	Success bool         `json:"success"`
}

// ErrorDetails contains detailed error information
type ErrorDetails struct {
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	Details     string                 `json:"details,omitempty"`
	UserMessage string                 `json:"user_message,omitempty"`
	Context     map[string]interface{} `json:"context,omitempty"`
}

// RespondWithError sends a structured error response
func RespondWithError(c *gin.Context, err error) {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		response := ErrorResponse{
			Success: false,
			Error: ErrorDetails{
				Code:        string(appErr.Code),
				Message:     appErr.Message,
				Details:     appErr.Details,
				UserMessage: appErr.UserMessage,
				Context:     appErr.Context,
			},
		}

		logError(appErr, c.Request.URL.Path)
		c.JSON(appErr.HTTPStatus, response)
		return
	}

	// Unstructured errors surface as a generic failure; the underlying cause
	// is logged but not classified for the user.
	logger.Error("unstructured error on %s: %v", c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Success: false,
		Error: ErrorDetails{
			Code:    string(types.ErrorCodeInternal),
			Message: "something went wrong",
		},
	})
}

// RespondWithValidationError sends a validation error response
func RespondWithValidationError(c *gin.Context, message string, details ...string) {
	RespondWithError(c, types.NewValidationError(message, details...))
}

// RespondWithNotFound sends a not found error response
func RespondWithNotFound(c *gin.Context, resource string, id string) {
	RespondWithError(c, types.NewNotFoundError(resource, id))
}

// RespondWithInternalError sends an internal error response
func RespondWithInternalError(c *gin.Context, message string, cause error) {
	RespondWithError(c, types.NewInternalError(message, cause))
}

// logError logs the error with appropriate severity
func logError(err *types.AppError, path string) {
	switch err.Severity {
	case types.SeverityCritical, types.SeverityError:
		logger.Error("request failed: path=%s code=%s message=%s details=%s", path, err.Code, err.Message, err.Details)
	case types.SeverityWarning:
		logger.Warn("request rejected: path=%s code=%s message=%s", path, err.Code, err.Message)
	default:
		logger.Info("request note: path=%s code=%s message=%s", path, err.Code, err.Message)
	}
}

// ErrorMiddleware recovers from panics and converts them to error responses
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				var err error
				switch v := r.(type) {
				case error:
					err = v
				case string:
					err = errors.New(v)
				default:
					err = errors.New("unknown panic")
				}

				appErr := types.NewInternalError("panic recovered", err)
				appErr.Severity = types.SeverityCritical

				logger.Error("panic recovered: path=%s method=%s error=%v",
					c.Request.URL.Path, c.Request.Method, err)

				RespondWithError(c, appErr)
				c.Abort()
			}
		}()

		c.Next()
	}
}
