package response

import (
	"errors"
	"net/http"
	"time"

	"p2p-wallet/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CtxRequestID is the gin context key holding the request correlation id.
const CtxRequestID = "request_id"

// Envelope is the body shape of every API response.
type Envelope struct {
	Success   bool                  `json:"success"`
	Message   string                `json:"message"`
	Data      interface{}           `json:"data,omitempty"`
	Errors    []apperror.FieldError `json:"errors,omitempty"`
	ErrorCode string                `json:"error_code,omitempty"`
	RequestID string                `json:"request_id"`
	Timestamp string                `json:"timestamp"`
}

// OK sends a 200 response with data.
func OK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, success(c, message, data))
}

// Created sends a 201 response with data.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, success(c, message, data))
}

// Error sends an error response. *apperror.AppError values are mapped to
// their status and code; anything else becomes a 500. Wrapped internal
// errors are only echoed back while gin runs in debug mode.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		body := Envelope{
			Success:   false,
			Message:   appErr.Message,
			Errors:    appErr.Fields,
			ErrorCode: appErr.Code,
			RequestID: getRequestID(c),
			Timestamp: now(),
		}
		if appErr.HTTPStatus >= http.StatusInternalServerError && appErr.Err != nil && gin.IsDebugging() {
			body.Errors = append(body.Errors, apperror.FieldError{Path: "internal", Message: appErr.Err.Error()})
		}
		c.JSON(appErr.HTTPStatus, body)
		return
	}

	body := Envelope{
		Success:   false,
		Message:   "Internal server error",
		ErrorCode: "SYS_000",
		RequestID: getRequestID(c),
		Timestamp: now(),
	}
	if err != nil && gin.IsDebugging() {
		body.Errors = []apperror.FieldError{{Path: "internal", Message: err.Error()}}
	}
	c.JSON(http.StatusInternalServerError, body)
}

func success(c *gin.Context, message string, data interface{}) Envelope {
	return Envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: getRequestID(c),
		Timestamp: now(),
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// getRequestID retrieves request ID from context, or generates one.
func getRequestID(c *gin.Context) string {
	if id, exists := c.Get(CtxRequestID); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return uuid.New().String()
}
