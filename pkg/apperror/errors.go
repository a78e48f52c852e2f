package apperror

import (
	"fmt"
	"net/http"
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string       `json:"error_code"`
	Message    string       `json:"message"`
	HTTPStatus int          `json:"-"`
	Fields     []FieldError `json:"errors,omitempty"`
	Err        error        `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Validation (VAL) ----

// Validation returns a VAL_001 error for malformed or out-of-range input.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

// ValidationFields returns a VAL_001 error carrying per-field details.
func ValidationFields(message string, fields []FieldError) *AppError {
	e := Validation(message)
	e.Fields = fields
	return e
}

func ErrPayloadTooLarge() *AppError {
	return New("VAL_002", "Request body too large", http.StatusRequestEntityTooLarge)
}

// ---- Resources (RES) ----

func ErrNotFound(entity string) *AppError {
	return New("RES_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Transfers (TXN) ----

func ErrSelfTransfer() *AppError {
	return New("TXN_001", "Cannot transfer money to yourself", http.StatusBadRequest)
}

func ErrInvalidState(message string) *AppError {
	return New("TXN_002", message, http.StatusBadRequest)
}

func ErrInsufficientBalance() *AppError {
	return New("TXN_003", "Insufficient balance", http.StatusBadRequest)
}

func ErrInvalidAmount(message string) *AppError {
	return New("TXN_004", message, http.StatusBadRequest)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid email or password", http.StatusUnauthorized)
}

func ErrEmailExists() *AppError {
	return New("AUTH_002", "User already exists with this email", http.StatusBadRequest)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Not authorized, token failed", http.StatusUnauthorized)
}

func ErrForbidden(message string) *AppError {
	return New("AUTH_004", message, http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

func ErrStoreUnavailable(err error) *AppError {
	return Wrap("SYS_002", "Service temporarily unavailable", http.StatusServiceUnavailable, err)
}
