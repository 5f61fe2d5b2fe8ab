package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Common error types that can be used across the application
var (
	ErrNotFound           = new(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists      = new(ErrCodeAlreadyExists, "resource already exists")
	ErrValidation         = new(ErrCodeValidation, "validation error")
	ErrAllocationConflict = new(ErrCodeAllocationConflict, "invoice number conflict")
	ErrFatalAllocation    = new(ErrCodeFatalAllocation, "invoice number allocation failed")
	ErrUnauthorized       = new(ErrCodeUnauthorized, "unauthorized")
	ErrPermissionDenied   = new(ErrCodePermissionDenied, "permission denied")
	ErrDatabase           = new(ErrCodeDatabase, "database error")
	ErrSystem             = new(ErrCodeSystemError, "system error")
)

const (
	ErrCodeNotFound           = "not_found"
	ErrCodeAlreadyExists      = "already_exists"
	ErrCodeValidation         = "validation_error"
	ErrCodeAllocationConflict = "allocation_conflict"
	ErrCodeFatalAllocation    = "allocation_failed"
	ErrCodeUnauthorized       = "unauthorized"
	ErrCodePermissionDenied   = "permission_denied"
	ErrCodeDatabase           = "database_error"
	ErrCodeSystemError        = "system_error"
)

// statusCodes maps errors to http status codes. Order matters: an error
// marked with several sentinels gets the status of the first match.
var statusCodes = []struct {
	err    *InternalError
	status int
}{
	{ErrFatalAllocation, http.StatusServiceUnavailable},
	{ErrAllocationConflict, http.StatusConflict},
	{ErrValidation, http.StatusBadRequest},
	{ErrNotFound, http.StatusNotFound},
	{ErrAlreadyExists, http.StatusConflict},
	{ErrUnauthorized, http.StatusUnauthorized},
	{ErrPermissionDenied, http.StatusForbidden},
	{ErrDatabase, http.StatusInternalServerError},
	{ErrSystem, http.StatusInternalServerError},
}

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsAllocationConflict checks if an error is a transient invoice number collision
func IsAllocationConflict(err error) bool {
	return errors.Is(err, ErrAllocationConflict)
}

// IsFatalAllocation checks if invoice number allocation gave up
func IsFatalAllocation(err error) bool {
	return errors.Is(err, ErrFatalAllocation)
}

func IsDatabase(err error) bool {
	return errors.Is(err, ErrDatabase)
}

// HTTPStatusFromErr returns the status code of the first sentinel the error
// is marked with, or 500.
func HTTPStatusFromErr(err error) int {
	for _, sc := range statusCodes {
		if errors.Is(err, sc.err) {
			return sc.status
		}
	}
	return http.StatusInternalServerError
}

// DisplayMessage returns the user-facing text for an error: the joined hints
// if any were attached, otherwise the sentinel message.
func DisplayMessage(err error) string {
	if hints := errors.FlattenHints(err); hints != "" {
		return hints
	}
	for _, sc := range statusCodes {
		if errors.Is(err, sc.err) {
			return sc.err.Message
		}
	}
	return "internal server error"
}
