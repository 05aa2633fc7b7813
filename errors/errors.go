package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the status the inspector answers with for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an *AppError with the same code, so
// errors.Is(err, &AppError{Code: ErrCodeBindingNotFound}) works.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if stderrors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// HasCode reports whether err wraps an *AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == code
}

// --- Binding and resolution errors ---

// BindingNotFound creates an error for a lookup key with no registered binding.
func BindingNotFound(key string) *AppError {
	return &AppError{
		Code: ErrCodeBindingNotFound, Message: fmt.Sprintf("no binding registered for %s", key),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"key": key},
	}
}

// InvalidBinding creates an error for a binding rejected at bind time.
func InvalidBinding(key, reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidBinding, Message: fmt.Sprintf("invalid binding for %s: %s", key, reason),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"key": key, "reason": reason},
	}
}

// NoParentConfigured creates an error for a scene binding resolved without
// an explicit or default parent.
func NoParentConfigured(key string) *AppError {
	return &AppError{
		Code: ErrCodeNoParentConfigured, Message: fmt.Sprintf("no scene parent configured to instantiate %s", key),
		HTTPStatus: http.StatusFailedDependency,
		Details:    map[string]any{"key": key},
	}
}

// CircularDependency creates an error describing the chain that looped.
func CircularDependency(chain []string) *AppError {
	return &AppError{
		Code: ErrCodeCircularDependency, Message: "circular dependency detected: " + strings.Join(chain, " -> "),
		HTTPStatus: http.StatusLoopDetected,
		Details:    map[string]any{"chain": chain},
	}
}

// ResolutionFailed creates an error for a binding whose producer failed.
func ResolutionFailed(key string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeResolutionFailed, Message: fmt.Sprintf("failed to resolve %s", key),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"key": key}, Cause: cause,
	}
}

// --- Generic errors ---

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Details: details,
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// ServiceUnavailable creates a new AppError for a dependency that is not ready.
func ServiceUnavailable(service string) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: fmt.Sprintf("The %s is not available.", service),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"service": service},
	}
}

// Internal creates a new AppError for an internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}
