package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Binding and resolution errors
const (
	// ErrCodeBindingNotFound indicates no binding is registered for a lookup key.
	ErrCodeBindingNotFound ErrorCode = "BINDING_NOT_FOUND"
	// ErrCodeInvalidBinding indicates a strategy/source mismatch or a malformed key.
	ErrCodeInvalidBinding ErrorCode = "INVALID_BINDING"
	// ErrCodeNoParentConfigured indicates a scene strategy had no parent to attach to.
	ErrCodeNoParentConfigured ErrorCode = "NO_PARENT_CONFIGURED"
	// ErrCodeCircularDependency indicates a resolution or traversal re-entered itself.
	ErrCodeCircularDependency ErrorCode = "CIRCULAR_DEPENDENCY"
	// ErrCodeResolutionFailed indicates a constructor, initializer or scene failed.
	ErrCodeResolutionFailed ErrorCode = "RESOLUTION_FAILED"
)

// Generic errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeServiceUnavailable indicates the service is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeResolutionFailed:   false,
	ErrCodeInternal:           false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
