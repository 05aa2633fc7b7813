package di

import (
	stderrors "errors"

	"github.com/kbukum/scenedi/errors"
)

// IsBindingNotFound reports whether err is, or wraps, a missing-binding error.
func IsBindingNotFound(err error) bool {
	return hasCode(err, errors.ErrCodeBindingNotFound)
}

// IsInvalidBinding reports whether err is, or wraps, a bind-time validation error.
func IsInvalidBinding(err error) bool {
	return hasCode(err, errors.ErrCodeInvalidBinding)
}

// IsNoParentConfigured reports whether err is, or wraps, a missing scene parent error.
func IsNoParentConfigured(err error) bool {
	return hasCode(err, errors.ErrCodeNoParentConfigured)
}

// IsCircularDependency reports whether err is, or wraps, a cycle error.
func IsCircularDependency(err error) bool {
	return hasCode(err, errors.ErrCodeCircularDependency)
}

// IsResolutionFailed reports whether err is, or wraps, a producer failure.
func IsResolutionFailed(err error) bool {
	return hasCode(err, errors.ErrCodeResolutionFailed)
}

func hasCode(err error, code errors.ErrorCode) bool {
	return err != nil && stderrors.Is(err, &errors.AppError{Code: code})
}

var diCodes = map[errors.ErrorCode]bool{
	errors.ErrCodeBindingNotFound:    true,
	errors.ErrCodeInvalidBinding:     true,
	errors.ErrCodeNoParentConfigured: true,
	errors.ErrCodeCircularDependency: true,
	errors.ErrCodeResolutionFailed:   true,
}

// wrapFailure passes registry errors through untouched and wraps anything
// else a constructor, initializer or scene returned.
func wrapFailure(key Key, err error) error {
	if appErr, ok := errors.AsAppError(err); ok && diCodes[appErr.Code] {
		return err
	}
	return errors.ResolutionFailed(key.String(), err)
}
