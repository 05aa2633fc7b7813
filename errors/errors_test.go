package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeNotFound, "not found", http.StatusNotFound)
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.Message != "not found" {
		t.Errorf("expected message 'not found', got %q", err.Message)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("NOT_FOUND should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeServiceUnavailable, "down", http.StatusServiceUnavailable)
	if !err.Retryable {
		t.Error("SERVICE_UNAVAILABLE should be retryable")
	}
}

func TestAppError_Error(t *testing.T) {
	err := BindingNotFound("type(*game.Logger)")
	if got := err.Error(); got != "BINDING_NOT_FOUND: no binding registered for type(*game.Logger)" {
		t.Errorf("unexpected message %q", got)
	}

	wrapped := ResolutionFailed("var(db)", fmt.Errorf("dial failed"))
	if !strings.Contains(wrapped.Error(), "cause: dial failed") {
		t.Errorf("expected cause in message, got %q", wrapped.Error())
	}
}

func TestAppError_UnwrapAndIs(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := fmt.Errorf("outer: %w", ResolutionFailed("var(x)", cause))

	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if !stderrors.Is(err, &AppError{Code: ErrCodeResolutionFailed}) {
		t.Error("expected errors.Is to match on code")
	}
	if stderrors.Is(err, &AppError{Code: ErrCodeBindingNotFound}) {
		t.Error("expected errors.Is not to match a different code")
	}
}

func TestHasCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"direct", InvalidBinding("var()", "empty name"), ErrCodeInvalidBinding, true},
		{"wrapped", fmt.Errorf("bind: %w", NoParentConfigured("type(*Enemy)")), ErrCodeNoParentConfigured, true},
		{"other code", BindingNotFound("var(x)"), ErrCodeInvalidBinding, false},
		{"plain error", fmt.Errorf("plain"), ErrCodeInternal, false},
		{"nil", nil, ErrCodeInternal, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := HasCode(tc.err, tc.code); got != tc.want {
				t.Errorf("HasCode() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCircularDependency_Chain(t *testing.T) {
	err := CircularDependency([]string{"type(*A)", "type(*B)", "type(*A)"})
	if !strings.Contains(err.Message, "type(*A) -> type(*B) -> type(*A)") {
		t.Errorf("expected chain in message, got %q", err.Message)
	}
	chain, ok := err.Details["chain"].([]string)
	if !ok || len(chain) != 3 {
		t.Errorf("expected chain detail of length 3, got %v", err.Details["chain"])
	}
	if err.HTTPStatus != http.StatusLoopDetected {
		t.Errorf("expected 508, got %d", err.HTTPStatus)
	}
}

func TestAppError_WithDetails(t *testing.T) {
	err := BindingNotFound("var(mode)").
		WithDetail("node", "/root/player").
		WithDetails(map[string]any{"slot": "mode"})

	if err.Details["key"] != "var(mode)" {
		t.Errorf("expected key detail to be preserved, got %v", err.Details["key"])
	}
	if err.Details["node"] != "/root/player" || err.Details["slot"] != "mode" {
		t.Errorf("unexpected details %v", err.Details)
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{Code: ErrCodeInternal}
	err.WithDetail("k", "v")
	if err.Details["k"] != "v" {
		t.Error("expected detail to be set on nil map")
	}
}

func TestToResponse(t *testing.T) {
	err := InvalidBinding("var()", "empty name")
	resp := err.ToResponse()
	if resp.Error.Code != ErrCodeInvalidBinding {
		t.Errorf("expected INVALID_BINDING, got %s", resp.Error.Code)
	}
	if resp.Error.Details["reason"] != "empty name" {
		t.Errorf("expected reason detail, got %v", resp.Error.Details)
	}
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("ctx: %w", NotFound("node", "abc"))
	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to succeed")
	}
	if appErr.Details["id"] != "abc" {
		t.Errorf("expected id detail, got %v", appErr.Details)
	}

	if _, ok := AsAppError(fmt.Errorf("plain")); ok {
		t.Error("expected AsAppError to fail for plain error")
	}
	if !IsAppError(wrapped) {
		t.Error("expected IsAppError to be true")
	}
}

func TestGenericConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   ErrorCode
		status int
	}{
		{"invalid input", InvalidInput("port", "out of range"), ErrCodeInvalidInput, http.StatusBadRequest},
		{"validation", Validation("name: is required"), ErrCodeInvalidInput, http.StatusBadRequest},
		{"unavailable", ServiceUnavailable("scene tree"), ErrCodeServiceUnavailable, http.StatusServiceUnavailable},
		{"internal", Internal(fmt.Errorf("x")), ErrCodeInternal, http.StatusInternalServerError},
		{"no parent", NoParentConfigured("type(*Enemy)"), ErrCodeNoParentConfigured, http.StatusFailedDependency},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.HTTPStatus != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, tc.err.HTTPStatus)
			}
		})
	}
}
