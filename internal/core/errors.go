package core

import (
	"fmt"
	"strings"
	"time"
)

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Session errors
	ErrSessionNotFound = &Error{Code: "SESSION_NOT_FOUND", Message: "session not found"}
	ErrInvalidState    = &Error{Code: "INVALID_STATE", Message: "operation not allowed in current session state"}
	ErrInvalidAnswer   = &Error{Code: "INVALID_ANSWER", Message: "answer rejected"}
	ErrInvalidTaskType = &Error{Code: "INVALID_TASK_TYPE", Message: "unknown task type"}

	// Configuration errors
	ErrConfigInvalid     = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing     = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
	ErrDuplicateProvider = &Error{Code: "DUPLICATE_PROVIDER", Message: "provider kind already registered"}

	// Provider errors
	ErrModelNotFound = &Error{Code: "MODEL_NOT_FOUND", Message: "model not provisioned on backend"}
	ErrNoProviders   = &Error{Code: "NO_PROVIDERS", Message: "no providers registered"}
)

// FailureKind classifies a provider failure for router introspection.
type FailureKind string

const (
	FailureUnreachable   FailureKind = "unreachable"
	FailureModelNotFound FailureKind = "model_not_found"
	FailureBackend       FailureKind = "backend"
)

// ProviderError is a backend-reported failure from one provider.
// The same provider is never retried within a single dispatch.
type ProviderError struct {
	Provider ProviderKind
	Kind     FailureKind
	Message  string
	Cause    error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider %s: %s (%s): %v", e.Provider, e.Message, e.Kind, e.Cause)
	}
	return fmt.Sprintf("provider %s: %s (%s)", e.Provider, e.Message, e.Kind)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// RateLimitError signals that a backend is explicitly throttling.
// RetryAfter is zero when the backend gave no hint.
type RateLimitError struct {
	Provider   ProviderKind
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("provider %s rate limited, retry after %s", e.Provider, e.RetryAfter)
	}
	return fmt.Sprintf("provider %s rate limited", e.Provider)
}

// Attempt records one failed provider call within a dispatch.
type Attempt struct {
	Provider ProviderKind
	Reason   string
}

// GenerationError means every candidate provider failed for one dispatch.
type GenerationError struct {
	Attempts []Attempt
}

func (e *GenerationError) Error() string {
	if len(e.Attempts) == 0 {
		return "generation failed: no providers attempted"
	}
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = fmt.Sprintf("%s: %s", a.Provider, a.Reason)
	}
	return fmt.Sprintf("generation failed, all %d providers exhausted: %s",
		len(e.Attempts), strings.Join(parts, "; "))
}
