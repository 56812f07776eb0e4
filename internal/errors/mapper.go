package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorMapper maps external errors to the Mimir error taxonomy
type ErrorMapper interface {
	MapError(err error) error
	Category(err error) string
	HTTPStatus(err error) int
}

// DefaultErrorMapper implements Mimir error taxonomy mapping
type DefaultErrorMapper struct{}

// NewDefaultErrorMapper creates a new error mapper
func NewDefaultErrorMapper() *DefaultErrorMapper {
	return &DefaultErrorMapper{}
}

var knownCategories = []error{
	ErrInvalidInput,
	ErrNotFound,
	ErrPermissionDenied,
	ErrTransient,
	ErrNotConfigured,
	ErrUnknownTool,
	ErrInvalidToolArguments,
	ErrInternal,
}

// MapError maps external errors to Mimir error categories.
// Errors that already carry a category are returned unchanged.
func (m *DefaultErrorMapper) MapError(err error) error {
	if err == nil {
		return nil
	}

	// Propagate context errors as-is
	if errors.Is(err, context.Canceled) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timeout: %w", ErrTransient)
	}

	for _, category := range knownCategories {
		if errors.Is(err, category) {
			return err
		}
	}

	// Map based on error message content
	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "not found"), strings.Contains(errStr, "does not exist"), strings.Contains(errStr, "nosuchkey"), strings.Contains(errStr, "nosuchbucket"):
		return fmt.Errorf("resource not found: %w", ErrNotFound)

	case strings.Contains(errStr, "permission denied"), strings.Contains(errStr, "unauthorized"), strings.Contains(errStr, "forbidden"), strings.Contains(errStr, "invalid api key"), strings.Contains(errStr, "incorrect api key"):
		return fmt.Errorf("access denied: %w", ErrPermissionDenied)

	case strings.Contains(errStr, "rate limit"), strings.Contains(errStr, "quota"), strings.Contains(errStr, "too many requests"):
		return fmt.Errorf("rate limited: %w", ErrTransient)

	case strings.Contains(errStr, "invalid input"), strings.Contains(errStr, "invalid request"), strings.Contains(errStr, "bad request"):
		return fmt.Errorf("invalid request: %w", ErrInvalidInput)

	case strings.Contains(errStr, "timeout"), strings.Contains(errStr, "deadline exceeded"):
		return fmt.Errorf("request timeout: %w", ErrTransient)

	case strings.Contains(errStr, "network"), strings.Contains(errStr, "connection"), strings.Contains(errStr, "unreachable"):
		return fmt.Errorf("network error: %w", ErrTransient)

	default:
		return fmt.Errorf("internal error: %w", ErrInternal)
	}
}

// Category returns the Mimir error category for an error
func (m *DefaultErrorMapper) Category(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return "ErrInvalidInput"
	case errors.Is(err, ErrNotFound):
		return "ErrNotFound"
	case errors.Is(err, ErrPermissionDenied):
		return "ErrPermissionDenied"
	case errors.Is(err, ErrTransient):
		return "ErrTransient"
	case errors.Is(err, ErrNotConfigured):
		return "ErrNotConfigured"
	case errors.Is(err, ErrUnknownTool):
		return "ErrUnknownTool"
	case errors.Is(err, ErrInvalidToolArguments):
		return "ErrInvalidToolArguments"
	case errors.Is(err, ErrInternal):
		return "ErrInternal"
	default:
		return "Unknown"
	}
}

// HTTPStatus picks the response status for an error after mapping it.
func (m *DefaultErrorMapper) HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	mapped := m.MapError(err)
	switch {
	case errors.Is(mapped, context.Canceled):
		return 499
	case errors.Is(mapped, ErrInvalidInput), errors.Is(mapped, ErrInvalidToolArguments), errors.Is(mapped, ErrUnknownTool):
		return http.StatusBadRequest
	case errors.Is(mapped, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(mapped, ErrPermissionDenied):
		return http.StatusBadGateway
	case errors.Is(mapped, ErrTransient):
		return http.StatusServiceUnavailable
	case errors.Is(mapped, ErrNotConfigured):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// Classify wraps err with the category MapError assigns to it, keeping err in the chain.
func Classify(err error, message string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return Wrap(err, message)
	}

	mapped := NewDefaultErrorMapper().MapError(err)
	for _, category := range knownCategories {
		if errors.Is(mapped, category) {
			if errors.Is(err, category) {
				return Wrap(err, message)
			}
			return WrapWithCategory(err, message, category)
		}
	}
	return WrapWithCategory(err, message, ErrInternal)
}

// Wrap wraps an error with context using Mimir error categories
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w", message, err)
}

// WrapWithCategory wraps an error with a specific category while keeping the cause in the chain
func WrapWithCategory(err error, message string, category error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w: %w", message, category, err)
}

// IsCategory checks if error belongs to specific category
func IsCategory(err error, category error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, category)
}

// NotFound wraps error as not found
func NotFound(message string) error {
	return fmt.Errorf("%s: %w", message, ErrNotFound)
}

// PermissionDenied wraps error as permission denied
func PermissionDenied(message string) error {
	return fmt.Errorf("%s: %w", message, ErrPermissionDenied)
}

// InvalidInput wraps error as invalid input
func InvalidInput(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInvalidInput)
}

// Transient wraps error as transient
func Transient(message string) error {
	return fmt.Errorf("%s: %w", message, ErrTransient)
}

// Internal wraps error as internal
func Internal(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInternal)
}

// NotConfigured wraps error as not configured
func NotConfigured(message string) error {
	return fmt.Errorf("%s: %w", message, ErrNotConfigured)
}

// UnknownTool reports a tool name outside the advertised set
func UnknownTool(name string) error {
	return fmt.Errorf("%q: %w", name, ErrUnknownTool)
}

// InvalidToolArguments wraps a decode or schema failure for a tool call
func InvalidToolArguments(name string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%s: %w", name, ErrInvalidToolArguments)
	}
	return fmt.Errorf("%s: %w: %w", name, ErrInvalidToolArguments, cause)
}
