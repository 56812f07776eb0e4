package errors

import (
	"errors"
)

// Sentinel errors for different categories
var (
	// ErrInvalidInput - invalid input (400 over HTTP, usage error in the CLI)
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound - resource or model not found
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied - provider or storage rejected our credentials
	ErrPermissionDenied = errors.New("permission denied")

	// ErrTransient - transient error (rate limit, timeout, network); callers may retry, the core never does
	ErrTransient = errors.New("transient error")

	// ErrNotConfigured - an optional collaborator (speech, storage) has no credentials or bucket
	ErrNotConfigured = errors.New("not configured")

	// ErrUnknownTool - the model asked for a function outside the advertised tool set
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidToolArguments - tool arguments failed to decode or did not match the tool schema
	ErrInvalidToolArguments = errors.New("invalid tool arguments")

	// ErrInternal - internal error
	ErrInternal = errors.New("internal error")
)
