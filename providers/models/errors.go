package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for provider operations.
var (
	// ErrUnknownProvider indicates the configured provider has no implementation.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrUnavailable indicates the model server could not be reached.
	ErrUnavailable = errors.New("model server unavailable")

	// ErrModelNotConfigured indicates no model name was resolved for the request.
	ErrModelNotConfigured = errors.New("model not configured")

	// ErrRequestFailed indicates the server answered with a non-success status.
	ErrRequestFailed = errors.New("request failed")

	// ErrTimeout indicates the request did not complete within the client timeout.
	ErrTimeout = errors.New("request timed out")

	// ErrEmptyResponse indicates the server returned no message content.
	ErrEmptyResponse = errors.New("empty response from model")
)

// ProviderError wraps provider errors with the provider and operation that failed.
type ProviderError struct {
	Provider string // "ollama"
	Op       string // "chat", "list models"
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is likely transient.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrTimeout)
}
