package context_store

import (
	"errors"
	"fmt"
)

// ErrContextNotFound is wrapped by ContextLoadError when no document exists yet.
var ErrContextNotFound = errors.New("no saved project context")

// ContextLoadError reports a stored context that is missing, unreadable or invalid.
// Callers are expected to fall back to answering without context.
type ContextLoadError struct {
	Path string
	Err  error
}

func (e *ContextLoadError) Error() string {
	return fmt.Sprintf("failed to load project context from %s: %v", e.Path, e.Err)
}

func (e *ContextLoadError) Unwrap() error {
	return e.Err
}

// ContextSaveError reports that a context could not be written. No partial file is left behind.
type ContextSaveError struct {
	Path string
	Err  error
}

func (e *ContextSaveError) Error() string {
	return fmt.Sprintf("failed to save project context to %s: %v", e.Path, e.Err)
}

func (e *ContextSaveError) Unwrap() error {
	return e.Err
}
