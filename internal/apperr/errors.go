// Package apperr provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates the caller provided invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRetrievalUnavailable indicates a context collection query failed or
	// the collection is missing. Retrieval is best-effort: callers treat this
	// as an empty context block and continue.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")

	// ErrCompletionUnavailable indicates the LLM completion service failed or
	// timed out. Callers degrade to the fixed localized apology.
	ErrCompletionUnavailable = errors.New("completion unavailable")

	// ErrLanguageMismatch indicates a generated response came back in a
	// language other than the one detected from the user's input.
	ErrLanguageMismatch = errors.New("response language mismatch")

	// ErrMalformedResponse indicates a collaborator returned an unexpected
	// shape (missing metadata field, empty choice list). The offending item
	// is skipped, never fatal to the turn.
	ErrMalformedResponse = errors.New("malformed external response")
)

// CompletionError wraps a completion-service failure with provider context.
// It unwraps to ErrCompletionUnavailable so callers only need errors.Is.
type CompletionError struct {
	Model string
	Err   error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion failed (model=%s): %v", e.Model, e.Err)
}

func (e *CompletionError) Unwrap() error {
	return ErrCompletionUnavailable
}

// NewCompletionError creates a new completion error.
func NewCompletionError(model string, err error) *CompletionError {
	return &CompletionError{Model: model, Err: err}
}

// RetrievalError wraps a search-provider failure with collection context.
// It unwraps to ErrRetrievalUnavailable.
type RetrievalError struct {
	Collection string
	Err        error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed (collection=%s): %v", e.Collection, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return ErrRetrievalUnavailable
}

// NewRetrievalError creates a new retrieval error.
func NewRetrievalError(collection string, err error) *RetrievalError {
	return &RetrievalError{Collection: collection, Err: err}
}

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
