package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestCompletionErrorUnwrap(t *testing.T) {
	err := NewCompletionError("llama-3.3-70b-versatile", errors.New("429 too many requests"))

	if !errors.Is(err, ErrCompletionUnavailable) {
		t.Error("CompletionError should unwrap to ErrCompletionUnavailable")
	}
	if errors.Is(err, ErrRetrievalUnavailable) {
		t.Error("CompletionError should not match ErrRetrievalUnavailable")
	}
}

func TestRetrievalErrorUnwrap(t *testing.T) {
	err := NewRetrievalError("dining_places", errors.New("collection not found"))

	if !errors.Is(err, ErrRetrievalUnavailable) {
		t.Error("RetrievalError should unwrap to ErrRetrievalUnavailable")
	}
}

func TestWrappedSentinels(t *testing.T) {
	wrapped := fmt.Errorf("handling turn: %w", ErrLanguageMismatch)
	if !errors.Is(wrapped, ErrLanguageMismatch) {
		t.Error("wrapped sentinel should still match with errors.Is")
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("message", "must not be empty")

	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ValidationError should unwrap to ErrInvalidInput")
	}
	want := "validation failed on message: must not be empty"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
