package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrConflict      = errors.New("conflict")
)

// Translation pipeline outcomes. Every failed translation surfaces as one of
// these or as an opaque backend error.
var (
	ErrNotConfigured           = errors.New("translation not configured")
	ErrLanguagePackRequired    = errors.New("language pack required")
	ErrLanguagePairUnsupported = errors.New("language pair unsupported")
	ErrTimeout                 = errors.New("translation timed out")
	ErrCancelled               = errors.New("translation cancelled")
)

// ErrBackendBusy marks a transient backend condition (busy, still starting).
// Adapters wrap it so the pipeline retries instead of failing the request.
var ErrBackendBusy = errors.New("translation backend busy")

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}
