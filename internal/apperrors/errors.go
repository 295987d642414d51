// Package apperrors holds the error vocabulary shared by the services and
// the HTTP layer. Every value here is a recoverable-by-caller condition;
// none indicates corrupted persistent state.
package apperrors

import (
	"errors"
	"fmt"

	"PMS-FORMS/internal/validation"
)

var (
	ErrDuplicateKey       = errors.New("a template with this key already exists")
	ErrTemplateNotFound   = errors.New("template not found")
	ErrVersionNotFound    = errors.New("version not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrNoPublishedVersion = errors.New("no published version available, please publish a version first")
	ErrInvalidFieldSchema = errors.New("invalid field schema")
	ErrConflict           = errors.New("template has versions with existing submissions")
	ErrRenderTimeout      = errors.New("pdf generation timed out")
)

// ValidationError carries the full ordered list of field-level violations
// produced by one validation pass, never just the first.
type ValidationError struct {
	Violations []validation.FieldViolation
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("payload validation failed with %d error(s)", len(e.Violations))
}

// RenderError wraps the external compositor's diagnostic text verbatim.
type RenderError struct {
	Detail string
}

func (e *RenderError) Error() string {
	return "pdf generation failed: " + e.Detail
}
