package types

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents an error that occurs during validation.
type ValidationError struct {
	Message string
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new ValidationError with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		Message: message,
	}
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// WrapValidationError wraps an error with additional context.
func WrapValidationError(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}

	message := fmt.Sprintf(format, args...)
	var ve *ValidationError
	if errors.As(err, &ve) {
		return &ValidationError{
			Message: fmt.Sprintf("%s: %s", message, ve.Message),
		}
	}

	return &ValidationError{
		Message: fmt.Sprintf("%s: %v", message, err),
	}
}

// MalformedPayloadError is returned when input does not decode against the
// declared generation's schema.
type MalformedPayloadError struct {
	Message string
	Err     error
}

func (e *MalformedPayloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed payload: %s: %v", e.Message, e.Err)
	}
	return "malformed payload: " + e.Message
}

func (e *MalformedPayloadError) Unwrap() error { return e.Err }

// NewMalformedPayloadError creates a MalformedPayloadError.
func NewMalformedPayloadError(message string, err error) *MalformedPayloadError {
	return &MalformedPayloadError{Message: message, Err: err}
}

// IsMalformedPayload checks if an error is a MalformedPayloadError.
func IsMalformedPayload(err error) bool {
	var e *MalformedPayloadError
	return errors.As(err, &e)
}

// UnsupportedPayloadVersionError is returned when no generation is registered
// for the requested version.
type UnsupportedPayloadVersionError struct {
	Version string
	Err     error
}

func (e *UnsupportedPayloadVersionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unsupported payload version %q: %v", e.Version, e.Err)
	}
	return fmt.Sprintf("unsupported payload version %q", e.Version)
}

func (e *UnsupportedPayloadVersionError) Unwrap() error { return e.Err }

// NewUnsupportedPayloadVersionError creates an UnsupportedPayloadVersionError.
func NewUnsupportedPayloadVersionError(version string, err error) *UnsupportedPayloadVersionError {
	return &UnsupportedPayloadVersionError{Version: version, Err: err}
}

// IsUnsupportedPayloadVersion checks if an error is an UnsupportedPayloadVersionError.
func IsUnsupportedPayloadVersion(err error) bool {
	var e *UnsupportedPayloadVersionError
	return errors.As(err, &e)
}

// FieldViolation names one field that differs from the observed cluster but may
// not be changed.
type FieldViolation struct {
	Path     FieldPath `json:"path"`
	Actual   any       `json:"actual"`
	Expected any       `json:"expected"`
}

// ImmutableFieldError is returned when an update request changes fields that are
// fixed after creation. Violations are sorted by path.
type ImmutableFieldError struct {
	Violations []FieldViolation
}

func (e *ImmutableFieldError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s (actual: %v, expected: %v)", v.Path, v.Actual, v.Expected))
	}
	return "immutable fields cannot be changed: " + strings.Join(parts, ", ")
}

// Paths returns the offending paths in order.
func (e *ImmutableFieldError) Paths() []FieldPath {
	out := make([]FieldPath, 0, len(e.Violations))
	for _, v := range e.Violations {
		out = append(out, v.Path)
	}
	return out
}

// IsImmutableFieldViolation checks if an error is an ImmutableFieldError.
func IsImmutableFieldViolation(err error) bool {
	var e *ImmutableFieldError
	return errors.As(err, &e)
}

// ConflictingOperationError is returned when one request asks for more than one
// kind of change.
type ConflictingOperationError struct {
	Message string
}

func (e *ConflictingOperationError) Error() string {
	return e.Message
}

// NewConflictingOperationError creates a ConflictingOperationError.
func NewConflictingOperationError(message string) *ConflictingOperationError {
	return &ConflictingOperationError{Message: message}
}

// IsConflictingOperation checks if an error is a ConflictingOperationError.
func IsConflictingOperation(err error) bool {
	var e *ConflictingOperationError
	return errors.As(err, &e)
}

// EntityNotFoundError is returned by store lookups that miss.
type EntityNotFoundError struct {
	ID string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("entity %s not found", e.ID)
}

// NewEntityNotFoundError creates an EntityNotFoundError.
func NewEntityNotFoundError(id string) *EntityNotFoundError {
	return &EntityNotFoundError{ID: id}
}

// IsEntityNotFound checks if an error is an EntityNotFoundError.
func IsEntityNotFound(err error) bool {
	var e *EntityNotFoundError
	return errors.As(err, &e)
}

// ConversionUnsupportedError is returned when there is no migration path
// between two generations.
type ConversionUnsupportedError struct {
	From Generation
	To   Generation
}

func (e *ConversionUnsupportedError) Error() string {
	return fmt.Sprintf("no conversion from generation %s to %s", e.From, e.To)
}

// NewConversionUnsupportedError creates a ConversionUnsupportedError.
func NewConversionUnsupportedError(from, to Generation) *ConversionUnsupportedError {
	return &ConversionUnsupportedError{From: from, To: to}
}

// IsConversionUnsupported checks if an error is a ConversionUnsupportedError.
func IsConversionUnsupported(err error) bool {
	var e *ConversionUnsupportedError
	return errors.As(err, &e)
}
