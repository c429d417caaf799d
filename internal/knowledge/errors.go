package knowledge

import (
	"errors"
	"fmt"
)

// KnowledgeError defines the interface for knowledge base errors
type KnowledgeError interface {
	error
	Code() string
	Message() string
}

// ErrEmptySource is returned when a source yields no document at all
var ErrEmptySource = errors.New("knowledge source is empty")

// SourceError represents a missing or unreadable knowledge source
type SourceError struct {
	Source   string
	Location string
	Cause    error
}

func (e SourceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("knowledge source %s (%s) unavailable: %v", e.Source, e.Location, e.Cause)
	}
	return fmt.Sprintf("knowledge source %s (%s) unavailable", e.Source, e.Location)
}

func (e SourceError) Code() string {
	return "SOURCE_UNAVAILABLE"
}

func (e SourceError) Message() string {
	return "knowledge source could not be read"
}

func (e SourceError) Unwrap() error {
	return e.Cause
}

// DecodeError represents a malformed knowledge document
type DecodeError struct {
	Source string
	Cause  error
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("malformed knowledge document from %s: %v", e.Source, e.Cause)
}

func (e DecodeError) Code() string {
	return "MALFORMED_DOCUMENT"
}

func (e DecodeError) Message() string {
	return "knowledge document is not valid FAQ JSON"
}

func (e DecodeError) Unwrap() error {
	return e.Cause
}

// ValidationError represents an entry that violates a collection invariant
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid entry at position %d, field %s: %s", e.Index, e.Field, e.Reason)
}

func (e ValidationError) Code() string {
	return "INVALID_ENTRY"
}

func (e ValidationError) Message() string {
	return e.Reason
}

// NewValidationError creates a new ValidationError
func NewValidationError(index int, field, reason string) error {
	return ValidationError{Index: index, Field: field, Reason: reason}
}

// IsSourceError determines if an error comes from a missing source
func IsSourceError(err error) bool {
	var target SourceError
	return errors.As(err, &target)
}

// IsDecodeError determines if an error comes from a malformed document
func IsDecodeError(err error) bool {
	var target DecodeError
	return errors.As(err, &target)
}

// IsValidationError determines if an error comes from entry validation
func IsValidationError(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}
