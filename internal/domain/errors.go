package domain

import (
	"errors"
	"fmt"
)

// Error types for domain-specific errors
type ErrorType string

const (
	ErrorTypeMalformed        ErrorType = "malformed"
	ErrorTypeEmptyDocument    ErrorType = "empty_document"
	ErrorTypeInvalidChunkSize ErrorType = "invalid_chunk_size"
	ErrorTypeRecognition      ErrorType = "recognition"
	ErrorTypeConfig           ErrorType = "config"
	ErrorTypeIO               ErrorType = "io"
)

// DomainError represents a domain-specific error with context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewError creates a new domain error
func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func MalformedError(message string, err error) *DomainError {
	return NewError(ErrorTypeMalformed, message, err)
}

func EmptyDocumentError(message string) *DomainError {
	return NewError(ErrorTypeEmptyDocument, message, nil)
}

func InvalidChunkSizeError(message string) *DomainError {
	return NewError(ErrorTypeInvalidChunkSize, message, nil)
}

func RecognitionError(message string, err error) *DomainError {
	return NewError(ErrorTypeRecognition, message, err)
}

func ConfigError(message string, err error) *DomainError {
	return NewError(ErrorTypeConfig, message, err)
}

func IOError(message string, err error) *DomainError {
	return NewError(ErrorTypeIO, message, err)
}

// IsType reports whether err is, or wraps, a DomainError of the given type.
func IsType(err error, errType ErrorType) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type == errType
	}
	return false
}
