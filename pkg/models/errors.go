package models

import (
	"errors"
	"fmt"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrTransport     = errors.New("transport error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
)

// ValidationError rejects input before any state is touched.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError formats a ValidationError.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// TransportError covers network failures and non-2xx responses.
type TransportError struct {
	StatusCode int // 0 when no response was received
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	return e.Message
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// ConfigurationError is raised when a required setting is missing.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }
