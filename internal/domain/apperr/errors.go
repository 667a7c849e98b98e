package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by the domain services and mapped to HTTP statuses by the transport.
var (
	ErrUnauthenticated   = errors.New("authentication required")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid state")
	ErrValidation        = errors.New("validation error")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrConfiguration     = errors.New("configuration error")
	ErrUnavailable       = errors.New("service unavailable")
)

type FieldError struct {
	Field  string
	Reason string
}

// ValidationError carries one or more field failures. Reason of the first
// failure is what callers see.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		if fe.Field == "" {
			parts = append(parts, fe.Reason)
			continue
		}
		parts = append(parts, fe.Field+": "+fe.Reason)
	}
	return "validation: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Reason returns the first human readable failure.
func (e *ValidationError) Reason() string {
	if len(e.Errors) == 0 {
		return ErrValidation.Error()
	}
	return e.Errors[0].Reason
}

func Validation(field, reason string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Reason: reason}}}
}

// ConfigurationError reports a missing or malformed policy entry. It is an
// operator problem, never a caller one.
type ConfigurationError struct {
	Key    string
	Detail string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Key, e.Detail)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }
