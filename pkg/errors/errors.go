package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies errors across the validation pipeline
type Kind string

const (
	// KindInput indicates a code that is absent from the reference tables entirely
	KindInput Kind = "INPUT"

	// KindModel indicates an external model failure, timeout, or a schema-invalid
	// response that survived the single retry
	KindModel Kind = "MODEL"

	// KindPersistence indicates a cache or audit write failure
	KindPersistence Kind = "PERSISTENCE"

	// KindNotFound indicates a resource was not found
	KindNotFound Kind = "NOT_FOUND"

	// KindInternal indicates an internal error
	KindInternal Kind = "INTERNAL"
)

// AppError represents an application error with a classified kind
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of an error, or KindInternal for unclassified errors
func KindOf(err error) Kind {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether the error carries the given kind
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// NewInputError creates an error for a code missing from the reference tables
func NewInputError(message string) *AppError {
	return &AppError{
		Kind:    KindInput,
		Message: message,
	}
}

// NewModelError creates an error for an external model failure
func NewModelError(message string, err error) *AppError {
	return &AppError{
		Kind:    KindModel,
		Message: message,
		Err:     err,
	}
}

// NewPersistenceError creates an error for a cache or audit write failure
func NewPersistenceError(message string, err error) *AppError {
	return &AppError{
		Kind:    KindPersistence,
		Message: message,
		Err:     err,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Kind:    KindInternal,
		Message: message,
		Err:     err,
	}
}
