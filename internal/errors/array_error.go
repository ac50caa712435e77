// Package errors provides standardized error types for array operations.
// This package defines ArrayError for consistent error handling across
// all public APIs, with operation context and error wrapping support.
package errors

import (
	"fmt"
)

// Kind classifies an ArrayError for programmatic inspection
type Kind int

const (
	// KindDomain indicates a scalar that cannot be represented in the array's physical domain
	KindDomain Kind = iota
	// KindBounds indicates an out-of-range index
	KindBounds
	// KindLength indicates an indexer/value length mismatch
	KindLength
	// KindDTypeMismatch indicates concatenation of arrays with differing logical dtype
	KindDTypeMismatch
	// KindNotImplemented indicates an operation undefined for the current shape or mode
	KindNotImplemented
	// KindAbstractMethod indicates a required extension hook was not supplied
	KindAbstractMethod
)

func (k Kind) String() string {
	switch k {
	case KindDomain:
		return "domain"
	case KindBounds:
		return "bounds"
	case KindLength:
		return "length"
	case KindDTypeMismatch:
		return "dtype-mismatch"
	case KindNotImplemented:
		return "not-implemented"
	case KindAbstractMethod:
		return "abstract-method"
	default:
		return "unknown"
	}
}

// ArrayError represents standardized errors across all array operations
type ArrayError struct {
	Op      string // Operation name (e.g., "Take", "Insert", "FillNA")
	Kind    Kind   // Error classification
	Message string // Human-readable error description
	Cause   error  // Underlying error cause
}

// Error implements the error interface
func (e *ArrayError) Error() string {
	return fmt.Sprintf("%s operation failed (%s): %s", e.Op, e.Kind, e.Message)
}

// Unwrap returns the underlying cause for error wrapping support
func (e *ArrayError) Unwrap() error {
	return e.Cause
}

// Is implements error equality checking for errors.Is()
func (e *ArrayError) Is(target error) bool {
	if ae, ok := target.(*ArrayError); ok {
		return e.Op == ae.Op && e.Kind == ae.Kind && e.Message == ae.Message
	}
	return false
}

// IsKind reports whether err is an ArrayError of the given kind
func IsKind(err error, kind Kind) bool {
	ae, ok := err.(*ArrayError)
	return ok && ae.Kind == kind
}

// Common error constructors for consistent error creation

// NewDomainError creates an error for scalars outside the array's physical domain
func NewDomainError(op string, value interface{}) *ArrayError {
	return &ArrayError{
		Op:      op,
		Kind:    KindDomain,
		Message: fmt.Sprintf("value %v (%T) cannot be represented in the array's domain", value, value),
	}
}

// NewBoundsError creates an error for out-of-range index access
func NewBoundsError(op string, index, length int) *ArrayError {
	return &ArrayError{
		Op:      op,
		Kind:    KindBounds,
		Message: fmt.Sprintf("index %d out of bounds for length %d", index, length),
	}
}

// NewLengthMismatchError creates an error for indexer/value length disagreement
func NewLengthMismatchError(op string, expected, actual int) *ArrayError {
	return &ArrayError{
		Op:      op,
		Kind:    KindLength,
		Message: fmt.Sprintf("length of indexer (%d) and values (%d) mismatch", expected, actual),
	}
}

// NewDTypeMismatchError creates an error for concatenation of differing dtypes,
// carrying the offending set of dtype names for diagnostics
func NewDTypeMismatchError(op string, dtypes []string) *ArrayError {
	return &ArrayError{
		Op:      op,
		Kind:    KindDTypeMismatch,
		Message: fmt.Sprintf("inputs must share the same dtype, got %v", dtypes),
	}
}

// NewNotImplementedError creates an error for operations undefined in the current mode
func NewNotImplementedError(op, message string) *ArrayError {
	return &ArrayError{
		Op:      op,
		Kind:    KindNotImplemented,
		Message: message,
	}
}

// NewAbstractMethodError creates an error for a missing extension hook.
// This is a programming error and is never caught internally.
func NewAbstractMethodError(op, hook string) *ArrayError {
	return &ArrayError{
		Op:      op,
		Kind:    KindAbstractMethod,
		Message: fmt.Sprintf("extension hook %s not supplied by the concrete family", hook),
	}
}

// NewInvalidInputError creates an error for invalid operation inputs
func NewInvalidInputError(op, message string) *ArrayError {
	return &ArrayError{
		Op:      op,
		Kind:    KindDomain,
		Message: message,
	}
}
