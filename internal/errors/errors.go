package errors

import (
	stderrors "errors"
	"fmt"
)

// KBError is the structured error type for opskb.
// It carries a stable code for matching, a category and severity for
// logging, and an optional cause chain.
type KBError struct {
	// Code is the unique error code (e.g., "ERR_402_BLUEPRINT_METADATA").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Store, Parse, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error
}

// Error implements the error interface.
func (e *KBError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *KBError) Unwrap() error {
	return e.Cause
}

// Is matches the target error by code, enabling errors.Is with KBError.
func (e *KBError) Is(target error) bool {
	if t, ok := target.(*KBError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *KBError) WithDetail(key, value string) *KBError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new KBError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string) *KBError {
	return &KBError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
	}
}

// Newf creates a KBError with a formatted message.
func Newf(code string, format string, args ...any) *KBError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a KBError carrying a cause. The message describes what was
// being attempted; the cause says why it failed.
func Wrap(code string, message string, cause error) *KBError {
	err := New(code, message)
	err.Cause = cause
	return err
}

// IOError creates an I/O-related error.
func IOError(message string, cause error) *KBError {
	return Wrap(ErrCodeFileUnreadable, message, cause)
}

// StoreError creates a persistence-related error.
func StoreError(message string, cause error) *KBError {
	return Wrap(ErrCodeStoreQuery, message, cause)
}

// ValidationError creates an input validation error.
func ValidationError(message string, cause error) *KBError {
	return Wrap(ErrCodeInvalidInput, message, cause)
}

// HasCode reports whether err (or anything it wraps) is a KBError with the
// given code.
func HasCode(err error, code string) bool {
	return stderrors.Is(err, &KBError{Code: code})
}

// HasCategory reports whether err wraps a KBError in the given category.
func HasCategory(err error, category Category) bool {
	var kbErr *KBError
	for e := err; e != nil; {
		if stderrors.As(e, &kbErr) {
			if kbErr.Category == category {
				return true
			}
			e = kbErr.Cause
			continue
		}
		return false
	}
	return false
}

// CodeOf returns the code of the outermost KBError in err's chain, or ""
// if there is none.
func CodeOf(err error) string {
	var kbErr *KBError
	if stderrors.As(err, &kbErr) {
		return kbErr.Code
	}
	return ""
}
