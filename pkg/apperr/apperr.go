// Package apperr defines the application error taxonomy shared by all
// services. Handlers and services return these errors; the Echo error
// handler maps them to HTTP responses.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error for HTTP mapping.
type Kind int

const (
	// KindInternal is the fallback for unclassified errors.
	KindInternal Kind = iota
	// KindNotFound means the requested resource does not exist.
	KindNotFound
	// KindInvalid means the request payload failed validation.
	KindInvalid
	// KindDuplicate means a uniqueness constraint was violated.
	KindDuplicate
	// KindConflict means the operation conflicts with resource state,
	// such as deleting a parent that still has children.
	KindConflict
	// KindUnauthorized means missing or invalid credentials.
	KindUnauthorized
	// KindForbidden means the caller lacks the required role.
	KindForbidden
	// KindUnavailable means a dependency the operation needs is down.
	KindUnavailable
)

// Error is an application error with a kind and optional detail lines.
type Error struct {
	Kind    Kind
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound returns a not-found error for the named resource.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Invalid returns a validation error with per-field detail lines.
func Invalid(message string, details ...string) *Error {
	return &Error{Kind: KindInvalid, Message: message, Details: details}
}

// Duplicate returns a uniqueness-violation error.
func Duplicate(format string, args ...interface{}) *Error {
	return &Error{Kind: KindDuplicate, Message: fmt.Sprintf(format, args...)}
}

// Conflict returns a resource-state conflict error.
func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized returns an authentication error.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Forbidden returns an authorization error.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Unavailable returns a dependency-unavailable error wrapping the cause.
func Unavailable(message string, err error) *Error {
	return &Error{Kind: KindUnavailable, Message: message, Err: err}
}

// Internal wraps an unexpected error.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf extracts the kind from err, or KindInternal if it is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsNotFound reports whether err is a not-found application error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
