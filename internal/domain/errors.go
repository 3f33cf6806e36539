package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors. Check with errors.Is.
var (
	// ErrSignedOut is returned when an operation needs an owner and none is set.
	ErrSignedOut = errors.New("no signed-in owner")

	// ErrNotFound indicates the bookmark does not exist for this owner.
	ErrNotFound = errors.New("bookmark not found")

	// ErrOwnerMismatch is returned when a store confirms a row that belongs
	// to an owner other than the one who submitted it.
	ErrOwnerMismatch = errors.New("bookmark owner does not match the signed-in owner")
)

// Validation codes carried by ValidationError.
const (
	CodeMissingFields = "missing_fields"
	CodeInvalidURL    = "invalid_url"
)

// ValidationError is a local input failure detected before any store call.
// It is never retried.
type ValidationError struct {
	Code string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Code
}

// Message is the user-facing notice for the validation failure.
func (e *ValidationError) Message() string {
	switch e.Code {
	case CodeMissingFields:
		return "Title and URL are required"
	case CodeInvalidURL:
		return "Please enter a valid URL"
	default:
		return "Invalid bookmark"
	}
}

// Store operations reported by RemoteError.
const (
	OpLoad   = "load"
	OpCreate = "create"
	OpDelete = "delete"
)

// RemoteError wraps any failure returned by a store during Load, Create or
// Delete. Err keeps the underlying cause for logs; Message is what users see.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	switch e.Op {
	case OpLoad:
		return fmt.Sprintf("failed to load bookmarks: %v", e.Err)
	case OpCreate:
		return fmt.Sprintf("failed to add bookmark: %v", e.Err)
	case OpDelete:
		return fmt.Sprintf("failed to delete bookmark: %v", e.Err)
	default:
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Message returns the generic notice for the failed operation. Only load
// failures expose the underlying message.
func (e *RemoteError) Message() string {
	switch e.Op {
	case OpLoad:
		return "Failed to load bookmarks: " + e.Err.Error()
	case OpCreate:
		return "Failed to add bookmark"
	case OpDelete:
		return "Failed to delete bookmark"
	default:
		return "Something went wrong"
	}
}

// UserMessage renders any error returned by the bookmark operations as a
// notification string.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message()
	}
	var rerr *RemoteError
	if errors.As(err, &rerr) {
		return rerr.Message()
	}
	if errors.Is(err, ErrSignedOut) {
		return "Please sign in first"
	}
	if errors.Is(err, ErrNotFound) {
		return "Bookmark not found"
	}
	return err.Error()
}

// IsValidation reports whether err is a ValidationError with the given code.
// An empty code matches any validation error.
func IsValidation(err error, code string) bool {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	return code == "" || verr.Code == code
}
