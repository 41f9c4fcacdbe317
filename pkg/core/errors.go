package core

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the sync engine or the remote gateway can
// surface. The gateway maps transport and HTTP failures into this taxonomy
// before they reach the engine; the engine never inspects raw status codes.
type Kind string

const (
	KindAuthRequired     Kind = "AUTH_REQUIRED"
	KindAuthInvalid      Kind = "AUTH_INVALID"
	KindPermissionDenied Kind = "PERMISSION_DENIED"
	KindNoteNotFound     Kind = "NOTE_NOT_FOUND"
	KindRateLimited      Kind = "RATE_LIMITED"
	KindServerError      Kind = "SERVER_ERROR"
	KindConnectionFailed Kind = "CONNECTION_FAILED"
	KindConflictRemote   Kind = "SYNC_CONFLICT_REMOTE"
	KindConflictLocal    Kind = "SYNC_CONFLICT_LOCAL"
	KindMetadataMissing  Kind = "SYNC_METADATA_MISSING"
	KindNotLinked        Kind = "SYNC_NOT_LINKED"
	KindInvalidURL       Kind = "INVALID_URL"
	KindNoDocument       Kind = "NO_ACTIVE_DOCUMENT"
	KindUnknown          Kind = "UNKNOWN"
)

// Error is a classified sync error. One Error reaches the command layer
// per failed operation; only that layer turns it into a user message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a classified error.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Errorf creates a classified error with a formatted message. A trailing
// %w verb wraps the cause as usual.
func Errorf(kind Kind, format string, args ...any) *Error {
	err := fmt.Errorf(format, args...)
	return &Error{Kind: kind, Message: err.Error(), Err: errors.Unwrap(err)}
}

// WrapError attaches a classification to an underlying error.
func WrapError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the classification from err. Unclassified errors report
// KindUnknown; a nil error has no kind and reports the empty string.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given classification.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
