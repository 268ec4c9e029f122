// Package apperr carries the error taxonomy shared by every layer.  An
// *Error pairs a Kind (which decides the HTTP status) with a message that
// is safe to show to clients; the wrapped cause and the stack captured by
// cockroachdb/errors stay server side.
package apperr

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Kind classifies an error.
type Kind int

const (
	Internal Kind = iota
	Validation
	NotFound
	Unauthorized
	Forbidden
	Conflict
	TooManyRequests
	TokenExpired
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case Conflict:
		return "conflict"
	case TooManyRequests:
		return "too_many_requests"
	case TokenExpired:
		return "token_expired"
	}
	return "internal"
}

// Status maps a kind onto an HTTP status code.
func (k Kind) Status() int {
	switch k {
	case Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Unauthorized, TokenExpired:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case Conflict:
		return http.StatusConflict
	case TooManyRequests:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	// Details is optional structured context rendered next to the message,
	// e.g. offending fields or the shows a new show collides with.
	Details interface{}
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New returns a classified error with a stack trace.
func New(kind Kind, msg string) error {
	return errors.WithStackDepth(&Error{Kind: kind, Message: msg}, 1)
}

// Wrap classifies cause.  The cause's text is never shown to clients.
func Wrap(cause error, kind Kind, msg string) error {
	if cause == nil {
		return nil
	}
	return errors.WithStackDepth(&Error{Kind: kind, Message: msg, cause: cause}, 1)
}

// WithDetails returns a classified error carrying structured details.
func WithDetails(kind Kind, msg string, details interface{}) error {
	return errors.WithStackDepth(&Error{Kind: kind, Message: msg, Details: details}, 1)
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err; unclassified errors are Internal.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return Internal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Status returns the HTTP status for err.
func Status(err error) int { return KindOf(err).Status() }

// Message returns the client safe message for err.  Internal errors never
// leak their text.
func Message(err error) string {
	if e, ok := As(err); ok && e.Kind != Internal {
		return e.Message
	}
	return "Internal server error"
}

// Convenience constructors for the common kinds.

func NotFoundf(format string, args ...interface{}) error {
	return newf(NotFound, format, args)
}

func Invalidf(format string, args ...interface{}) error {
	return newf(Validation, format, args)
}

func Conflictf(format string, args ...interface{}) error {
	return newf(Conflict, format, args)
}

func Forbiddenf(format string, args ...interface{}) error {
	return newf(Forbidden, format, args)
}

func Unauthorizedf(format string, args ...interface{}) error {
	return newf(Unauthorized, format, args)
}

// newf records the stack of the exported constructor's caller.
func newf(kind Kind, format string, args []interface{}) error {
	return errors.WithStackDepth(&Error{Kind: kind, Message: fmt.Sprintf(format, args...)}, 2)
}
