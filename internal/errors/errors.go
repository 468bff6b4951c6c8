package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Kind classifies a service error for the API boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindPermission
	KindTransient
)

// Error is the domain error carried between service and API layers.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validation flags user-correctable input problems.
func Validation(msg string) error { return &Error{Kind: KindValidation, Msg: msg} }

// Validationf is Validation with formatting.
func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// NotFound flags a missing referenced entity.
func NotFound(msg string) error { return &Error{Kind: KindNotFound, Msg: msg} }

// Conflict flags duplicates and self-references.
func Conflict(msg string) error { return &Error{Kind: KindConflict, Msg: msg} }

// Permission flags an actor not authorized for the target resource.
func Permission(msg string) error { return &Error{Kind: KindPermission, Msg: msg} }

// Transient flags recoverable infra failures. Callers are expected to
// degrade (fall back to the uncached path) rather than surface these.
func Transient(msg string, err error) error {
	return &Error{Kind: KindTransient, Msg: msg, Err: err}
}

// Map normalizes repo/infra errors into domain errors.
// Keeps the service layer clean by centralizing the conversion.
func Map(err error) error {
	if err == nil {
		return nil
	}

	var de *Error
	if errors.As(err, &de) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: KindNotFound, Msg: "record not found", Err: err}

	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &Error{Kind: KindConflict, Msg: "duplicate record", Err: err}

	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTransient, Msg: "request timed out", Err: err}

	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindTransient, Msg: "request was canceled", Err: err}

	default:
		return &Error{Kind: KindInternal, Msg: "internal error", Err: err}
	}
}

// KindOf extracts the Kind of a (possibly wrapped) domain error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool { return KindOf(err) == k }

// HTTPStatus maps a domain error to an HTTP status code. Unexpected errors
// collapse to 500 so internal state never leaks to the caller.
func HTTPStatus(err error) int {
	switch KindOf(Map(err)) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindPermission:
		return http.StatusForbidden
	case KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the caller-safe message for err.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Kind != KindInternal {
		return de.Msg
	}
	return "internal server error"
}
