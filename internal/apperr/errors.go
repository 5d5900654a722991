// Package apperr defines the error kinds returned by the domain services.
// Handlers map kinds to HTTP status codes; callers match them with errors.Is.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so transports can react without string matching.
type Kind string

const (
	KindValidation     Kind = "ValidationError"
	KindNotFound       Kind = "NotFound"
	KindIllegal        Kind = "IllegalTransition"
	KindTerminal       Kind = "TerminalStateViolation"
	KindStale          Kind = "StaleTransition"
	KindAllocation     Kind = "AllocationFailure"
	KindInfrastructure Kind = "InfrastructureError"
	KindUnauthorized   Kind = "Unauthorized"
	KindForbidden      Kind = "Forbidden"
)

// Error carries a kind, a caller-facing message and the optional cause.
type Error struct {
	Kind    Kind
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, apperr.ErrStale) works
// regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrValidation     = &Error{Kind: KindValidation}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrIllegal        = &Error{Kind: KindIllegal}
	ErrTerminal       = &Error{Kind: KindTerminal}
	ErrStale          = &Error{Kind: KindStale}
	ErrAllocation     = &Error{Kind: KindAllocation}
	ErrInfrastructure = &Error{Kind: KindInfrastructure}
	ErrForbidden      = &Error{Kind: KindForbidden}
)

func Validation(msg string, details any) *Error {
	return &Error{Kind: KindValidation, Message: msg, Details: details}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Illegal(format string, args ...any) *Error {
	return &Error{Kind: KindIllegal, Message: fmt.Sprintf(format, args...)}
}

func Terminal(format string, args ...any) *Error {
	return &Error{Kind: KindTerminal, Message: fmt.Sprintf(format, args...)}
}

func Stale(format string, args ...any) *Error {
	return &Error{Kind: KindStale, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func Allocation(name string, err error) *Error {
	return &Error{Kind: KindAllocation, Message: "allocate sequence " + name, Err: err}
}

// Infra wraps a storage failure. A nil err returns nil so it can wrap return values directly.
func Infra(msg string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: KindInfrastructure, Message: msg, Err: err}
}

// KindOf reports the kind of err, defaulting to InfrastructureError for foreign errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInfrastructure
}

// HTTPStatus maps a kind to the status code used by the JSON API.
func HTTPStatus(k Kind) int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindIllegal, KindTerminal, KindStale:
		return http.StatusConflict
	case KindAllocation:
		return http.StatusServiceUnavailable
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
