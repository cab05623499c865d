// Package apperr holds the closed set of failure kinds shared by the
// repositories and the HTTP handlers.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindStorage Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindNotFoundOrForbidden
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindNotFoundOrForbidden:
		return "not_found_or_forbidden"
	case KindConflict:
		return "conflict"
	default:
		return "storage"
	}
}

// Error is a classified failure. Message is safe to show to clients, Err is
// the underlying cause and is only ever logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality so callers can write errors.Is(err, apperr.ErrConflict).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrValidation          = &Error{Kind: KindValidation}
	ErrUnauthorized        = &Error{Kind: KindUnauthorized}
	ErrForbidden           = &Error{Kind: KindForbidden}
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrNotFoundOrForbidden = &Error{Kind: KindNotFoundOrForbidden}
	ErrConflict            = &Error{Kind: KindConflict}
	ErrStorage             = &Error{Kind: KindStorage}
)

func Validation(msg string) error { return &Error{Kind: KindValidation, Message: msg} }

func Unauthorized(msg string) error { return &Error{Kind: KindUnauthorized, Message: msg} }

func Forbidden(msg string) error { return &Error{Kind: KindForbidden, Message: msg} }

func NotFound(msg string) error { return &Error{Kind: KindNotFound, Message: msg} }

func NotFoundOrForbidden(msg string) error {
	return &Error{Kind: KindNotFoundOrForbidden, Message: msg}
}

func Conflict(msg string) error { return &Error{Kind: KindConflict, Message: msg} }

// Storage wraps an unexpected driver or filesystem fault.
func Storage(msg string, err error) error {
	return &Error{Kind: KindStorage, Message: msg, Err: err}
}

// KindOf returns the kind of err. Unclassified errors are storage faults.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// MessageOf returns the client-facing message of err, or fallback when err
// carries none.
func MessageOf(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" && e.Kind != KindStorage {
		return e.Message
	}
	return fallback
}
