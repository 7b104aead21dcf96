package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is against these.
var (
	ErrNotFound              = errors.New("not found")
	ErrConflict              = errors.New("conflict")
	ErrInvalidInput          = errors.New("invalid input")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrUnauthorized          = errors.New("unauthorized")
)

// Error carries a caller-facing message and one of the error kinds above.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

// NotFoundf returns an ErrNotFound error with a formatted message.
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Conflictf returns an ErrConflict error with a formatted message.
func Conflictf(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Msg: fmt.Sprintf(format, args...)}
}

// InvalidInputf returns an ErrInvalidInput error with a formatted message.
func InvalidInputf(format string, args ...any) error {
	return &Error{Kind: ErrInvalidInput, Msg: fmt.Sprintf(format, args...)}
}

// Unavailablef returns an ErrDependencyUnavailable error wrapping cause.
func Unavailablef(cause error, format string, args ...any) error {
	return &Error{Kind: ErrDependencyUnavailable, Msg: fmt.Sprintf(format, args...) + ": " + cause.Error()}
}
