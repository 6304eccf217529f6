package service

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by a service matches exactly one of them
// via errors.Is, which is how the API layer picks a status code.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden") // role checks; ownership failures report ErrNotFound
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrStorage      = errors.New("storage failure")
)

// Error is a client-facing failure: Msg is safe to show, Kind is one of the categories above.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// validationError builds a one-off ErrValidation with a formatted message.
func validationError(format string, args ...any) error {
	return newError(ErrValidation, fmt.Sprintf(format, args...))
}

// storageError tags a repository or object storage failure so the API reports a generic 500.
func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrStorage, err))
}
