package service

import "errors"

var (
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// Error carries a message meant for the end user plus a kind for status mapping.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func forbidden(msg string) error { return &Error{Kind: ErrForbidden, Message: msg} }

func invalid(msg string) error { return &Error{Kind: ErrInvalidInput, Message: msg} }

func notFound(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }
