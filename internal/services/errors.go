package services

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map these to HTTP status codes with errors.Is.
var (
	ErrInvalid         = errors.New("invalid request")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)

// ServiceError carries a client-safe message and a kind
type ServiceError struct {
	Kind error
	Msg  string
}

func (e *ServiceError) Error() string { return e.Msg }

func (e *ServiceError) Unwrap() error { return e.Kind }

func invalid(msg string) error         { return &ServiceError{Kind: ErrInvalid, Msg: msg} }
func forbidden(msg string) error       { return &ServiceError{Kind: ErrForbidden, Msg: msg} }
func notFound(msg string) error        { return &ServiceError{Kind: ErrNotFound, Msg: msg} }
func unauthenticated(msg string) error { return &ServiceError{Kind: ErrUnauthenticated, Msg: msg} }

func invalidf(format string, args ...interface{}) error {
	return invalid(fmt.Sprintf(format, args...))
}

// Message returns the client-safe text of err, or fallback for internal errors
func Message(err error, fallback string) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Msg
	}
	return fallback
}
