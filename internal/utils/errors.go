package utils

import (
	"errors"
	"net/http"
	"sort"
	"strings"
)

// StatusError is an error that knows the HTTP status it should surface as.
// Its message is safe to show to the user.
type StatusError interface {
	error
	StatusCode() int
}

// Error is a user-facing business rule rejection.
type Error struct {
	Status int
	Msg    string
}

func (e *Error) Error() string   { return e.Msg }
func (e *Error) StatusCode() int { return e.Status }

// NewError builds a rejection with the given status and message.
func NewError(status int, msg string) *Error {
	return &Error{Status: status, Msg: msg}
}

var (
	ErrNotFound     = NewError(http.StatusNotFound, "Not found")
	ErrUnauthorized = NewError(http.StatusUnauthorized, "Unauthorized")
	ErrForbidden    = NewError(http.StatusForbidden, "Forbidden")
)

// ValidationError maps request fields to the message shown next to them.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError with a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

// IsValidation reports whether err carries field errors.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
