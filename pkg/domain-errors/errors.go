// Package domainerrors defines the error kinds the lifecycle core returns to its
// callers. Stores speak in sentinel facts (pkg/platform/sentinel); services
// translate those facts into a Code so the transport layer can map them without
// knowing anything about persistence.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies an error kind. Codes are stable strings and appear verbatim in
// the "error" field of HTTP error bodies.
type Code string

const (
	CodeNotFound        Code = "not_found"
	CodeDuplicateKey    Code = "duplicate_key"
	CodeStaleWrite      Code = "stale_write"
	CodeUnauthenticated Code = "unauthenticated"
	CodeValidation      Code = "validation_failed"
	CodeBadRequest      Code = "bad_request"
	CodeInternal        Code = "internal_error"
)

// Error is a coded error. Fields carries per-field validation messages when the
// code is CodeValidation.
type Error struct {
	Code    Code
	Message string
	Fields  []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// Validation creates a CodeValidation error carrying field messages.
func Validation(msg string, fields ...string) *Error {
	return &Error{Code: CodeValidation, Message: msg, Fields: fields}
}

// As returns the outermost coded error in the chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether any coded error in the chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// Is reports whether the outermost coded error carries code.
func Is(err error, code Code) bool {
	de, ok := As(err)
	return ok && de.Code == code
}

// CodeOf returns the outermost code, or CodeInternal for uncoded errors.
func CodeOf(err error) Code {
	if de, ok := As(err); ok {
		return de.Code
	}
	return CodeInternal
}
