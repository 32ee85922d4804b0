// Package goerror carries the error taxonomy shared by stores, usecases and
// the HTTP error codec. Stores return the sentinels; usecases wrap outcomes in
// *Error, whose Code picks the response status.
package goerror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned by stores when no row matches.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict is returned by stores on a unique constraint violation.
	ErrConflict = errors.New("resource conflict")
)

// Type classifies errors into high-level buckets.
type Type int

const (
	TypeServer Type = iota
	TypeBusiness
	TypeValidation
)

func (t Type) String() string {
	switch t {
	case TypeServer:
		return "server"
	case TypeBusiness:
		return "business"
	case TypeValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Code is a stable identifier mapped to an HTTP status.
type Code int

const (
	CodeInternal Code = iota
	CodeInvalidFormat
	CodeInvalidInput
	CodeNotFound
	CodeConflict
	// CodeNotAcceptable marks a rejected password or one-time code.
	CodeNotAcceptable
)

var codes = map[Code]struct {
	name   string
	status int
}{
	CodeInternal:      {"internal", http.StatusInternalServerError},
	CodeInvalidFormat: {"invalid_format", http.StatusBadRequest},
	CodeInvalidInput:  {"invalid_input", http.StatusUnprocessableEntity},
	CodeNotFound:      {"not_found", http.StatusNotFound},
	CodeConflict:      {"conflict", http.StatusConflict},
	CodeNotAcceptable: {"not_acceptable", http.StatusNotAcceptable},
}

func (c Code) String() string {
	if info, ok := codes[c]; ok {
		return info.name
	}
	return codes[CodeInternal].name
}

// Error is a classified error with a user-facing message. It may wrap the
// cause and, for validation failures, carry per-field messages.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
	fields  map[string]string
}

// Error prefers the wrapped cause so logs show what actually failed.
func (e *Error) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	if e.msg != "" {
		return e.msg
	}
	return e.errType.String() + " error"
}

// String is the verbose form used in debug logs.
func (e *Error) String() string {
	return fmt.Sprintf("type=%s code=%s msg=%q cause=%v", e.errType, e.code, e.msg, e.err)
}

func (e *Error) Msg() string               { return e.msg }
func (e *Error) Type() Type                { return e.errType }
func (e *Error) Code() Code                { return e.code }
func (e *Error) Fields() map[string]string { return e.fields }
func (e *Error) Unwrap() error             { return e.err }

// StatusCode maps Code to an HTTP status, defaulting to 500.
func (e *Error) StatusCode() int {
	if info, ok := codes[e.code]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

func newError(err error, msg string, et Type, code Code) *Error {
	return &Error{err: err, msg: msg, errType: et, code: code}
}

// NewServer wraps an unexpected failure. The cause is never shown to clients
// unless the router is configured to expose it.
func NewServer(err error) error {
	return newError(err, "Internal server error", TypeServer, CodeInternal)
}

func NewBusiness(msg string, code Code) error {
	return newError(nil, msg, TypeBusiness, code)
}

func NewNotFound(msg string) error {
	return NewBusiness(msg, CodeNotFound)
}

func NewNotAcceptable(msg string) error {
	return NewBusiness(msg, CodeNotAcceptable)
}

// IsServer reports whether err carries a server-type *Error.
func IsServer(err error) bool {
	var gerr *Error
	return errors.As(err, &gerr) && gerr.errType == TypeServer
}

// NewInvalidInput wraps a validator error, or builds one from field/message
// pairs when err is nil. An odd pair count yields an invalid format error.
func NewInvalidInput(err error, kv ...string) error {
	if err != nil {
		return newError(err, "Validation error", TypeValidation, CodeInvalidInput)
	}
	if len(kv)%2 != 0 {
		return NewInvalidFormat()
	}

	e := newError(nil, "Validation error", TypeValidation, CodeInvalidInput)
	e.fields = make(map[string]string, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		e.fields[kv[i]] = kv[i+1]
	}
	return e
}

// NewInvalidFormat reports an unreadable request body; msgs[0] overrides the
// default message.
func NewInvalidFormat(msgs ...string) error {
	msg := "Invalid request body"
	if len(msgs) > 0 {
		msg = msgs[0]
	}
	return newError(nil, msg, TypeValidation, CodeInvalidFormat)
}
