package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different kinds of errors that can occur during a backup run
type ErrorType string

const (
	ErrorTypeTransport ErrorType = "transport"
	ErrorTypeAPI       ErrorType = "api"
	ErrorTypeConfig    ErrorType = "config"
	ErrorTypeSchema    ErrorType = "schema"
)

// Op names the remote operation that failed
type Op string

const (
	OpFetch        Op = "fetch"
	OpCreateFolder Op = "create_folder"
	OpUpload       Op = "upload"
)

// Error represents a typed failure with the operation it happened in
type Error struct {
	Type    ErrorType
	Op      Op
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error", e.Type)
	if e.Op != "" {
		msg = fmt.Sprintf("%s %s", e.Op, msg)
	}
	if e.Code != 0 {
		msg = fmt.Sprintf("%s (code %d)", msg, e.Code)
	}
	if e.Message != "" {
		msg = msg + ": " + e.Message
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transport builds a TransportError: network failure or unexpected HTTP status
func Transport(op Op, code int, message string, err error) *Error {
	return &Error{Type: ErrorTypeTransport, Op: op, Code: code, Message: message, Err: err}
}

// API builds an ApiError: the remote service answered but reported a failure in the payload
func API(op Op, code int, message string) *Error {
	return &Error{Type: ErrorTypeAPI, Op: op, Code: code, Message: message}
}

// Schema builds a SchemaError for payloads that do not match the expected shape
func Schema(op Op, message string, err error) *Error {
	return &Error{Type: ErrorTypeSchema, Op: op, Message: message, Err: err}
}

// Config builds a ConfigError
func Config(message string, err error) *Error {
	return &Error{Type: ErrorTypeConfig, Message: message, Err: err}
}

// TypeOf returns the ErrorType of the first *Error in err's chain, or "" if there is none
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ""
}

// OpOf returns the Op of the first *Error in err's chain
func OpOf(err error) Op {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Op
	}
	return ""
}

// IsType reports whether err carries the given ErrorType
func IsType(err error, t ErrorType) bool {
	return TypeOf(err) == t
}
