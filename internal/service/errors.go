package service

import (
	"errors"
	"fmt"
)

// Code classifies a failure independently of the transport that reports it.
type Code int

const (
	CodeInvalidArgument Code = iota + 1
	CodeUnauthenticated
	CodeNotFound
	CodeAlreadyExists
	CodeInternal
)

func (c Code) String() string {
	switch c {
	case CodeInvalidArgument:
		return "InvalidArgument"
	case CodeUnauthenticated:
		return "Unauthenticated"
	case CodeNotFound:
		return "NotFound"
	case CodeAlreadyExists:
		return "AlreadyExists"
	case CodeInternal:
		return "Internal"
	default:
		return fmt.Sprintf("Code(%d)", int(c))
	}
}

// Error is returned by every Service operation that fails. Message is safe
// to show to clients; Err, when set, is not.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// CodeOf reports the Code carried by err. Errors that did not originate in
// this package are Internal.
func CodeOf(err error) Code {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeInternal
}

// MessageOf returns the client-facing message of err.
func MessageOf(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Message
	}
	return msgInternal
}

func invalid(msg string) *Error { return &Error{Code: CodeInvalidArgument, Message: msg} }
func notFound(msg string) *Error { return &Error{Code: CodeNotFound, Message: msg} }
func unauthenticated(msg string, err error) *Error {
	return &Error{Code: CodeUnauthenticated, Message: msg, Err: err}
}

const (
	msgInternal        = "Internal server error"
	msgCredsRequired   = "Email and password are required"
	msgPasswordShort   = "Password must be at least 6 characters long"
	msgPasswordLong    = "Password must be at most 72 bytes long"
	msgEmailTaken      = "Email already exists"
	msgBadCredentials  = "Invalid email or password"
	msgInvalidUserID   = "Invalid user ID"
	msgBadUserIDFormat = "Invalid user ID format"
	msgUserNotFound    = "User not found"
	msgTitleRequired   = "Title is required and must be at least 1 character long"
	msgInvalidStatus   = "Status must be pending, in_progress, or completed"
	msgOwnerRequired   = "Valid user ID is required"
	msgInvalidTaskID   = "Valid task ID is required"
	msgTaskNotFound    = "Task not found or you do not have permission"
)

const minPasswordLength = 6
