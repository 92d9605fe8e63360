package errors

import (
	"fmt"
	"net/http"
)

// TitleUnknownError is the title given to errors produced by [UnknownError].
const TitleUnknownError = "Unknown Error"

// New creates a new Error with the specified code and message.
//
// Example:
//
//	err := errors.New(errors.CodeValidation, "email address is required")
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new Error with the specified code and formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with additional context.
// The wrapped error becomes the Cause of the new error.
// If err is nil, Wrap returns nil.
//
// Example:
//
//	if err := rdb.Ping(ctx).Err(); err != nil {
//	    return errors.Wrap(err, errors.CodeUnavailableDependency, "redis: ping failed")
//	}
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with a formatted message.
// If err is nil, Wrapf returns nil.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// BadRequest creates a 400 validation error.
func BadRequest(message string) *Error {
	return New(CodeValidation, message)
}

// NotFound creates a 404 not found error.
//
// Example:
//
//	return errors.NotFound("Not Found").WithDetail("widget_id", id)
func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

// Unauthorized creates a 401 authentication error.
func Unauthorized(message string) *Error {
	return New(CodeAuthentication, message)
}

// Forbidden creates a 403 authorization error.
func Forbidden(message string) *Error {
	return New(CodeAuthorization, message)
}

// Conflict creates a 409 conflict error.
func Conflict(message string) *Error {
	return New(CodeConflict, message)
}

// Internal creates a 500 internal error.
func Internal(message string) *Error {
	return New(CodeInternal, message)
}

// Unavailable creates a 503 service unavailable error.
func Unavailable(message string) *Error {
	return New(CodeUnavailable, message)
}

// UnknownError creates the generic internal error that replaces an
// unclassified error before it is rendered. description carries the
// original error text. The original error is deliberately not set as
// Cause, so its type cannot be recovered with errors.As.
func UnknownError(description string) *Error {
	return &Error{
		Code:        CodeInternal,
		Message:     TitleUnknownError,
		Description: description,
		Status:      http.StatusInternalServerError,
	}
}

// FromError converts a standard error to an Error.
// If the error is already an *Error, it is returned as-is.
// Otherwise, it is wrapped as an internal error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := AsError(err); ok {
		return e
	}
	return Wrap(err, CodeInternal, "an unexpected error occurred")
}
