package errors

import (
	"errors"
)

// AsError attempts to convert an error to an *Error.
// Returns the Error and true if successful, nil and false otherwise.
// This function traverses the error chain using errors.As.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// GetCode returns the error code from an error.
// If the error is not an *Error or is nil, returns an empty string.
func GetCode(err error) Code {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}

// HasCode checks if an error has the specified error code.
func HasCode(err error, code Code) bool {
	return GetCode(err) == code
}

// IsNotFound checks if the error is a not found error (NF_xxx).
func IsNotFound(err error) bool {
	e, ok := AsError(err)
	return ok && e.Code.Category() == "NF"
}

// IsValidation checks if the error is a validation error (VAL_xxx).
func IsValidation(err error) bool {
	e, ok := AsError(err)
	return ok && e.Code.Category() == "VAL"
}

// IsInternal checks if the error is an internal error (INT_xxx).
func IsInternal(err error) bool {
	e, ok := AsError(err)
	return ok && e.Code.Category() == "INT"
}

// IsUnavailable checks if the error is a service unavailable error
// (UNAVAIL_xxx).
func IsUnavailable(err error) bool {
	e, ok := AsError(err)
	return ok && e.Code.Category() == "UNAVAIL"
}

// IsTimeout checks if the error is a timeout error (TIMEOUT_xxx).
func IsTimeout(err error) bool {
	e, ok := AsError(err)
	return ok && e.Code.Category() == "TIMEOUT"
}

// StatusOf returns the HTTP status an error will be rendered with: the
// signal code for [*Status], the (defaulted) status for an [HTTPError],
// and 500 for everything else.
func StatusOf(err error) int {
	if s, ok := AsStatus(err); ok {
		return s.Code
	}
	if h, ok := AsHTTPError(err); ok {
		if code := h.HTTPStatus(); code != 0 {
			return code
		}
	}
	return 500
}

// IsClientError reports whether err is an [HTTPError] with a 4xx status.
func IsClientError(err error) bool {
	if KindOf(err) != KindHTTP {
		return false
	}
	code := StatusOf(err)
	return code >= 400 && code < 500
}

// IsServerError reports whether err would be rendered with a 5xx status.
// Unclassified errors count as server errors.
func IsServerError(err error) bool {
	if err == nil || KindOf(err) == KindSignal {
		return false
	}
	return StatusOf(err) >= 500
}
