package errors

import (
	"fmt"
	"maps"
	"net/http"
)

// Error represents a structured HTTP error with a code, a client-facing
// title and description, and an optional cause. It implements [HTTPError],
// so the classifier reports it with a severity derived from its status.
//
// Error values are treated as immutable: the With* helpers return copies.
type Error struct {
	// Code is the machine-readable error code (e.g., "NF_001").
	Code Code

	// Message is the short human-readable title of the error
	// (e.g., "Not Found"). It is rendered to clients.
	Message string

	// Description is an optional longer explanation. For errors
	// translated by [UnknownError] it holds the original error text.
	Description string

	// Status overrides the HTTP status derived from Code when non-zero.
	Status int

	// Cause is the underlying error that caused this error, if any.
	// Cause is never included in [Error.ToMap].
	Cause error

	// Details contains additional structured data about the error. Details
	// are merged into [Error.ToMap] and therefore into report payloads.
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of this error, supporting
// errors.Unwrap() and errors.Is() from the standard library.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns [Error.Status] if set, otherwise the status implied
// by the code category. Unknown categories map to 500.
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Code.Category() {
	case "VAL":
		return http.StatusBadRequest
	case "AUTH":
		return http.StatusUnauthorized
	case "AUTHZ":
		return http.StatusForbidden
	case "NF":
		return http.StatusNotFound
	case "METHOD":
		return http.StatusMethodNotAllowed
	case "CONF":
		return http.StatusConflict
	case "RATE":
		return http.StatusTooManyRequests
	case "UNAVAIL":
		return http.StatusServiceUnavailable
	case "TIMEOUT":
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ToMap returns the structured representation of the error used both as
// the report payload and as the JSON body rendered to clients. Keys:
// "title", "description" (omitted when empty), "code" (omitted when
// empty), followed by Details. Details never overwrite the fixed keys.
func (e *Error) ToMap() map[string]any {
	out := make(map[string]any, len(e.Details)+3)
	for k, v := range e.Details {
		out[k] = v
	}
	out["title"] = e.Message
	if e.Description != "" {
		out["description"] = e.Description
	}
	if e.Code != "" {
		out["code"] = e.Code.String()
	}
	return out
}

// WithDetails returns a new Error with the specified details added.
// The original error is not modified.
func (e *Error) WithDetails(details map[string]any) *Error {
	clone := e.clone(len(details))
	maps.Copy(clone.Details, details)
	return clone
}

// WithDetail returns a new Error with a single detail key-value pair added.
// The original error is not modified.
func (e *Error) WithDetail(key string, value any) *Error {
	clone := e.clone(1)
	clone.Details[key] = value
	return clone
}

// WithDescription returns a new Error carrying the given description.
func (e *Error) WithDescription(description string) *Error {
	clone := e.clone(0)
	clone.Description = description
	return clone
}

// WithStatus returns a new Error whose HTTP status is fixed to status
// regardless of its code.
func (e *Error) WithStatus(status int) *Error {
	clone := e.clone(0)
	clone.Status = status
	return clone
}

func (e *Error) clone(extra int) *Error {
	details := make(map[string]any, len(e.Details)+extra)
	maps.Copy(details, e.Details)
	return &Error{
		Code:        e.Code,
		Message:     e.Message,
		Description: e.Description,
		Status:      e.Status,
		Cause:       e.Cause,
		Details:     details,
	}
}

// Format implements fmt.Formatter for detailed error output.
// Use %v for standard output, %+v for detailed output including the cause chain.
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "Error{Code: %q, Status: %d, Message: %q", e.Code, e.HTTPStatus(), e.Message)
			if e.Description != "" {
				fmt.Fprintf(s, ", Description: %q", e.Description)
			}
			if len(e.Details) > 0 {
				fmt.Fprintf(s, ", Details: %v", e.Details)
			}
			if e.Cause != nil {
				fmt.Fprintf(s, ", Cause: %+v", e.Cause)
			}
			fmt.Fprint(s, "}")
			return
		}
		fallthrough
	case 's':
		fmt.Fprint(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}
