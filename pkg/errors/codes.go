package errors

// Code represents a machine-readable error code for categorizing errors.
// Error codes follow the pattern CATEGORY_XXX where CATEGORY is a short
// identifier (e.g., VAL, NF, INT) and XXX is a three-digit numeric code.
// Codes are stable once assigned and are attached to reports as the
// "code" field of [Error.ToMap].
type Code string

// Error code categories and the HTTP status each maps to:
//
//	VAL_xxx     - 400 Bad Request
//	AUTH_xxx    - 401 Unauthorized
//	AUTHZ_xxx   - 403 Forbidden
//	NF_xxx      - 404 Not Found
//	METHOD_xxx  - 405 Method Not Allowed
//	CONF_xxx    - 409 Conflict
//	RATE_xxx    - 429 Too Many Requests
//	INT_xxx     - 500 Internal Server Error
//	UNAVAIL_xxx - 503 Service Unavailable
//	TIMEOUT_xxx - 504 Gateway Timeout
const (
	// CodeValidation indicates a general validation failure.
	CodeValidation Code = "VAL_001"

	// CodeValidationRequired indicates a required field is missing.
	CodeValidationRequired Code = "VAL_002"

	// CodeValidationFormat indicates a field has an invalid format.
	CodeValidationFormat Code = "VAL_003"

	// CodeAuthentication indicates missing or invalid credentials.
	CodeAuthentication Code = "AUTH_001"

	// CodeAuthorization indicates the caller lacks permission.
	CodeAuthorization Code = "AUTHZ_001"

	// CodeNotFound indicates a general not found error.
	CodeNotFound Code = "NF_001"

	// CodeNotFoundRoute indicates no route matched the request.
	CodeNotFoundRoute Code = "NF_002"

	// CodeMethodNotAllowed indicates the route exists but not for the
	// request method.
	CodeMethodNotAllowed Code = "METHOD_001"

	// CodeConflict indicates a general conflict error.
	CodeConflict Code = "CONF_001"

	// CodeRateLimited indicates the caller exceeded a rate limit.
	CodeRateLimited Code = "RATE_001"

	// CodeInternal indicates a general internal error.
	CodeInternal Code = "INT_001"

	// CodeInternalDatabase indicates a database operation failed.
	CodeInternalDatabase Code = "INT_002"

	// CodeInternalConfiguration indicates a configuration error.
	CodeInternalConfiguration Code = "INT_003"

	// CodeInternalTransport indicates the error-tracking transport failed.
	CodeInternalTransport Code = "INT_004"

	// CodeUnavailable indicates a general service unavailable error.
	CodeUnavailable Code = "UNAVAIL_001"

	// CodeUnavailableDependency indicates a dependent service is unavailable.
	CodeUnavailableDependency Code = "UNAVAIL_002"

	// CodeTimeout indicates a general timeout error.
	CodeTimeout Code = "TIMEOUT_001"

	// CodeTimeoutDatabase indicates a database operation timed out.
	CodeTimeoutDatabase Code = "TIMEOUT_002"
)

// String returns the string representation of the error code.
func (c Code) String() string {
	return string(c)
}

// Category returns the category prefix of the error code (e.g., "VAL", "NF").
func (c Code) Category() string {
	s := string(c)
	for i, r := range s {
		if r == '_' {
			return s[:i]
		}
	}
	return s
}
