package errors

import "errors"

// HTTPError is implemented by errors that carry an explicit HTTP status
// code and a structured map representation. [*Error] implements it;
// applications may provide their own implementations.
//
// HTTPStatus may return 0, which the classifier treats as 500.
type HTTPError interface {
	error
	HTTPStatus() int
	ToMap() map[string]any
}

// Kind is the three-way discriminant over error values.
type Kind int

const (
	// KindUnclassified is any error that is neither a signal nor an
	// [HTTPError].
	KindUnclassified Kind = iota

	// KindSignal is a deliberate control-flow response ([*Status]).
	KindSignal

	// KindHTTP is an error carrying an explicit status code.
	KindHTTP
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindSignal:
		return "signal"
	case KindHTTP:
		return "http"
	default:
		return "unclassified"
	}
}

// KindOf classifies err by inspecting its chain with errors.As. Signals
// take precedence over HTTP errors so that a wrapped redirect is never
// reported. A nil error is unclassified.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnclassified
	}
	var status *Status
	if errors.As(err, &status) {
		return KindSignal
	}
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return KindHTTP
	}
	return KindUnclassified
}

// AsHTTPError returns the first [HTTPError] in err's chain.
func AsHTTPError(err error) (HTTPError, bool) {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}

// AsStatus returns the first [*Status] in err's chain.
func AsStatus(err error) (*Status, bool) {
	var status *Status
	if errors.As(err, &status) {
		return status, true
	}
	return nil, false
}
