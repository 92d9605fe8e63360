// Package classify maps an error returned by a request handler to a
// reporting decision: whether to report it, at which severity, with which
// payload, and which error the serving layer should render instead.
//
// The decision table, evaluated in order:
//
//  1. Control-flow signals ([sserr.KindSignal]) are never reported and are
//     passed through unchanged.
//  2. HTTP errors ([sserr.KindHTTP]) use their status (0 counts as 500).
//     With onlyServerErrors set, statuses below 500 are passed through
//     unreported. Otherwise the severity is "errors" below 500 and
//     "fatal" from 500 up, and the payload is the error's map merged with
//     the route parameters. The error is passed through unchanged.
//  3. Anything else is reported as "fatal" with the route parameters as
//     payload, and is replaced by [sserr.UnknownError] carrying the
//     original error text as its description.
package classify

import (
	"maps"
	"net/http"

	sserr "github.com/StricklySoft/stricklysoft-sentry/pkg/errors"
	"github.com/StricklySoft/stricklysoft-sentry/pkg/reporting"
)

// Decision is the outcome of [Classify].
type Decision struct {
	// Report is true when the error must be captured.
	Report bool

	// Severity is the capture level. Empty when Report is false.
	Severity reporting.Severity

	// Extra is the capture payload. Nil when Report is false.
	Extra map[string]any

	// Reraise is the error the serving layer renders. It is the original
	// error for signals and HTTP errors, and a generic internal error for
	// unclassified ones.
	Reraise error

	// Kind is the discriminant the decision was based on.
	Kind sserr.Kind
}

// Classify decides how err is reported. It has no side effects and never
// panics, including for HTTPError implementations whose methods panic.
// A nil err yields a decision that reports nothing and re-raises nil.
func Classify(err error, routeParams map[string]string, onlyServerErrors bool) (d Decision) {
	if err == nil {
		return Decision{}
	}

	kind := sserr.KindOf(err)
	switch kind {
	case sserr.KindSignal:
		return Decision{Reraise: err, Kind: kind}

	case sserr.KindHTTP:
		httpErr, _ := sserr.AsHTTPError(err)
		defer func() {
			// A misbehaving HTTPError falls back to the unclassified path.
			if r := recover(); r != nil {
				d = unclassified(err, routeParams)
			}
		}()

		code := httpErr.HTTPStatus()
		if code == 0 {
			code = http.StatusInternalServerError
		}
		if onlyServerErrors && code < http.StatusInternalServerError {
			return Decision{Reraise: err, Kind: kind}
		}

		severity := reporting.SeverityFatal
		if code < http.StatusInternalServerError {
			severity = reporting.SeverityErrors
		}
		extra := maps.Clone(httpErr.ToMap())
		if extra == nil {
			extra = make(map[string]any, len(routeParams))
		}
		for k, v := range routeParams {
			extra[k] = v
		}
		return Decision{
			Report:   true,
			Severity: severity,
			Extra:    extra,
			Reraise:  err,
			Kind:     kind,
		}

	default:
		return unclassified(err, routeParams)
	}
}

func unclassified(err error, routeParams map[string]string) Decision {
	extra := make(map[string]any, len(routeParams))
	for k, v := range routeParams {
		extra[k] = v
	}
	return Decision{
		Report:   true,
		Severity: reporting.SeverityFatal,
		Extra:    extra,
		Reraise:  sserr.UnknownError(err.Error()),
		Kind:     sserr.KindUnclassified,
	}
}
