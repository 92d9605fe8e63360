package reporting

// Severity is the coarse classification attached to a captured event.
// The zero value is not a valid severity; captures without an explicit
// level use [SeverityErrors] for exceptions and [SeverityInfo] for
// messages.
type Severity string

const (
	// SeverityFatal marks server-side failures: 5xx HTTP errors and every
	// unclassified error.
	SeverityFatal Severity = "fatal"

	// SeverityErrors marks client-side HTTP errors (status < 500).
	SeverityErrors Severity = "errors"

	// SeverityWarning marks non-critical conditions.
	SeverityWarning Severity = "warning"

	// SeverityInfo marks informational messages.
	SeverityInfo Severity = "info"

	// SeverityDebug marks diagnostic messages.
	SeverityDebug Severity = "debug"
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	return string(s)
}

// Valid reports whether s is one of the recognized severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityFatal, SeverityErrors, SeverityWarning, SeverityInfo, SeverityDebug:
		return true
	default:
		return false
	}
}
