// Package fixtures provides shared test data for the middleware, journal,
// and transport test suites.
//
// Using common constants for identities and event identifiers prevents
// magic strings in tests and keeps expectations consistent across packages.
package fixtures

// Standard user identity values carried by test bearer tokens.
const (
	// TestSubject is the subject claim of the default test user.
	TestSubject = "user-42"

	// TestEmail is the email claim of the default test user.
	TestEmail = "ada@example.com"

	// TestUsername is the preferred_username claim of the default test user.
	TestUsername = "ada"

	// TestSigningKey signs HS256 test tokens. Never use outside tests.
	TestSigningKey = "test-signing-key-not-for-production"
)

// Standard event values used in reporting and journal tests.
const (
	// EventID is the first identifier issued by a recording transport.
	EventID = "evt-1"

	// AltEventID is the second identifier issued by a recording transport.
	AltEventID = "evt-2"

	// JournalPrefix is the key prefix used by journal tests.
	JournalPrefix = "test:events"

	// WidgetRoute is the route template used by middleware tests.
	WidgetRoute = "/widgets/{id}"
)

// UserClaims returns a fresh claim set for the default test user.
func UserClaims() map[string]any {
	return map[string]any{
		"sub":                TestSubject,
		"email":              TestEmail,
		"preferred_username": TestUsername,
	}
}
