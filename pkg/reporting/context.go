package reporting

import "context"

// contextKey is an unexported type used for context keys in this package.
type contextKey int

const (
	// scopeKey stores the request-scoped *Scope.
	scopeKey contextKey = iota
)

// ContextWithScope returns a new context carrying scope. All [Client]
// operations called with the returned context read and write scope instead
// of the client's base scope.
func ContextWithScope(ctx context.Context, scope *Scope) context.Context {
	return context.WithValue(ctx, scopeKey, scope)
}

// ScopeFromContext retrieves the Scope attached by [ContextWithScope].
// This function never returns a nil scope with true.
func ScopeFromContext(ctx context.Context) (*Scope, bool) {
	scope, ok := ctx.Value(scopeKey).(*Scope)
	return scope, ok && scope != nil
}
