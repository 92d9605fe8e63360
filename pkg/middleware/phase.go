package middleware

import (
	"context"
	"sync"
)

// Phase is the position of a request in the middleware lifecycle:
//
//	idle → building → handling → responding → idle
//
// building → responding is also valid for requests whose handler never
// runs (for example when an outer middleware short-circuits).
type Phase string

const (
	// PhaseIdle is the state before [Middleware.Before] and after
	// [Middleware.After].
	PhaseIdle Phase = "idle"

	// PhaseBuilding is set while the request context is assembled and the
	// context loaders run.
	PhaseBuilding Phase = "building"

	// PhaseHandling is set while the application handler runs.
	PhaseHandling Phase = "handling"

	// PhaseResponding is set once the handler returned and the response
	// is being finalized.
	PhaseResponding Phase = "responding"
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	return string(p)
}

// validTransitions lists the allowed successors of each phase.
var validTransitions = map[Phase][]Phase{
	PhaseIdle:       {PhaseBuilding},
	PhaseBuilding:   {PhaseHandling, PhaseResponding},
	PhaseHandling:   {PhaseResponding},
	PhaseResponding: {PhaseIdle},
}

// ValidTransition reports whether moving from one phase to another is
// allowed. Same-phase transitions are rejected.
func ValidTransition(from, to Phase) bool {
	if from == to {
		return false
	}
	for _, t := range validTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// requestState tracks the phase of one request.
type requestState struct {
	mu    sync.Mutex
	phase Phase
}

// advance moves to the given phase. It returns false, leaving the phase
// unchanged, when the transition is not allowed.
func (s *requestState) advance(to Phase) (from Phase, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	from = s.phase
	if !ValidTransition(from, to) {
		return from, false
	}
	s.phase = to
	return from, true
}

func (s *requestState) current() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

type contextKey int

const stateKey contextKey = iota

func contextWithState(ctx context.Context, s *requestState) context.Context {
	return context.WithValue(ctx, stateKey, s)
}

func stateFromContext(ctx context.Context) (*requestState, bool) {
	s, ok := ctx.Value(stateKey).(*requestState)
	return s, ok
}

// PhaseFromContext returns the lifecycle phase of the request owning ctx.
// Requests that never passed through [Middleware.Before] report
// [PhaseIdle].
func PhaseFromContext(ctx context.Context) Phase {
	if s, ok := stateFromContext(ctx); ok {
		return s.current()
	}
	return PhaseIdle
}
