package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/StricklySoft/stricklysoft-sentry/pkg/reporting"
)

// RecordingTransport is a [reporting.Transport] that keeps every event it
// receives and returns sequential ids ("evt-1", "evt-2", ...). Set Err to
// make Send fail. It is safe for concurrent use.
type RecordingTransport struct {
	// Err, when non-nil, is returned by Send instead of an id. The event
	// is still recorded.
	Err error

	mu     sync.Mutex
	events []*reporting.Event
}

// Send records event and returns the next id.
func (t *RecordingTransport) Send(_ context.Context, event *reporting.Event) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, event)
	if t.Err != nil {
		return "", t.Err
	}
	return fmt.Sprintf("evt-%d", len(t.events)), nil
}

// Events returns the recorded events in arrival order.
func (t *RecordingTransport) Events() []*reporting.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*reporting.Event, len(t.events))
	copy(out, t.events)
	return out
}

// Last returns the most recent event, or nil.
func (t *RecordingTransport) Last() *reporting.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.events) == 0 {
		return nil
	}
	return t.events[len(t.events)-1]
}

// Len returns the number of recorded events.
func (t *RecordingTransport) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.events)
}
