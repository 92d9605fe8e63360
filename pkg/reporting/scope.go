package reporting

import (
	"maps"
	"sync"
)

// Scope holds the diagnostic context accumulated for a single request:
// user, tags, extra and http mappings plus the identifier of the last
// event captured while the request was in flight.
//
// A Scope is created empty, populated by the request middleware, read by
// capture calls and emptied by [Scope.Clear] once the response is done.
// Each request gets its own Scope (see [ContextWithScope]); the mutex only
// protects against goroutines spawned by the same request.
type Scope struct {
	mu          sync.Mutex
	user        map[string]any
	tags        map[string]string
	extra       map[string]any
	http        map[string]any
	lastEventID string
}

// NewScope returns an empty Scope.
func NewScope() *Scope {
	return &Scope{}
}

// Snapshot is an immutable copy of a [Scope]'s mappings. Nil maps mean the
// corresponding context was never set.
type Snapshot struct {
	User  map[string]any
	Tags  map[string]string
	Extra map[string]any
	HTTP  map[string]any
}

// IsEmpty reports whether no context has been recorded.
func (s Snapshot) IsEmpty() bool {
	return len(s.User) == 0 && len(s.Tags) == 0 && len(s.Extra) == 0 && len(s.HTTP) == 0
}

// MergeUser merges data into the user context. Later keys win.
func (s *Scope) MergeUser(data map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = mergeAny(s.user, data)
}

// MergeTags merges tags into the tag context. Later keys win.
func (s *Scope) MergeTags(tags map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(tags) == 0 {
		return
	}
	if s.tags == nil {
		s.tags = make(map[string]string, len(tags))
	}
	maps.Copy(s.tags, tags)
}

// MergeExtra merges data into the extra context. Later keys win.
func (s *Scope) MergeExtra(data map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extra = mergeAny(s.extra, data)
}

// MergeHTTP merges data into the existing http context. The merge is
// additive: keys set by earlier calls survive unless data overwrites them.
func (s *Scope) MergeHTTP(data map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.http = mergeAny(s.http, data)
}

// LastEventID returns the identifier of the last captured event, or ""
// if nothing was captured (or the last capture was dropped).
func (s *Scope) LastEventID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastEventID
}

// SetLastEventID records the identifier returned by the last capture.
func (s *Scope) SetLastEventID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastEventID = id
}

// Snapshot returns a copy of the current context. Mutating the returned
// maps does not affect the Scope and vice versa.
func (s *Scope) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		User:  maps.Clone(s.user),
		Tags:  maps.Clone(s.tags),
		Extra: maps.Clone(s.extra),
		HTTP:  maps.Clone(s.http),
	}
}

// Clear empties every mapping and resets the last event id.
func (s *Scope) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.tags = nil
	s.extra = nil
	s.http = nil
	s.lastEventID = ""
}

func mergeAny(dst, src map[string]any) map[string]any {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	maps.Copy(dst, src)
	return dst
}
