// Package nav implements race-safe navigation to a specific ledger group:
// a session holding the single pending request with a generation counter,
// and a resolver that turns a request into a concrete page through the
// position lookup, with fallbacks, staleness rejection and query routing.
package nav

import (
	"net/url"
	"sync/atomic"
)

// Route parameters owned by the navigation subsystem. Highlight slots all
// share the highlightPrefix; filter parameters belong to the ledger query
// codec and pass through untouched.
const (
	ParamPage  = "page"
	ParamLimit = "limit"

	SlotAssetMovement = "highlightedAssetMovement"
	SlotEvent         = "highlightedEvent"

	highlightPrefix = "highlighted"
)

// IsHighlightParam reports whether name is a highlight slot.
func IsHighlightParam(name string) bool {
	return len(name) > len(highlightPrefix) && name[:len(highlightPrefix)] == highlightPrefix
}

// StripHighlights returns a copy of values without any highlight slots.
func StripHighlights(values url.Values) url.Values {
	out := url.Values{}
	for k, vs := range values {
		if IsHighlightParam(k) {
			continue
		}
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// Request asks the resolver to land the timeline on a specific group.
type Request struct {
	// TargetGroupID is the group whose page the resolver looks up.
	TargetGroupID string
	// Highlights maps highlight slots to event identifiers; the winning
	// request's slots end up in the final query.
	Highlights map[string]string
	// Fallbacks are tried in order, depth first, when the target is absent
	// under the active filter. First success wins.
	Fallbacks []Request
	// PreserveFilters merges the resolved page into the existing query
	// instead of replacing it, and suppresses failure notifications.
	PreserveFilters bool
	// FilterOverride, when set, replaces the base query for this request's
	// position lookup.
	FilterOverride url.Values
	// Extras are query-only fields merged into replaced queries.
	Extras url.Values
}

// Session holds the single pending navigation request. Exactly one request
// is current at any time: a newer Begin invalidates any in-flight
// resolution of an older one via the generation counter.
//
// Begin, Consume and Pending are single-writer and must be called from the
// UI loop; Generation is safe to read from resolver goroutines.
type Session struct {
	generation atomic.Uint64
	pending    *Request
	navigating bool
}

// NewSession creates an idle session.
func NewSession() *Session { return &Session{} }

// Begin stores req as the pending request, marks the session navigating
// and returns the new generation. Any older in-flight resolution becomes
// stale the moment this returns.
func (s *Session) Begin(req Request) uint64 {
	r := req
	s.pending = &r
	s.navigating = true
	return s.generation.Add(1)
}

// Consume clears the pending request and the navigating flag. Idempotent;
// safe to call when nothing is pending.
func (s *Session) Consume() {
	s.pending = nil
	s.navigating = false
}

// Invalidate orphans any in-flight resolution and clears pending state.
// Called on view teardown so dangling callbacks can never apply.
func (s *Session) Invalidate() {
	s.generation.Add(1)
	s.Consume()
}

// Pending returns the current request, if any.
func (s *Session) Pending() (Request, bool) {
	if s.pending == nil {
		return Request{}, false
	}
	return *s.pending, true
}

// IsNavigating reports whether a request is awaiting resolution.
func (s *Session) IsNavigating() bool { return s.navigating }

// Generation returns the current generation. Goroutine-safe.
func (s *Session) Generation() uint64 { return s.generation.Load() }
