package ledger

// ExpandState is the set of expanded cluster keys. It outlives data
// refreshes: groups are replaced wholesale on every fetch while this set is
// only mutated by explicit toggles, so a cluster stays open when its page
// reloads. Single-writer; mutate only from the UI loop.
type ExpandState struct {
	keys map[ClusterKey]struct{}
}

// NewExpandState returns an empty expand state: every cluster starts
// collapsed.
func NewExpandState() *ExpandState {
	return &ExpandState{keys: make(map[ClusterKey]struct{})}
}

// Toggle flips the expanded state of key. Keys that match no current
// cluster are inert: they sit in the set without rendering effect, so a
// toggle against vanished data is silently absorbed rather than an error.
func (s *ExpandState) Toggle(key ClusterKey) {
	if key == "" {
		return
	}
	if _, ok := s.keys[key]; ok {
		delete(s.keys, key)
		return
	}
	s.keys[key] = struct{}{}
}

// Expanded reports whether key is currently expanded.
func (s *ExpandState) Expanded(key ClusterKey) bool {
	_, ok := s.keys[key]
	return ok
}

// Clear collapses everything. Called when the view's filter scope resets or
// the view tears down, never by data refreshes.
func (s *ExpandState) Clear() {
	s.keys = make(map[ClusterKey]struct{})
}

// Len returns the number of expanded keys.
func (s *ExpandState) Len() int { return len(s.keys) }
