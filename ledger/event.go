// Package ledger models grouped portfolio events and the transforms the
// timeline view needs: cluster derivation, row flattening, expand state,
// pagination arithmetic and the filter query codec. Everything here is pure
// data shaping; fetching lives behind the Source interface.
package ledger

import "time"

// EntryType discriminates the kinds of ledger events a backend serves.
// The string values match the wire serialization.
type EntryType string

const (
	EntryHistory       EntryType = "history event"
	EntryEVM           EntryType = "evm event"
	EntrySwap          EntryType = "swap event"
	EntryEVMSwap       EntryType = "evm swap event"
	EntryAssetMovement EntryType = "asset movement event"
	EntryEthWithdrawal EntryType = "eth withdrawal event"
)

// clusterCategory returns the cluster family for an entry type. Entry types
// with an empty category never cluster.
func (t EntryType) clusterCategory() string {
	switch t {
	case EntrySwap, EntryEVMSwap:
		return "swap"
	case EntryAssetMovement:
		return "move"
	default:
		return ""
	}
}

// Event is one ledger entry. The descriptor fields (Identifier through
// Hidden) always arrive with the page fetch; Detail resolves in a second
// pass and stays nil until then.
type Event struct {
	Identifier    int64
	GroupID       string
	SequenceIndex int
	EntryType     EntryType
	// Hidden marks events excluded by the ignore rules. They are retained
	// in the fetched set but never rendered.
	Hidden bool

	Detail *EventDetail
}

// EventDetail carries the display payload of an event.
type EventDetail struct {
	Timestamp     time.Time
	Location      string
	LocationLabel string
	EventType     string
	EventSubtype  string
	Asset         string
	Amount        string
	Notes         string
	Counterparty  string
	TxHash        string
	// MatchedEvent is the identifier of the matched counterpart for asset
	// movements, 0 when unmatched.
	MatchedEvent int64
}

// Resolved reports whether the event's display detail has loaded.
func (e Event) Resolved() bool { return e.Detail != nil }

// Group is one logical transaction: all events sharing a group identifier,
// ordered by sequence index. Timestamp and Location come from the group
// summary (newest member) so headers render before details resolve.
type Group struct {
	GroupID     string
	Timestamp   time.Time
	Location    string
	MemberCount int
	HiddenCount int
	Members     []Event
}

// VisibleMembers returns the members not excluded by the ignore rules, in
// sequence order.
func (g *Group) VisibleMembers() []Event {
	visible := make([]Event, 0, len(g.Members))
	for _, m := range g.Members {
		if !m.Hidden {
			visible = append(visible, m)
		}
	}
	return visible
}

// PageResult is one fetched page of groups plus the collection counts the
// pagination controller needs. Found counts groups matching the active
// filter; Total ignores the filter; Limit is the server-side cap (-1 means
// unlimited).
type PageResult struct {
	Groups []Group
	Found  int
	Limit  int
	Total  int
}

// HiddenCounts builds the per-group hidden-member map Flatten consumes.
func (p *PageResult) HiddenCounts() map[string]int {
	counts := make(map[string]int, len(p.Groups))
	for _, g := range p.Groups {
		if g.HiddenCount > 0 {
			counts[g.GroupID] = g.HiddenCount
		}
	}
	return counts
}

// GroupIDs returns the page's group identifiers in display order.
func (p *PageResult) GroupIDs() []string {
	ids := make([]string, len(p.Groups))
	for i, g := range p.Groups {
		ids[i] = g.GroupID
	}
	return ids
}

// Movement is an unmatched asset movement awaiting a counterpart.
type Movement struct {
	EventID    int64
	GroupID    string
	Timestamp  time.Time
	Location   string
	Direction  string
	Asset      string
	Amount     string
	Candidates []Candidate
}

// Candidate is a suggested counterpart event for a movement: same asset,
// same amount, within the matching window.
type Candidate struct {
	EventID   int64
	GroupID   string
	Location  string
	Timestamp time.Time
}

// MatchResult reports a persisted movement match. EventGroupID is the
// navigation target; MovementGroupID is the fallback.
type MatchResult struct {
	MovementID      int64
	EventID         int64
	EventGroupID    string
	MovementGroupID string
}
