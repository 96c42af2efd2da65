package ledger

import (
	"testing"

	"pgregory.net/rapid"
)

// genGroup produces a group with a random mix of entry types, hidden flags
// and resolution states.
func genGroup(t *rapid.T, id string, nextID *int64) Group {
	memberCount := rapid.IntRange(1, 8).Draw(t, "members")
	g := Group{GroupID: id, MemberCount: memberCount}
	types := []EntryType{
		EntryHistory, EntryEVM, EntrySwap, EntryEVMSwap,
		EntryAssetMovement, EntryEthWithdrawal,
	}
	for i := 0; i < memberCount; i++ {
		*nextID++
		e := Event{
			Identifier:    *nextID,
			GroupID:       id,
			SequenceIndex: i,
			EntryType:     rapid.SampledFrom(types).Draw(t, "type"),
			Hidden:        rapid.Bool().Draw(t, "hidden"),
		}
		if rapid.Bool().Draw(t, "resolved") {
			e = detailed(e)
		}
		if e.Hidden {
			g.HiddenCount++
		}
		g.Members = append(g.Members, e)
	}
	return g
}

func TestFlattenInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		groupCount := rapid.IntRange(0, 5).Draw(t, "groups")
		var nextID int64
		groups := make([]Group, 0, groupCount)
		for i := 0; i < groupCount; i++ {
			groups = append(groups, genGroup(t, "g"+string(rune('a'+i)), &nextID))
		}

		expand := NewExpandState()
		for gi := range groups {
			for _, c := range groups[gi].Clusters() {
				if rapid.Bool().Draw(t, "expand") {
					expand.Toggle(c.Key)
				}
			}
		}

		hidden := make(map[string]int)
		for _, g := range groups {
			if g.HiddenCount > 0 {
				hidden[g.GroupID] = g.HiddenCount
			}
		}

		rows := Flatten(groups, expand, hidden)

		// Keys are unique across the whole flattened list.
		seen := make(map[string]bool, len(rows))
		for _, r := range rows {
			if seen[r.Key] {
				t.Fatalf("duplicate row key %q", r.Key)
			}
			seen[r.Key] = true
		}

		// Per-group row accounting: one header, one row per plain event,
		// one per collapsed cluster, N per expanded N-member cluster, one
		// load-more when a hidden count is pending.
		byGroup := make(map[string]int)
		for _, r := range rows {
			byGroup[r.GroupID]++
		}
		for gi := range groups {
			g := &groups[gi]
			visible := g.VisibleMembers()
			want := 0
			if len(visible) > 0 || g.HiddenCount > 0 {
				want = 1
				for _, seg := range segmentMembers(visible) {
					switch {
					case seg.cluster == nil:
						want++
					case expand.Expanded(seg.cluster.Key):
						want += len(seg.cluster.Members)
					default:
						want++
					}
				}
				if g.HiddenCount > 0 {
					want++
				}
			}
			if byGroup[g.GroupID] != want {
				t.Fatalf("group %s: got %d rows, want %d", g.GroupID, byGroup[g.GroupID], want)
			}
		}

		// Hidden events never surface; placeholders only stand for
		// unresolved plain events.
		for _, r := range rows {
			if r.Event != nil && r.Event.Hidden {
				t.Fatalf("hidden event %d rendered in row %q", r.Event.Identifier, r.Key)
			}
			if r.Kind == RowPlaceholder && r.Event.Resolved() {
				t.Fatalf("resolved event %d rendered as placeholder", r.Event.Identifier)
			}
			if r.Kind == RowEvent && !r.Event.Resolved() {
				t.Fatalf("unresolved event %d rendered as event row", r.Event.Identifier)
			}
		}

		// Flatten is deterministic for identical inputs.
		again := Flatten(groups, expand, hidden)
		if len(again) != len(rows) {
			t.Fatalf("reflatten changed row count: %d != %d", len(again), len(rows))
		}
		for i := range rows {
			if rows[i].Key != again[i].Key || rows[i].Kind != again[i].Kind {
				t.Fatalf("reflatten changed row %d: %v != %v", i, rows[i], again[i])
			}
		}
	})
}
