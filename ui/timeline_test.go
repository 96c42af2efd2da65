package ui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyview/tally/ledger"
)

// makeTimelineGroups builds n resolved single-member groups, newest first.
func makeTimelineGroups(t *testing.T, n int) []ledger.Group {
	t.Helper()
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	groups := make([]ledger.Group, n)
	for i := range groups {
		gid := fmt.Sprintf("grp-%d", i)
		groups[i] = ledger.Group{
			GroupID:     gid,
			Timestamp:   base.Add(-time.Duration(i) * time.Hour),
			Location:    "kraken",
			MemberCount: 1,
			Members: []ledger.Event{{
				Identifier:    int64(1000 + i),
				GroupID:       gid,
				SequenceIndex: 0,
				EntryType:     ledger.EntryHistory,
				Detail: &ledger.EventDetail{
					Timestamp: base.Add(-time.Duration(i) * time.Hour),
					Location:  "kraken",
					EventType: "trade",
					Asset:     "ETH",
					Amount:    "1.5",
				},
			}},
		}
	}
	return groups
}

func makeTestTimeline(t *testing.T, n int) *Timeline {
	t.Helper()
	sp := spinner.New()
	tl := NewTimeline(&sp)
	tl.SetSize(60, 30)
	tl.SetRows(ledger.Flatten(makeTimelineGroups(t, n), ledger.NewExpandState(), nil))
	return tl
}

func TestTimelineSelection_SkipsGroupHeaders(t *testing.T) {
	tl := makeTestTimeline(t, 5)
	row, ok := tl.SelectedRow()
	require.True(t, ok)
	assert.NotEqual(t, ledger.RowGroupHeader, row.Kind, "initial selection must land on a selectable row")

	for i := 0; i < 10; i++ {
		tl.Down()
		row, _ = tl.SelectedRow()
		assert.NotEqual(t, ledger.RowGroupHeader, row.Kind)
	}
	for i := 0; i < 10; i++ {
		tl.Up()
		row, _ = tl.SelectedRow()
		assert.NotEqual(t, ledger.RowGroupHeader, row.Kind)
	}
}

func TestTimelineScroll_DownRaisesTarget(t *testing.T) {
	tl := makeTestTimeline(t, 20)
	tl.SetSize(60, 10) // very short, forces scrolling
	initial := tl.scrollTarget
	for i := 0; i < 15; i++ {
		tl.Down()
	}
	assert.Greater(t, tl.scrollTarget, initial, "scroll target should increase when selection moves past bottom")
}

func TestTimelineScroll_UpReturnsToTop(t *testing.T) {
	tl := makeTestTimeline(t, 20)
	tl.SetSize(60, 10)
	for i := 0; i < 25; i++ {
		tl.Down()
	}
	target := tl.scrollTarget
	for i := 0; i < 25; i++ {
		tl.Up()
	}
	assert.Less(t, tl.scrollTarget, target, "scroll target should decrease when moving back up")
	assert.Equal(t, 0.0, tl.scrollTarget, "scroll target should rest at 0 at the top")
}

func TestTimelineScroll_SpringSettlesOnTarget(t *testing.T) {
	tl := makeTestTimeline(t, 20)
	tl.SetSize(60, 10)
	for i := 0; i < 15; i++ {
		tl.Down()
	}
	require.True(t, tl.IsScrolling(), "spring should have motion after a retarget")
	for i := 0; i < 600 && tl.IsScrolling(); i++ {
		tl.UpdateScroll()
	}
	assert.False(t, tl.IsScrolling(), "spring should settle")
	assert.InDelta(t, tl.scrollTarget, tl.scrollPos, 0.05)
}

func TestTimelineScroll_ResizeClamps(t *testing.T) {
	tl := makeTestTimeline(t, 20)
	tl.SetSize(60, 10)
	for i := 0; i < 25; i++ {
		tl.Down()
	}
	tl.SetSize(60, 200) // taller than the content, old offset now invalid
	assert.Equal(t, 0, tl.ScrollOffset(), "offset must clamp when everything fits")
}

func TestTimelineSetRows_PreservesSelectionByKey(t *testing.T) {
	tl := makeTestTimeline(t, 6)
	tl.Down()
	tl.Down()
	before, ok := tl.SelectedRow()
	require.True(t, ok)

	// Same data reflattened: selection must stay on the same key even
	// though the slice is brand new.
	tl.SetRows(ledger.Flatten(makeTimelineGroups(t, 6), ledger.NewExpandState(), nil))
	after, ok := tl.SelectedRow()
	require.True(t, ok)
	assert.Equal(t, before.Key, after.Key)
}

func TestTimelineSetRows_VanishedKeyClampsNearby(t *testing.T) {
	tl := makeTestTimeline(t, 6)
	for i := 0; i < 5; i++ {
		tl.Down()
	}
	tl.SetRows(ledger.Flatten(makeTimelineGroups(t, 2), ledger.NewExpandState(), nil))
	row, ok := tl.SelectedRow()
	require.True(t, ok)
	assert.NotEqual(t, ledger.RowGroupHeader, row.Kind)
	assert.Less(t, tl.SelectedIdx(), tl.NumRows())
}

func TestTimelineSelectKey_KeepsHighlight(t *testing.T) {
	tl := makeTestTimeline(t, 4)
	var key string
	for _, r := range tl.Rows() {
		if r.Kind == ledger.RowEvent {
			key = r.Key
			break
		}
	}
	require.NotEmpty(t, key)

	tl.SetHighlight(key)
	assert.True(t, tl.SelectKey(key))
	assert.Equal(t, key, tl.HighlightKey(), "SelectKey must not clear the highlight")

	tl.Down()
	assert.Empty(t, tl.HighlightKey(), "manual movement clears the highlight")
}

func TestTimelineFindEventRow(t *testing.T) {
	tl := makeTestTimeline(t, 5)
	idx, ok := tl.FindEventRow(1003)
	require.True(t, ok)
	row := tl.Rows()[idx]
	require.NotNil(t, row.Event)
	assert.Equal(t, int64(1003), row.Event.Identifier)

	_, ok = tl.FindEventRow(999999)
	assert.False(t, ok)
}

func TestTimelineRowAt_MapsLinesToRows(t *testing.T) {
	tl := makeTestTimeline(t, 3)
	rows := tl.Rows()
	line := 0
	for i, r := range rows {
		for off := 0; off < r.Height(); off++ {
			assert.Equal(t, i, tl.RowAt(line+off), "line %d should map to row %d", line+off, i)
		}
		line += r.Height()
	}
	assert.Equal(t, -1, tl.RowAt(line), "line past the end maps to no row")
}

func TestTimelineString_DoesNotOverflowHeight(t *testing.T) {
	tl := makeTestTimeline(t, 20)
	tl.SetSize(60, 14)
	rendered := tl.String()
	lines := strings.Split(rendered, "\n")
	assert.LessOrEqual(t, len(lines), 14, "rendered output must not exceed pane height")
}

func TestTimelineString_ShowsLoadMoreCount(t *testing.T) {
	groups := makeTimelineGroups(t, 1)
	groups[0].HiddenCount = 4
	tl := makeTestTimeline(t, 0)
	tl.SetRows(ledger.Flatten(groups, ledger.NewExpandState(), map[string]int{groups[0].GroupID: 4}))
	assert.Contains(t, ansi.Strip(tl.String()), "show 4 ignored entries")
}

func TestTimelineClusterToggle_SelectionStaysOnCluster(t *testing.T) {
	// Two swap legs cluster into one collapsed row; expanding swaps the
	// summary row for member rows at the same position.
	gid := "grp-swap"
	ts := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	mk := func(id int64, seq int) ledger.Event {
		return ledger.Event{
			Identifier: id, GroupID: gid, SequenceIndex: seq, EntryType: ledger.EntrySwap,
			Detail: &ledger.EventDetail{Timestamp: ts, EventType: "trade", Asset: "ETH", Amount: "1"},
		}
	}
	groups := []ledger.Group{{
		GroupID: gid, Timestamp: ts, Location: "uniswap", MemberCount: 2,
		Members: []ledger.Event{mk(1, 0), mk(2, 1)},
	}}

	expand := ledger.NewExpandState()
	sp := spinner.New()
	tl := NewTimeline(&sp)
	tl.SetSize(60, 20)
	tl.SetRows(ledger.Flatten(groups, expand, nil))

	row, ok := tl.SelectedRow()
	require.True(t, ok)
	require.Equal(t, ledger.RowCluster, row.Kind)
	require.NotNil(t, row.Cluster)
	target := tl.scrollTarget

	expand.Toggle(row.Cluster.Key)
	tl.SetRows(ledger.Flatten(groups, expand, nil))

	row, ok = tl.SelectedRow()
	require.True(t, ok)
	assert.Equal(t, ledger.RowClusterCollapse, row.Kind, "selection should land on the expanded cluster's first member")
	assert.Equal(t, target, tl.scrollTarget, "expanding in place must not move the viewport")
}
