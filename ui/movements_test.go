package ui

import (
	"fmt"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyview/tally/ledger"
)

// makeMovements builds n unmatched deposits, newest first, each with candsPer
// match candidates.
func makeMovements(n, candsPer int) []ledger.Movement {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	movements := make([]ledger.Movement, n)
	for i := range movements {
		m := ledger.Movement{
			EventID:   int64(500 + i),
			GroupID:   fmt.Sprintf("mov-%d", i),
			Timestamp: base.Add(-time.Duration(i) * time.Hour),
			Location:  "kraken",
			Direction: "deposit",
			Asset:     "BTC",
			Amount:    "0.5",
		}
		for c := 0; c < candsPer; c++ {
			m.Candidates = append(m.Candidates, ledger.Candidate{
				EventID:   int64(600 + i*10 + c),
				GroupID:   fmt.Sprintf("grp-%d-%d", i, c),
				Location:  "ethereum",
				Timestamp: m.Timestamp.Add(-time.Duration(c+1) * 10 * time.Minute),
			})
		}
		movements[i] = m
	}
	return movements
}

func TestMovementsPane_SelectionSticksByEventID(t *testing.T) {
	p := NewMovementsPane()
	p.SetSize(60, 12)
	p.SetMovements(makeMovements(3, 0))

	p.Down()
	mov, ok := p.Selected()
	require.True(t, ok)
	require.Equal(t, int64(501), mov.EventID)

	// A refresh reorders the list: the selection follows the movement.
	reordered := makeMovements(3, 0)
	reordered[0], reordered[1] = reordered[1], reordered[0]
	p.SetMovements(reordered)

	mov, ok = p.Selected()
	require.True(t, ok)
	assert.Equal(t, int64(501), mov.EventID)

	// The selected movement got matched away: selection resets to the top.
	p.SetMovements(makeMovements(1, 0))
	mov, ok = p.Selected()
	require.True(t, ok)
	assert.Equal(t, int64(500), mov.EventID)
}

func TestMovementsPane_CandidateCursorWrapsAndResets(t *testing.T) {
	p := NewMovementsPane()
	p.SetSize(60, 12)
	p.SetMovements(makeMovements(2, 3))

	assert.Equal(t, 0, p.SelectedCandidateIdx())
	p.NextCandidate()
	p.NextCandidate()
	assert.Equal(t, 2, p.SelectedCandidateIdx())
	p.NextCandidate()
	assert.Equal(t, 0, p.SelectedCandidateIdx(), "cursor wraps forward")

	p.PrevCandidate()
	assert.Equal(t, 2, p.SelectedCandidateIdx(), "cursor wraps backward")

	// Moving to another movement starts over at its first candidate.
	p.Down()
	assert.Equal(t, 0, p.SelectedCandidateIdx())
}

func TestMovementsPane_SelectedPair(t *testing.T) {
	p := NewMovementsPane()
	p.SetSize(60, 12)

	p.SetMovements(makeMovements(1, 0))
	_, _, ok := p.SelectedPair()
	assert.False(t, ok, "no pair without candidates")

	p.SetMovements(makeMovements(1, 2))
	p.NextCandidate()
	mov, cand, ok := p.SelectedPair()
	require.True(t, ok)
	assert.Equal(t, int64(500), mov.EventID)
	assert.Equal(t, int64(601), cand.EventID, "pair follows the candidate cursor")
}

func TestMovementsPane_ScrollByWholeItems(t *testing.T) {
	p := NewMovementsPane()
	p.SetSize(60, 9) // three items visible
	p.SetMovements(makeMovements(5, 0))

	p.ScrollBy(1)
	assert.Equal(t, 1, p.scrollOff, "a single wheel line still moves one item")

	p.ScrollBy(100)
	assert.Equal(t, 2, p.scrollOff, "scroll clamps to the last page")

	p.ScrollBy(-100)
	assert.Equal(t, 0, p.scrollOff)
}

func TestMovementsPane_String(t *testing.T) {
	p := NewMovementsPane()
	p.SetSize(60, 9)

	assert.Contains(t, ansi.Strip(p.String()), "no unmatched movements")

	movements := makeMovements(2, 2)
	movements[1].Candidates = nil
	p.SetMovements(movements)

	out := ansi.Strip(p.String())
	assert.Contains(t, out, "0.5")
	assert.Contains(t, out, "BTC")
	assert.Contains(t, out, "1/2", "candidate counter renders for multi-candidate movements")
	assert.Contains(t, out, "event 600")
	assert.Contains(t, out, "no candidate events")
}
