package ui

import (
	"fmt"

	"github.com/dustin/go-humanize"
	zone "github.com/lrstanley/bubblezone"

	"github.com/tallyview/tally/ledger"
)

// movementItemHeight is the fixed item footprint: two content lines and a
// separator. Items render whole or not at all, which keeps the zone markers
// they carry intact.
const movementItemHeight = 3

const candidateTimeLayout = "02 Jan 15:04"

// MovementsPane lists unmatched asset movements with their match candidates.
// Left/right cycles through the selected movement's candidates; the pair is
// what a match confirmation acts on.
type MovementsPane struct {
	movements []ledger.Movement

	selectedIdx int
	candIdx     int
	scrollOff   int // in items, not lines

	width   int
	height  int
	focused bool
}

func NewMovementsPane() *MovementsPane {
	return &MovementsPane{}
}

// SetFocused sets whether this pane has keyboard focus.
func (p *MovementsPane) SetFocused(focused bool) {
	p.focused = focused
}

func (p *MovementsPane) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.clampScroll()
}

// SetMovements replaces the list. Selection sticks to the same movement when
// it survives the refresh; the candidate cursor resets when it doesn't.
func (p *MovementsPane) SetMovements(movements []ledger.Movement) {
	var prevID int64
	if mov, ok := p.Selected(); ok {
		prevID = mov.EventID
	}
	p.movements = movements

	kept := false
	for i := range movements {
		if movements[i].EventID == prevID {
			p.selectedIdx = i
			kept = true
			break
		}
	}
	if !kept {
		p.selectedIdx = 0
		p.candIdx = 0
	}
	p.clampCandidate()
	p.clampScroll()
	p.ensureSelectedVisible()
}

// NumMovements returns the list length.
func (p *MovementsPane) NumMovements() int {
	return len(p.movements)
}

// Selected returns the selected movement.
func (p *MovementsPane) Selected() (ledger.Movement, bool) {
	if p.selectedIdx < 0 || p.selectedIdx >= len(p.movements) {
		return ledger.Movement{}, false
	}
	return p.movements[p.selectedIdx], true
}

// SelectedPair returns the movement/candidate pair the cursor points at.
func (p *MovementsPane) SelectedPair() (ledger.Movement, ledger.Candidate, bool) {
	mov, ok := p.Selected()
	if !ok || len(mov.Candidates) == 0 {
		return ledger.Movement{}, ledger.Candidate{}, false
	}
	ci := p.candIdx
	if ci < 0 || ci >= len(mov.Candidates) {
		ci = 0
	}
	return mov, mov.Candidates[ci], true
}

// SelectedCandidateIdx returns the candidate cursor position.
func (p *MovementsPane) SelectedCandidateIdx() int {
	return p.candIdx
}

func (p *MovementsPane) Up() {
	if p.selectedIdx > 0 {
		p.selectedIdx--
		p.candIdx = 0
		p.ensureSelectedVisible()
	}
}

func (p *MovementsPane) Down() {
	if p.selectedIdx < len(p.movements)-1 {
		p.selectedIdx++
		p.candIdx = 0
		p.ensureSelectedVisible()
	}
}

// Select moves the selection to the given index, for click routing.
func (p *MovementsPane) Select(idx int) bool {
	if idx < 0 || idx >= len(p.movements) {
		return false
	}
	if idx != p.selectedIdx {
		p.selectedIdx = idx
		p.candIdx = 0
	}
	p.ensureSelectedVisible()
	return true
}

// NextCandidate advances the candidate cursor, wrapping.
func (p *MovementsPane) NextCandidate() {
	mov, ok := p.Selected()
	if !ok || len(mov.Candidates) == 0 {
		return
	}
	p.candIdx = (p.candIdx + 1) % len(mov.Candidates)
}

// PrevCandidate steps the candidate cursor back, wrapping.
func (p *MovementsPane) PrevCandidate() {
	mov, ok := p.Selected()
	if !ok || len(mov.Candidates) == 0 {
		return
	}
	p.candIdx = (p.candIdx - 1 + len(mov.Candidates)) % len(mov.Candidates)
}

// ScrollBy scrolls by whole items. The delta arrives in lines from the
// shared wheel handler and rounds toward one item per notch.
func (p *MovementsPane) ScrollBy(delta int) {
	items := delta / movementItemHeight
	if items == 0 {
		if delta > 0 {
			items = 1
		} else if delta < 0 {
			items = -1
		}
	}
	p.scrollOff += items
	p.clampScroll()
}

func (p *MovementsPane) visibleItems() int {
	if p.height < movementItemHeight {
		return 1
	}
	return p.height / movementItemHeight
}

func (p *MovementsPane) clampScroll() {
	max := len(p.movements) - p.visibleItems()
	if max < 0 {
		max = 0
	}
	if p.scrollOff > max {
		p.scrollOff = max
	}
	if p.scrollOff < 0 {
		p.scrollOff = 0
	}
}

func (p *MovementsPane) clampCandidate() {
	mov, ok := p.Selected()
	if !ok || p.candIdx >= len(mov.Candidates) {
		p.candIdx = 0
	}
}

func (p *MovementsPane) ensureSelectedVisible() {
	if p.selectedIdx < p.scrollOff {
		p.scrollOff = p.selectedIdx
	}
	if vis := p.visibleItems(); p.selectedIdx >= p.scrollOff+vis {
		p.scrollOff = p.selectedIdx - vis + 1
	}
	p.clampScroll()
}

func (p *MovementsPane) String() string {
	if p.width <= 0 || p.height <= 0 {
		return ""
	}
	if len(p.movements) == 0 {
		return emptyTimelineStyle.Render("no unmatched movements")
	}

	out := ""
	end := p.scrollOff + p.visibleItems()
	if end > len(p.movements) {
		end = len(p.movements)
	}
	for i := p.scrollOff; i < end; i++ {
		if out != "" {
			out += "\n"
		}
		out += zone.Mark(MovementRowZoneID(i), p.renderMovement(i))
	}
	return out
}

// renderMovement paints one movement as two content lines plus a separator.
func (p *MovementsPane) renderMovement(idx int) string {
	mov := p.movements[idx]
	selected := idx == p.selectedIdx
	base := rowStyle
	flat := false
	switch {
	case selected && p.focused:
		base = selectedRowStyle
		flat = true
	case selected:
		base = inactiveSelectedRowStyle
		flat = true
	}

	dirIcon, dirStyle := "▾", amountInStyle
	if mov.Direction != "deposit" {
		dirIcon, dirStyle = "▴", amountOutStyle
	}
	left := []seg{
		{dirIcon + " ", dirStyle},
		{mov.Amount + " ", dirStyle},
		{mov.Asset, assetStyle},
	}
	if mov.Location != "" {
		left = append(left, seg{"  " + mov.Location, headerLocStyle})
	}
	right := []seg{{humanize.Time(mov.Timestamp), headerMetaStyle}}
	line1 := renderAligned(left, right, base, p.width, flat)

	line2 := renderLine(p.candidateSegs(mov), base, p.width, flat)
	sep := renderLine(nil, rowStyle, p.width, false)
	return line1 + "\n" + line2 + "\n" + sep
}

// candidateSegs builds the candidate strip for a movement's second line.
func (p *MovementsPane) candidateSegs(mov ledger.Movement) []seg {
	if len(mov.Candidates) == 0 {
		return []seg{{"  no candidate events", placeholderStyle}}
	}
	ci := p.candIdx
	if ci < 0 || ci >= len(mov.Candidates) {
		ci = 0
	}
	cand := mov.Candidates[ci]

	segs := []seg{{"  ", eventTypeStyle}}
	if len(mov.Candidates) > 1 {
		segs = append(segs,
			seg{"◂ ", clusterChevronStyle},
			seg{fmt.Sprintf("%d/%d", ci+1, len(mov.Candidates)), headerMetaStyle},
			seg{" ▸  ", clusterChevronStyle},
		)
	}
	segs = append(segs,
		seg{fmt.Sprintf("event %d", cand.EventID), eventTypeStyle},
		seg{" · " + cand.Location, counterpartyStyle},
		seg{" · " + cand.Timestamp.Format(candidateTimeLayout), notesStyle},
	)
	return segs
}
