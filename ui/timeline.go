package ui

import (
	"math"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/harmonica"

	"github.com/tallyview/tally/ledger"
)

// Timeline renders the flattened rows of the current page and owns the
// selection plus the smooth-scroll viewport. Row data comes precomputed from
// ledger.Flatten; this type only windows and paints it.
type Timeline struct {
	rows        []ledger.Row
	selectedIdx int

	height, width int
	focused       bool

	// spinner is shared with the app so placeholder rows animate in step
	// with the rest of the chrome.
	spinner *spinner.Model

	// highlightKey marks the row a jump landed on. Cleared when the user
	// moves the selection themselves.
	highlightKey string

	// bannerFrame tracks the animation frame for the empty-state banner dots.
	bannerFrame int

	// Spring-driven scroll. scrollPos is the rendered offset in lines,
	// scrollTarget the resting point; UpdateScroll advances the animation
	// one frame.
	scrollSpring   harmonica.Spring
	scrollPos      float64
	scrollVelocity float64
	scrollTarget   float64
}

func NewTimeline(spinner *spinner.Model) *Timeline {
	return &Timeline{
		rows:         []ledger.Row{},
		spinner:      spinner,
		scrollSpring: harmonica.NewSpring(harmonica.FPS(60), 6.0, 0.8),
	}
}

func (t *Timeline) SetFocused(focused bool) {
	t.focused = focused
}

// SetSize sets the pane's content dimensions.
func (t *Timeline) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.clampScroll()
	t.ensureSelectedVisible()
}

// SetRows swaps in a freshly flattened row list. Selection is preserved by
// row key so detail resolution and cluster toggles don't move the cursor;
// when the key is gone the nearest selectable index wins.
func (t *Timeline) SetRows(rows []ledger.Row) {
	var prevKey string
	if r, ok := t.SelectedRow(); ok {
		prevKey = r.Key
	}
	t.rows = rows
	if prevKey != "" {
		for i, r := range rows {
			if r.Key == prevKey {
				t.selectedIdx = i
				t.clampSelection()
				t.ensureSelectedVisible()
				return
			}
		}
	}
	t.clampSelection()
	t.ensureSelectedVisible()
}

// Rows returns the current row list.
func (t *Timeline) Rows() []ledger.Row {
	return t.rows
}

func (t *Timeline) NumRows() int {
	return len(t.rows)
}

// SelectedIdx returns the index of the selected row.
func (t *Timeline) SelectedIdx() int {
	return t.selectedIdx
}

// SelectedRow returns the selected row, if any rows are present.
func (t *Timeline) SelectedRow() (ledger.Row, bool) {
	if t.selectedIdx < 0 || t.selectedIdx >= len(t.rows) {
		return ledger.Row{}, false
	}
	return t.rows[t.selectedIdx], true
}

// Down moves the selection to the next selectable row. Group headers are
// skipped; the selection does not wrap.
func (t *Timeline) Down() {
	for i := t.selectedIdx + 1; i < len(t.rows); i++ {
		if t.selectable(i) {
			t.selectedIdx = i
			t.highlightKey = ""
			t.ensureSelectedVisible()
			return
		}
	}
}

// Up moves the selection to the previous selectable row.
func (t *Timeline) Up() {
	for i := t.selectedIdx - 1; i >= 0; i-- {
		if t.selectable(i) {
			t.selectedIdx = i
			t.highlightKey = ""
			t.ensureSelectedVisible()
			return
		}
	}
}

// Select moves the selection to idx, e.g. from a mouse click. Returns false
// when idx is out of range or not selectable.
func (t *Timeline) Select(idx int) bool {
	if idx < 0 || idx >= len(t.rows) || !t.selectable(idx) {
		return false
	}
	t.selectedIdx = idx
	t.highlightKey = ""
	t.ensureSelectedVisible()
	return true
}

// SelectKey selects the row with the given key. Unlike Select it keeps any
// active highlight, so a jump can land and emphasize in one motion.
func (t *Timeline) SelectKey(key string) bool {
	for i, r := range t.rows {
		if r.Key == key && t.selectable(i) {
			t.selectedIdx = i
			t.ensureSelectedVisible()
			return true
		}
	}
	return false
}

// SelectFirst resets the selection and viewport for a fresh page.
func (t *Timeline) SelectFirst() {
	t.selectedIdx = 0
	t.highlightKey = ""
	t.clampSelection()
	t.ScrollToTop()
}

// FindEventRow returns the index of the row carrying the given event
// identifier.
func (t *Timeline) FindEventRow(eventID int64) (int, bool) {
	for i, r := range t.rows {
		if r.Event != nil && r.Event.Identifier == eventID {
			return i, true
		}
	}
	return 0, false
}

// FindGroupRow returns the index of the group's first row (its header).
func (t *Timeline) FindGroupRow(groupID string) (int, bool) {
	for i, r := range t.rows {
		if r.GroupID == groupID {
			return i, true
		}
	}
	return 0, false
}

// SelectGroup puts the selection on the group's first selectable row.
func (t *Timeline) SelectGroup(groupID string) bool {
	idx, ok := t.FindGroupRow(groupID)
	if !ok {
		return false
	}
	for i := idx; i < len(t.rows) && t.rows[i].GroupID == groupID; i++ {
		if t.selectable(i) {
			t.selectedIdx = i
			t.ensureSelectedVisible()
			return true
		}
	}
	return false
}

// SetHighlight emphasizes the row with the given key until the user moves.
func (t *Timeline) SetHighlight(key string) {
	t.highlightKey = key
}

func (t *Timeline) ClearHighlight() {
	t.highlightKey = ""
}

// HighlightKey returns the currently emphasized row key, if any.
func (t *Timeline) HighlightKey() string {
	return t.highlightKey
}

// ScrollToTop snaps the viewport to the top without animating. Used on page
// changes, where a spring glide across a whole page would just be noise.
func (t *Timeline) ScrollToTop() {
	t.scrollPos = 0
	t.scrollVelocity = 0
	t.scrollTarget = 0
}

// ScrollBy nudges the scroll target, e.g. from the mouse wheel. The
// selection stays put.
func (t *Timeline) ScrollBy(delta int) {
	t.scrollTarget += float64(delta)
	t.clampScroll()
}

// UpdateScroll advances the spring one frame toward the target.
func (t *Timeline) UpdateScroll() {
	t.scrollPos, t.scrollVelocity = t.scrollSpring.Update(t.scrollPos, t.scrollVelocity, t.scrollTarget)
}

// AdvanceBanner steps the empty-state banner animation. Driven off the
// spinner tick so the dots pulse at the spinner's cadence.
func (t *Timeline) AdvanceBanner() {
	t.bannerFrame++
}

// IsScrolling reports whether the spring still has visible motion left, so
// the app knows to keep ticking frames.
func (t *Timeline) IsScrolling() bool {
	return math.Abs(t.scrollPos-t.scrollTarget) > 0.01 || math.Abs(t.scrollVelocity) > 0.01
}

// ScrollOffset returns the whole-line offset the renderer slices at.
func (t *Timeline) ScrollOffset() int {
	off := int(math.Round(t.scrollPos))
	if off < 0 {
		off = 0
	}
	if m := t.maxScroll(); off > m {
		off = m
	}
	return off
}

// RowAt maps a content line offset (scroll offset + local row) to a row
// index. Returns -1 past the end.
func (t *Timeline) RowAt(line int) int {
	cur := 0
	for i, r := range t.rows {
		h := r.Height()
		if line >= cur && line < cur+h {
			return i
		}
		cur += h
	}
	return -1
}

func (t *Timeline) selectable(idx int) bool {
	return t.rows[idx].Kind != ledger.RowGroupHeader
}

// clampSelection keeps the selection in range and off group headers.
func (t *Timeline) clampSelection() {
	if len(t.rows) == 0 {
		t.selectedIdx = 0
		return
	}
	if t.selectedIdx >= len(t.rows) {
		t.selectedIdx = len(t.rows) - 1
	}
	if t.selectedIdx < 0 {
		t.selectedIdx = 0
	}
	if t.selectable(t.selectedIdx) {
		return
	}
	for i := t.selectedIdx + 1; i < len(t.rows); i++ {
		if t.selectable(i) {
			t.selectedIdx = i
			return
		}
	}
	for i := t.selectedIdx - 1; i >= 0; i-- {
		if t.selectable(i) {
			t.selectedIdx = i
			return
		}
	}
}

// rowStartLine returns the line offset where row idx begins in the content
// buffer. Heights are fixed per kind, so this is a plain prefix sum.
func (t *Timeline) rowStartLine(idx int) int {
	line := 0
	for i := 0; i < idx && i < len(t.rows); i++ {
		line += t.rows[i].Height()
	}
	return line
}

func (t *Timeline) maxScroll() int {
	m := ledger.TotalHeight(t.rows) - t.height
	if m < 0 {
		m = 0
	}
	return m
}

func (t *Timeline) clampScroll() {
	max := float64(t.maxScroll())
	if t.scrollTarget > max {
		t.scrollTarget = max
	}
	if t.scrollTarget < 0 {
		t.scrollTarget = 0
	}
	if t.scrollPos > max {
		t.scrollPos = max
	}
	if t.scrollPos < 0 {
		t.scrollPos = 0
	}
}

// ensureSelectedVisible retargets the spring so the selected row is fully
// inside the viewport. When a row is taller than the viewport its top edge
// wins over its bottom edge.
func (t *Timeline) ensureSelectedVisible() {
	if len(t.rows) == 0 || t.height <= 0 {
		t.scrollTarget = 0
		return
	}
	start := t.rowStartLine(t.selectedIdx)
	end := start + t.rows[t.selectedIdx].Height() - 1
	// Pull the group header into view when the selection sits directly
	// under it, so stepping onto a group's first entry shows its date line.
	if t.selectedIdx > 0 && t.rows[t.selectedIdx-1].Kind == ledger.RowGroupHeader {
		start = t.rowStartLine(t.selectedIdx - 1)
	}

	target := t.scrollTarget
	if float64(start) < target {
		target = float64(start)
	}
	if float64(end) >= target+float64(t.height) {
		target = float64(end - t.height + 1)
		if target > float64(start) {
			target = float64(start)
		}
	}
	if target < 0 {
		target = 0
	}
	if m := float64(t.maxScroll()); target > m {
		target = m
	}
	t.scrollTarget = target
}
