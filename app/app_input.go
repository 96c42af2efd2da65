package app

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/tallyview/tally/keys"
	"github.com/tallyview/tally/ledger"
	"github.com/tallyview/tally/nav"
	"github.com/tallyview/tally/ui"
	"github.com/tallyview/tally/ui/overlay"
)

func (m *home) handleMenuHighlighting(msg tea.KeyMsg) (cmd tea.Cmd, returnEarly bool) {
	// Handle menu highlighting when you press a button. We intercept it here and immediately return to
	// update the ui while re-sending the keypress. Then, on the next call to this, we actually handle the keypress.
	if m.keySent {
		m.keySent = false
		return nil, false
	}
	if m.state != stateDefault {
		return nil, false
	}
	// If it's in the global keymap, we should try to highlight it.
	name, ok := keys.GlobalKeyStringsMap[msg.String()]
	if !ok {
		return nil, false
	}

	m.keySent = true
	return tea.Batch(
		func() tea.Msg { return msg },
		m.keydownCallback(name)), true
}

// handleMouse processes mouse events for click and scroll interactions.
func (m *home) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}

	// Scroll wheel always scrolls the active pane's content.
	if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.tabbedWindow.ContentScrollUp()
		case tea.MouseButtonWheelDown:
			m.tabbedWindow.ContentScrollDown()
		}
		return m, nil
	}

	if msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	// A click while a transient overlay is up dismisses it. Input overlays
	// stay: stray clicks should not eat half-typed filters.
	if m.state != stateDefault {
		switch m.state {
		case stateHelp:
			m.state = stateDefault
			m.textOverlay = nil
			m.syncMenuState()
		case stateConfirm:
			m.state = stateDefault
			m.confirmationOverlay = nil
			m.pendingMatch = nil
			m.syncMenuState()
		case stateDetail:
			m.state = stateDefault
			m.detailOverlay = nil
			m.syncMenuState()
		}
		return m, nil
	}

	for i, id := range ui.TabZoneIDs {
		if zone.Get(id).InBounds(msg) {
			if i == m.tabbedWindow.GetActiveTab() {
				return m, nil
			}
			return m, m.toggleTab()
		}
	}

	if zone.Get(ui.ZonePagerPrev).InBounds(msg) {
		return m, m.gotoPage(m.pag.Page - 1)
	}
	if zone.Get(ui.ZonePagerNext).InBounds(msg) {
		return m, m.gotoPage(m.pag.Page + 1)
	}

	if m.tabbedWindow.IsInMovementsTab() {
		for i := range m.movements {
			if zone.Get(ui.MovementRowZoneID(i)).InBounds(msg) {
				m.movementsPane.Select(i)
				return m, nil
			}
		}
		return m, nil
	}

	// Timeline rows are hit-tested geometrically. The viewport slices lines
	// out of partially visible rows, which would tear zone markers, so the
	// click maps through the scroll offset instead.
	localY := msg.Y - 2 - m.tabbedWindow.ContentYOffset()
	if localY < 0 {
		return m, nil
	}
	idx := m.timeline.RowAt(m.timeline.ScrollOffset() + localY)
	if idx >= 0 && m.timeline.Select(idx) {
		m.updateSpaceAction()
	}
	return m, nil
}

func (m *home) handleKeyPress(msg tea.KeyMsg) (mod tea.Model, cmd tea.Cmd) {
	cmd, returnEarly := m.handleMenuHighlighting(msg)
	if returnEarly {
		return m, cmd
	}

	switch m.state {
	case stateHelp:
		return m.handleHelpState(msg)
	case stateJump, stateSearch:
		return m.handleInputState(msg)
	case stateFilter:
		return m.handleFilterState(msg)
	case stateConfirm:
		return m.handleConfirmState(msg)
	case stateDetail:
		return m.handleDetailState(msg)
	}

	if msg.Type == tea.KeyCtrlC {
		return m.handleQuit()
	}

	name, ok := keys.GlobalKeyStringsMap[msg.String()]
	if !ok {
		return m, nil
	}

	if m.tabbedWindow.IsInMovementsTab() {
		return m.handleMovementsKey(name)
	}
	return m.handleTimelineKey(name)
}

// handleMovementsKey handles keys while the movements tab is active.
func (m *home) handleMovementsKey(name keys.KeyName) (tea.Model, tea.Cmd) {
	switch name {
	case keys.KeyUp:
		m.movementsPane.Up()
	case keys.KeyDown:
		m.movementsPane.Down()
	case keys.KeyPrevPage:
		m.movementsPane.PrevCandidate()
	case keys.KeyNextPage:
		m.movementsPane.NextCandidate()
	case keys.KeyEnter:
		return m, m.gotoSelectedMovement()
	case keys.KeyMatch:
		return m.confirmMatchSelected()
	case keys.KeyRefresh:
		return m, m.fetchMovementsCmd()
	case keys.KeyTab:
		return m, m.toggleTab()
	case keys.KeyHelp:
		return m.showHelpScreen()
	case keys.KeyQuit:
		return m.handleQuit()
	}
	return m, nil
}

// handleTimelineKey handles keys while the timeline tab is active.
func (m *home) handleTimelineKey(name keys.KeyName) (tea.Model, tea.Cmd) {
	switch name {
	case keys.KeyUp:
		m.timeline.Up()
		m.updateSpaceAction()
	case keys.KeyDown:
		m.timeline.Down()
		m.updateSpaceAction()
	case keys.KeyEnter:
		return m.openSelected()
	case keys.KeySpace:
		return m.toggleSelected()
	case keys.KeyPrevPage:
		return m, m.gotoPage(m.pag.Page - 1)
	case keys.KeyNextPage:
		return m, m.gotoPage(m.pag.Page + 1)
	case keys.KeyLimit:
		return m, m.cycleLimit()
	case keys.KeyJump:
		m.state = stateJump
		m.textInputOverlay = overlay.NewTextInputOverlay("go to group", "")
		m.textInputOverlay.SetPlaceholder("group identifier")
		m.textInputOverlay.SetSize(int(float32(m.termWidth)*0.4), 3)
		m.syncMenuState()
	case keys.KeySearch:
		current := ledger.ParseQuery(m.router.CurrentQuery())
		initial := ""
		if len(current.Assets) > 0 {
			initial = current.Assets[0]
		}
		m.state = stateSearch
		m.textInputOverlay = overlay.NewTextInputOverlay("filter by asset", initial)
		m.textInputOverlay.SetPlaceholder("asset symbol, empty clears")
		m.textInputOverlay.SetSize(int(float32(m.termWidth)*0.4), 3)
		m.syncMenuState()
	case keys.KeyFilter:
		m.state = stateFilter
		m.filterOverlay = overlay.NewFilterOverlay(ledger.ParseQuery(m.router.CurrentQuery()))
		m.filterOverlay.SetWidth(int(float32(m.termWidth) * 0.5))
		m.syncMenuState()
	case keys.KeyClearFilters:
		return m, m.clearFilters()
	case keys.KeySort:
		return m, m.flipSort()
	case keys.KeyIgnored:
		return m, m.toggleIgnored()
	case keys.KeyYank:
		return m, m.yankSelected()
	case keys.KeyRefresh:
		return m, m.refresh()
	case keys.KeyBack:
		return m, m.goBack()
	case keys.KeyTab:
		return m, m.toggleTab()
	case keys.KeyHelp:
		return m.showHelpScreen()
	case keys.KeyQuit:
		return m.handleQuit()
	}
	return m, nil
}

// gotoPage moves the page window. Page keys are deliberate, so the fetch
// fires immediately instead of riding the debounce.
func (m *home) gotoPage(page int) tea.Cmd {
	if page < 1 || page > m.pag.TotalPages() || page == m.pag.Page {
		return nil
	}
	q := nav.StripHighlights(m.router.CurrentQuery())
	q.Set(nav.ParamPage, strconv.Itoa(page))
	if err := m.router.Push(nav.Target{Query: q}); err != nil {
		return m.handleError(err)
	}
	return m.syncFromRoute()
}

// cycleLimit steps the page size through the selectable limits, re-anchored
// so the first visible group stays in the window.
func (m *home) cycleLimit() tea.Cmd {
	next := ledger.Limits[0]
	for i, l := range ledger.Limits {
		if l == m.pag.Limit {
			next = ledger.Limits[(i+1)%len(ledger.Limits)]
			break
		}
	}
	pag := m.pag.WithLimit(next)
	q := nav.StripHighlights(m.router.CurrentQuery())
	q.Set(nav.ParamPage, strconv.Itoa(pag.Page))
	q.Set(nav.ParamLimit, strconv.Itoa(pag.Limit))
	if err := m.router.Push(nav.Target{Query: q}); err != nil {
		return m.handleError(err)
	}
	m.pag = pag
	cmds := []tea.Cmd{m.deferFetch()}
	if m.session.IsNavigating() {
		cmds = append(cmds, m.deferResolve())
	}
	return tea.Batch(cmds...)
}

// flipSort toggles the sort direction and restarts from page one.
func (m *home) flipSort() tea.Cmd {
	q := nav.StripHighlights(m.router.CurrentQuery())
	if q.Get(ledger.ParamSortAscending) == "true" {
		q.Del(ledger.ParamSortAscending)
	} else {
		q.Set(ledger.ParamSortAscending, "true")
	}
	q.Set(nav.ParamPage, "1")
	return m.pushDataChange(q)
}

// toggleIgnored flips ignored-event visibility in place. The page holds:
// revealing or hiding ignored events reorders nothing at the group level.
func (m *home) toggleIgnored() tea.Cmd {
	q := m.router.CurrentQuery()
	if q.Get(ledger.ParamIncludeIgnored) == "true" {
		q.Del(ledger.ParamIncludeIgnored)
	} else {
		q.Set(ledger.ParamIncludeIgnored, "true")
	}
	return m.pushDataChange(q)
}

// clearFilters resets to the unfiltered first page, keeping only the limit.
func (m *home) clearFilters() tea.Cmd {
	q := url.Values{}
	q.Set(nav.ParamPage, "1")
	q.Set(nav.ParamLimit, strconv.Itoa(m.pag.Limit))
	return m.pushDataChange(q)
}

// refresh forces a refetch of the current route.
func (m *home) refresh() tea.Cmd {
	if err := m.router.Push(nav.Target{Query: m.router.CurrentQuery(), Force: true}); err != nil {
		return m.handleError(err)
	}
	return tea.Batch(m.syncFromRoute(), m.fetchMovementsCmd())
}

// goBack pops the route history.
func (m *home) goBack() tea.Cmd {
	if !m.router.Back() {
		return nil
	}
	return m.syncFromRoute()
}

// yankSelected copies the selected event's transaction hash, or its
// identifier when no hash exists.
func (m *home) yankSelected() tea.Cmd {
	row, ok := m.timeline.SelectedRow()
	if !ok || row.Event == nil {
		return nil
	}
	text := strconv.FormatInt(row.Event.Identifier, 10)
	what := "identifier"
	if row.Event.Detail != nil && row.Event.Detail.TxHash != "" {
		text = row.Event.Detail.TxHash
		what = "tx hash"
	}
	if err := clipboard.WriteAll(text); err != nil {
		return m.handleError(err)
	}
	m.toastManager.Success("copied " + what)
	return m.toastTickCmd()
}

// toggleSelected expands or collapses the selected cluster, or reveals a
// group's hidden members on a load-more row.
func (m *home) toggleSelected() (tea.Model, tea.Cmd) {
	row, ok := m.timeline.SelectedRow()
	if !ok {
		return m, nil
	}
	switch row.Kind {
	case ledger.RowCluster, ledger.RowClusterCollapse:
		if row.Cluster == nil {
			return m, nil
		}
		m.expand.Toggle(row.Cluster.Key)
		m.reflatten()
		m.updateSpaceAction()
		return m, nil
	case ledger.RowLoadMore:
		return m, m.revealHiddenCmd(row.GroupID)
	}
	return m, nil
}

// openSelected opens the detail overlay for the selected event, or treats
// enter as toggle on cluster and load-more rows.
func (m *home) openSelected() (tea.Model, tea.Cmd) {
	row, ok := m.timeline.SelectedRow()
	if !ok {
		return m, nil
	}
	switch row.Kind {
	case ledger.RowCluster:
		if row.Event == nil {
			return m.toggleSelected()
		}
	case ledger.RowLoadMore:
		return m.toggleSelected()
	case ledger.RowPlaceholder:
		m.toastManager.Info("details still loading")
		return m, m.toastTickCmd()
	}
	if row.Event == nil || row.Event.Detail == nil {
		return m, nil
	}

	m.state = stateDetail
	m.detailOverlay = overlay.NewDetailOverlay(*row.Event)
	m.detailOverlay.SetSize(int(float32(m.termWidth)*0.6), int(float32(m.termHeight)*0.7))
	m.syncMenuState()
	return m, m.renderDetailCmd(*row.Event)
}

// renderDetailCmd renders the event's notes markdown off the UI loop.
func (m *home) renderDetailCmd(ev ledger.Event) tea.Cmd {
	if ev.Detail == nil || ev.Detail.Notes == "" {
		return nil
	}
	id := ev.Identifier
	notes := ev.Detail.Notes
	width := int(float32(m.termWidth) * 0.6)
	return func() tea.Msg {
		rendered, err := overlay.RenderMarkdown(notes, width-6)
		return detailRenderedMsg{eventID: id, rendered: rendered, err: err}
	}
}

// handleInputState feeds keys to the jump and quick-filter prompts.
func (m *home) handleInputState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.textInputOverlay == nil {
		m.state = stateDefault
		m.syncMenuState()
		return m, nil
	}
	prev := m.state
	if !m.textInputOverlay.HandleKeyPress(msg) {
		return m, nil
	}
	submitted := m.textInputOverlay.IsSubmitted()
	value := strings.TrimSpace(m.textInputOverlay.GetValue())
	m.textInputOverlay = nil
	m.state = stateDefault
	m.syncMenuState()
	if !submitted {
		return m, nil
	}

	switch prev {
	case stateJump:
		if value == "" {
			return m, nil
		}
		// Look for the group under the active filters first; fall back to an
		// unfiltered lookup so a filtered-out group still reports something.
		return m, m.requestNavigation(nav.Request{
			TargetGroupID:   value,
			PreserveFilters: true,
			Fallbacks: []nav.Request{{
				TargetGroupID:  value,
				FilterOverride: url.Values{},
			}},
		})
	case stateSearch:
		return m, m.applyAssetFilter(value)
	}
	return m, nil
}

// applyAssetFilter sets or clears the quick asset filter.
func (m *home) applyAssetFilter(asset string) tea.Cmd {
	q := nav.StripHighlights(m.router.CurrentQuery())
	if asset == "" {
		q.Del(ledger.ParamAsset)
	} else {
		q.Set(ledger.ParamAsset, asset)
	}
	q.Set(nav.ParamPage, "1")
	return m.pushDataChange(q)
}

// handleFilterState feeds keys to the filter form until it closes.
func (m *home) handleFilterState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filterOverlay == nil {
		m.state = stateDefault
		m.syncMenuState()
		return m, nil
	}
	if !m.filterOverlay.HandleKeyPress(msg) {
		return m, nil
	}
	submitted := m.filterOverlay.IsSubmitted()
	query := m.filterOverlay.Query()
	m.filterOverlay = nil
	m.state = stateDefault
	m.syncMenuState()
	if !submitted {
		return m, nil
	}

	values := query.Values()
	values.Set(nav.ParamPage, "1")
	values.Set(nav.ParamLimit, strconv.Itoa(m.pag.Limit))
	return m, m.pushDataChange(values)
}

// confirmMatchSelected opens the confirmation modal for the selected
// movement/candidate pair.
func (m *home) confirmMatchSelected() (tea.Model, tea.Cmd) {
	movement, candidate, ok := m.movementsPane.SelectedPair()
	if !ok {
		m.toastManager.Info("no candidate selected")
		return m, m.toastTickCmd()
	}
	m.pendingMatch = &matchIntent{movement: movement, candidate: candidate}
	message := "Match " + movement.Amount + " " + movement.Asset + " to event " +
		strconv.FormatInt(candidate.EventID, 10) + " at " + candidate.Location + "?"
	m.state = stateConfirm
	m.confirmationOverlay = overlay.NewConfirmationOverlay(message)
	m.syncMenuState()
	return m, nil
}

// handleConfirmState resolves the match confirmation modal.
func (m *home) handleConfirmState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	dismiss := func() {
		m.state = stateDefault
		m.confirmationOverlay = nil
		m.pendingMatch = nil
		m.syncMenuState()
	}
	switch msg.String() {
	case "y", "Y", "enter":
		intent := m.pendingMatch
		dismiss()
		if intent == nil {
			return m, nil
		}
		toastID := m.toastManager.Loading("matching movement")
		return m, tea.Batch(m.toastTickCmd(), m.matchCmd(*intent, toastID))
	case "n", "N", "esc", "q":
		dismiss()
	}
	return m, nil
}

// handleDetailState drives the event detail overlay.
func (m *home) handleDetailState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.detailOverlay == nil {
		m.state = stateDefault
		m.syncMenuState()
		return m, nil
	}
	switch msg.String() {
	case "esc", "q", "enter", "o":
		m.state = stateDefault
		m.detailOverlay = nil
		m.syncMenuState()
	case "up", "k":
		m.detailOverlay.ScrollUp()
	case "down", "j":
		m.detailOverlay.ScrollDown()
	case "y":
		if hash := m.detailOverlay.TxHash(); hash != "" {
			if err := clipboard.WriteAll(hash); err != nil {
				return m, m.handleError(err)
			}
			m.toastManager.Success("copied tx hash")
			return m, m.toastTickCmd()
		}
	}
	return m, nil
}

// toggleTab switches between the timeline and movements views.
func (m *home) toggleTab() tea.Cmd {
	m.tabbedWindow.Toggle()
	if m.tabbedWindow.IsInMovementsTab() {
		m.router.SetPath(PathMovements)
		m.syncMenuState()
		return m.fetchMovementsCmd()
	}
	m.router.SetPath(PathTimeline)
	m.syncMenuState()
	return nil
}

// gotoSelectedMovement navigates the timeline to the selected movement's
// group with the movement highlighted.
func (m *home) gotoSelectedMovement() tea.Cmd {
	mov, ok := m.movementsPane.Selected()
	if !ok {
		return nil
	}
	return m.requestNavigation(nav.Request{
		TargetGroupID: mov.GroupID,
		Highlights: map[string]string{
			nav.SlotAssetMovement: strconv.FormatInt(mov.EventID, 10),
		},
	})
}

// keydownCallback clears the menu option highlighting after 500ms.
func (m *home) keydownCallback(name keys.KeyName) tea.Cmd {
	m.menu.Keydown(name)
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
		case <-time.After(500 * time.Millisecond):
		}

		return keyupMsg{}
	}
}
