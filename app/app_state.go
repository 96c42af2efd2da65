package app

import (
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tallyview/tally/internal/source"
	"github.com/tallyview/tally/ledger"
	"github.com/tallyview/tally/log"
	"github.com/tallyview/tally/nav"
	"github.com/tallyview/tally/ui"
	"github.com/tallyview/tally/ui/overlay"
)

// syncFromRoute reconciles the model with the current route. It is the only
// path from a route change to a fetch: every mutation goes through the
// router first, then lands here.
func (m *home) syncFromRoute() tea.Cmd {
	needsFetch, windowMoved := m.router.ConsumeChange()

	switch m.router.Path() {
	case PathMovements:
		m.tabbedWindow.SetActiveTab(ui.MovementsTab)
	default:
		m.tabbedWindow.SetActiveTab(ui.TimelineTab)
	}
	m.syncMenuState()

	m.pag = paginationFromQuery(m.router.CurrentQuery(), m.pag)

	if !needsFetch {
		// Highlight-only change: re-apply against the rows already loaded.
		m.applyHighlight()
		return nil
	}
	if windowMoved {
		m.windowMoved = true
	}
	return m.fetchPageCmd()
}

// deferFetch arms the short debounce window. Each call supersedes the
// previous one; only the newest tick survives the sequence check.
func (m *home) deferFetch() tea.Cmd {
	m.refetchSeq++
	seq := m.refetchSeq
	return func() tea.Msg {
		time.Sleep(refetchDebounce)
		return refetchTickMsg{seq: seq}
	}
}

// deferResolve arms the resolution debounce window.
func (m *home) deferResolve() tea.Cmd {
	m.resolveSeq++
	seq := m.resolveSeq
	return func() tea.Msg {
		time.Sleep(resolveDebounce)
		return resolveTickMsg{seq: seq}
	}
}

// requestNavigation registers a navigation request and schedules its
// resolution. Registering supersedes any earlier pending request, so two
// rapid calls resolve only the newest.
func (m *home) requestNavigation(req nav.Request) tea.Cmd {
	var cmds []tea.Cmd
	if m.router.Path() != PathTimeline {
		// Navigation lands on the timeline. Switch with a bare route first;
		// the resolver fills in the page once the position is known.
		if err := m.router.Push(nav.Target{Path: PathTimeline}); err != nil {
			return m.handleError(err)
		}
	}
	m.session.Begin(req)
	cmds = append(cmds, m.syncFromRoute(), m.deferResolve())
	return tea.Batch(cmds...)
}

// startResolveCmd snapshots the pending request and resolves it off the UI
// loop. The generation travels with the work so a superseded resolution
// identifies itself as stale.
func (m *home) startResolveCmd() tea.Cmd {
	req, ok := m.session.Pending()
	if !ok {
		return nil
	}
	gen := m.session.Generation()
	limit := m.pag.Limit
	baseQuery := m.router.CurrentQuery()
	resolver := m.resolver
	ctx := m.ctx
	return func() tea.Msg {
		return resolveDoneMsg{res: resolver.Resolve(ctx, gen, req, limit, baseQuery)}
	}
}

// handleResolveDone applies a finished resolution on the UI loop.
func (m *home) handleResolveDone(msg resolveDoneMsg) (tea.Model, tea.Cmd) {
	res := msg.res
	willApply := res.Outcome != nav.OutcomeStale && res.Gen == m.session.Generation()
	notice := m.resolver.Apply(res)

	var cmds []tea.Cmd
	if willApply && res.Outcome == nav.OutcomeFound {
		// Select the target once its page lands.
		m.pendingGroupID = res.Req.TargetGroupID
	}
	switch notice.Kind {
	case nav.NoticeNotFound:
		m.toastManager.Info(notice.Message)
		cmds = append(cmds, m.toastTickCmd())
	case nav.NoticeError:
		m.toastManager.Error(notice.Message)
		cmds = append(cmds, m.toastTickCmd())
	}
	if willApply {
		cmds = append(cmds, m.syncFromRoute())
	}
	return m, tea.Batch(cmds...)
}

// fetchPageCmd fetches the page the route currently describes. Increments
// the fetch sequence so any in-flight older fetch lands dead.
func (m *home) fetchPageCmd() tea.Cmd {
	m.fetchSeq++
	seq := m.fetchSeq
	m.loading = true

	query := ledger.ParseQuery(m.router.CurrentQuery())
	page := m.pag.Page
	limit := m.pag.Limit
	src := m.src
	ctx := m.ctx
	return func() tea.Msg {
		res, err := src.FetchPage(ctx, query, page, limit)
		return pageResultMsg{seq: seq, res: res, err: err}
	}
}

// handlePageResult installs a fetched page: groups and hidden counts are
// replaced wholesale, pagination totals update, stale expansions for groups
// that left the window simply stop mattering.
func (m *home) handlePageResult(msg pageResultMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.fetchSeq {
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		// Keep showing the last good page under the error toast.
		return m, m.handleError(msg.err)
	}

	m.groups = msg.res.Groups
	m.hiddenCounts = msg.res.HiddenCounts()
	m.pag.Total = msg.res.Found

	// The dataset may have shrunk under us. Snap back into range and refetch
	// rather than render an empty page that claims results exist.
	if clamped := m.pag.ClampPage(); clamped.Page != m.pag.Page {
		m.pag = clamped
		q := m.router.CurrentQuery()
		q.Set(nav.ParamPage, strconv.Itoa(clamped.Page))
		if err := m.router.Replace(q); err != nil {
			return m, m.handleError(err)
		}
		return m, m.fetchPageCmd()
	}

	m.reflatten()
	if m.windowMoved {
		m.windowMoved = false
		m.timeline.SelectFirst()
	}
	if m.pendingGroupID != "" {
		m.timeline.SelectGroup(m.pendingGroupID)
		m.pendingGroupID = ""
	}
	m.applyHighlight()
	m.syncMenuState()

	if ids := msg.res.GroupIDs(); len(ids) > 0 {
		return m, m.fetchDetailsCmd(ids)
	}
	return m, nil
}

// fetchDetailsCmd fetches display payloads for the page. Carries the page's
// own fetch sequence: a newer page fetch invalidates these details too.
func (m *home) fetchDetailsCmd(groupIDs []string) tea.Cmd {
	seq := m.fetchSeq
	src := m.src
	ctx := m.ctx
	return func() tea.Msg {
		events, err := src.FetchDetails(ctx, groupIDs)
		return detailResultMsg{seq: seq, events: events, err: err}
	}
}

// handleDetailResult fills resolved details into the current page's members
// and swaps placeholders for event rows in place.
func (m *home) handleDetailResult(msg detailResultMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.fetchSeq {
		return m, nil
	}
	if msg.err != nil {
		// Placeholders stay up; the page itself is fine.
		log.WarningLog.Printf("detail fetch failed: %v", msg.err)
		return m, nil
	}

	byID := make(map[int64]*ledger.EventDetail, len(msg.events))
	for i := range msg.events {
		if msg.events[i].Detail != nil {
			byID[msg.events[i].Identifier] = msg.events[i].Detail
		}
	}
	for gi := range m.groups {
		members := m.groups[gi].Members
		for mi := range members {
			if d, ok := byID[members[mi].Identifier]; ok {
				members[mi].Detail = d
			}
		}
	}

	m.reflatten()
	m.applyHighlight()
	return m, nil
}

// applyHighlight re-applies the highlight the route carries against the
// current rows. Ordered: a movement highlight wins over an event highlight.
func (m *home) applyHighlight() {
	query := m.router.CurrentQuery()
	for _, slot := range []string{nav.SlotAssetMovement, nav.SlotEvent} {
		raw := query.Get(slot)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id == 0 {
			continue
		}
		if m.expandClusterContaining(id) {
			m.reflatten()
		}
		if idx, ok := m.timeline.FindEventRow(id); ok {
			key := m.timeline.Rows()[idx].Key
			m.timeline.SetHighlight(key)
			m.timeline.SelectKey(key)
			return
		}
	}
	m.timeline.ClearHighlight()
}

// expandClusterContaining opens the collapsed cluster holding the event, if
// any. Reports whether an expansion happened.
func (m *home) expandClusterContaining(eventID int64) bool {
	for gi := range m.groups {
		for _, c := range m.groups[gi].Clusters() {
			for _, member := range c.Members {
				if member.Identifier != eventID {
					continue
				}
				if !m.expand.Expanded(c.Key) {
					m.expand.Toggle(c.Key)
					return true
				}
				return false
			}
		}
	}
	return false
}

// reflatten rebuilds the row list from the current groups and pushes it to
// the timeline, which preserves selection by key.
func (m *home) reflatten() {
	m.timeline.SetRows(ledger.Flatten(m.groups, m.expand, m.hiddenCounts))
}

// fetchMovementsCmd refreshes the unmatched movements list.
func (m *home) fetchMovementsCmd() tea.Cmd {
	src := m.src
	ctx := m.ctx
	return func() tea.Msg {
		movements, err := src.UnmatchedMovements(ctx)
		return movementsMsg{movements: movements, err: err}
	}
}

func (m *home) handleMovements(msg movementsMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		// The tab shows its previous list; the count badge stays put.
		log.WarningLog.Printf("movements fetch failed: %v", msg.err)
		return m, nil
	}
	m.movements = msg.movements
	m.movementsPane.SetMovements(msg.movements)
	m.menu.SetUnmatchedCount(len(msg.movements))
	return m, nil
}

// revealHiddenCmd refetches one group with its ignored members included.
func (m *home) revealHiddenCmd(groupID string) tea.Cmd {
	src := m.src
	ctx := m.ctx
	return func() tea.Msg {
		events, err := src.GroupEvents(ctx, groupID, true)
		return groupRevealMsg{groupID: groupID, events: events, err: err}
	}
}

// handleGroupReveal splices the full member list into the group and drops
// its load-more row.
func (m *home) handleGroupReveal(msg groupRevealMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.handleError(msg.err)
	}
	for gi := range m.groups {
		if m.groups[gi].GroupID != msg.groupID {
			continue
		}
		m.groups[gi].Members = msg.events
		m.groups[gi].MemberCount = len(msg.events)
		m.groups[gi].HiddenCount = 0
		break
	}
	delete(m.hiddenCounts, msg.groupID)
	m.reflatten()
	m.applyHighlight()
	return m, nil
}

// matchCmd persists a movement/candidate match.
func (m *home) matchCmd(intent matchIntent, toastID string) tea.Cmd {
	src := m.src
	ctx := m.ctx
	return func() tea.Msg {
		res, err := src.MatchMovement(ctx, intent.movement.EventID, intent.candidate.EventID)
		return matchDoneMsg{toastID: toastID, res: res, err: err}
	}
}

// handleMatchDone resolves the loading toast and, on success, navigates to
// the match's home group with the movement highlighted. The movement's own
// group is the fallback for when the matched event's group is filtered out.
func (m *home) handleMatchDone(msg matchDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.toastManager.Resolve(msg.toastID, overlay.ToastError, msg.err.Error())
		log.ErrorLog.Printf("match failed: %v", msg.err)
		return m, m.toastTickCmd()
	}
	m.toastManager.Resolve(msg.toastID, overlay.ToastSuccess, "movement matched")

	highlights := map[string]string{
		nav.SlotAssetMovement: strconv.FormatInt(msg.res.MovementID, 10),
	}
	navCmd := m.requestNavigation(nav.Request{
		TargetGroupID: msg.res.EventGroupID,
		Highlights:    highlights,
		Fallbacks: []nav.Request{{
			TargetGroupID: msg.res.MovementGroupID,
			Highlights:    highlights,
		}},
	})
	return m, tea.Batch(m.toastTickCmd(), navCmd, m.fetchMovementsCmd())
}

// handleDBChanged refreshes everything after an external write and re-arms
// the watcher. A pending navigation re-resolves against the new data.
func (m *home) handleDBChanged() (tea.Model, tea.Cmd) {
	m.toastManager.Info("ledger changed, refreshing")
	cmds := []tea.Cmd{
		m.toastTickCmd(),
		m.fetchPageCmd(),
		m.fetchMovementsCmd(),
		m.watchCmd(),
	}
	if m.session.IsNavigating() {
		cmds = append(cmds, m.deferResolve())
	}
	return m, tea.Batch(cmds...)
}

// pushDataChange routes a query mutation that changes which rows exist:
// push, adopt the new window, debounce the refetch, and re-arm resolution
// if a navigation is still pending.
func (m *home) pushDataChange(query url.Values) tea.Cmd {
	if err := m.router.Push(nav.Target{Query: query}); err != nil {
		return m.handleError(err)
	}
	m.pag = paginationFromQuery(m.router.CurrentQuery(), m.pag)
	cmds := []tea.Cmd{m.deferFetch()}
	if m.session.IsNavigating() {
		cmds = append(cmds, m.deferResolve())
	}
	return tea.Batch(cmds...)
}

func (m *home) computeStatusBarData() ui.StatusBarData {
	sourceLabel := "sqlite"
	if m.opts.Mode == source.ModeREST {
		sourceLabel = "rest api"
	} else if m.opts.WatchPath != "" {
		sourceLabel = filepath.Base(m.opts.WatchPath)
	}
	return ui.StatusBarData{
		Source:       sourceLabel,
		QuerySummary: ledger.ParseQuery(m.router.CurrentQuery()).Summary(),
		Page:         m.pag.Page,
		TotalPages:   m.pag.TotalPages(),
		Limit:        m.pag.Limit,
		Found:        m.pag.Total,
		Navigating:   m.session.IsNavigating(),
		NavFrame:     m.spinner.View(),
		Watching:     m.watcher != nil,
	}
}

// syncMenuState picks the menu variant for the current mode and pane.
func (m *home) syncMenuState() {
	switch {
	case m.state == stateJump || m.state == stateSearch || m.state == stateFilter:
		m.menu.SetState(ui.StateInput)
	case m.state == stateConfirm:
		m.menu.SetState(ui.StateConfirm)
	case m.tabbedWindow.IsInMovementsTab():
		m.menu.SetState(ui.StateMovements)
	case m.timeline.NumRows() == 0:
		m.menu.SetState(ui.StateEmpty)
	default:
		m.menu.SetState(ui.StateTimeline)
		m.updateSpaceAction()
	}
}

// updateSpaceAction relabels the space hint for the selected row.
func (m *home) updateSpaceAction() {
	row, ok := m.timeline.SelectedRow()
	if !ok {
		m.menu.SetSpaceAction("")
		return
	}
	switch row.Kind {
	case ledger.RowCluster:
		if row.Event == nil {
			m.menu.SetSpaceAction("expand")
		} else {
			m.menu.SetSpaceAction("collapse")
		}
	case ledger.RowClusterCollapse:
		m.menu.SetSpaceAction("collapse")
	default:
		m.menu.SetSpaceAction("")
	}
}

// handleError logs the error and surfaces it as a toast.
func (m *home) handleError(err error) tea.Cmd {
	log.ErrorLog.Printf("%v", err)
	m.toastManager.Error(err.Error())
	return m.toastTickCmd()
}
