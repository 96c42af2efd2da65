package app

import (
	"context"
	"net/url"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/tallyview/tally/internal/store"
	"github.com/tallyview/tally/ledger"
	"github.com/tallyview/tally/log"
	"github.com/tallyview/tally/nav"
	"github.com/tallyview/tally/ui"
	"github.com/tallyview/tally/ui/overlay"
)

// Debounce windows. A filter or toggle change refetches page data after the
// short window; a pending navigation re-resolves after the longer one, so
// the data fetch usually lands before a redundant position check fires.
const (
	refetchDebounce = 250 * time.Millisecond
	resolveDebounce = 600 * time.Millisecond
)

// Options configures the TUI session.
type Options struct {
	// Mode is the backend label for the status bar: source.ModeREST or
	// source.ModeSQLite.
	Mode string
	// DefaultLimit is the configured page size, snapped to a selectable one.
	DefaultLimit int
	// WatchPath enables the database watcher when non-empty.
	WatchPath string
}

// Run is the main entrypoint into the application.
func Run(ctx context.Context, src ledger.Source, opts Options) error {
	// Set the terminal's default background to the theme base color so every
	// ANSI reset and unstyled cell falls back to #232136 instead of black.
	restore := ui.SetTerminalBackground(string(ui.ColorBase))
	defer restore()

	h := newHome(ctx, src, opts)
	if opts.WatchPath != "" {
		w, err := store.Watch(opts.WatchPath)
		if err != nil {
			log.WarningLog.Printf("db watch disabled: %v", err)
		} else {
			h.watcher = w
			defer w.Close()
		}
	}

	zone.NewGlobal()
	p := tea.NewProgram(
		h,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(), // Full mouse tracking for hover + scroll + click
	)
	_, err := p.Run()

	// Orphan any in-flight resolution so dangling callbacks cannot apply.
	h.session.Invalidate()
	return err
}

type state int

const (
	stateDefault state = iota
	// stateHelp is the state when the help screen is displayed.
	stateHelp
	// stateJump is the state when the user is entering a group id to go to.
	stateJump
	// stateSearch is the state when the user is entering a quick asset filter.
	stateSearch
	// stateFilter is the state when the full filter form is open.
	stateFilter
	// stateConfirm is the state when the match confirmation modal is displayed.
	stateConfirm
	// stateDetail is the state when the event detail overlay is open.
	stateDetail
)

type home struct {
	ctx  context.Context
	opts Options

	// -- Data --

	// src serves the grouped ledger: the sqlite store or the REST client.
	src ledger.Source
	// router holds the current route and implements nav.Router.
	router *routeState
	// session holds the single pending navigation request.
	session *nav.Session
	// resolver turns pending requests into concrete pages.
	resolver *nav.Resolver
	// watcher reports external database writes; nil unless watching.
	watcher *store.Watcher

	// pag mirrors the page window carried in the route query.
	pag ledger.Pagination
	// groups is the current page, replaced wholesale on every fetch.
	groups []ledger.Group
	// hiddenCounts drives the load-more rows, keyed by group id.
	hiddenCounts map[string]int
	// expand tracks which clusters are open. Cleared on teardown, never
	// persisted.
	expand *ledger.ExpandState
	// movements backs the movements tab.
	movements []ledger.Movement

	// -- Sequencing --

	// fetchSeq stamps page and detail fetches; results carrying an older
	// stamp are dropped.
	fetchSeq int
	// refetchSeq numbers the short debounce window.
	refetchSeq int
	// resolveSeq numbers the resolution debounce window.
	resolveSeq int
	// windowMoved defers the scroll and selection reset until the fetched
	// page lands.
	windowMoved bool
	// pendingGroupID is the group an applied navigation should select once
	// its page is in.
	pendingGroupID string
	// loading marks a page fetch in flight.
	loading bool

	// -- State --

	// state is the current discrete state of the application.
	state state
	// keySent is used to manage underlining menu items.
	keySent bool
	// pendingMatch is the movement/candidate pair awaiting confirmation.
	pendingMatch *matchIntent

	// -- UI Components --

	// statusBar is the top chrome: source, filters, page window.
	statusBar *ui.StatusBar
	// menu displays the bottom key hints.
	menu *ui.Menu
	// tabbedWindow holds the timeline and movements panes.
	tabbedWindow  *ui.TabbedWindow
	timeline      *ui.Timeline
	movementsPane *ui.MovementsPane
	// toastManager manages toast notifications.
	toastManager *overlay.ToastManager
	// global spinner instance. we plumb this down to where it's needed
	spinner spinner.Model

	// textInputOverlay handles the jump and quick-filter prompts.
	textInputOverlay *overlay.TextInputOverlay
	// textOverlay displays the help screen.
	textOverlay *overlay.TextOverlay
	// filterOverlay is the full filter form.
	filterOverlay *overlay.FilterOverlay
	// confirmationOverlay asks before persisting a match.
	confirmationOverlay *overlay.ConfirmationOverlay
	// detailOverlay shows one event's full payload.
	detailOverlay *overlay.DetailOverlay

	// Terminal dimensions for the global background fill.
	termWidth  int
	termHeight int
	// contentHeight is the tab pane's share of the terminal.
	contentHeight int
}

func newHome(ctx context.Context, src ledger.Source, opts Options) *home {
	limit := opts.DefaultLimit
	if limit <= 0 {
		limit = ledger.DefaultLimit
	} else if !ledger.ValidLimit(limit) {
		limit = ledger.NearestLimit(limit)
	}

	h := &home{
		ctx:          ctx,
		opts:         opts,
		src:          src,
		session:      nav.NewSession(),
		router:       newRouteState(limit),
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		statusBar:    ui.NewStatusBar(),
		menu:         ui.NewMenu(),
		expand:       ledger.NewExpandState(),
		hiddenCounts: map[string]int{},
		pag:          ledger.Pagination{Page: 1, Limit: limit},
		state:        stateDefault,
	}
	h.resolver = nav.NewResolver(h.session, sourceFinder{src: src}, h.router)
	h.timeline = ui.NewTimeline(&h.spinner)
	h.movementsPane = ui.NewMovementsPane()
	h.tabbedWindow = ui.NewTabbedWindow(h.timeline, h.movementsPane)
	h.tabbedWindow.SetFocused(true)
	h.toastManager = overlay.NewToastManager(&h.spinner)
	return h
}

// sourceFinder adapts a ledger.Source to the resolver's PositionFinder
// port: route values decode into a ledger query before the lookup.
type sourceFinder struct {
	src ledger.Source
}

func (f sourceFinder) GroupPosition(ctx context.Context, groupID string, query url.Values) (int, error) {
	return f.src.GroupPosition(ctx, groupID, ledger.ParseQuery(query))
}

// updateHandleWindowSizeEvent sets the sizes of the components.
// The components will try to render inside their bounds.
func (m *home) updateHandleWindowSizeEvent(msg tea.WindowSizeMsg) {
	m.termWidth = msg.Width
	m.termHeight = msg.Height

	statusHeight := 1
	menuHeight := 1
	if msg.Height < 3 {
		menuHeight = 0
	}
	// The tab pane gets everything between the status bar and the menu,
	// minus the padding row above it.
	contentHeight := msg.Height - statusHeight - menuHeight - 1
	if contentHeight < 1 {
		contentHeight = 1
	}
	m.contentHeight = contentHeight

	m.toastManager.SetSize(msg.Width, msg.Height)
	m.statusBar.SetSize(msg.Width)
	m.tabbedWindow.SetSize(msg.Width, contentHeight)
	m.menu.SetSize(msg.Width, menuHeight)

	if m.textInputOverlay != nil {
		m.textInputOverlay.SetSize(int(float32(msg.Width)*0.4), 5)
	}
	if m.textOverlay != nil {
		m.textOverlay.SetWidth(int(float32(msg.Width) * 0.6))
	}
	if m.detailOverlay != nil {
		m.detailOverlay.SetSize(int(float32(msg.Width)*0.6), int(float32(msg.Height)*0.7))
	}
}

func (m *home) Init() tea.Cmd {
	// The spinner re-arms itself: each TickMsg update returns the next tick.
	cmds := []tea.Cmd{
		m.spinner.Tick,
		m.toastTickCmd(),
		m.scrollTickCmd(),
		m.syncFromRoute(),
		m.fetchMovementsCmd(),
	}
	if m.watcher != nil {
		cmds = append(cmds, m.watchCmd())
	}
	return tea.Batch(cmds...)
}

func (m *home) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case overlay.ToastTickMsg:
		m.toastManager.Tick()
		if m.toastManager.HasActiveToasts() {
			return m, m.toastTickCmd()
		}
		return m, nil
	case scrollTickMsg:
		if m.timeline.IsScrolling() {
			m.timeline.UpdateScroll()
		}
		return m, m.scrollTickCmd()
	case keyupMsg:
		m.menu.ClearKeydown()
		return m, nil
	case pageResultMsg:
		return m.handlePageResult(msg)
	case detailResultMsg:
		return m.handleDetailResult(msg)
	case groupRevealMsg:
		return m.handleGroupReveal(msg)
	case movementsMsg:
		return m.handleMovements(msg)
	case matchDoneMsg:
		return m.handleMatchDone(msg)
	case resolveDoneMsg:
		return m.handleResolveDone(msg)
	case refetchTickMsg:
		if msg.seq != m.refetchSeq {
			return m, nil
		}
		return m, m.syncFromRoute()
	case resolveTickMsg:
		if msg.seq != m.resolveSeq {
			return m, nil
		}
		return m, m.startResolveCmd()
	case dbChangedMsg:
		return m.handleDBChanged()
	case detailRenderedMsg:
		if msg.err != nil {
			return m, m.handleError(msg.err)
		}
		if m.detailOverlay != nil && m.detailOverlay.EventID() == msg.eventID {
			m.detailOverlay.SetNotes(msg.rendered)
		}
		return m, nil
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.updateHandleWindowSizeEvent(msg)
		return m, nil
	case error:
		return m, m.handleError(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.timeline.AdvanceBanner()
		return m, cmd
	}
	return m, nil
}

func (m *home) handleQuit() (tea.Model, tea.Cmd) {
	m.session.Invalidate()
	return m, tea.Quit
}

func (m *home) View() string {
	m.statusBar.SetData(m.computeStatusBarData())

	mainView := lipgloss.JoinVertical(
		lipgloss.Left,
		m.statusBar.String(),
		lipgloss.NewStyle().PaddingTop(1).Render(m.tabbedWindow.String()),
		m.menu.String(),
	)

	var result string
	switch {
	case m.state == stateJump && m.textInputOverlay != nil:
		result = overlay.PlaceOverlay(0, 0, m.textInputOverlay.Render(), mainView, true, true)
	case m.state == stateSearch && m.textInputOverlay != nil:
		result = overlay.PlaceOverlay(0, 0, m.textInputOverlay.Render(), mainView, true, true)
	case m.state == stateFilter && m.filterOverlay != nil:
		result = overlay.PlaceOverlay(0, 0, m.filterOverlay.Render(), mainView, true, true)
	case m.state == stateHelp:
		if m.textOverlay == nil {
			log.ErrorLog.Printf("text overlay is nil")
		}
		result = overlay.PlaceOverlay(0, 0, m.textOverlay.Render(), mainView, true, true)
	case m.state == stateConfirm:
		if m.confirmationOverlay == nil {
			log.ErrorLog.Printf("confirmation overlay is nil")
		}
		result = overlay.PlaceOverlay(0, 0, m.confirmationOverlay.Render(), mainView, true, true)
	case m.state == stateDetail && m.detailOverlay != nil:
		result = overlay.PlaceOverlay(0, 0, m.detailOverlay.Render(), mainView, true, true)
	default:
		result = mainView
	}

	if toastView := m.toastManager.View(); toastView != "" {
		x, y := m.toastManager.GetPosition()
		result = overlay.PlaceOverlay(x, y, toastView, result, false, false)
	}

	// Process bubblezone markers before rendering is complete
	// (zone markers inflate lipgloss.Width if left in place).
	result = zone.Scan(result)

	// Height-fill so bubbletea's alt-screen renderer paints full columns.
	// OSC 11 handles the actual background color; this just pads vertically.
	return ui.FillBackground(result, m.termHeight)
}

func (m *home) toastTickCmd() tea.Cmd {
	return func() tea.Msg {
		time.Sleep(50 * time.Millisecond)
		return overlay.ToastTickMsg{}
	}
}

// scrollTickCmd drives the spring scroll animation at ~20 frames a second.
func (m *home) scrollTickCmd() tea.Cmd {
	return func() tea.Msg {
		time.Sleep(50 * time.Millisecond)
		return scrollTickMsg{}
	}
}

// watchCmd waits for the next database change signal.
func (m *home) watchCmd() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	w := m.watcher
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-w.Changes:
			if !ok {
				return nil
			}
			return dbChangedMsg{}
		}
	}
}

// pageResultMsg delivers one fetched page of groups.
type pageResultMsg struct {
	seq int
	res *ledger.PageResult
	err error
}

// detailResultMsg delivers display payloads for the page's members.
type detailResultMsg struct {
	seq    int
	events []ledger.Event
	err    error
}

// groupRevealMsg delivers one group refetched with its ignored members.
type groupRevealMsg struct {
	groupID string
	events  []ledger.Event
	err     error
}

// movementsMsg delivers the unmatched movements list.
type movementsMsg struct {
	movements []ledger.Movement
	err       error
}

// matchDoneMsg reports a persisted movement match.
type matchDoneMsg struct {
	toastID string
	res     *ledger.MatchResult
	err     error
}

// resolveDoneMsg carries a finished navigation resolution to the UI loop.
type resolveDoneMsg struct {
	res nav.Result
}

// refetchTickMsg fires when the short debounce window closes.
type refetchTickMsg struct {
	seq int
}

// resolveTickMsg fires when the resolution debounce window closes.
type resolveTickMsg struct {
	seq int
}

// dbChangedMsg reports an external write to the ledger database.
type dbChangedMsg struct{}

// scrollTickMsg advances the timeline's spring scroll one frame.
type scrollTickMsg struct{}

type keyupMsg struct{}

// detailRenderedMsg delivers the async glamour render of an event's notes.
type detailRenderedMsg struct {
	eventID  int64
	rendered string
	err      error
}

// matchIntent is the movement/candidate pair a confirmation acts on.
type matchIntent struct {
	movement  ledger.Movement
	candidate ledger.Candidate
}
