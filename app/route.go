package app

import (
	"net/url"
	"strconv"

	"github.com/tallyview/tally/ledger"
	"github.com/tallyview/tally/nav"
)

// View paths the router distinguishes.
const (
	PathTimeline  = "/timeline"
	PathMovements = "/movements"
)

// historyCap bounds the back stack.
const historyCap = 64

// route is one addressable view state: a path plus its query.
type route struct {
	path  string
	query url.Values
}

// routeState implements nav.Router for the app: the current route, a
// bounded history for the back key, and change flags the Update loop
// consumes to decide what work a transition needs. Single-writer; every
// method runs on the UI loop.
type routeState struct {
	current route
	history []route

	// needsFetch marks a transition that changed the data the page shows.
	// windowMoved additionally marks moves of the pagination window, which
	// reset scroll and selection when the fetched page lands. Transitions
	// that only touch highlight slots set neither. Flags are sticky until
	// consumed so rapid transitions cannot drop work.
	needsFetch  bool
	windowMoved bool
}

// newRouteState starts on the first timeline page. The route begins dirty
// so the initial fetch goes through the same consume path as every later
// transition.
func newRouteState(limit int) *routeState {
	query := url.Values{}
	query.Set(nav.ParamPage, "1")
	query.Set(nav.ParamLimit, strconv.Itoa(limit))
	return &routeState{
		current:     route{path: PathTimeline, query: query},
		needsFetch:  true,
		windowMoved: true,
	}
}

// Path returns the current view path.
func (r *routeState) Path() string { return r.current.path }

// SetPath rewrites the path without history or flags, keeping the route in
// step when the user switches tabs directly.
func (r *routeState) SetPath(path string) { r.current.path = path }

// CurrentQuery returns a copy of the current query.
func (r *routeState) CurrentQuery() url.Values {
	return cloneValues(r.current.query)
}

// Push navigates to target. An empty target path keeps the current one; a
// nil query becomes an empty one. A target equal to the current route is a
// no-op unless forced; a forced push refetches without recording history.
func (r *routeState) Push(t nav.Target) error {
	next := route{path: t.Path, query: cloneValues(t.Query)}
	if next.path == "" {
		next.path = r.current.path
	}

	changed := next.path != r.current.path || !equalValues(next.query, r.current.query)
	if !changed && !t.Force {
		return nil
	}
	if changed {
		r.history = append(r.history, r.current)
		if len(r.history) > historyCap {
			r.history = r.history[1:]
		}
	}
	r.noteChange(r.current, next, t.Force)
	r.current = next
	return nil
}

// Replace rewrites the current query in place: no history entry, no fetch.
// The resolver uses it to strip stale highlight parameters; the app uses it
// to record page clamps.
func (r *routeState) Replace(query url.Values) error {
	r.current.query = cloneValues(query)
	return nil
}

// Back pops the previous route. Returns false at the bottom of the stack.
func (r *routeState) Back() bool {
	if len(r.history) == 0 {
		return false
	}
	prev := r.history[len(r.history)-1]
	r.history = r.history[:len(r.history)-1]
	r.noteChange(r.current, prev, false)
	r.current = prev
	return true
}

// ConsumeChange returns and clears the pending transition flags.
func (r *routeState) ConsumeChange() (fetch, windowMoved bool) {
	fetch, windowMoved = r.needsFetch, r.windowMoved
	r.needsFetch, r.windowMoved = false, false
	return fetch, windowMoved
}

func (r *routeState) noteChange(from, to route, force bool) {
	dataMoved := !equalValues(nav.StripHighlights(from.query), nav.StripHighlights(to.query))
	if force || dataMoved {
		r.needsFetch = true
	}
	if dataMoved {
		r.windowMoved = true
	}
}

// paginationFromQuery reads the page window out of route values. An absent
// page means the first one; an absent limit keeps the previous, so the
// configured page size survives bare redirects. Malformed or unselectable
// values snap to the nearest valid ones.
func paginationFromQuery(values url.Values, prev ledger.Pagination) ledger.Pagination {
	pag := prev
	pag.Page = 1
	if s := values.Get(nav.ParamPage); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 1 {
			pag.Page = n
		}
	}
	if s := values.Get(nav.ParamLimit); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			if !ledger.ValidLimit(n) {
				n = ledger.NearestLimit(n)
			}
			pag.Limit = n
		}
	}
	return pag
}

func cloneValues(values url.Values) url.Values {
	out := url.Values{}
	for k, vs := range values {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

func equalValues(a, b url.Values) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
	}
	return true
}
