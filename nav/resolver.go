package nav

import (
	"context"
	"net/url"
	"strconv"

	"github.com/tallyview/tally/ledger"
	"github.com/tallyview/tally/log"
)

// PositionFinder looks up the zero-based rank of a group under a filter
// query, -1 when absent. Implemented by the ledger sources.
type PositionFinder interface {
	GroupPosition(ctx context.Context, groupID string, query url.Values) (int, error)
}

// Target is a navigation the router should perform. An empty Path keeps
// the current view. Force applies the target even when the router would
// treat it as a no-op.
type Target struct {
	Path  string
	Query url.Values
	Force bool
}

// Router is the small port isolating the resolver from route mechanics:
// reading the current query, pushing a navigation, and rewriting the query
// without history. Implemented by the app's route state; faked in tests.
type Router interface {
	CurrentQuery() url.Values
	Push(t Target) error
	Replace(query url.Values) error
}

// Outcome classifies how a resolution ended.
type Outcome int

const (
	// OutcomeStale marks a resolution superseded by a newer request.
	// Never surfaced, never applied.
	OutcomeStale Outcome = iota
	// OutcomeFound carries a concrete position and page.
	OutcomeFound
	// OutcomeNotFound means -1 with all fallbacks exhausted.
	OutcomeNotFound
	// OutcomeFailed wraps a lookup error.
	OutcomeFailed
)

// Result is the terminal state of one resolution walk.
type Result struct {
	Gen      uint64
	Req      Request
	Outcome  Outcome
	Position int
	Page     int
	Limit    int
	Lookups  int
	Err      error
}

// NoticeKind classifies the notification a resolution may surface.
type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeNotFound
	NoticeError
)

// Notice is the single non-blocking notification an applied resolution may
// produce. The zero value means silence.
type Notice struct {
	Kind    NoticeKind
	Message string
}

// Resolver consumes the session's pending request and lands the view on
// the right page. Resolve runs on a worker goroutine; Apply runs on the UI
// loop. Both sides check the generation so a superseded resolution can
// never mutate route state.
type Resolver struct {
	session *Session
	finder  PositionFinder
	router  Router
}

// NewResolver wires a resolver to the session it guards.
func NewResolver(session *Session, finder PositionFinder, router Router) *Resolver {
	return &Resolver{session: session, finder: finder, router: router}
}

// Resolve walks the request and its fallbacks depth first until a lookup
// succeeds, fails, or every candidate reports -1. After each await it
// aborts with a stale result if the session generation moved past gen.
// baseQuery is the filter state the lookups run under unless a request
// carries its own override. Safe to call from a goroutine.
func (r *Resolver) Resolve(ctx context.Context, gen uint64, req Request, limit int, baseQuery url.Values) Result {
	res := Result{Gen: gen, Req: req, Position: -1, Limit: limit}

	stack := []Request{req}
	for len(stack) > 0 {
		cur := stack[0]
		stack = stack[1:]
		if len(cur.Fallbacks) > 0 {
			stack = append(append([]Request{}, cur.Fallbacks...), stack...)
		}

		query := baseQuery
		if cur.FilterOverride != nil {
			query = cur.FilterOverride
		}

		pos, err := r.finder.GroupPosition(ctx, cur.TargetGroupID, query)
		res.Lookups++
		res.Req = cur

		if r.session.Generation() != gen {
			res.Outcome = OutcomeStale
			return res
		}
		if err != nil {
			res.Outcome = OutcomeFailed
			res.Err = &TransientError{Op: "position lookup", Err: err}
			return res
		}
		if pos >= 0 {
			res.Outcome = OutcomeFound
			res.Position = pos
			res.Page = ledger.PageForPosition(pos, limit)
			return res
		}
	}

	res.Outcome = OutcomeNotFound
	res.Err = ErrNotFound
	return res
}

// Apply routes a terminal resolution on the UI loop. The generation check
// here is authoritative: a result that went stale between the goroutine's
// last check and delivery is dropped without consuming the session (the
// newer request owns that). Every non-stale outcome consumes the session.
// The returned notice is the one notification to surface; it is empty for
// successful navigations, stale results, and suppressed failures.
func (r *Resolver) Apply(res Result) Notice {
	if res.Outcome == OutcomeStale || res.Gen != r.session.Generation() {
		return Notice{}
	}
	defer r.session.Consume()

	switch res.Outcome {
	case OutcomeFound:
		r.route(res)
		return Notice{}

	case OutcomeNotFound:
		// The view must not keep pointing at nonexistent state: strip any
		// stale highlight slots, best effort, without touching anything
		// else and without adding history.
		if err := r.router.Replace(StripHighlights(r.router.CurrentQuery())); err != nil {
			log.WarningLog.Printf("highlight cleanup failed: %v", err)
		}
		if res.Req.PreserveFilters {
			return Notice{}
		}
		return Notice{Kind: NoticeNotFound, Message: ErrNotFound.Error()}

	case OutcomeFailed:
		if res.Req.PreserveFilters {
			return Notice{}
		}
		return Notice{Kind: NoticeError, Message: res.Err.Error()}
	}
	return Notice{}
}

// route applies a found result: merge into the current query when the
// request preserves filters, otherwise replace it wholesale under a forced
// navigation so the change applies even when the router sees no diff.
func (r *Resolver) route(res Result) {
	req := res.Req
	page := strconv.Itoa(res.Page)

	var target Target
	if req.PreserveFilters {
		query := cloneValues(r.router.CurrentQuery())
		query.Set(ParamPage, page)
		for slot, id := range req.Highlights {
			query.Set(slot, id)
		}
		target = Target{Query: query}
	} else {
		query := url.Values{}
		query.Set(ParamPage, page)
		query.Set(ParamLimit, strconv.Itoa(res.Limit))
		for slot, id := range req.Highlights {
			query.Set(slot, id)
		}
		for k, vs := range req.Extras {
			for _, v := range vs {
				query.Add(k, v)
			}
		}
		target = Target{Query: query, Force: true}
	}

	if err := r.router.Push(target); err != nil {
		log.ErrorLog.Printf("navigation push failed: %v", err)
	}
}

func cloneValues(values url.Values) url.Values {
	out := url.Values{}
	for k, vs := range values {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
