package restapi

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tallyview/tally/ledger"
)

// Detail fetches split into chunks so one giant page cannot stall the
// timeline behind a single slow response.
const (
	detailChunkSize   = 10
	detailConcurrency = 4
)

// wireFilter mirrors ledger.Query in the daemon's snake_case body format.
type wireFilter struct {
	FromTimestamp  int64    `json:"from_timestamp,omitempty"`
	ToTimestamp    int64    `json:"to_timestamp,omitempty"`
	Assets         []string `json:"assets,omitempty"`
	Locations      []string `json:"locations,omitempty"`
	EventTypes     []string `json:"event_types,omitempty"`
	EventSubtypes  []string `json:"event_subtypes,omitempty"`
	Counterparties []string `json:"counterparties,omitempty"`
	GroupIDs       []string `json:"group_identifiers,omitempty"`
	MatchStatus    string   `json:"match_status,omitempty"`
	IncludeIgnored bool     `json:"include_ignored,omitempty"`
	SortAscending  bool     `json:"sort_ascending,omitempty"`
}

func toWireFilter(q ledger.Query) wireFilter {
	f := wireFilter{
		Assets:         q.Assets,
		Locations:      q.Locations,
		EventTypes:     q.EventTypes,
		EventSubtypes:  q.EventSubtypes,
		Counterparties: q.Counterparties,
		GroupIDs:       q.GroupIDs,
		MatchStatus:    q.MatchStatus,
		IncludeIgnored: q.IncludeIgnored,
		SortAscending:  q.SortAscending,
	}
	if !q.FromTimestamp.IsZero() {
		f.FromTimestamp = q.FromTimestamp.Unix()
	}
	if !q.ToTimestamp.IsZero() {
		f.ToTimestamp = q.ToTimestamp.Unix()
	}
	return f
}

type wireMember struct {
	Identifier    int64  `json:"identifier"`
	SequenceIndex int    `json:"sequence_index"`
	EntryType     string `json:"entry_type"`
	Hidden        bool   `json:"hidden"`
}

type wireGroup struct {
	GroupID   string       `json:"group_identifier"`
	Timestamp int64        `json:"timestamp"`
	Location  string       `json:"location"`
	Members   []wireMember `json:"members"`
}

type wireEvent struct {
	Identifier    int64  `json:"identifier"`
	GroupID       string `json:"group_identifier"`
	SequenceIndex int    `json:"sequence_index"`
	EntryType     string `json:"entry_type"`
	Timestamp     int64  `json:"timestamp"`
	Location      string `json:"location"`
	LocationLabel string `json:"location_label"`
	EventType     string `json:"event_type"`
	EventSubtype  string `json:"event_subtype"`
	Asset         string `json:"asset"`
	Amount        string `json:"amount"`
	Notes         string `json:"notes"`
	Counterparty  string `json:"counterparty"`
	TxHash        string `json:"tx_hash"`
	Hidden        bool   `json:"hidden"`
	MatchedEvent  int64  `json:"matched_event"`
}

func (w wireEvent) toEvent() ledger.Event {
	return ledger.Event{
		Identifier:    w.Identifier,
		GroupID:       w.GroupID,
		SequenceIndex: w.SequenceIndex,
		EntryType:     ledger.EntryType(w.EntryType),
		Hidden:        w.Hidden,
		Detail: &ledger.EventDetail{
			Timestamp:     time.Unix(w.Timestamp, 0).UTC(),
			Location:      w.Location,
			LocationLabel: w.LocationLabel,
			EventType:     w.EventType,
			EventSubtype:  w.EventSubtype,
			Asset:         w.Asset,
			Amount:        w.Amount,
			Notes:         w.Notes,
			Counterparty:  w.Counterparty,
			TxHash:        w.TxHash,
			MatchedEvent:  w.MatchedEvent,
		},
	}
}

// FetchPage returns one page of groups with member descriptors.
func (c *Client) FetchPage(ctx context.Context, q ledger.Query, page, limit int) (*ledger.PageResult, error) {
	body := struct {
		wireFilter
		Page  int `json:"page"`
		Limit int `json:"limit"`
	}{toWireFilter(q), page, limit}

	var resp struct {
		Entries      []wireGroup `json:"entries"`
		EntriesFound int         `json:"entries_found"`
		EntriesLimit int         `json:"entries_limit"`
		EntriesTotal int         `json:"entries_total"`
	}
	if err := c.do(ctx, http.MethodPost, "/events", body, &resp); err != nil {
		return nil, err
	}

	groups := make([]ledger.Group, 0, len(resp.Entries))
	for _, wg := range resp.Entries {
		g := ledger.Group{
			GroupID:     wg.GroupID,
			Timestamp:   time.Unix(wg.Timestamp, 0).UTC(),
			Location:    wg.Location,
			MemberCount: len(wg.Members),
			Members:     make([]ledger.Event, 0, len(wg.Members)),
		}
		for _, m := range wg.Members {
			g.Members = append(g.Members, ledger.Event{
				Identifier:    m.Identifier,
				GroupID:       wg.GroupID,
				SequenceIndex: m.SequenceIndex,
				EntryType:     ledger.EntryType(m.EntryType),
				Hidden:        m.Hidden,
			})
			if m.Hidden {
				g.HiddenCount++
			}
		}
		groups = append(groups, g)
	}

	return &ledger.PageResult{
		Groups: groups,
		Found:  resp.EntriesFound,
		Limit:  resp.EntriesLimit,
		Total:  resp.EntriesTotal,
	}, nil
}

// FetchDetails resolves full member payloads, chunking large pages into
// parallel requests and preserving the requested group order.
func (c *Client) FetchDetails(ctx context.Context, groupIDs []string) ([]ledger.Event, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}

	var chunks [][]string
	for start := 0; start < len(groupIDs); start += detailChunkSize {
		end := start + detailChunkSize
		if end > len(groupIDs) {
			end = len(groupIDs)
		}
		chunks = append(chunks, groupIDs[start:end])
	}

	results := make([][]ledger.Event, len(chunks))
	var g errgroup.Group
	g.SetLimit(detailConcurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			body := struct {
				GroupIDs []string `json:"group_identifiers"`
			}{chunk}
			var resp struct {
				Entries []wireEvent `json:"entries"`
			}
			if err := c.do(ctx, http.MethodPost, "/events/details", body, &resp); err != nil {
				return err
			}
			events := make([]ledger.Event, 0, len(resp.Entries))
			for _, w := range resp.Entries {
				events = append(events, w.toEvent())
			}
			results[i] = events
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var events []ledger.Event
	for _, chunk := range results {
		events = append(events, chunk...)
	}
	return events, nil
}

// GroupPosition returns the group's zero-based rank under the filter, or
// -1 when the daemon reports it absent.
func (c *Client) GroupPosition(ctx context.Context, groupID string, q ledger.Query) (int, error) {
	body := struct {
		wireFilter
		GroupID string `json:"group_identifier"`
	}{toWireFilter(q), groupID}

	var resp struct {
		Position *int `json:"position"`
	}
	if err := c.do(ctx, http.MethodPost, "/events/position", body, &resp); err != nil {
		return -1, err
	}
	if resp.Position == nil {
		return -1, nil
	}
	return *resp.Position, nil
}

// GroupEvents returns one group's members, optionally with the ignored
// ones revealed.
func (c *Client) GroupEvents(ctx context.Context, groupID string, includeIgnored bool) ([]ledger.Event, error) {
	body := struct {
		GroupID        string `json:"group_identifier"`
		IncludeIgnored bool   `json:"include_ignored"`
	}{groupID, includeIgnored}

	var resp struct {
		Entries []wireEvent `json:"entries"`
	}
	if err := c.do(ctx, http.MethodPost, "/events/group", body, &resp); err != nil {
		return nil, err
	}

	events := make([]ledger.Event, 0, len(resp.Entries))
	for _, w := range resp.Entries {
		e := w.toEvent()
		if includeIgnored {
			e.Hidden = false
		}
		events = append(events, e)
	}
	return events, nil
}

type wireCandidate struct {
	EventID   int64  `json:"identifier"`
	GroupID   string `json:"group_identifier"`
	Location  string `json:"location"`
	Timestamp int64  `json:"timestamp"`
}

type wireMovement struct {
	EventID    int64           `json:"identifier"`
	GroupID    string          `json:"group_identifier"`
	Timestamp  int64           `json:"timestamp"`
	Location   string          `json:"location"`
	Direction  string          `json:"direction"`
	Asset      string          `json:"asset"`
	Amount     string          `json:"amount"`
	Candidates []wireCandidate `json:"candidates"`
}

// UnmatchedMovements lists the daemon's unmatched asset movements with
// their match candidates.
func (c *Client) UnmatchedMovements(ctx context.Context) ([]ledger.Movement, error) {
	var resp struct {
		Entries []wireMovement `json:"entries"`
	}
	if err := c.do(ctx, http.MethodGet, "/movements/unmatched", nil, &resp); err != nil {
		return nil, err
	}

	movements := make([]ledger.Movement, 0, len(resp.Entries))
	for _, w := range resp.Entries {
		m := ledger.Movement{
			EventID:   w.EventID,
			GroupID:   w.GroupID,
			Timestamp: time.Unix(w.Timestamp, 0).UTC(),
			Location:  w.Location,
			Direction: w.Direction,
			Asset:     w.Asset,
			Amount:    w.Amount,
		}
		for _, wc := range w.Candidates {
			m.Candidates = append(m.Candidates, ledger.Candidate{
				EventID:   wc.EventID,
				GroupID:   wc.GroupID,
				Location:  wc.Location,
				Timestamp: time.Unix(wc.Timestamp, 0).UTC(),
			})
		}
		movements = append(movements, m)
	}
	return movements, nil
}

// MatchMovement records eventID as the counterpart of the movement.
func (c *Client) MatchMovement(ctx context.Context, movementID, eventID int64) (*ledger.MatchResult, error) {
	body := struct {
		MovementID int64 `json:"movement_id"`
		EventID    int64 `json:"event_id"`
	}{movementID, eventID}

	var resp struct {
		MovementID      int64  `json:"movement_id"`
		EventID         int64  `json:"event_id"`
		EventGroupID    string `json:"event_group_identifier"`
		MovementGroupID string `json:"movement_group_identifier"`
	}
	if err := c.do(ctx, http.MethodPut, "/movements/match", body, &resp); err != nil {
		return nil, err
	}
	return &ledger.MatchResult{
		MovementID:      resp.MovementID,
		EventID:         resp.EventID,
		EventGroupID:    resp.EventGroupID,
		MovementGroupID: resp.MovementGroupID,
	}, nil
}
