// Package store implements the local SQLite ledger source. It serves the
// same grouped, newest-first ordering as the REST source so pages and
// positions agree no matter which backend the app runs against.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver

	"github.com/tallyview/tally/ledger"
)

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	id             INTEGER PRIMARY KEY,
	group_id       TEXT    NOT NULL,
	sequence_index INTEGER NOT NULL DEFAULT 0,
	entry_type     TEXT    NOT NULL,
	timestamp      INTEGER NOT NULL,
	location       TEXT    NOT NULL DEFAULT '',
	location_label TEXT    NOT NULL DEFAULT '',
	event_type     TEXT    NOT NULL DEFAULT '',
	event_subtype  TEXT    NOT NULL DEFAULT '',
	asset          TEXT    NOT NULL DEFAULT '',
	amount         TEXT    NOT NULL DEFAULT '',
	notes          TEXT    NOT NULL DEFAULT '',
	counterparty   TEXT    NOT NULL DEFAULT '',
	tx_hash        TEXT    NOT NULL DEFAULT '',
	hidden         INTEGER NOT NULL DEFAULT 0,
	matched_event  INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_entries_group ON entries(group_id, sequence_index);
CREATE INDEX IF NOT EXISTS idx_entries_ts ON entries(timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_entries_asset ON entries(asset, timestamp);
`

const eventColumns = `id, group_id, sequence_index, entry_type, timestamp,
	location, location_label, event_type, event_subtype, asset, amount,
	notes, counterparty, tx_hash, hidden, matched_event`

// Store is a ledger.Source backed by a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the ledger database at dbPath and runs the
// schema. Use ":memory:" for an in-memory database (useful in tests).
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}

	// WAL lets page reads proceed while seed or match writes are in
	// flight (not applicable for :memory:).
	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set WAL mode: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run ledger schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Path returns the database file path the store was opened with.
func (s *Store) Path() string { return s.path }

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// FetchPage returns one page of groups ranked by their newest member
// (oldest when the query sorts ascending), ties broken by group id.
// Members arrive as descriptors only; FetchDetails fills in the rest.
func (s *Store) FetchPage(ctx context.Context, q ledger.Query, page, limit int) (*ledger.PageResult, error) {
	if page < 1 {
		page = 1
	}
	if !ledger.ValidLimit(limit) {
		limit = ledger.NearestLimit(limit)
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT group_id) FROM entries`,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("count groups: %w", err)
	}

	where, args := filterClauses(q)

	var found int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT group_id) FROM entries`+where, args...,
	).Scan(&found); err != nil {
		return nil, fmt.Errorf("count filtered groups: %w", err)
	}

	order := "group_ts DESC, group_id ASC"
	if q.SortAscending {
		order = "group_ts ASC, group_id ASC"
	}
	// The bare location column rides the MAX aggregate, so each group
	// reports the location of its newest member.
	rankQuery := `SELECT group_id, MAX(timestamp) AS group_ts, location FROM entries` +
		where + ` GROUP BY group_id ORDER BY ` + order + ` LIMIT ? OFFSET ?`
	rankArgs := make([]any, 0, len(args)+2)
	rankArgs = append(rankArgs, args...)
	rankArgs = append(rankArgs, limit, (page-1)*limit)

	rows, err := s.db.QueryContext(ctx, rankQuery, rankArgs...)
	if err != nil {
		return nil, fmt.Errorf("query group page: %w", err)
	}
	defer rows.Close()

	var groups []ledger.Group
	for rows.Next() {
		var g ledger.Group
		var ts int64
		if err := rows.Scan(&g.GroupID, &ts, &g.Location); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		g.Timestamp = time.Unix(ts, 0).UTC()
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group page: %w", err)
	}

	result := &ledger.PageResult{Groups: groups, Found: found, Limit: -1, Total: total}
	if len(groups) == 0 {
		return result, nil
	}

	if err := s.attachDescriptors(ctx, result.Groups, q.IncludeIgnored); err != nil {
		return nil, err
	}
	return result, nil
}

// attachDescriptors loads the member descriptors for the given groups and
// fills in the per-group counts. With the ignore rules lifted nothing is
// hidden, so the flags are cleared.
func (s *Store) attachDescriptors(ctx context.Context, groups []ledger.Group, includeIgnored bool) error {
	ids := make([]string, len(groups))
	for i := range groups {
		ids[i] = groups[i].GroupID
	}
	placeholders, args := inArgs(ids)

	query := `SELECT id, group_id, sequence_index, entry_type, hidden FROM entries
		WHERE group_id IN (` + placeholders + `) ORDER BY sequence_index, id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query group members: %w", err)
	}
	defer rows.Close()

	members := make(map[string][]ledger.Event, len(groups))
	for rows.Next() {
		var e ledger.Event
		if err := rows.Scan(
			&e.Identifier,
			&e.GroupID,
			&e.SequenceIndex,
			(*string)(&e.EntryType),
			&e.Hidden,
		); err != nil {
			return fmt.Errorf("scan group member: %w", err)
		}
		if includeIgnored {
			e.Hidden = false
		}
		members[e.GroupID] = append(members[e.GroupID], e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate group members: %w", err)
	}

	for i := range groups {
		g := &groups[i]
		g.Members = members[g.GroupID]
		g.MemberCount = len(g.Members)
		g.HiddenCount = 0
		for _, m := range g.Members {
			if m.Hidden {
				g.HiddenCount++
			}
		}
	}
	return nil
}

// FetchDetails returns the full member payloads for the given groups, in
// group id then sequence order.
func (s *Store) FetchDetails(ctx context.Context, groupIDs []string) ([]ledger.Event, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	placeholders, args := inArgs(groupIDs)

	query := `SELECT ` + eventColumns + ` FROM entries
		WHERE group_id IN (` + placeholders + `) ORDER BY group_id, sequence_index, id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query event details: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// GroupPosition returns the zero-based rank of the group under the query's
// filter and sort, or -1 when the group has no matching events. The rank
// counts groups whose newest member sorts strictly before the target's,
// ties broken by group id, mirroring FetchPage exactly.
func (s *Store) GroupPosition(ctx context.Context, groupID string, q ledger.Query) (int, error) {
	where, args := filterClauses(q)

	tsQuery := `SELECT MAX(timestamp) FROM entries` + where
	if where == "" {
		tsQuery += ` WHERE group_id = ?`
	} else {
		tsQuery += ` AND group_id = ?`
	}
	tsArgs := make([]any, 0, len(args)+1)
	tsArgs = append(tsArgs, args...)
	tsArgs = append(tsArgs, groupID)

	var groupTS sql.NullInt64
	if err := s.db.QueryRowContext(ctx, tsQuery, tsArgs...).Scan(&groupTS); err != nil {
		return -1, fmt.Errorf("resolve group timestamp: %w", err)
	}
	if !groupTS.Valid {
		return -1, nil
	}

	before := "group_ts > ? OR (group_ts = ? AND group_id < ?)"
	if q.SortAscending {
		before = "group_ts < ? OR (group_ts = ? AND group_id < ?)"
	}
	posQuery := `SELECT COUNT(*) FROM (
		SELECT group_id, MAX(timestamp) AS group_ts FROM entries` + where + `
		GROUP BY group_id HAVING ` + before + `)`
	posArgs := make([]any, 0, len(args)+3)
	posArgs = append(posArgs, args...)
	posArgs = append(posArgs, groupTS.Int64, groupTS.Int64, groupID)

	var pos int
	if err := s.db.QueryRowContext(ctx, posQuery, posArgs...).Scan(&pos); err != nil {
		return -1, fmt.Errorf("rank group: %w", err)
	}
	return pos, nil
}

// GroupEvents returns one group's members in sequence order. Without
// includeIgnored the hidden members are omitted; with it they are included
// and unflagged, which is what the reveal flow renders.
func (s *Store) GroupEvents(ctx context.Context, groupID string, includeIgnored bool) ([]ledger.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM entries WHERE group_id = ?`
	if !includeIgnored {
		query += ` AND hidden = 0`
	}
	query += ` ORDER BY sequence_index, id`

	rows, err := s.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("query group events: %w", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}
	if includeIgnored {
		for i := range events {
			events[i].Hidden = false
		}
	}
	return events, nil
}

// InsertEvents writes fully-detailed events in one transaction. Events
// with a zero identifier get a fresh one from the database.
func (s *Store) InsertEvents(ctx context.Context, events []ledger.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	const q = `
		INSERT INTO entries
			(id, group_id, sequence_index, entry_type, timestamp, location,
			 location_label, event_type, event_subtype, asset, amount,
			 notes, counterparty, tx_hash, hidden, matched_event)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, e := range events {
		d := e.Detail
		if d == nil {
			return fmt.Errorf("insert event %d: missing detail", e.Identifier)
		}
		var id any // NULL lets sqlite assign the next rowid
		if e.Identifier != 0 {
			id = e.Identifier
		}
		if _, err := tx.ExecContext(ctx, q,
			id,
			e.GroupID,
			e.SequenceIndex,
			string(e.EntryType),
			d.Timestamp.Unix(),
			d.Location,
			d.LocationLabel,
			d.EventType,
			d.EventSubtype,
			d.Asset,
			d.Amount,
			d.Notes,
			d.Counterparty,
			d.TxHash,
			e.Hidden,
			d.MatchedEvent,
		); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}
	return tx.Commit()
}

// filterClauses builds the WHERE clause both the page and position queries
// share. Hidden events always stay in the set; the ignore rules act at
// render time, not here.
func filterClauses(q ledger.Query) (string, []any) {
	var conditions []string
	var args []any

	if !q.FromTimestamp.IsZero() {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, q.FromTimestamp.Unix())
	}
	if !q.ToTimestamp.IsZero() {
		conditions = append(conditions, "timestamp <= ?")
		args = append(args, q.ToTimestamp.Unix())
	}

	in := func(column string, vals []string) {
		if len(vals) == 0 {
			return
		}
		placeholders := make([]string, len(vals))
		for i, v := range vals {
			placeholders[i] = "?"
			args = append(args, v)
		}
		conditions = append(conditions, column+" IN ("+strings.Join(placeholders, ", ")+")")
	}
	in("asset", q.Assets)
	in("location", q.Locations)
	in("event_type", q.EventTypes)
	in("event_subtype", q.EventSubtypes)
	in("counterparty", q.Counterparties)
	in("group_id", q.GroupIDs)

	switch q.MatchStatus {
	case "matched":
		conditions = append(conditions, "(entry_type = ? AND matched_event != 0)")
		args = append(args, string(ledger.EntryAssetMovement))
	case "unmatched":
		conditions = append(conditions, "(entry_type = ? AND matched_event = 0)")
		args = append(args, string(ledger.EntryAssetMovement))
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func inArgs(vals []string) (string, []any) {
	placeholders := make([]string, len(vals))
	args := make([]any, len(vals))
	for i, v := range vals {
		placeholders[i] = "?"
		args[i] = v
	}
	return strings.Join(placeholders, ", "), args
}

func scanEvents(rows *sql.Rows) ([]ledger.Event, error) {
	var events []ledger.Event
	for rows.Next() {
		var e ledger.Event
		var d ledger.EventDetail
		var ts int64
		if err := rows.Scan(
			&e.Identifier,
			&e.GroupID,
			&e.SequenceIndex,
			(*string)(&e.EntryType),
			&ts,
			&d.Location,
			&d.LocationLabel,
			&d.EventType,
			&d.EventSubtype,
			&d.Asset,
			&d.Amount,
			&d.Notes,
			&d.Counterparty,
			&d.TxHash,
			&e.Hidden,
			&d.MatchedEvent,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		d.Timestamp = time.Unix(ts, 0).UTC()
		e.Detail = &d
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}
