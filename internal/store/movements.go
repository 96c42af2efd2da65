package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tallyview/tally/ledger"
)

// Candidate search window around a movement's timestamp. Deposits look
// back (the onchain send precedes the credit), withdrawals look forward,
// with a one hour tolerance for the wrong side in either case.
const (
	matchWindow    = 4 * time.Hour
	matchTolerance = time.Hour
	maxCandidates  = 5
)

var (
	// ErrNoSuchMovement means the movement id does not name an asset
	// movement event.
	ErrNoSuchMovement = errors.New("no asset movement with that identifier")
	// ErrNoSuchEvent means the counterpart id does not exist.
	ErrNoSuchEvent = errors.New("no event with that identifier")
	// ErrAlreadyMatched means one side of the match already has a
	// counterpart recorded.
	ErrAlreadyMatched = errors.New("event is already matched")
)

// UnmatchedMovements lists asset movements without a recorded counterpart,
// newest first, each with its match candidates attached. Fee legs and
// hidden movements are skipped.
func (s *Store) UnmatchedMovements(ctx context.Context) ([]ledger.Movement, error) {
	const q = `SELECT id, group_id, timestamp, location, event_type, asset, amount
		FROM entries
		WHERE entry_type = ? AND matched_event = 0 AND event_subtype != 'fee' AND hidden = 0
		ORDER BY timestamp DESC, id`

	rows, err := s.db.QueryContext(ctx, q, string(ledger.EntryAssetMovement))
	if err != nil {
		return nil, fmt.Errorf("query unmatched movements: %w", err)
	}
	defer rows.Close()

	var movements []ledger.Movement
	for rows.Next() {
		var m ledger.Movement
		var ts int64
		if err := rows.Scan(&m.EventID, &m.GroupID, &ts, &m.Location, &m.Direction, &m.Asset, &m.Amount); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.Timestamp = time.Unix(ts, 0).UTC()
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movements: %w", err)
	}

	for i := range movements {
		candidates, err := s.matchCandidates(ctx, movements[i])
		if err != nil {
			return nil, err
		}
		movements[i].Candidates = candidates
	}
	return movements, nil
}

// matchCandidates finds unmatched events with the movement's exact asset
// and amount inside the directional time window, closest in time first.
func (s *Store) matchCandidates(ctx context.Context, m ledger.Movement) ([]ledger.Candidate, error) {
	ts := m.Timestamp.Unix()
	from := ts - int64(matchWindow.Seconds())
	to := ts + int64(matchTolerance.Seconds())
	if m.Direction != "deposit" {
		from = ts - int64(matchTolerance.Seconds())
		to = ts + int64(matchWindow.Seconds())
	}

	const q = `SELECT id, group_id, location, timestamp
		FROM entries
		WHERE asset = ? AND amount = ? AND matched_event = 0 AND hidden = 0
			AND group_id != ? AND timestamp BETWEEN ? AND ?
		ORDER BY ABS(timestamp - ?) LIMIT ?`

	rows, err := s.db.QueryContext(ctx, q, m.Asset, m.Amount, m.GroupID, from, to, ts, maxCandidates)
	if err != nil {
		return nil, fmt.Errorf("query match candidates: %w", err)
	}
	defer rows.Close()

	var candidates []ledger.Candidate
	for rows.Next() {
		var c ledger.Candidate
		var cts int64
		if err := rows.Scan(&c.EventID, &c.GroupID, &c.Location, &cts); err != nil {
			return nil, fmt.Errorf("scan match candidate: %w", err)
		}
		c.Timestamp = time.Unix(cts, 0).UTC()
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate match candidates: %w", err)
	}
	return candidates, nil
}

// MatchMovement records eventID as the counterpart of the given asset
// movement, linking both rows in one transaction. The result carries the
// group ids the caller navigates to.
func (s *Store) MatchMovement(ctx context.Context, movementID, eventID int64) (*ledger.MatchResult, error) {
	if movementID == eventID {
		return nil, ErrNoSuchEvent
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin match: %w", err)
	}
	defer tx.Rollback()

	var movementGroup, entryType string
	var movementMatched int64
	err = tx.QueryRowContext(ctx,
		`SELECT group_id, entry_type, matched_event FROM entries WHERE id = ?`, movementID,
	).Scan(&movementGroup, &entryType, &movementMatched)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNoSuchMovement
	case err != nil:
		return nil, fmt.Errorf("load movement: %w", err)
	case entryType != string(ledger.EntryAssetMovement):
		return nil, ErrNoSuchMovement
	case movementMatched != 0:
		return nil, ErrAlreadyMatched
	}

	var eventGroup string
	var eventMatched int64
	err = tx.QueryRowContext(ctx,
		`SELECT group_id, matched_event FROM entries WHERE id = ?`, eventID,
	).Scan(&eventGroup, &eventMatched)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNoSuchEvent
	case err != nil:
		return nil, fmt.Errorf("load counterpart: %w", err)
	case eventMatched != 0:
		return nil, ErrAlreadyMatched
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE entries SET matched_event = ? WHERE id = ?`, eventID, movementID,
	); err != nil {
		return nil, fmt.Errorf("link movement: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE entries SET matched_event = ? WHERE id = ?`, movementID, eventID,
	); err != nil {
		return nil, fmt.Errorf("link counterpart: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit match: %w", err)
	}

	return &ledger.MatchResult{
		MovementID:      movementID,
		EventID:         eventID,
		EventGroupID:    eventGroup,
		MovementGroupID: movementGroup,
	}, nil
}
