package ledger

import "context"

// Source serves the grouped ledger. Implementations include the local
// SQLite store (direct DB access) and the REST client that talks to a
// remote accounting backend; both honor the same ordering so positions
// and pages agree.
type Source interface {
	// FetchPage returns one page of groups under the query's filter and
	// sort, with member descriptors but without display detail.
	FetchPage(ctx context.Context, q Query, page, limit int) (*PageResult, error)

	// FetchDetails returns full member payloads for the given groups.
	FetchDetails(ctx context.Context, groupIDs []string) ([]Event, error)

	// GroupPosition returns the zero-based rank of the group among all
	// groups matching the query, or -1 when the group is absent under it.
	// The ordering matches FetchPage exactly.
	GroupPosition(ctx context.Context, groupID string, q Query) (int, error)

	// GroupEvents returns one group's full member set, optionally with
	// ignored members included, powering the load-more reveal.
	GroupEvents(ctx context.Context, groupID string, includeIgnored bool) ([]Event, error)

	// UnmatchedMovements lists asset movements without a matched
	// counterpart, newest first, with match candidates attached.
	UnmatchedMovements(ctx context.Context) ([]Movement, error)

	// MatchMovement persists a movement match and reports the groups
	// involved so the caller can navigate to the result.
	MatchMovement(ctx context.Context, movementID, eventID int64) (*MatchResult, error)

	// Ping verifies the source is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the source.
	Close() error
}
