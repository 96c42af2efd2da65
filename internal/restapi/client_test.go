package restapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/tallyview/tally/ledger"
)

// The client must stay a drop-in alternative to the local store.
var _ ledger.Source = (*Client)(nil)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := New(server.URL, "test-key")
	c.limiter = rate.NewLimiter(rate.Inf, 1)
	return c
}

// writeResult wraps v in the daemon's response envelope.
func writeResult(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"result": v, "message": ""})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"result": nil, "message": message})
}

func TestFetchPage(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes groups and descriptors", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/1/events", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, float64(2), body["page"])
			assert.Equal(t, float64(25), body["limit"])
			assert.Equal(t, []any{"ETH"}, body["assets"])

			writeResult(w, map[string]any{
				"entries": []map[string]any{{
					"group_identifier": "0xabc",
					"timestamp":        1767225600,
					"location":         "ethereum",
					"members": []map[string]any{
						{"identifier": 1, "sequence_index": 0, "entry_type": "evm event"},
						{"identifier": 2, "sequence_index": 1, "entry_type": "evm event", "hidden": true},
					},
				}},
				"entries_found": 41,
				"entries_limit": -1,
				"entries_total": 90,
			})
		}))

		page, err := c.FetchPage(ctx, ledger.Query{Assets: []string{"ETH"}}, 2, 25)
		require.NoError(t, err)

		assert.Equal(t, 41, page.Found)
		assert.Equal(t, -1, page.Limit)
		assert.Equal(t, 90, page.Total)
		require.Len(t, page.Groups, 1)

		g := page.Groups[0]
		assert.Equal(t, "0xabc", g.GroupID)
		assert.Equal(t, time.Unix(1767225600, 0).UTC(), g.Timestamp)
		assert.Equal(t, 2, g.MemberCount)
		assert.Equal(t, 1, g.HiddenCount)
		require.Len(t, g.Members, 2)
		assert.Equal(t, "0xabc", g.Members[0].GroupID)
		assert.False(t, g.Members[0].Resolved())
		assert.True(t, g.Members[1].Hidden)
	})

	t.Run("surfaces the envelope message on failure", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusInternalServerError, "database is locked")
		}))

		_, err := c.FetchPage(ctx, ledger.Query{}, 1, 25)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database is locked")
	})

	t.Run("falls back to the status code without a message", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))

		_, err := c.FetchPage(ctx, ledger.Query{}, 1, 25)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})
}

func TestFetchDetails(t *testing.T) {
	ctx := context.Background()

	var mu sync.Mutex
	var chunkSizes []int
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/1/events/details", r.URL.Path)

		var body struct {
			GroupIDs []string `json:"group_identifiers"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		mu.Lock()
		chunkSizes = append(chunkSizes, len(body.GroupIDs))
		mu.Unlock()

		entries := make([]map[string]any, 0, len(body.GroupIDs))
		for _, id := range body.GroupIDs {
			entries = append(entries, map[string]any{
				"group_identifier": id,
				"entry_type":       "evm event",
				"timestamp":        1767225600,
				"asset":            "ETH",
				"amount":           "1.0",
			})
		}
		writeResult(w, map[string]any{"entries": entries})
	}))

	groupIDs := make([]string, 23)
	for i := range groupIDs {
		groupIDs[i] = fmt.Sprintf("g%02d", i)
	}

	events, err := c.FetchDetails(ctx, groupIDs)
	require.NoError(t, err)
	require.Len(t, events, 23)

	// Chunk responses reassemble in request order regardless of which
	// request finished first.
	for i, e := range events {
		assert.Equal(t, groupIDs[i], e.GroupID)
		assert.True(t, e.Resolved())
	}
	for _, size := range chunkSizes {
		assert.LessOrEqual(t, size, detailChunkSize)
	}

	empty, err := c.FetchDetails(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGroupPosition(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the daemon's rank", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/1/events/position", r.URL.Path)

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "0xabc", body["group_identifier"])
			assert.Equal(t, []any{"kraken"}, body["locations"])

			writeResult(w, map[string]any{"position": 25})
		}))

		pos, err := c.GroupPosition(ctx, "0xabc", ledger.Query{Locations: []string{"kraken"}})
		require.NoError(t, err)
		assert.Equal(t, 25, pos)
	})

	t.Run("null position means absent", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeResult(w, map[string]any{"position": nil})
		}))

		pos, err := c.GroupPosition(ctx, "0xabc", ledger.Query{})
		require.NoError(t, err)
		assert.Equal(t, -1, pos)
	})

	t.Run("lookup failures propagate", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusBadGateway, "backend unavailable")
		}))

		pos, err := c.GroupPosition(ctx, "0xabc", ledger.Query{})
		require.Error(t, err)
		assert.Equal(t, -1, pos)
	})
}

func TestGroupEvents(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			GroupID        string `json:"group_identifier"`
			IncludeIgnored bool   `json:"include_ignored"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "0xabc", body.GroupID)
		assert.True(t, body.IncludeIgnored)

		writeResult(w, map[string]any{
			"entries": []map[string]any{
				{"identifier": 1, "group_identifier": "0xabc", "entry_type": "evm event", "timestamp": 1767225600},
				{"identifier": 2, "group_identifier": "0xabc", "entry_type": "evm event", "timestamp": 1767225600, "hidden": true},
			},
		})
	}))

	events, err := c.GroupEvents(ctx, "0xabc", true)
	require.NoError(t, err)
	require.Len(t, events, 2)
	for _, e := range events {
		assert.False(t, e.Hidden, "reveal should lift the flags")
		assert.True(t, e.Resolved())
	}
}

func TestUnmatchedMovements(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/1/movements/unmatched", r.URL.Path)

		writeResult(w, map[string]any{
			"entries": []map[string]any{{
				"identifier":       7,
				"group_identifier": "kraken-1",
				"timestamp":        1767225600,
				"location":         "kraken",
				"direction":        "withdrawal",
				"asset":            "ETH",
				"amount":           "2.5",
				"candidates": []map[string]any{
					{"identifier": 9, "group_identifier": "0xchain", "location": "ethereum", "timestamp": 1767227400},
				},
			}},
		})
	}))

	movements, err := c.UnmatchedMovements(ctx)
	require.NoError(t, err)
	require.Len(t, movements, 1)

	m := movements[0]
	assert.Equal(t, int64(7), m.EventID)
	assert.Equal(t, "withdrawal", m.Direction)
	require.Len(t, m.Candidates, 1)
	assert.Equal(t, "0xchain", m.Candidates[0].GroupID)
	assert.Equal(t, time.Unix(1767227400, 0).UTC(), m.Candidates[0].Timestamp)
}

func TestMatchMovement(t *testing.T) {
	ctx := context.Background()

	t.Run("records the match", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/api/1/movements/match", r.URL.Path)

			var body struct {
				MovementID int64 `json:"movement_id"`
				EventID    int64 `json:"event_id"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, int64(7), body.MovementID)
			assert.Equal(t, int64(9), body.EventID)

			writeResult(w, map[string]any{
				"movement_id":               7,
				"event_id":                  9,
				"event_group_identifier":    "0xchain",
				"movement_group_identifier": "kraken-1",
			})
		}))

		result, err := c.MatchMovement(ctx, 7, 9)
		require.NoError(t, err)
		assert.Equal(t, "0xchain", result.EventGroupID)
		assert.Equal(t, "kraken-1", result.MovementGroupID)
	})

	t.Run("conflict surfaces the daemon's message", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusConflict, "event is already matched")
		}))

		_, err := c.MatchMovement(ctx, 7, 9)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already matched")
	})
}

func TestPing(t *testing.T) {
	ctx := context.Background()

	t.Run("healthy daemon", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/1/ping", r.URL.Path)
			writeResult(w, true)
		}))
		assert.NoError(t, c.Ping(ctx))
	})

	t.Run("unreachable daemon", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		c := New(server.URL, "")
		c.limiter = rate.NewLimiter(rate.Inf, 1)
		assert.Error(t, c.Ping(ctx))
	})
}
