package ledger

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryCodec(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		q := Query{
			FromTimestamp:  time.Unix(1700000000, 0).UTC(),
			ToTimestamp:    time.Unix(1710000000, 0).UTC(),
			Assets:         []string{"BTC", "ETH"},
			Locations:      []string{"kraken"},
			EventTypes:     []string{"trade"},
			Counterparties: []string{"uniswap-v3"},
			GroupIDs:       []string{"0xabc"},
			MatchStatus:    "unmatched",
			IncludeIgnored: true,
			SortAscending:  true,
		}
		assert.Equal(t, q, ParseQuery(q.Values()))
	})

	t.Run("zero query encodes to nothing", func(t *testing.T) {
		var q Query
		assert.True(t, q.IsZero())
		assert.Empty(t, q.Values())
	})

	t.Run("unknown and navigation parameters are ignored", func(t *testing.T) {
		values := url.Values{
			"page":                     {"3"},
			"limit":                    {"25"},
			"highlightedAssetMovement": {"100"},
			"asset":                    {"BTC"},
			"bogus":                    {"x"},
		}
		q := ParseQuery(values)
		assert.Equal(t, []string{"BTC"}, q.Assets)
		assert.True(t, q.FromTimestamp.IsZero())
		assert.Equal(t, "", q.MatchStatus)
	})

	t.Run("malformed timestamps are dropped", func(t *testing.T) {
		q := ParseQuery(url.Values{ParamFromTimestamp: {"not-a-number"}, ParamToTimestamp: {"-5"}})
		assert.True(t, q.FromTimestamp.IsZero())
		assert.True(t, q.ToTimestamp.IsZero())
	})

	t.Run("repeated values accumulate", func(t *testing.T) {
		values := url.Values{}
		values.Add(ParamAsset, "BTC")
		values.Add(ParamAsset, "ETH")
		q := ParseQuery(values)
		require.Len(t, q.Assets, 2)
	})
}

func TestQuerySummary(t *testing.T) {
	t.Run("empty for the zero query", func(t *testing.T) {
		assert.Equal(t, "", Query{}.Summary())
	})

	t.Run("names the active filters", func(t *testing.T) {
		q := Query{Assets: []string{"BTC"}, MatchStatus: "unmatched"}
		s := q.Summary()
		assert.Contains(t, s, "asset=BTC")
		assert.Contains(t, s, "match=unmatched")
	})
}
