package nav

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyview/tally/log"
)

func TestMain(m *testing.M) {
	log.Initialize(false)
	code := m.Run()
	log.Close()
	os.Exit(code)
}

func TestSessionBegin(t *testing.T) {
	t.Run("stores the pending request and bumps the generation", func(t *testing.T) {
		s := NewSession()
		require.False(t, s.IsNavigating())
		require.EqualValues(t, 0, s.Generation())

		gen := s.Begin(Request{TargetGroupID: "g1"})
		assert.EqualValues(t, 1, gen)
		assert.True(t, s.IsNavigating())

		pending, ok := s.Pending()
		require.True(t, ok)
		assert.Equal(t, "g1", pending.TargetGroupID)
	})

	t.Run("a newer request replaces the pending one", func(t *testing.T) {
		s := NewSession()
		first := s.Begin(Request{TargetGroupID: "g1"})
		second := s.Begin(Request{TargetGroupID: "g2"})
		assert.Greater(t, second, first)

		pending, ok := s.Pending()
		require.True(t, ok)
		assert.Equal(t, "g2", pending.TargetGroupID)
	})
}

func TestSessionConsume(t *testing.T) {
	t.Run("clears pending state", func(t *testing.T) {
		s := NewSession()
		s.Begin(Request{TargetGroupID: "g1"})
		s.Consume()

		assert.False(t, s.IsNavigating())
		_, ok := s.Pending()
		assert.False(t, ok)
	})

	t.Run("idempotent with nothing pending", func(t *testing.T) {
		s := NewSession()
		s.Consume()
		s.Consume()
		assert.False(t, s.IsNavigating())
	})

	t.Run("does not advance the generation", func(t *testing.T) {
		s := NewSession()
		gen := s.Begin(Request{TargetGroupID: "g1"})
		s.Consume()
		assert.Equal(t, gen, s.Generation())
	})
}

func TestSessionInvalidate(t *testing.T) {
	// Teardown must orphan in-flight resolutions, not just clear state: a
	// worker holding the old generation may deliver its result later.
	s := NewSession()
	gen := s.Begin(Request{TargetGroupID: "g1"})
	s.Invalidate()

	assert.Greater(t, s.Generation(), gen)
	assert.False(t, s.IsNavigating())
	_, ok := s.Pending()
	assert.False(t, ok)
}

func TestHighlightParams(t *testing.T) {
	t.Run("recognizes highlight slots", func(t *testing.T) {
		assert.True(t, IsHighlightParam(SlotAssetMovement))
		assert.True(t, IsHighlightParam(SlotEvent))
		assert.False(t, IsHighlightParam("page"))
		assert.False(t, IsHighlightParam("highlighted"))
		assert.False(t, IsHighlightParam("asset"))
	})

	t.Run("strip removes only highlight slots", func(t *testing.T) {
		values := mustValues(map[string][]string{
			SlotAssetMovement: {"100"},
			SlotEvent:         {"7"},
			"asset":           {"BTC"},
			"page":            {"3"},
		})
		stripped := StripHighlights(values)
		assert.Equal(t, "BTC", stripped.Get("asset"))
		assert.Equal(t, "3", stripped.Get("page"))
		assert.Empty(t, stripped.Get(SlotAssetMovement))
		assert.Empty(t, stripped.Get(SlotEvent))

		// The input is left alone.
		assert.Equal(t, "100", values.Get(SlotAssetMovement))
	})
}
