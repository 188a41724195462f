package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorStats(t *testing.T) {
	c := NewCollector()
	c.RecordToolCall("renderGame", "success", 20*time.Millisecond)
	c.RecordToolCall("renderGame", "error", 40*time.Millisecond)
	c.RecordToolCall("renderGame", "rate_limited", 0)
	c.RecordRender("text", 4)
	c.RecordRender("text", 2)
	c.RecordOpeningLookup(true)
	c.RecordOpeningLookup(false)

	stats := c.GetStats()

	tool := stats["tools"].(map[string]interface{})["renderGame"].(map[string]interface{})
	assert.Equal(t, int64(3), tool["calls"])
	assert.Equal(t, int64(1), tool["errors"])
	assert.Equal(t, int64(20), tool["avg_duration_ms"])

	text := stats["renders"].(map[string]interface{})["text"].(map[string]interface{})
	assert.Equal(t, int64(2), text["games"])
	assert.Equal(t, int64(6), text["pages"])

	openings := stats["openings"].(map[string]interface{})
	assert.InDelta(t, 0.5, openings["hit_rate"], 1e-9)

	limits := stats["rate_limits"].(map[string]interface{})
	assert.Equal(t, int64(1), limits["hits"])

	c.Reset()
	require.Empty(t, c.GetStats()["tools"])
}

func TestCollectorDurationWindow(t *testing.T) {
	c := NewCollector()
	for i := 0; i < window+10; i++ {
		c.RecordToolCall("listGames", "success", time.Millisecond)
	}
	assert.Len(t, c.toolDurations["listGames"], window)
}
