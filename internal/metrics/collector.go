package metrics

import (
	"sync"
	"time"
)

// window is how many recent durations are kept per tool.
const window = 100

// Collector keeps in-process counters reported by the health tool.
type Collector struct {
	mu sync.RWMutex

	toolCalls     map[string]int64
	toolErrors    map[string]int64
	toolDurations map[string][]time.Duration

	rateLimitHits  int64
	rateLimitTotal int64

	renders      map[string]int64
	pages        map[string]int64
	openingHits  int64
	openingTotal int64
}

func NewCollector() *Collector {
	c := &Collector{}
	c.reset()
	return c
}

func (c *Collector) reset() {
	c.toolCalls = make(map[string]int64)
	c.toolErrors = make(map[string]int64)
	c.toolDurations = make(map[string][]time.Duration)
	c.renders = make(map[string]int64)
	c.pages = make(map[string]int64)
	c.rateLimitHits, c.rateLimitTotal = 0, 0
	c.openingHits, c.openingTotal = 0, 0
}

// RecordToolCall records a tool call with its status and duration.
func (c *Collector) RecordToolCall(tool, status string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.toolCalls[tool]++
	switch status {
	case "error":
		c.toolErrors[tool]++
	case "rate_limited":
		c.rateLimitHits++
	}
	c.rateLimitTotal++

	durations := append(c.toolDurations[tool], duration)
	if len(durations) > window {
		durations = durations[len(durations)-window:]
	}
	c.toolDurations[tool] = durations
}

// RecordRender counts a composed document and its pages.
func (c *Collector) RecordRender(format string, pages int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renders[format]++
	c.pages[format] += int64(pages)
}

// RecordOpeningLookup counts a classification attempt.
func (c *Collector) RecordOpeningLookup(found bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openingTotal++
	if found {
		c.openingHits++
	}
}

func ratio(n, d int64) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

// GetStats returns a JSON-friendly snapshot.
func (c *Collector) GetStats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tools := make(map[string]interface{})
	for tool, calls := range c.toolCalls {
		var total time.Duration
		durations := c.toolDurations[tool]
		for _, d := range durations {
			total += d
		}
		var avg time.Duration
		if len(durations) > 0 {
			avg = total / time.Duration(len(durations))
		}
		tools[tool] = map[string]interface{}{
			"calls":           calls,
			"errors":          c.toolErrors[tool],
			"error_rate":      ratio(c.toolErrors[tool], calls),
			"avg_duration_ms": avg.Milliseconds(),
		}
	}

	renders := make(map[string]interface{})
	for format, n := range c.renders {
		renders[format] = map[string]interface{}{
			"games": n,
			"pages": c.pages[format],
		}
	}

	return map[string]interface{}{
		"tools":   tools,
		"renders": renders,
		"openings": map[string]interface{}{
			"lookups":  c.openingTotal,
			"hits":     c.openingHits,
			"hit_rate": ratio(c.openingHits, c.openingTotal),
		},
		"rate_limits": map[string]interface{}{
			"hits":  c.rateLimitHits,
			"total": c.rateLimitTotal,
			"rate":  ratio(c.rateLimitHits, c.rateLimitTotal),
		},
	}
}

// Reset clears all metrics.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}
