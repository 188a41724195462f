package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chessbook"

var (
	prometheusOnce     sync.Once
	prometheusInstance *PrometheusCollector
)

// PrometheusCollector exposes rendering, tool and cache metrics.
type PrometheusCollector struct {
	toolCallsTotal   *prometheus.CounterVec
	toolErrorsTotal  *prometheus.CounterVec
	toolDurationSecs *prometheus.HistogramVec

	rateLimitHitsTotal   *prometheus.CounterVec
	rateLimitChecksTotal prometheus.Counter

	gamesRenderedTotal  *prometheus.CounterVec
	pagesRenderedTotal  *prometheus.CounterVec
	renderDurationSecs  *prometheus.HistogramVec
	pgnErrorsTotal      prometheus.Counter
	openingLookupsTotal *prometheus.CounterVec
	documentsSavedTotal *prometheus.CounterVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	cacheHitsTotal      *prometheus.CounterVec
	cacheMissesTotal    *prometheus.CounterVec
	cacheEvictionsTotal prometheus.Counter
	cacheSize           prometheus.Gauge
	cacheItems          prometheus.Gauge
}

// NewPrometheusCollector returns the process-wide collector registered with
// the default registry, which promhttp.Handler serves.
func NewPrometheusCollector() *PrometheusCollector {
	prometheusOnce.Do(func() {
		prometheusInstance = NewPrometheusCollectorWithRegistry(prometheus.DefaultRegisterer)
	})
	return prometheusInstance
}

// NewPrometheusCollectorWithRegistry registers a fresh set of metrics with reg.
func NewPrometheusCollectorWithRegistry(reg prometheus.Registerer) *PrometheusCollector {
	f := promauto.With(reg)
	return &PrometheusCollector{
		toolCallsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mcp_tool_calls_total",
				Help:      "Total number of MCP tool calls",
			},
			[]string{"tool", "status"},
		),
		toolErrorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mcp_tool_errors_total",
				Help:      "Total number of MCP tool errors",
			},
			[]string{"tool", "error_type"},
		),
		toolDurationSecs: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "mcp_tool_duration_seconds",
				Help:      "Duration of MCP tool calls in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"tool"},
		),

		rateLimitHitsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mcp_rate_limit_hits_total",
				Help:      "Total number of rate limit hits",
			},
			[]string{"client", "tool"},
		),
		rateLimitChecksTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mcp_rate_limit_checks_total",
				Help:      "Total number of rate limit checks",
			},
		),

		gamesRenderedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "games_rendered_total",
				Help:      "Games composed into documents",
			},
			[]string{"format"},
		),
		pagesRenderedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pages_rendered_total",
				Help:      "Document pages composed",
			},
			[]string{"format"},
		),
		renderDurationSecs: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "render_duration_seconds",
				Help:      "Time spent composing one document",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"format"},
		),
		pgnErrorsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pgn_errors_total",
				Help:      "PGN inputs that failed to parse or replay",
			},
		),
		openingLookupsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "opening_lookups_total",
				Help:      "Opening classifications by outcome",
			},
			[]string{"result"},
		),
		documentsSavedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_saved_total",
				Help:      "Documents written to the output directory",
			},
			[]string{"status"},
		),

		httpRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		cacheHitsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Render cache hits",
			},
			[]string{"tool"},
		),
		cacheMissesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Render cache misses",
			},
			[]string{"tool"},
		),
		cacheEvictionsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_evictions_total",
				Help:      "Entries evicted from the render cache",
			},
		),
		cacheSize: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "cache_size_bytes",
				Help:      "Current render cache size in bytes",
			},
		),
		cacheItems: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "cache_items",
				Help:      "Current number of items in the render cache",
			},
		),
	}
}

// RecordToolCall records a tool call metric.
func (p *PrometheusCollector) RecordToolCall(tool, status string, durationSecs float64) {
	p.toolCallsTotal.WithLabelValues(tool, status).Inc()
	p.toolDurationSecs.WithLabelValues(tool).Observe(durationSecs)
}

// RecordToolError records a classified tool failure.
func (p *PrometheusCollector) RecordToolError(tool, errorType string) {
	p.toolErrorsTotal.WithLabelValues(tool, errorType).Inc()
}

// RecordRateLimit records a rate limit event.
func (p *PrometheusCollector) RecordRateLimit(client, tool string, hit bool) {
	p.rateLimitChecksTotal.Inc()
	if hit {
		p.rateLimitHitsTotal.WithLabelValues(client, tool).Inc()
	}
}

// RecordRender records one composed document.
func (p *PrometheusCollector) RecordRender(format string, pages int, durationSecs float64) {
	p.gamesRenderedTotal.WithLabelValues(format).Inc()
	p.pagesRenderedTotal.WithLabelValues(format).Add(float64(pages))
	p.renderDurationSecs.WithLabelValues(format).Observe(durationSecs)
}

// RecordPGNError counts an input that could not be read as a game.
func (p *PrometheusCollector) RecordPGNError() {
	p.pgnErrorsTotal.Inc()
}

// RecordOpeningLookup counts a classification as hit or miss.
func (p *PrometheusCollector) RecordOpeningLookup(found bool) {
	result := "miss"
	if found {
		result = "hit"
	}
	p.openingLookupsTotal.WithLabelValues(result).Inc()
}

// RecordSave counts a document write by outcome.
func (p *PrometheusCollector) RecordSave(err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	p.documentsSavedTotal.WithLabelValues(status).Inc()
}

// RecordHTTPRequest records an HTTP request.
func (p *PrometheusCollector) RecordHTTPRequest(method, path string, status int, durationSecs float64) {
	p.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	p.httpRequestDuration.WithLabelValues(method, path).Observe(durationSecs)
}

func (p *PrometheusCollector) RecordCacheHit(tool string) {
	p.cacheHitsTotal.WithLabelValues(tool).Inc()
}

func (p *PrometheusCollector) RecordCacheMiss(tool string) {
	p.cacheMissesTotal.WithLabelValues(tool).Inc()
}

func (p *PrometheusCollector) RecordCacheEviction(n int) {
	p.cacheEvictionsTotal.Add(float64(n))
}

// UpdateCacheSize sets the current cache statistics.
func (p *PrometheusCollector) UpdateCacheSize(items int, sizeBytes int64) {
	p.cacheItems.Set(float64(items))
	p.cacheSize.Set(float64(sizeBytes))
}
