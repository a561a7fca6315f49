// Package prom implements the observability hooks with Prometheus
// collectors.
//
// # Usage
//
//	hooks := prom.New(prometheus.DefaultRegisterer)
//	hooks.Install()
//	http.Handle("/metrics", promhttp.Handler())
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/engraver/pkg/observability"
)

// Namespace prefixes every metric name.
const Namespace = "engraver"

// Hooks implements every observability hook interface.
type Hooks struct {
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	lines         *prometheus.CounterVec
	lineDuration  prometheus.Histogram
	memoClears    *prometheus.CounterVec
	cacheEvents   *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
	requests      *prometheus.CounterVec
	reqDuration   *prometheus.HistogramVec
}

var (
	_ observability.PipelineHooks = (*Hooks)(nil)
	_ observability.EngineHooks   = (*Hooks)(nil)
	_ observability.CacheHooks    = (*Hooks)(nil)
	_ observability.HTTPHooks     = (*Hooks)(nil)
)

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Hooks {
	h := &Hooks{
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages.",
		}, []string{"stage", "format"}),
		stageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "stage_errors_total",
			Help:      "Pipeline stages that failed.",
		}, []string{"stage"}),
		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "lines_total",
			Help:      "Lines laid out, by whether the line cache was used.",
		}, []string{"cached"}),
		lineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "line_duration_seconds",
			Help:      "Time to lay out one line.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		memoClears: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "memo_clears_total",
			Help:      "Times the layout memo was dropped.",
		}, []string{"reason"}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_events_total",
			Help:      "Artifact cache lookups and writes.",
		}, []string{"key_type", "event"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the artifact cache.",
		}, []string{"key_type"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served.",
		}, []string{"method", "route", "code"}),
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
		}, []string{"method", "route"}),
	}
	if reg != nil {
		reg.MustRegister(
			h.stageDuration, h.stageErrors, h.lines, h.lineDuration,
			h.memoClears, h.cacheEvents, h.cacheBytes, h.requests, h.reqDuration,
		)
	}
	return h
}

// Install registers h for every hook category.
func (h *Hooks) Install() {
	observability.SetPipelineHooks(h)
	observability.SetEngineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h *Hooks) stage(stage, format string, d time.Duration, err error) {
	h.stageDuration.WithLabelValues(stage, format).Observe(d.Seconds())
	if err != nil {
		h.stageErrors.WithLabelValues(stage).Inc()
	}
}

func (h *Hooks) OnParseStart(context.Context, string) {}

func (h *Hooks) OnParseComplete(_ context.Context, format string, _ int, d time.Duration, err error) {
	h.stage("parse", format, d, err)
}

func (h *Hooks) OnLayoutStart(context.Context, int) {}

func (h *Hooks) OnLayoutComplete(_ context.Context, _ int, d time.Duration, err error) {
	h.stage("layout", "", d, err)
}

func (h *Hooks) OnExportStart(context.Context, string) {}

func (h *Hooks) OnExportComplete(_ context.Context, format string, d time.Duration, err error) {
	h.stage("export", format, d, err)
}

func (h *Hooks) OnLine(_ context.Context, _, _ int, cached bool, d time.Duration) {
	h.lines.WithLabelValues(strconv.FormatBool(cached)).Inc()
	h.lineDuration.Observe(d.Seconds())
}

func (h *Hooks) OnMemoCleared(reason string) {
	h.memoClears.WithLabelValues(reason).Inc()
}

func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheEvents.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (h *Hooks) OnRequest(context.Context, string, string) {}

func (h *Hooks) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	h.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	h.reqDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
