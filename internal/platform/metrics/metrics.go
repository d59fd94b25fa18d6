// Package metrics owns the Prometheus registry for the pipeline, the
// collectors, the result cache and the HTTP layer
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "narrativeradar"

// Registry groups every metric the service exports. Use New per process;
// tests build their own to avoid global state
type Registry struct {
	reg *prometheus.Registry

	PipelineDuration  *prometheus.HistogramVec
	CollectorDuration *prometheus.HistogramVec
	CollectorFailures *prometheus.CounterVec
	Signals           *prometheus.GaugeVec
	Narratives        *prometheus.GaugeVec
	CacheLookups      *prometheus.CounterVec
	BreakerState      *prometheus.GaugeVec
	StreamClients     prometheus.Gauge
	HTTPDuration      *prometheus.HistogramVec
}

// New builds and registers all metrics plus the Go and process collectors
func New() *Registry {
	m := &Registry{
		reg: prometheus.NewRegistry(),
		PipelineDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of full pipeline runs",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		}, []string{"result"}),
		CollectorDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collector_duration_seconds",
			Help:      "Duration of one collector fetch",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		}, []string{"source"}),
		CollectorFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collector_failures_total",
			Help:      "Collector fetches that failed and contributed an empty payload",
		}, []string{"source"}),
		Signals: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "signals",
			Help:      "Signals extracted in the last run by source",
		}, []string{"source"}),
		Narratives: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "narratives",
			Help:      "Narratives ranked in the last run by origin",
		}, []string{"origin"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups by outcome",
		}, []string{"outcome"}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "breaker_state",
			Help:      "Upstream circuit state (0 closed, 1 half-open, 2 open)",
		}, []string{"upstream"}),
		StreamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_clients",
			Help:      "Connected websocket stream clients",
		}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.PipelineDuration,
		m.CollectorDuration,
		m.CollectorFailures,
		m.Signals,
		m.Narratives,
		m.CacheLookups,
		m.BreakerState,
		m.StreamClients,
		m.HTTPDuration,
	)
	return m
}

// Gatherer exposes the underlying registry
func (m *Registry) Gatherer() prometheus.Gatherer { return m.reg }

// Handler serves the registry in the Prometheus text format
func (m *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Timer measures one operation against a histogram
type Timer struct {
	vec   *prometheus.HistogramVec
	start time.Time
}

// StartPipeline starts timing a pipeline run
func (m *Registry) StartPipeline() Timer {
	if m == nil {
		return Timer{start: time.Now()}
	}
	return Timer{vec: m.PipelineDuration, start: time.Now()}
}

// StartCollector starts timing one collector
func (m *Registry) StartCollector() Timer {
	if m == nil {
		return Timer{start: time.Now()}
	}
	return Timer{vec: m.CollectorDuration, start: time.Now()}
}

// Stop records the elapsed time under label and returns it
func (t Timer) Stop(label string) time.Duration {
	d := time.Since(t.start)
	if t.vec != nil {
		t.vec.WithLabelValues(label).Observe(d.Seconds())
	}
	return d
}

// CacheHit counts a cache hit
func (m *Registry) CacheHit() { m.cache("hit") }

// CacheMiss counts a cache miss
func (m *Registry) CacheMiss() { m.cache("miss") }

func (m *Registry) cache(outcome string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(outcome).Inc()
	}
}

// CollectorFailed counts a failed collector fetch
func (m *Registry) CollectorFailed(source string) {
	if m == nil {
		return
	}
	m.CollectorFailures.WithLabelValues(source).Inc()
}

// ObserveRun sets the per-run gauges
func (m *Registry) ObserveRun(signalsBySource map[string]int, catalog, discovered int) {
	if m == nil {
		return
	}
	m.Signals.Reset()
	for src, n := range signalsBySource {
		m.Signals.WithLabelValues(src).Set(float64(n))
	}
	m.Narratives.WithLabelValues("catalog").Set(float64(catalog))
	m.Narratives.WithLabelValues("discovered").Set(float64(discovered))
}

// SetBreaker records an upstream circuit state
func (m *Registry) SetBreaker(upstream string, state int) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(upstream).Set(float64(state))
}

// ObserveHTTP records one request
func (m *Registry) ObserveHTTP(route, method, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPDuration.WithLabelValues(route, method, status).Observe(d.Seconds())
}

// StreamJoined counts a websocket client in
func (m *Registry) StreamJoined() {
	if m != nil {
		m.StreamClients.Inc()
	}
}

// StreamLeft counts a websocket client out
func (m *Registry) StreamLeft() {
	if m != nil {
		m.StreamClients.Dec()
	}
}
