package tts

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts session activity. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	utterances   prometheus.Counter
	events       *prometheus.CounterVec
	dropped      *prometheus.CounterVec
	initFailures *prometheus.CounterVec
	initDuration prometheus.Histogram
}

// NewMetrics creates the session metrics on their own registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		utterances: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "readaloud",
			Name:      "utterances_total",
			Help:      "Utterances issued to the speech engine.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "readaloud",
			Name:      "events_forwarded_total",
			Help:      "Engine events forwarded to listeners.",
		}, []string{"kind"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "readaloud",
			Name:      "events_dropped_total",
			Help:      "Engine events dropped before reaching listeners.",
		}, []string{"kind", "reason"}),
		initFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "readaloud",
			Name:      "engine_init_failures_total",
			Help:      "Speech engine initialization failures by code.",
		}, []string{"code"}),
		initDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "readaloud",
			Name:      "engine_init_seconds",
			Help:      "Time taken by the speech engine to initialize.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(m.utterances, m.events, m.dropped, m.initFailures, m.initDuration)
	return m
}

// Registry returns the registry holding the session metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) utteranceIssued() {
	if m == nil {
		return
	}
	m.utterances.Inc()
}

func (m *Metrics) eventForwarded(kind string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(kind).Inc()
}

func (m *Metrics) eventDropped(kind, reason string) {
	if m == nil {
		return
	}
	m.dropped.WithLabelValues(kind, reason).Inc()
}

func (m *Metrics) initFinished(status InitStatus, took time.Duration) {
	if m == nil {
		return
	}
	m.initDuration.Observe(took.Seconds())
	if !status.OK() {
		m.initFailures.WithLabelValues(status.Code().String()).Inc()
	}
}
