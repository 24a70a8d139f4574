// Package metrics provides the Prometheus collectors for the voxestate pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "voxestate"

// Metrics holds the pipeline collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	stageDuration    *prometheus.HistogramVec
	stageTotal       *prometheus.CounterVec
	synthesisTotal   *prometheus.CounterVec
	urlOpensTotal    *prometheus.CounterVec
	requestsInFlight prometheus.Gauge
}

// New creates the collectors and registers them, plus Go runtime and process
// collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of pipeline stages in seconds",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"stage"}, // generation, synthesis, open_urls
		),
		stageTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_total",
				Help:      "Total pipeline stage executions",
			},
			[]string{"stage", "status"}, // status: success, error
		),
		synthesisTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "synthesis_attempts_total",
				Help:      "Speech synthesis attempts per engine variant",
			},
			[]string{"engine", "outcome"}, // engine: local, network; outcome: success, unavailable, error, empty
		),
		urlOpensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "url_opens_total",
				Help:      "Best-effort URL open attempts",
			},
			[]string{"status"},
		),
		requestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "requests_in_flight",
				Help:      "Number of pipeline requests currently being processed",
			},
		),
	}

	m.registry.MustRegister(
		m.stageDuration,
		m.stageTotal,
		m.synthesisTotal,
		m.urlOpensTotal,
		m.requestsInFlight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry backing /metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveStage records one stage execution.
func (m *Metrics) ObserveStage(stage string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	m.stageTotal.WithLabelValues(stage, status(err)).Inc()
}

// SynthesisAttempt records the outcome of one engine variant attempt.
func (m *Metrics) SynthesisAttempt(engine, outcome string) {
	if m == nil {
		return
	}
	m.synthesisTotal.WithLabelValues(engine, outcome).Inc()
}

// URLOpen records one best-effort URL open.
func (m *Metrics) URLOpen(err error) {
	if m == nil {
		return
	}
	m.urlOpensTotal.WithLabelValues(status(err)).Inc()
}

// TrackRequest increments the in-flight gauge and returns the matching decrement.
func (m *Metrics) TrackRequest() func() {
	if m == nil {
		return func() {}
	}
	m.requestsInFlight.Inc()
	return m.requestsInFlight.Dec
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
