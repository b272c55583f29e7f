// Package metrics exposes Prometheus metrics for render runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oszuidwest/zwfm-demorecorder/internal/types"
)

// Metrics holds the collectors for one recorder process.
type Metrics struct {
	registry        *prometheus.Registry
	runsTotal       *prometheus.CounterVec
	phaseDuration   *prometheus.HistogramVec
	encoderExitCode *prometheus.GaugeVec
	framesTotal     prometheus.Counter
	eventsDropped   prometheus.Counter
}

// New creates and registers the recorder metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	runsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "demorec_runs_total",
		Help: "Finished runs by outcome (completed, aborted, failed)",
	}, []string{"outcome"})
	phaseDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "demorec_phase_duration_seconds",
		Help:    "Time spent in each run phase",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"phase"})
	encoderExitCode := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "demorec_encoder_exit_code",
		Help: "Exit code of the last encoder run",
	}, []string{"encoder"})
	framesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "demorec_frames_total",
		Help: "Frames found in captured takes",
	})
	eventsDropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "demorec_events_dropped_total",
		Help: "Events not delivered to slow stream subscribers",
	})

	registry.MustRegister(runsTotal, phaseDuration, encoderExitCode, framesTotal, eventsDropped)

	return &Metrics{
		registry:        registry,
		runsTotal:       runsTotal,
		phaseDuration:   phaseDuration,
		encoderExitCode: encoderExitCode,
		framesTotal:     framesTotal,
		eventsDropped:   eventsDropped,
	}
}

// ObservePhase records how long the run stayed in state.
func (m *Metrics) ObservePhase(state types.State, d time.Duration) {
	m.phaseDuration.WithLabelValues(string(state)).Observe(d.Seconds())
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(res types.RunResult) {
	m.runsTotal.WithLabelValues(res.Outcome()).Inc()
	m.framesTotal.Add(float64(res.Frames))
	if res.Encoded {
		m.encoderExitCode.WithLabelValues(string(res.Encoder)).Set(float64(res.ExitCode))
	}
}

// IncEventsDropped increments the dropped events counter.
func (m *Metrics) IncEventsDropped() {
	m.eventsDropped.Inc()
}

// Handler returns an http.Handler that serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
