package observability

import (
	"context"

	"github.com/aretw0/provision/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "provision"

// Line outcomes.
const (
	OutcomeDispatched = "dispatched"
	OutcomeGated      = "gated"
	OutcomeMalformed  = "malformed"
)

// Metrics collects console activity.
type Metrics struct {
	lines       *prometheus.CounterVec
	truncated   prometheus.Counter
	modeChanges *prometheus.CounterVec
	jobs        *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
	inFlight    prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		lines: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lines_total",
				Help:      "Completed console lines by command kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		truncated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "truncated_lines_total",
			Help:      "Lines that dropped bytes at buffer capacity.",
		}),
		modeChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mode_changes_total",
				Help:      "Console mode transitions by target mode.",
			},
			[]string{"to"},
		),
		jobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "jobs_total",
				Help:      "Finished asynchronous device calls by kind and result.",
			},
			[]string{"kind", "result"},
		),
		jobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "job_duration_seconds",
				Help:      "Duration of asynchronous device calls.",
				Buckets:   []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 20},
			},
			[]string{"kind"},
		),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "jobs_in_flight",
			Help:      "Asynchronous device calls currently running.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.lines, m.truncated, m.modeChanges, m.jobs, m.jobDuration, m.inFlight)
	}
	return m
}

// Hooks returns console hooks that record into m.
func (m *Metrics) Hooks() domain.ConsoleHooks {
	return domain.ConsoleHooks{
		OnLine: func(_ context.Context, ev *domain.LineEvent) {
			m.lines.WithLabelValues(string(ev.Kind), lineOutcome(ev)).Inc()
			if ev.Truncated {
				m.truncated.Inc()
			}
		},
		OnModeChange: func(_ context.Context, ev *domain.ModeEvent) {
			m.modeChanges.WithLabelValues(ev.To.String()).Inc()
		},
		OnJobStart: func(_ context.Context, _ *domain.JobEvent) {
			m.inFlight.Inc()
		},
		OnJobDone: func(_ context.Context, ev *domain.JobEvent) {
			m.inFlight.Dec()
			result := "ok"
			if ev.Err != nil {
				result = "error"
			}
			m.jobs.WithLabelValues(string(ev.Kind), result).Inc()
			m.jobDuration.WithLabelValues(string(ev.Kind)).Observe(ev.Duration.Seconds())
		},
	}
}

func lineOutcome(ev *domain.LineEvent) string {
	switch {
	case ev.Gated:
		return OutcomeGated
	case ev.Malformed:
		return OutcomeMalformed
	default:
		return OutcomeDispatched
	}
}
