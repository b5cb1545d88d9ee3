package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors exposed on /metrics.
type Metrics struct {
	Validations *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formskema_validations_total",
				Help: "Total number of form submissions by outcome",
			},
			[]string{"form", "result"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "formskema_validation_duration_seconds",
				Help:    "Duration of decoding and validating a submission",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"form"},
		),
	}
	reg.MustRegister(m.Validations, m.Duration)
	return m
}
