// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "payment_plan"

var (
	// Calculations counts schedule computations by outcome (schedule or empty).
	Calculations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Schedule computations by outcome",
		},
		[]string{"result"},
	)

	// Exports counts PNG exports by renderer and status.
	Exports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "PNG exports by renderer and status",
		},
		[]string{"renderer", "status"},
	)

	// Requests counts HTTP requests by route pattern, method and status code.
	Requests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests handled",
		},
		[]string{"route", "method", "code"},
	)

	// RequestDuration observes HTTP handler latency by route pattern.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP handler latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

// Outcome labels.
const (
	ResultSchedule = "schedule"
	ResultEmpty    = "empty"
	StatusOK       = "ok"
	StatusError    = "error"
)

// ObserveCalculation records one computation; hasSchedule is false when the
// inputs produced no schedule.
func ObserveCalculation(hasSchedule bool) {
	if hasSchedule {
		Calculations.WithLabelValues(ResultSchedule).Inc()
		return
	}
	Calculations.WithLabelValues(ResultEmpty).Inc()
}

// ObserveExport records one export attempt.
func ObserveExport(renderer string, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	Exports.WithLabelValues(renderer, status).Inc()
}
