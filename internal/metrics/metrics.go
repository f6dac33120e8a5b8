// Package metrics exposes Prometheus collectors for bookings, locks and
// HTTP traffic.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "field_booking"

var (
	once sync.Once

	bookingOutcome = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_attempts_total",
			Help:      "Booking create attempts by outcome (created, booked, locked, unavailable, error).",
		},
		[]string{"outcome"},
	)

	bookingTransition = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Booking status transitions by target status.",
		},
		[]string{"status"},
	)

	lockOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "field_lock_operations_total",
			Help:      "Field lock operations by kind.",
		},
		[]string{"op"},
	)

	jobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Background job runs by job and result.",
		},
		[]string{"job", "result"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Register registers the collectors with the default registry (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingOutcome, bookingTransition, lockOps, jobRuns, httpRequests, httpDuration)
	})
}

func IncBookingOutcome(outcome string) { bookingOutcome.WithLabelValues(outcome).Inc() }

func IncBookingTransition(status string) { bookingTransition.WithLabelValues(status).Inc() }

func IncLockOp(op string) { lockOps.WithLabelValues(op).Inc() }

func IncJobRun(job, result string) { jobRuns.WithLabelValues(job, result).Inc() }

// ObserveHTTP records one finished request.
func ObserveHTTP(method, route, status string, seconds float64) {
	httpRequests.WithLabelValues(method, route, status).Inc()
	httpDuration.WithLabelValues(method, route).Observe(seconds)
}
