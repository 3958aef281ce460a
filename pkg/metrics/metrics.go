// Package metrics holds the Prometheus collectors of the reservation engine.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "seat_reservation"

// Operation outcomes used as the "result" label.
const (
	ResultSuccess  = "success"
	ResultConflict = "conflict"
	ResultRejected = "rejected"
	ResultError    = "error"
)

type Metrics struct {
	Registry *prometheus.Registry

	operations     *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	seats          *prometheus.CounterVec
	sweptHolds     prometheus.Counter
	sweepFailures  prometheus.Counter
	remindersSent  prometheus.Counter
	publishFailure prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Seat operations by kind and result.",
		}, []string{"operation", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of seat operations, lock wait included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		seats: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seats_total",
			Help:      "Seats moved by successful operations.",
		}, []string{"operation"}),
		sweptHolds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expired_holds_reclaimed_total",
			Help:      "Expired holds turned back into available seats by the sweeper.",
		}),
		sweepFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_failures_total",
			Help:      "Sweeper runs that returned an error.",
		}),
		remindersSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_sent_total",
			Help:      "Show reminders delivered.",
		}),
		publishFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "Booking confirmed events that could not be published.",
		}),
	}

	m.Registry.MustRegister(
		m.operations,
		m.duration,
		m.seats,
		m.sweptHolds,
		m.sweepFailures,
		m.remindersSent,
		m.publishFailure,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// ObserveOperation records one hold, release or confirm call.
func (m *Metrics) ObserveOperation(operation, result string, seconds float64, seats int) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, result).Inc()
	m.duration.WithLabelValues(operation).Observe(seconds)
	if result == ResultSuccess && seats > 0 {
		m.seats.WithLabelValues(operation).Add(float64(seats))
	}
}

func (m *Metrics) AddSweptHolds(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.sweptHolds.Add(float64(n))
}

func (m *Metrics) IncSweepFailure() {
	if m == nil {
		return
	}
	m.sweepFailures.Inc()
}

func (m *Metrics) IncReminderSent() {
	if m == nil {
		return
	}
	m.remindersSent.Inc()
}

func (m *Metrics) IncPublishFailure() {
	if m == nil {
		return
	}
	m.publishFailure.Inc()
}
