package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	BookingsCreated  *prometheus.CounterVec
	Transitions      *prometheus.CounterVec
	PassUnits        prometheus.Counter
	ReorderDuration  prometheus.Histogram
	ErrorsCount      *prometheus.CounterVec
	RequestDurations *prometheus.HistogramVec
}

// NewMetrics registers the service metrics on reg. Passing a fresh
// prometheus.NewRegistry() keeps tests from colliding on the default registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BookingsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "The total number of bookings created",
		}, []string{"purpose"}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Booking status transitions by target status",
		}, []string{"to"}),
		PassUnits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pass_units_consumed_total",
			Help:      "The total number of count-based pass units consumed",
		}),
		ReorderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reorder_duration_seconds",
			Help:      "Time taken to renumber booking sequence numbers",
			Buckets:   prometheus.DefBuckets,
		}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation", "kind"}),
		RequestDurations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}
