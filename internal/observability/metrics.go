package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the service's prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry            *prometheus.Registry
	requestCount        *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	errorCount          *prometheus.CounterVec
	complaintsSubmitted *prometheus.CounterVec
	statusTransitions   *prometheus.CounterVec
	notifications       *prometheus.CounterVec
	persistenceFailures *prometheus.CounterVec
	scheduledTasks      *prometheus.CounterVec
}

// NewMetrics registers collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "complaints_http_requests_total",
			Help: "HTTP requests by route, method and status",
		}, []string{"path", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "complaints_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errorCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "complaints_http_errors_total",
			Help: "HTTP error responses by domain error code",
		}, []string{"path", "method", "code"}),
		complaintsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "complaints_submitted_total",
			Help: "Complaints submitted by category",
		}, []string{"category"}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "complaints_status_transitions_total",
			Help: "Status transitions by source and target status",
		}, []string{"from", "to"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "complaints_notifications_dispatched_total",
			Help: "Notifications dispatched by type",
		}, []string{"type"}),
		persistenceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "complaints_persistence_failures_total",
			Help: "Blob store failures by operation",
		}, []string{"operation"}),
		scheduledTasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "complaints_scheduled_tasks_total",
			Help: "Deferred tasks by outcome",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		m.requestCount,
		m.requestDuration,
		m.errorCount,
		m.complaintsSubmitted,
		m.statusTransitions,
		m.notifications,
		m.persistenceFailures,
		m.scheduledTasks,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(path, method, code).Inc()
}

// RecordSubmission counts a new complaint.
func (m *Metrics) RecordSubmission(category string) {
	if m == nil {
		return
	}
	m.complaintsSubmitted.WithLabelValues(category).Inc()
}

// RecordTransition counts a status change.
func (m *Metrics) RecordTransition(from, to string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(from, to).Inc()
}

// RecordNotification counts a dispatched notification.
func (m *Metrics) RecordNotification(kind string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind).Inc()
}

// RecordPersistenceFailure counts a failed blob read or write.
func (m *Metrics) RecordPersistenceFailure(op string) {
	if m == nil {
		return
	}
	m.persistenceFailures.WithLabelValues(op).Inc()
}

// RecordScheduledTask counts a deferred task outcome (fired, cancelled, skipped).
func (m *Metrics) RecordScheduledTask(outcome string) {
	if m == nil {
		return
	}
	m.scheduledTasks.WithLabelValues(outcome).Inc()
}
