package observability

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Notification outcomes recorded by the delivery worker.
const (
	NotificationDelivered = "delivered"
	NotificationRetried   = "retried"
	NotificationDropped   = "dropped"
	NotificationSkipped   = "skipped"
)

// Metrics holds the Prometheus collectors for the service. All methods are
// safe on a nil receiver so tests can omit metrics entirely.
type Metrics struct {
	registry            *prometheus.Registry
	requests            *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	errors              *prometheus.CounterVec
	complaintsSubmitted *prometheus.CounterVec
	transitions         *prometheus.CounterVec
	notifications       *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "complaint_portal_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "complaint_portal_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "complaint_portal_http_errors_total",
			Help: "Error responses by route, method and error code.",
		}, []string{"route", "method", "code"}),
		complaintsSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "complaint_portal_complaints_submitted_total",
			Help: "Complaints accepted per domain.",
		}, []string{"domain"}),
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "complaint_portal_status_transitions_total",
			Help: "Committed complaint status transitions.",
		}, []string{"domain", "from", "to"}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "complaint_portal_notifications_total",
			Help: "Submitter notification outcomes.",
		}, []string{"outcome"}),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// RecordSubmission counts an accepted complaint.
func (m *Metrics) RecordSubmission(domain string) {
	if m == nil {
		return
	}
	m.complaintsSubmitted.WithLabelValues(domain).Inc()
}

// RecordTransition counts a committed status change.
func (m *Metrics) RecordTransition(domain, from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(domain, from, to).Inc()
}

// RecordNotification counts a notification outcome.
func (m *Metrics) RecordNotification(outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(outcome).Inc()
}

// Registry exposes the underlying registry for tests and exporters.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
