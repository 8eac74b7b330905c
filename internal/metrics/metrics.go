package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
// Using promauto automatically registers metrics with the default registry

var (
	// ==================== HTTP METRICS ====================

	// HTTPRequestDuration tracks the duration of HTTP requests
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	// HTTPRequestsTotal counts total HTTP requests
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// HTTPRequestsInFlight tracks currently processing requests
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// ==================== ANALYTICS METRICS ====================

	// EventsRecordedTotal counts analytics events by kind
	EventsRecordedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_events_recorded_total",
			Help: "Total number of analytics events recorded",
		},
		[]string{"kind"},
	)

	// PersistFailuresTotal counts failed writes to the durable slot
	PersistFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analytics_persist_failures_total",
			Help: "Total number of failed analytics store writes",
		},
	)

	// ExternalReloadsTotal counts reloads triggered by another process
	// rewriting the store
	ExternalReloadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analytics_external_reloads_total",
			Help: "Total number of store reloads triggered by external changes",
		},
	)

	// StoreClearsTotal counts explicit clear operations
	StoreClearsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analytics_store_clears_total",
			Help: "Total number of times the analytics store was cleared",
		},
	)

	// StoredEventsGauge tracks the current size of the event list
	StoredEventsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "analytics_stored_events",
			Help: "Number of events currently held in the analytics store",
		},
	)

	// ==================== RATE LIMITING METRICS ====================

	// RateLimitedRequestsTotal counts rate-limited requests
	RateLimitedRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Total number of rate-limited requests",
		},
	)

	// RateLimitAllowedRequestsTotal counts allowed requests
	RateLimitAllowedRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limit_allowed_requests_total",
			Help: "Total number of requests allowed by rate limiter",
		},
	)
)

// RecordEvent increments the event counter for the given kind
func RecordEvent(kind string) {
	EventsRecordedTotal.WithLabelValues(kind).Inc()
}

// RecordPersistFailure increments the failed-save counter
func RecordPersistFailure() {
	PersistFailuresTotal.Inc()
}

// RecordExternalReload increments the external reload counter
func RecordExternalReload() {
	ExternalReloadsTotal.Inc()
}

// RecordStoreClear increments the clear counter
func RecordStoreClear() {
	StoreClearsTotal.Inc()
}

// SetStoredEvents updates the stored-events gauge
func SetStoredEvents(n int) {
	StoredEventsGauge.Set(float64(n))
}

// RecordRateLimited increments the rate-limited requests counter
func RecordRateLimited() {
	RateLimitedRequestsTotal.Inc()
}

// RecordRateLimitAllowed increments the allowed requests counter
func RecordRateLimitAllowed() {
	RateLimitAllowedRequestsTotal.Inc()
}
