// internal/utils/metrics.go
package utils

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// APIMetrics records HTTP and viewer-connection metrics.
type APIMetrics struct {
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	errors      *prometheus.CounterVec
	connections prometheus.Gauge
}

var (
	apiMetrics     *APIMetrics
	apiMetricsOnce sync.Once
)

// GetAPIMetrics returns the process-wide metrics, registering them with
// the default Prometheus registry on first use.
func GetAPIMetrics() *APIMetrics {
	apiMetricsOnce.Do(func() {
		apiMetrics = NewAPIMetrics(prometheus.DefaultRegisterer)
	})
	return apiMetrics
}

// NewAPIMetrics creates metrics registered with reg.
func NewAPIMetrics(reg prometheus.Registerer) *APIMetrics {
	am := &APIMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reflex_api_requests_total",
			Help: "Total number of API requests by route, method and status class",
		}, []string{"route", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reflex_api_request_duration_seconds",
			Help:    "API request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reflex_errors_total",
			Help: "Total number of errors by type and component",
		}, []string{"type", "component"}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reflex_viewer_connections",
			Help: "Number of open viewer websocket connections",
		}),
	}
	reg.MustRegister(am.requests, am.latency, am.errors, am.connections)
	return am
}

// RecordAPIRequest records one finished request. Unmatched routes are
// grouped under "unmatched".
func (am *APIMetrics) RecordAPIRequest(route, method string, statusCode int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	am.requests.WithLabelValues(route, method, strconv.Itoa(statusCode/100)+"xx").Inc()
	am.latency.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordError counts an error of errorType raised in component.
func (am *APIMetrics) RecordError(errorType, component string) {
	am.errors.WithLabelValues(errorType, component).Inc()
}

// SetConnections publishes the current viewer connection count.
func (am *APIMetrics) SetConnections(n int) {
	am.connections.Set(float64(n))
}
