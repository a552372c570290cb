// Package metricsink exposes an optional Prometheus endpoint with a
// per-service/action request counter, mirroring the teacher's
// internal/metrics + promhttp.Handler wiring (internal/cmd/run.go).
// No request path calls Observe, so the counter has no samples.
package metricsink

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nimbus_requests_total",
		Help: "Total number of dispatched requests per service/action/outcome.",
	}, []string{"service", "action", "outcome"})
)

func init() {
	prometheus.MustRegister(requests)
}

// Observe records one dispatched request. outcome is "ok" or "error".
func Observe(service, action, outcome string) {
	requests.WithLabelValues(service, action, outcome).Inc()
}

// Handler returns the /metrics HTTP handler for mounting on the metrics
// port.
func Handler() http.Handler {
	return promhttp.Handler()
}
