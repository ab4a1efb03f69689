package metrics

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "potluck_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "potluck_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "route"})
)

// Backend metrics
var (
	BackendRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "potluck_backend_requests_total",
		Help: "Total number of requests sent to the entry backend",
	}, []string{"endpoint", "outcome"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "potluck_active_sessions",
		Help: "Number of browser sessions currently held",
	})
)

// Backend call outcomes
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeNetwork  = "network_error"
)

// RoutePattern returns the chi route pattern matched for r, so that paths
// with positional indexes collapse into one label. Unmatched requests are
// reported as "unmatched".
func RoutePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return "unmatched"
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return "unmatched"
}
