package middleware

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics returns middleware that records request counts and latencies on
// reg. It registers its collectors once per call.
func Metrics(reg prometheus.Registerer) func(http.Handler) http.Handler {
	factory := promauto.With(reg)

	requests := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pestilab_http_requests_total",
			Help: "HTTP requests by method and status code.",
		},
		[]string{"method", "code"},
	)
	duration := factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pestilab_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	return func(next http.Handler) http.Handler {
		return promhttp.InstrumentHandlerDuration(
			duration,
			promhttp.InstrumentHandlerCounter(requests, next),
		)
	}
}
