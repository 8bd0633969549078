package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "partsquote", Name: "api_requests_total", Help: "Number of API requests by method and status class."},
		[]string{"method", "status"},
	)
	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "partsquote", Name: "api_request_duration_seconds", Help: "API request latency.", Buckets: prometheus.DefBuckets},
		[]string{"method"},
	)
	SessionRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "partsquote", Name: "session_refreshes_total", Help: "Number of token refresh attempts by trigger and outcome."},
		[]string{"trigger", "outcome"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(APIRequests)
	reg.MustRegister(APIRequestDuration)
	reg.MustRegister(SessionRefreshes)
}
