package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"eventportal/internal/apperr"
)

var (
	// HTTPRequests counts handled requests by route template, method and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Name:      "http_requests_total",
		Help:      "HTTP requests handled.",
	}, []string{"route", "method", "status"})

	// HTTPDuration observes request latency by route template.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "portal",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	// Registrations counts registration attempts by outcome code.
	Registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Name:      "registrations_total",
		Help:      "Event registration attempts by outcome.",
	}, []string{"outcome"})

	// Logins counts login attempts by outcome code.
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Name:      "logins_total",
		Help:      "Login attempts by outcome.",
	}, []string{"outcome"})

	// RateLimited counts requests rejected by the rate limiter.
	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by rate limiting.",
	}, []string{"scope"})
)

// Outcome returns the label for an operation result: "ok" on success, the
// error code for classified errors, "error" otherwise.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if e, ok := apperr.As(err); ok {
		return e.Code
	}
	return "error"
}
