package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	DashboardRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hackathon", Name: "dashboard_requests_total", Help: "Dashboard operations by resource type, verb and response code."},
		[]string{"type", "verb", "code"},
	)
	NotificationsSent = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "hackathon", Name: "notifications_sent_total", Help: "Transactional emails handed to the mail provider."},
	)
	NotificationsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "hackathon", Name: "notifications_failed_total", Help: "Transactional emails the mail provider rejected."},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hackathon", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hackathon", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(DashboardRequests)
	reg.MustRegister(NotificationsSent)
	reg.MustRegister(NotificationsFailed)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
