package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RidesCreatedTotal  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "dispatch", Name: "rides_created_total", Help: "Total rides created"})
	RidesAcceptedTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "dispatch", Name: "rides_accepted_total", Help: "Total rides accepted by a driver"})

	// Conflicts are a normal outcome of the accept race, not faults.
	AcceptConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "dispatch", Name: "accept_conflicts_total", Help: "Accept attempts that lost the race or targeted a missing ride"})

	SubscribersConnected = promauto.NewGauge(prometheus.GaugeOpts{Namespace: "dispatch", Name: "ws_subscribers_connected", Help: "Currently connected WebSocket subscribers"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dispatch", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dispatch",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
