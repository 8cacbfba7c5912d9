package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	liveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "csbwire",
			Subsystem: "server",
			Name:      "live_sessions",
			Help:      "Connection sessions currently being served.",
		},
	)
	sessionCloses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "csbwire",
			Subsystem: "server",
			Name:      "session_closes_total",
			Help:      "Session terminations by close reason.",
		},
		[]string{"reason"},
	)
	requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "csbwire",
			Subsystem: "server",
			Name:      "requests_total",
			Help:      "Dispatched requests by message type and outcome.",
		},
		[]string{"type", "outcome"},
	)
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "csbwire",
			Subsystem: "server",
			Name:      "request_duration_seconds",
			Help:      "Request dispatch duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"type"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "csbwire",
			Subsystem: "admin",
			Name:      "requests_total",
			Help:      "Total admin HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "csbwire",
			Subsystem: "admin",
			Name:      "request_duration_seconds",
			Help:      "Admin HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			liveSessions, sessionCloses, requests, requestDuration,
			httpRequests, httpDuration,
		)
	})
}

func RecordSessionStart() {
	RegisterMetrics()
	liveSessions.Inc()
}

func RecordSessionEnd(reason string) {
	RegisterMetrics()
	liveSessions.Dec()
	sessionCloses.WithLabelValues(reason).Inc()
}

func RecordRequest(msgType, outcome string, duration time.Duration) {
	RegisterMetrics()
	requests.WithLabelValues(msgType, outcome).Inc()
	requestDuration.WithLabelValues(msgType).Observe(duration.Seconds())
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}
