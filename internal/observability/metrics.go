package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	requestsTotal        *prometheus.CounterVec
	latencySeconds       *prometheus.HistogramVec
	errorsTotal          *prometheus.CounterVec
	chatConnections      prometheus.Counter
	chatMessages         *prometheus.CounterVec
	notificationsByState *prometheus.CounterVec
	missedSubmissions    prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors for the portal API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_requests_total",
			Help: "Total number of portal API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_latency_seconds",
			Help:    "Latency distribution for portal API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_errors_total",
			Help: "Total number of error responses returned by portal endpoints.",
		}, []string{"method", "route", "status"})

		chatConnections = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_chat_connections_total",
			Help: "Total number of websocket chat connections accepted.",
		})

		chatMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_chat_messages_sent_total",
			Help: "Total number of chat messages delivered, by sender side.",
		}, []string{"sender"})

		notificationsByState = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_notifications_total",
			Help: "Total number of outbox notifications processed, by outcome.",
		}, []string{"state"})

		missedSubmissions = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_missed_submissions_total",
			Help: "Total number of missed-deadline submissions recorded.",
		})

		prometheus.MustRegister(
			requestsTotal,
			latencySeconds,
			errorsTotal,
			chatConnections,
			chatMessages,
			notificationsByState,
			missedSubmissions,
		)
	})
}

// Requests exposes the counter for portal requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the latency histogram for portal requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the counter for portal error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// ChatConnectionsTotal exposes the websocket connection counter.
func ChatConnectionsTotal() prometheus.Counter {
	RegisterMetrics()
	return chatConnections
}

// ChatMessagesSent exposes the delivered chat message counter.
func ChatMessagesSent() *prometheus.CounterVec {
	RegisterMetrics()
	return chatMessages
}

// NotificationsProcessed exposes the outbox processing counter.
func NotificationsProcessed() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsByState
}

// MissedSubmissionsRecorded exposes the missed-deadline sentinel counter.
func MissedSubmissionsRecorded() prometheus.Counter {
	RegisterMetrics()
	return missedSubmissions
}
