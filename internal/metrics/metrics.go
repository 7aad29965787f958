package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

var (
	// API request metrics
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dfp_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dfp_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Application workflow metrics
	applicationsSubmittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dfp_applications_submitted_total",
			Help: "Total number of financing applications submitted",
		},
	)

	decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dfp_decisions_total",
			Help: "Total number of approver decisions by action",
		},
		[]string{"action"},
	)

	notificationsSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dfp_notifications_sent_total",
			Help: "Total number of notifications dispatched by type",
		},
		[]string{"type"},
	)

	applicationsByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dfp_applications_by_status",
			Help: "Current number of applications in each status",
		},
		[]string{"status"},
	)

	// Database connection pool metrics
	databaseConnectionsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dfp_database_connections_open",
			Help: "Number of open database connections",
		},
	)

	databaseConnectionsInUse = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dfp_database_connections_in_use",
			Help: "Number of database connections currently in use",
		},
	)

	databaseConnectionsIdle = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dfp_database_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	// WebSocket metrics
	websocketConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dfp_websocket_connections_active",
			Help: "Number of active WebSocket connections",
		},
	)
)

var registry = prometheus.NewRegistry()

func init() {
	registry.MustRegister(
		apiRequestsTotal,
		apiRequestDuration,
		applicationsSubmittedTotal,
		decisionsTotal,
		notificationsSentTotal,
		applicationsByStatus,
		databaseConnectionsOpen,
		databaseConnectionsInUse,
		databaseConnectionsIdle,
		websocketConnectionsActive,
	)

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// RecordAPIRequest records one handled HTTP request.
func RecordAPIRequest(method, path string, status int, duration float64) {
	apiRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	apiRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordApplicationSubmitted counts a successful application submission.
func RecordApplicationSubmitted() {
	applicationsSubmittedTotal.Inc()
}

// RecordDecision counts an approver decision (approve, reject or return).
func RecordDecision(action string) {
	decisionsTotal.WithLabelValues(action).Inc()
}

// RecordNotificationSent counts a dispatched notification by type.
func RecordNotificationSent(notificationType string) {
	notificationsSentTotal.WithLabelValues(notificationType).Inc()
}

// UpdateApplicationsByStatus refreshes the per-status application gauge.
func UpdateApplicationsByStatus(counts map[string]int64) {
	for status, count := range counts {
		applicationsByStatus.WithLabelValues(status).Set(float64(count))
	}
}

// UpdateDatabaseConnections refreshes the connection pool gauges.
func UpdateDatabaseConnections(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	stats := sqlDB.Stats()
	databaseConnectionsOpen.Set(float64(stats.OpenConnections))
	databaseConnectionsInUse.Set(float64(stats.InUse))
	databaseConnectionsIdle.Set(float64(stats.Idle))
	return nil
}

// WebSocketConnected increments the active WebSocket connection gauge.
func WebSocketConnected() {
	websocketConnectionsActive.Inc()
}

// WebSocketDisconnected decrements the active WebSocket connection gauge.
func WebSocketDisconnected() {
	websocketConnectionsActive.Dec()
}

// Handler returns the HTTP handler exposing the metrics endpoint.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
