// Package metrics provides Prometheus metrics for the Encore scoring service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// registry is private so /healthz serves only this service's metric families.
var registry = prometheus.NewRegistry()

var (
	// Score flow.
	scoreSubmissions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "encore",
		Name:      "score_submissions_total",
		Help:      "Score sets accepted by the store.",
	})
	scoreReplacements = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "encore",
		Name:      "score_replacements_total",
		Help:      "Submissions that replaced an existing score set with the same identity key.",
	})
	scoreRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "encore",
		Name:      "score_rejections_total",
		Help:      "Submissions rejected before reaching the store.",
	}, []string{"reason"})

	// Room lifecycle.
	roomsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "encore",
		Name:      "rooms_created_total",
		Help:      "Rooms created.",
	})
	roomsJoined = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "encore",
		Name:      "rooms_joined_total",
		Help:      "Successful room joins, including idempotent rejoins.",
	})
	roomJoinFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "encore",
		Name:      "room_join_failures_total",
		Help:      "Join attempts against unknown room codes.",
	})
	roomCodeCollisions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "encore",
		Name:      "room_code_collisions_total",
		Help:      "Room code collisions that forced a regeneration.",
	})
	activeWatchers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "encore",
		Name:      "active_watchers",
		Help:      "Room watch subscriptions currently running.",
	})

	// Sync channel triggers.
	syncNotifications = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "encore",
		Name:      "sync_notifications_total",
		Help:      "Change notifications delivered by the storage layer.",
	})
	syncPollTicks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "encore",
		Name:      "sync_poll_ticks_total",
		Help:      "Polling fallback ticks processed by watchers.",
	})
	syncDeliveries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "encore",
		Name:      "sync_deliveries_total",
		Help:      "Room change events actually delivered to subscribers.",
	})

	// WebSocket clients.
	websocketClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "encore",
		Name:      "websocket_clients",
		Help:      "Connected live-leaderboard WebSocket clients.",
	})

	// Storage backend.
	storageErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "encore",
		Name:      "storage_errors_total",
		Help:      "Errors from the key-value storage backend.",
	}, []string{"op"})

	// HTTP surface.
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "encore",
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})
	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "encore",
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds.",
		Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	}, []string{"endpoint", "method"})

	// Service-level gauges.
	totalRooms = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "encore",
		Name:      "rooms_total",
		Help:      "Rooms currently present in the storage namespace.",
	})

	// Process health.
	systemMemoryUsage = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "encore",
		Name:      "system_memory_bytes",
		Help:      "Heap bytes currently allocated.",
	})
	systemGoroutines = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "encore",
		Name:      "system_goroutines",
		Help:      "Goroutines currently running.",
	})
	systemGCPause = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "encore",
		Name:      "system_gc_pause_ms",
		Help:      "Average GC pause in milliseconds.",
	})
)

func init() {
	registry.MustRegister(
		scoreSubmissions,
		scoreReplacements,
		scoreRejections,
		roomsCreated,
		roomsJoined,
		roomJoinFailures,
		roomCodeCollisions,
		activeWatchers,
		syncNotifications,
		syncPollTicks,
		syncDeliveries,
		websocketClients,
		storageErrors,
		httpRequests,
		httpRequestDuration,
		totalRooms,
		systemMemoryUsage,
		systemGoroutines,
		systemGCPause,
	)
}

// GetRegistry exposes the private registry for the /healthz handler.
func GetRegistry() *prometheus.Registry { return registry }

// Score flow.
func RecordScoreSubmission()            { scoreSubmissions.Inc() }
func RecordScoreReplacement()           { scoreReplacements.Inc() }
func RecordScoreRejection(reason string) { scoreRejections.WithLabelValues(reason).Inc() }

// Room lifecycle.
func RecordRoomCreated()       { roomsCreated.Inc() }
func RecordRoomJoined()        { roomsJoined.Inc() }
func RecordRoomJoinFailure()   { roomJoinFailures.Inc() }
func RecordRoomCodeCollision() { roomCodeCollisions.Inc() }
func UpdateTotalRooms(n int)   { totalRooms.Set(float64(n)) }

// Sync channel.
func RecordSyncNotification() { syncNotifications.Inc() }
func RecordSyncPollTick()     { syncPollTicks.Inc() }
func RecordSyncDelivery()     { syncDeliveries.Inc() }
func WatcherStarted()         { activeWatchers.Inc() }
func WatcherStopped()         { activeWatchers.Dec() }

// WebSocket clients.
func WebsocketConnected()    { websocketClients.Inc() }
func WebsocketDisconnected() { websocketClients.Dec() }

// Storage backend.
func RecordStorageError(op string) { storageErrors.WithLabelValues(op).Inc() }

// HTTP surface.
func RecordHTTPRequest(endpoint, method, status string) {
	httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method string, ms float64) {
	httpRequestDuration.WithLabelValues(endpoint, method).Observe(ms)
}

// Process health.
func UpdateSystemMemoryUsage(bytes uint64)  { systemMemoryUsage.Set(float64(bytes)) }
func UpdateSystemGoroutineCount(n int)      { systemGoroutines.Set(float64(n)) }
func RecordSystemGCPauseTime(ms float64)    { systemGCPause.Set(ms) }
