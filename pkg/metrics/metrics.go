package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookx_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookx_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"service", "method", "path"},
	)

	// Chat metrics
	MessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookx_messages_sent_total",
			Help: "Messages persisted, by result",
		},
		[]string{"result"}, // "ok" or "error"
	)

	RealtimeEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookx_realtime_events_total",
			Help: "Change events published on the realtime bus",
		},
		[]string{"table"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookx_chat_active_sessions",
			Help: "Open chat websocket sessions",
		},
	)

	// Geosearch metrics
	GeocodeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookx_geocode_requests_total",
			Help: "Geocoding provider calls, by kind and result",
		},
		[]string{"kind", "result"},
	)

	GeocodeCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookx_geocode_cache_hits_total",
			Help: "Geocoding answers served from redis",
		},
		[]string{"kind"},
	)

	NearbyDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookx_nearby_dropped_total",
			Help: "Rows returned by the distance query that failed the haversine re-check",
		},
	)

	// Book request metrics
	BookRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookx_book_requests_total",
			Help: "Book request attempts, by result",
		},
		[]string{"result"},
	)

	NotificationsStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookx_notifications_stored_total",
			Help: "Notifications written by the queue consumer",
		},
	)
)
