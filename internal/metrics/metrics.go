// Package metrics provides Prometheus metrics for the arena service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "arena"

// Metrics holds all Prometheus collectors for the service
type Metrics struct {
	registry *prometheus.Registry

	// Matchmaking
	QueueJoins  prometheus.Counter
	QueuePairs  prometheus.Counter
	QueuePrunes prometheus.Counter

	// Sessions
	SessionsCreated   prometheus.Counter
	SessionsCancelled prometheus.Counter
	ResultsSubmitted  prometheus.Counter
	PointsGranted     prometheus.Counter

	// Leaderboard
	RebuildDuration prometheus.Histogram

	// HTTP
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates a Metrics instance backed by its own registry so test instances
// do not collide on the default registerer
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		QueueJoins: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queue_joins_total",
			Help:      "Number of matchmaking queue joins",
		}),
		QueuePairs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queue_pairs_total",
			Help:      "Number of matched pairs",
		}),
		QueuePrunes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queue_prunes_total",
			Help:      "Number of stale queue entries pruned",
		}),
		SessionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Number of sessions created",
		}),
		SessionsCancelled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_cancelled_total",
			Help:      "Number of sessions cancelled",
		}),
		ResultsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_submitted_total",
			Help:      "Number of match results accepted",
		}),
		PointsGranted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_granted_total",
			Help:      "Total leaderboard points granted by the reward engine",
		}),
		RebuildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "leaderboard_rebuild_seconds",
			Help:      "Duration of leaderboard index rebuilds",
			Buckets:   prometheus.DefBuckets,
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, path and status",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and path",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// Handler returns the /metrics scrape handler for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one served request
func (m *Metrics) ObserveHTTP(method, path string, status int, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
