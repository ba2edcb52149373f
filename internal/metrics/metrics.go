// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks request duration in seconds
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "moodlens",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// RequestTotal tracks total number of requests
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "moodlens",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// DashboardDuration tracks end-to-end dashboard computation time
	DashboardDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "moodlens",
			Name:      "dashboard_compute_seconds",
			Help:      "Time spent computing dashboards",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 15},
		},
		[]string{"outcome"},
	)

	// DashboardEntries tracks how many entries each dashboard was computed over
	DashboardEntries = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "moodlens",
			Name:      "dashboard_entries",
			Help:      "Number of entries in a dashboard window",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	// AIRequests counts analysis provider calls by resulting status
	AIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "moodlens",
			Name:      "ai_requests_total",
			Help:      "Analysis provider calls by outcome",
		},
		[]string{"status"},
	)

	// CacheLookups counts cache reads by cache name and result
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "moodlens",
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by cache and result",
		},
		[]string{"cache", "result"},
	)

	// EntriesIngested counts accepted and rejected mood entries
	EntriesIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "moodlens",
			Name:      "entries_ingested_total",
			Help:      "Mood entries by ingestion result",
		},
		[]string{"result"},
	)

	// GoalUpdates counts goal tracker transitions by resulting status
	GoalUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "moodlens",
			Name:      "goal_updates_total",
			Help:      "Goal progress updates by resulting status",
		},
		[]string{"status"},
	)
)

// CacheHit records a cache hit for the named cache
func CacheHit(cache string) {
	CacheLookups.WithLabelValues(cache, "hit").Inc()
}

// CacheMiss records a cache miss for the named cache
func CacheMiss(cache string) {
	CacheLookups.WithLabelValues(cache, "miss").Inc()
}
