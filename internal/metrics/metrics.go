// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - DuckDB interaction store and catalog queries
// - API endpoint latency and throughput
// - ALS training passes and the published model
// - Recommendation serving outcomes
// - BadgerDB write-ahead log
// - Circuit breaker state
// - In-process caches

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of in-flight API requests",
		},
	)

	// Training Metrics
	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_training_duration_seconds",
			Help:    "Duration of ALS training passes in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
	)

	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_training_runs_total",
			Help: "Training passes by outcome",
		},
		[]string{"outcome"}, // success, no_data, error
	)

	TrainingRowFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_training_row_failures_total",
			Help: "Row solves that failed and kept their previous factor vector",
		},
		[]string{"side"}, // user, item
	)

	ModelUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_model_users",
			Help: "Users in the published model",
		},
	)

	ModelItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_model_items",
			Help: "Items in the published model",
		},
	)

	ModelState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_model_state",
			Help: "Coordinator state: 0=untrained 1=training 2=trained 3=stale",
		},
	)

	ModelLastTrained = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_model_last_trained_timestamp_seconds",
			Help: "Unix time of the last successful training pass",
		},
	)

	ModelPersistErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_model_persist_errors_total",
			Help: "Model store failures by operation",
		},
		[]string{"operation"}, // save, load
	)

	// Recommendation Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Recommendation requests by outcome",
		},
		[]string{"outcome"}, // ml, insufficient_data, unknown_user, no_model
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_request_duration_seconds",
			Help:    "Duration of recommendation scoring in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// WAL Metrics
	WALWrites = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wal_writes_total",
			Help: "Interactions written to the WAL",
		},
	)

	WALConfirms = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wal_confirms_total",
			Help: "WAL entries confirmed after reaching DuckDB",
		},
	)

	WALRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wal_retries_total",
			Help: "WAL replay attempts by result",
		},
		[]string{"result"}, // success, failed, dropped
	)

	WALPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wal_pending_entries",
			Help: "Unconfirmed WAL entries seen by the last retry pass",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state: 0=closed 1=half-open 2=open",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Requests through a circuit breaker by result",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	// Cache Metrics
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by cache and result",
		},
		[]string{"cache", "result"}, // hit, miss
	)
)

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordTraining records the outcome of one training pass. users, items and
// the failure counts are ignored unless outcome is "success".
func RecordTraining(outcome string, duration time.Duration, users, items, userFailures, itemFailures int) {
	TrainingRuns.WithLabelValues(outcome).Inc()
	TrainingDuration.Observe(duration.Seconds())
	if outcome != "success" {
		return
	}
	ModelUsers.Set(float64(users))
	ModelItems.Set(float64(items))
	ModelLastTrained.Set(float64(time.Now().Unix()))
	if userFailures > 0 {
		TrainingRowFailures.WithLabelValues("user").Add(float64(userFailures))
	}
	if itemFailures > 0 {
		TrainingRowFailures.WithLabelValues("item").Add(float64(itemFailures))
	}
}

// RecordRecommendation records a recommendation request outcome.
func RecordRecommendation(outcome string, duration time.Duration) {
	RecommendRequests.WithLabelValues(outcome).Inc()
	RecommendDuration.Observe(duration.Seconds())
}

// RecordCacheLookup records a hit or miss on the named cache.
func RecordCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(cache, result).Inc()
}
