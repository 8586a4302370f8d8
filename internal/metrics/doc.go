// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto at
package init and are exposed by the API router at /metrics:

	curl http://localhost:8080/metrics

# Available Metrics

API Metrics:
  - api_requests_total: Requests (counter). Labels: method, endpoint, status
  - api_request_duration_seconds: Latency (histogram). Labels: method, endpoint
  - api_active_requests: In-flight requests (gauge)

The endpoint label is the chi route pattern (for example
/api/v1/recommendations/{userID}), never the raw path, so label cardinality
stays bounded.

Database Metrics:
  - duckdb_query_duration_seconds: Query time (histogram). Labels: operation, table
  - duckdb_query_errors_total: Failed queries (counter). Labels: operation, table

Training Metrics:
  - recommend_training_runs_total: Passes by outcome (counter). Labels: outcome
  - recommend_training_duration_seconds: Pass duration (histogram)
  - recommend_training_row_failures_total: Row solves that kept their
    previous vector (counter). Labels: side
  - recommend_model_users, recommend_model_items: Published model size (gauge)
  - recommend_model_state: 0=untrained 1=training 2=trained 3=stale (gauge)
  - recommend_model_last_trained_timestamp_seconds (gauge)
  - recommend_model_persist_errors_total: Model store failures (counter).
    Labels: operation

Recommendation Metrics:
  - recommend_requests_total: Requests by outcome (counter). Labels: outcome
  - recommend_request_duration_seconds: Scoring time (histogram)

WAL Metrics:
  - wal_writes_total, wal_confirms_total (counter)
  - wal_retries_total: Replay attempts (counter). Labels: result
  - wal_pending_entries: Unconfirmed entries at the last retry pass (gauge)

Circuit Breaker Metrics:
  - circuit_breaker_state: 0=closed 1=half-open 2=open (gauge). Labels: name
  - circuit_breaker_requests_total (counter). Labels: name, result

Cache Metrics:
  - cache_lookups_total (counter). Labels: cache, result

# Usage

Callers use the Record helpers rather than touching collectors directly:

	start := time.Now()
	rows, err := db.QueryContext(ctx, query)
	metrics.RecordDBQuery("SELECT", "interactions", time.Since(start), err)

# Example Alerts

	- alert: RecommendTrainingFailing
	  expr: increase(recommend_training_runs_total{outcome="error"}[1h]) > 0
	  for: 5m

	- alert: WALBacklog
	  expr: wal_pending_entries > 1000
	  for: 10m

# Testing

Tests read collector values with prometheus/testutil and compare deltas, as
collectors are process-global:

	before := testutil.ToFloat64(metrics.WALWrites)
	...
	if testutil.ToFloat64(metrics.WALWrites)-before != 1 { ... }
*/
package metrics
