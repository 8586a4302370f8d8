// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

/*
Package config loads Platewise configuration with Koanf v2.

# Sources

Lowest to highest priority:

 1. Built-in defaults (defaultConfig)
 2. YAML file: CONFIG_PATH, else ./config.yaml, ./config.yml,
    /etc/platewise/config.yaml
 3. Environment variables listed below

Load validates the merged result and returns the first problem found.

# Environment Variables

Server:
  - HTTP_HOST, HTTP_PORT (default 0.0.0.0:8080)
  - HTTP_TIMEOUT: read/write timeout (default 30s)
  - CORS_ORIGINS: comma-separated list (default *)
  - RATE_LIMIT: requests per minute per IP, 0 disables (default 300)

Logging:
  - LOG_LEVEL (trace, debug, info, warn, error), LOG_FORMAT (json, console),
    LOG_CALLER

Database:
  - DUCKDB_PATH (default /data/platewise.duckdb), DUCKDB_MAX_MEMORY,
    DUCKDB_THREADS
  - SEED_CATALOG: insert the default menu into an empty catalog (default true)

Write-ahead log:
  - WAL_ENABLED (default true), WAL_PATH, WAL_SYNC_WRITES
  - WAL_RETRY_INTERVAL, WAL_MAX_RETRIES, WAL_COMPACT_INTERVAL, WAL_ENTRY_TTL

Circuit breaker around interaction store reads:
  - BREAKER_MAX_REQUESTS, BREAKER_INTERVAL, BREAKER_TIMEOUT,
    BREAKER_FAILURE_THRESHOLD

Recommendations:
  - RECOMMEND_ENABLED, RECOMMEND_MODEL_DIR (default ml-models)
  - RECOMMEND_TRAIN_ON_STARTUP, RECOMMEND_TRAIN_HOUR, RECOMMEND_TRAIN_MINUTE
    (default 02:00 local)
  - RECOMMEND_MIN_ORDERS: orders before ML recommendations (default 2)
  - RECOMMEND_SOLVER: gaussian or lu
  - RECOMMEND_ALS_FACTORS (10), RECOMMEND_ALS_ITERATIONS (20),
    RECOMMEND_ALS_REGULARIZATION (0.01), RECOMMEND_ALS_WORKERS,
    RECOMMEND_ALS_SEED
*/
package config
