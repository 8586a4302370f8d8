// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package config

import (
	"time"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Database  DatabaseConfig  `koanf:"database"`
	WAL       WALConfig       `koanf:"wal"`
	Breaker   BreakerConfig   `koanf:"breaker"`
	Recommend RecommendConfig `koanf:"recommend"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	CORSOrigins []string      `koanf:"cors_origins"`

	// RateLimit is requests per minute per client IP. 0 disables limiting.
	RateLimit int `koanf:"rate_limit"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// DatabaseConfig holds DuckDB settings for the interaction store and catalog.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()

	// SeedCatalog inserts the default menu when the items table is empty.
	SeedCatalog bool `koanf:"seed_catalog"`
}

// WALConfig holds the BadgerDB write-ahead log settings. Tracked
// interactions are written here before they reach DuckDB.
type WALConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Path            string        `koanf:"path"`
	SyncWrites      bool          `koanf:"sync_writes"`
	RetryInterval   time.Duration `koanf:"retry_interval"`
	MaxRetries      int           `koanf:"max_retries"`
	CompactInterval time.Duration `koanf:"compact_interval"`
	EntryTTL        time.Duration `koanf:"entry_ttl"`
}

// BreakerConfig configures the circuit breaker around interaction store reads.
type BreakerConfig struct {
	MaxRequests      uint32        `koanf:"max_requests"`
	Interval         time.Duration `koanf:"interval"`
	Timeout          time.Duration `koanf:"timeout"`
	FailureThreshold uint32        `koanf:"failure_threshold"`
}

// RecommendConfig holds training coordinator settings.
type RecommendConfig struct {
	Enabled bool `koanf:"enabled"`

	// ModelDir holds user-factors.bin, item-factors.bin and mappings.bin.
	// Created on first save.
	ModelDir string `koanf:"model_dir"`

	// TrainOnStartup runs one pass as soon as the supervisor starts the
	// training service.
	TrainOnStartup bool `koanf:"train_on_startup"`

	// TrainHour and TrainMinute set the daily training time (local clock).
	// Default 02:00.
	TrainHour   int `koanf:"train_hour"`
	TrainMinute int `koanf:"train_minute"`

	// MinOrdersForML is the ORDER count a user needs before ML
	// recommendations are served. Default: 2
	MinOrdersForML int `koanf:"min_orders_for_ml"`

	// Solver is "gaussian" (no pivoting) or "lu" (partial pivoting).
	Solver string `koanf:"solver"`

	ALS ALSConfig `koanf:"als"`
}

// ALSConfig holds factorization parameters.
type ALSConfig struct {
	Factors        int     `koanf:"factors"`
	Iterations     int     `koanf:"iterations"`
	Regularization float64 `koanf:"regularization"`
	NumWorkers     int     `koanf:"num_workers"` // 0 = runtime.NumCPU()
	Seed           uint64  `koanf:"seed"`
}

// Load reads configuration from defaults, file, and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
