// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/platewise/config.yaml",
	"/etc/platewise/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			CORSOrigins: []string{"*"},
			RateLimit:   300,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Database: DatabaseConfig{
			Path:        "/data/platewise.duckdb",
			MaxMemory:   "1GB",
			SeedCatalog: true,
		},
		WAL: WALConfig{
			Enabled:         true,
			Path:            "/data/wal",
			SyncWrites:      true,
			RetryInterval:   30 * time.Second,
			MaxRetries:      100,
			CompactInterval: time.Hour,
			EntryTTL:        168 * time.Hour,
		},
		Breaker: BreakerConfig{
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
		},
		Recommend: RecommendConfig{
			Enabled:        true,
			ModelDir:       "ml-models",
			TrainOnStartup: false,
			TrainHour:      2,
			TrainMinute:    0,
			MinOrdersForML: 2,
			Solver:         "gaussian",
			ALS: ALSConfig{
				Factors:        10,
				Iterations:     20,
				Regularization: 0.01,
				NumWorkers:     0,
				Seed:           42,
			},
		},
	}
}

// LoadWithKoanf layers defaults, the optional YAML file, and environment
// variables, then validates the result.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields turns comma-separated env values into string slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to config keys.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	"http_port":         "server.port",
	"http_host":         "server.host",
	"http_timeout":      "server.timeout",
	"cors_origins":      "server.cors_origins",
	"rate_limit":        "server.rate_limit",
	"log_level":         "logging.level",
	"log_format":        "logging.format",
	"log_caller":        "logging.caller",
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"seed_catalog":      "database.seed_catalog",

	"wal_enabled":          "wal.enabled",
	"wal_path":             "wal.path",
	"wal_sync_writes":      "wal.sync_writes",
	"wal_retry_interval":   "wal.retry_interval",
	"wal_max_retries":      "wal.max_retries",
	"wal_compact_interval": "wal.compact_interval",
	"wal_entry_ttl":        "wal.entry_ttl",

	"breaker_max_requests":      "breaker.max_requests",
	"breaker_interval":          "breaker.interval",
	"breaker_timeout":           "breaker.timeout",
	"breaker_failure_threshold": "breaker.failure_threshold",

	"recommend_enabled":            "recommend.enabled",
	"recommend_model_dir":          "recommend.model_dir",
	"recommend_train_on_startup":   "recommend.train_on_startup",
	"recommend_train_hour":         "recommend.train_hour",
	"recommend_train_minute":       "recommend.train_minute",
	"recommend_min_orders":         "recommend.min_orders_for_ml",
	"recommend_solver":             "recommend.solver",
	"recommend_als_factors":        "recommend.als.factors",
	"recommend_als_iterations":     "recommend.als.iterations",
	"recommend_als_regularization": "recommend.als.regularization",
	"recommend_als_workers":        "recommend.als.num_workers",
	"recommend_als_seed":           "recommend.als.seed",
}

// envTransformFunc maps environment variable names to config keys:
//
//	HTTP_PORT            -> server.port
//	RECOMMEND_MODEL_DIR  -> recommend.model_dir
//	RECOMMEND_ALS_SEED   -> recommend.als.seed
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
