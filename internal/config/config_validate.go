// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that configuration values are usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateWAL(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("RATE_LIMIT must be >= 0, got %d", c.Server.RateLimit)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be >= 0, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateWAL() error {
	if !c.WAL.Enabled {
		return nil
	}
	if c.WAL.Path == "" {
		return fmt.Errorf("WAL_PATH is required when WAL_ENABLED=true")
	}
	if c.WAL.RetryInterval < time.Second {
		return fmt.Errorf("WAL_RETRY_INTERVAL must be at least 1s, got %v", c.WAL.RetryInterval)
	}
	if c.WAL.MaxRetries < 1 {
		return fmt.Errorf("WAL_MAX_RETRIES must be at least 1, got %d", c.WAL.MaxRetries)
	}
	if c.WAL.CompactInterval < time.Minute {
		return fmt.Errorf("WAL_COMPACT_INTERVAL must be at least 1m, got %v", c.WAL.CompactInterval)
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if !r.Enabled {
		return nil
	}
	if r.ModelDir == "" {
		return fmt.Errorf("RECOMMEND_MODEL_DIR is required when recommendations are enabled")
	}
	if r.TrainHour < 0 || r.TrainHour > 23 {
		return fmt.Errorf("RECOMMEND_TRAIN_HOUR must be between 0 and 23, got %d", r.TrainHour)
	}
	if r.TrainMinute < 0 || r.TrainMinute > 59 {
		return fmt.Errorf("RECOMMEND_TRAIN_MINUTE must be between 0 and 59, got %d", r.TrainMinute)
	}
	if r.MinOrdersForML < 0 {
		return fmt.Errorf("RECOMMEND_MIN_ORDERS must be >= 0, got %d", r.MinOrdersForML)
	}
	switch r.Solver {
	case "gaussian", "lu":
	default:
		return fmt.Errorf("RECOMMEND_SOLVER must be 'gaussian' or 'lu', got %q", r.Solver)
	}
	if r.ALS.Factors < 1 {
		return fmt.Errorf("RECOMMEND_ALS_FACTORS must be at least 1, got %d", r.ALS.Factors)
	}
	if r.ALS.Iterations < 1 {
		return fmt.Errorf("RECOMMEND_ALS_ITERATIONS must be at least 1, got %d", r.ALS.Iterations)
	}
	if r.ALS.Regularization <= 0 {
		return fmt.Errorf("RECOMMEND_ALS_REGULARIZATION must be positive, got %v", r.ALS.Regularization)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be 'json' or 'console', got %q", c.Logging.Format)
	}
	return nil
}
