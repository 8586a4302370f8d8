// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

// Package wal provides a durable write-ahead log for tracked interactions,
// backed by BadgerDB. Interactions are written to the WAL before they are
// inserted into DuckDB and confirmed afterwards, so a crash or a database
// outage between the two never loses an order.
package wal

import (
	"time"

	"github.com/tomtom215/platewise/internal/config"
)

// Config holds WAL settings.
type Config struct {
	Enabled bool

	// Path is the BadgerDB directory.
	Path string

	// SyncWrites forces fsync after every write.
	SyncWrites bool

	// RetryInterval is the time between retry loop passes.
	RetryInterval time.Duration

	// MaxRetries is the number of failed inserts after which an entry is
	// dropped.
	MaxRetries int

	// RetryBackoff is the base of the exponential per-entry backoff.
	RetryBackoff time.Duration

	// CompactInterval is the time between compaction runs.
	CompactInterval time.Duration

	// EntryTTL is how long an unconfirmed entry is kept.
	EntryTTL time.Duration

	// BadgerDB tuning
	MemTableSize     int64
	ValueLogFileSize int64
	NumCompactors    int
	GCRatio          float64
	CloseTimeout     time.Duration
}

// DefaultConfig returns durable defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		Path:             "/data/wal",
		SyncWrites:       true,
		RetryInterval:    30 * time.Second,
		MaxRetries:       100,
		RetryBackoff:     5 * time.Second,
		CompactInterval:  1 * time.Hour,
		EntryTTL:         168 * time.Hour,
		MemTableSize:     16 * 1024 * 1024,
		ValueLogFileSize: 64 * 1024 * 1024,
		NumCompactors:    2,
		GCRatio:          0.5,
		CloseTimeout:     30 * time.Second,
	}
}

// FromSettings overlays the application WAL settings on DefaultConfig.
// Zero values keep the default.
func FromSettings(s config.WALConfig) Config {
	cfg := DefaultConfig()
	cfg.Enabled = s.Enabled
	cfg.SyncWrites = s.SyncWrites
	if s.Path != "" {
		cfg.Path = s.Path
	}
	if s.RetryInterval > 0 {
		cfg.RetryInterval = s.RetryInterval
	}
	if s.MaxRetries > 0 {
		cfg.MaxRetries = s.MaxRetries
	}
	if s.CompactInterval > 0 {
		cfg.CompactInterval = s.CompactInterval
	}
	if s.EntryTTL > 0 {
		cfg.EntryTTL = s.EntryTTL
	}
	return cfg
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.Path == "" {
		return &ConfigError{Field: "Path", Message: "WAL path is required"}
	}
	if c.RetryInterval < time.Second {
		return &ConfigError{Field: "RetryInterval", Message: "must be at least 1 second"}
	}
	if c.MaxRetries < 1 {
		return &ConfigError{Field: "MaxRetries", Message: "must be at least 1"}
	}
	if c.RetryBackoff < time.Second {
		return &ConfigError{Field: "RetryBackoff", Message: "must be at least 1 second"}
	}
	if c.CompactInterval < time.Minute {
		return &ConfigError{Field: "CompactInterval", Message: "must be at least 1 minute"}
	}
	if c.EntryTTL < time.Hour {
		return &ConfigError{Field: "EntryTTL", Message: "must be at least 1 hour"}
	}
	if c.MemTableSize < 1024*1024 {
		return &ConfigError{Field: "MemTableSize", Message: "must be at least 1MB"}
	}
	if c.ValueLogFileSize < 1024*1024 {
		return &ConfigError{Field: "ValueLogFileSize", Message: "must be at least 1MB"}
	}
	if c.NumCompactors < 2 {
		return &ConfigError{Field: "NumCompactors", Message: "must be at least 2 (BadgerDB requirement)"}
	}
	return nil
}

// ConfigError is a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "WAL config error: " + e.Field + ": " + e.Message
}
