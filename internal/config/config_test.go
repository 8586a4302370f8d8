// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package config

import (
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"negative timeout", func(c *Config) { c.Server.Timeout = -time.Second }, true},
		{"empty db path", func(c *Config) { c.Database.Path = "" }, true},
		{"wal disabled skips wal checks", func(c *Config) { c.WAL.Enabled = false; c.WAL.Path = "" }, false},
		{"wal enabled without path", func(c *Config) { c.WAL.Path = "" }, true},
		{"wal retry too fast", func(c *Config) { c.WAL.RetryInterval = 10 * time.Millisecond }, true},
		{"recommend disabled skips checks", func(c *Config) { c.Recommend.Enabled = false; c.Recommend.Solver = "bogus" }, false},
		{"bad solver", func(c *Config) { c.Recommend.Solver = "qr" }, true},
		{"lu solver", func(c *Config) { c.Recommend.Solver = "lu" }, false},
		{"train hour out of range", func(c *Config) { c.Recommend.TrainHour = 24 }, true},
		{"train minute out of range", func(c *Config) { c.Recommend.TrainMinute = 60 }, true},
		{"zero factors", func(c *Config) { c.Recommend.ALS.Factors = 0 }, true},
		{"zero lambda", func(c *Config) { c.Recommend.ALS.Regularization = 0 }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
