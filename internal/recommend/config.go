// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package recommend

import (
	"fmt"
)

// MinOrdersForML is the default number of ORDER interactions a user needs
// before ML recommendations are served.
const MinOrdersForML = 2

// Config configures the Coordinator.
type Config struct {
	// MinOrdersForML gates Recommend. Users below it get an empty result
	// and the caller falls back to a non-ML strategy.
	MinOrdersForML int `json:"min_orders_for_ml"`
}

// DefaultConfig returns the default coordinator configuration.
func DefaultConfig() Config {
	return Config{MinOrdersForML: MinOrdersForML}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.MinOrdersForML < 0 {
		return fmt.Errorf("min_orders_for_ml must be >= 0, got %d", c.MinOrdersForML)
	}
	return nil
}
