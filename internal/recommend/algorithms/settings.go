// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package algorithms

import (
	"fmt"

	"github.com/tomtom215/platewise/internal/config"
)

// ConfigFromSettings maps the recommend section of the application config
// onto ALSConfig. Zero values fall back to the ALS defaults in NewALS.
func ConfigFromSettings(s *config.RecommendConfig) (ALSConfig, error) {
	solver, err := SolverByName(s.Solver)
	if err != nil {
		return ALSConfig{}, fmt.Errorf("recommend.solver: %w", err)
	}
	return ALSConfig{
		NumFactors:     s.ALS.Factors,
		NumIterations:  s.ALS.Iterations,
		Regularization: s.ALS.Regularization,
		NumWorkers:     s.ALS.NumWorkers,
		Seed:           s.ALS.Seed,
		Solver:         solver,
	}, nil
}
