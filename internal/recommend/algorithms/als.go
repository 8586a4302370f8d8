// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package algorithms

import (
	"context"
	"math/rand/v2"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/platewise/internal/recommend"
)

// ALSConfig contains configuration for the ALS algorithm.
type ALSConfig struct {
	// NumFactors is the dimension K of the latent factor vectors.
	NumFactors int

	// NumIterations is the fixed number of alternating passes. There is no
	// convergence check.
	NumIterations int

	// Regularization is lambda, added to the diagonal of every normal
	// equation. It must be positive for SolveGaussian to be safe.
	Regularization float64

	// NumWorkers is the number of goroutines solving rows in parallel.
	// If <= 0, defaults to 4.
	NumWorkers int

	// Seed drives the uniform random initialization. Equal seeds on equal
	// input give identical factors.
	Seed uint64

	// Solver solves each K x K system. Nil means SolveGaussian.
	Solver Solver
}

// DefaultALSConfig returns default ALS configuration.
func DefaultALSConfig() ALSConfig {
	return ALSConfig{
		NumFactors:     10,
		NumIterations:  20,
		Regularization: 0.01,
		NumWorkers:     4,
		Seed:           42,
		Solver:         SolveGaussian,
	}
}

// ALS factorizes an explicit rating matrix with Alternating Least Squares.
//
// Only observed (nonzero) cells contribute. Each iteration first solves every
// user row against the item factors of the previous iteration, then every
// item row against the freshly solved user factors:
//
//	x_u = (sum_{i in obs(u)} y_i y_i^T + lambda*I)^-1 * sum_{i in obs(u)} r_ui y_i
//
// A row whose solve fails keeps its vector from the previous iteration. The
// failure is counted in the PassReport and training carries on.
type ALS struct {
	config ALSConfig
	logger zerolog.Logger
}

// NewALS creates a new ALS algorithm with the given configuration.
func NewALS(cfg ALSConfig, logger zerolog.Logger) *ALS {
	if cfg.NumFactors <= 0 {
		cfg.NumFactors = 10
	}
	if cfg.NumIterations <= 0 {
		cfg.NumIterations = 20
	}
	if cfg.Regularization <= 0 {
		cfg.Regularization = 0.01
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 4
	}
	if cfg.Solver == nil {
		cfg.Solver = SolveGaussian
	}

	return &ALS{
		config: cfg,
		logger: logger.With().Str("algorithm", "als").Logger(),
	}
}

// Config returns the effective configuration after defaults.
func (a *ALS) Config() ALSConfig {
	return a.config
}

// observation is one nonzero cell seen from a row.
type observation struct {
	idx    int
	rating float64
}

// Factorize trains fresh factor matrices for ratings. The returned matrices
// are newly allocated and not referenced again by ALS.
//
//nolint:gocritic // rangeValCopy is acceptable for clarity
func (a *ALS) Factorize(ctx context.Context, ratings *recommend.RatingMatrix) (*recommend.FactorMatrices, *recommend.PassReport, error) {
	if ContextCancelled(ctx) {
		return nil, nil, ctx.Err()
	}

	numUsers, numItems := ratings.Rows(), ratings.Cols()
	k := a.config.NumFactors

	byUser := make([][]observation, numUsers)
	byItem := make([][]observation, numItems)
	for u := 0; u < numUsers; u++ {
		for i := 0; i < numItems; i++ {
			if r := ratings.At(u, i); r != 0 {
				byUser[u] = append(byUser[u], observation{idx: i, rating: r})
				byItem[i] = append(byItem[i], observation{idx: u, rating: r})
			}
		}
	}

	rng := rand.New(rand.NewPCG(a.config.Seed, a.config.Seed^0x9e3779b97f4a7c15))
	factors := &recommend.FactorMatrices{
		User: randomMatrix(rng, numUsers, k),
		Item: randomMatrix(rng, numItems, k),
		K:    k,
	}

	report := &recommend.PassReport{}
	for iter := 0; iter < a.config.NumIterations; iter++ {
		if ContextCancelled(ctx) {
			return nil, nil, ctx.Err()
		}

		failed, err := a.solveRows(ctx, "user", iter, factors.User, factors.Item, byUser)
		if err != nil {
			return nil, nil, err
		}
		report.UserSolves += numUsers
		report.UserFailures += failed

		failed, err = a.solveRows(ctx, "item", iter, factors.Item, factors.User, byItem)
		if err != nil {
			return nil, nil, err
		}
		report.ItemSolves += numItems
		report.ItemFailures += failed

		report.Iterations++
	}

	report.RMSE = RMSE(ratings, factors)
	a.logger.Debug().
		Int("users", numUsers).
		Int("items", numItems).
		Float64("rmse", report.RMSE).
		Msg("ALS factorization complete")

	if report.Failures() > 0 {
		a.logger.Warn().
			Int("user_failures", report.UserFailures).
			Int("item_failures", report.ItemFailures).
			Int("iterations", report.Iterations).
			Msg("ALS row solves failed; affected rows kept their previous vectors")
	}

	return factors, report, nil
}

// solveRows updates every row of target in place from the fixed matrix.
// Rows are split into contiguous chunks, one goroutine each, so no two
// goroutines write the same row. It returns the number of failed solves.
func (a *ALS) solveRows(ctx context.Context, side string, iter int, target, fixed [][]float64, obs [][]observation) (int, error) {
	n := len(target)
	if n == 0 {
		return 0, nil
	}
	workers := a.config.NumWorkers
	chunkSize := (n + workers - 1) / workers

	var failures atomic.Int64
	eg, _ := errgroup.WithContext(ctx)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		eg.Go(func() error {
			for row := start; row < end; row++ {
				x, err := a.solveRow(fixed, obs[row])
				if err != nil {
					failures.Add(1)
					a.logger.Debug().
						Err(err).
						Str("side", side).
						Int("row", row).
						Int("iteration", iter).
						Msg("row solve failed")
					continue
				}
				target[row] = x
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return 0, err
	}
	return int(failures.Load()), nil
}

// solveRow builds and solves the regularized normal equation for one row.
//
//nolint:gocritic // A follows standard linear algebra notation
func (a *ALS) solveRow(fixed [][]float64, obs []observation) ([]float64, error) {
	k := a.config.NumFactors

	A := make([][]float64, k)
	for f := range A {
		A[f] = make([]float64, k)
		A[f][f] = a.config.Regularization
	}
	b := make([]float64, k)

	for _, o := range obs {
		v := fixed[o.idx]
		for f1 := 0; f1 < k; f1++ {
			for f2 := f1; f2 < k; f2++ {
				delta := v[f1] * v[f2]
				A[f1][f2] += delta
				if f1 != f2 {
					A[f2][f1] += delta
				}
			}
			b[f1] += o.rating * v[f1]
		}
	}

	return a.config.Solver(A, b)
}

func randomMatrix(rng *rand.Rand, rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for r := range m {
		m[r] = make([]float64, cols)
		for c := range m[r] {
			m[r][c] = rng.Float64()
		}
	}
	return m
}

// Ensure interface compliance.
var _ recommend.Factorizer = (*ALS)(nil)
