// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

// Package algorithms implements the matrix factorization behind Platewise
// recommendations.
//
// ALS implements recommend.Factorizer. It is stateless between calls: each
// Factorize allocates new factor matrices and hands ownership to the caller,
// so a single ALS value may be shared by concurrent callers. Serializing
// training passes is the coordinator's job.
//
// The linear solvers are exported so that a deployment can pick between
// SolveGaussian (no pivoting, only for regularized normal equations) and
// SolveLU (partial pivoting).
package algorithms

import (
	"context"
	"math"

	"github.com/tomtom215/platewise/internal/recommend"
)

// RMSE returns the root mean squared error of factors against the observed
// (nonzero) cells of ratings. It returns 0 when nothing is observed.
func RMSE(ratings *recommend.RatingMatrix, factors *recommend.FactorMatrices) float64 {
	var sum float64
	var n int
	for u := 0; u < ratings.Rows(); u++ {
		for i := 0; i < ratings.Cols(); i++ {
			r := ratings.At(u, i)
			if r == 0 {
				continue
			}
			var pred float64
			for f := range factors.User[u] {
				pred += factors.User[u][f] * factors.Item[i][f]
			}
			sum += (r - pred) * (r - pred)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(n))
}

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
