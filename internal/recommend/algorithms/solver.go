// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package algorithms

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrZeroPivot is returned by SolveGaussian when elimination meets a zero
	// on the diagonal.
	ErrZeroPivot = errors.New("zero pivot")

	// ErrSingular is returned by SolveLU when no usable pivot exists in a column.
	ErrSingular = errors.New("matrix is singular")

	// ErrNonFinite is returned when the solution contains NaN or Inf.
	ErrNonFinite = errors.New("non-finite solution")

	// ErrDimension is returned when A and b disagree in size.
	ErrDimension = errors.New("dimension mismatch")
)

// Solver solves the square system a*x = b. Implementations must not modify
// a or b.
type Solver func(a [][]float64, b []float64) ([]float64, error)

// SolverByName returns the solver registered under name ("gaussian" or "lu").
func SolverByName(name string) (Solver, error) {
	switch name {
	case "", "gaussian":
		return SolveGaussian, nil
	case "lu":
		return SolveLU, nil
	default:
		return nil, fmt.Errorf("unknown solver %q", name)
	}
}

// SolveGaussian solves a*x = b by Gaussian elimination in natural row order
// with no pivoting. It is only suitable for the regularized normal equations
// built by ALS, where a = sum(v v^T) + lambda*I is symmetric positive
// definite and every leading pivot is positive. On other inputs it may
// return ErrZeroPivot or an inaccurate result; use SolveLU for those.
//
//nolint:gocritic // a, b follow standard linear algebra notation
func SolveGaussian(a [][]float64, b []float64) ([]float64, error) {
	n := len(b)
	m, rhs, err := augment(a, b)
	if err != nil {
		return nil, err
	}

	for k := 0; k < n; k++ {
		if m[k][k] == 0 {
			return nil, fmt.Errorf("%w at row %d", ErrZeroPivot, k)
		}
		for i := k + 1; i < n; i++ {
			factor := m[i][k] / m[k][k]
			for j := k; j < n; j++ {
				m[i][j] -= factor * m[k][j]
			}
			rhs[i] -= factor * rhs[k]
		}
	}

	return backSubstitute(m, rhs)
}

// SolveLU solves a*x = b by LU decomposition with partial pivoting.
//
//nolint:gocritic // a, b follow standard linear algebra notation
func SolveLU(a [][]float64, b []float64) ([]float64, error) {
	n := len(b)
	m, rhs, err := augment(a, b)
	if err != nil {
		return nil, err
	}

	for k := 0; k < n; k++ {
		p := k
		for i := k + 1; i < n; i++ {
			if math.Abs(m[i][k]) > math.Abs(m[p][k]) {
				p = i
			}
		}
		if m[p][k] == 0 {
			return nil, fmt.Errorf("%w: column %d", ErrSingular, k)
		}
		if p != k {
			m[p], m[k] = m[k], m[p]
			rhs[p], rhs[k] = rhs[k], rhs[p]
		}
		for i := k + 1; i < n; i++ {
			l := m[i][k] / m[k][k]
			m[i][k] = 0
			for j := k + 1; j < n; j++ {
				m[i][j] -= l * m[k][j]
			}
			rhs[i] -= l * rhs[k]
		}
	}

	return backSubstitute(m, rhs)
}

// augment copies a and b so the solvers can work in place.
func augment(a [][]float64, b []float64) ([][]float64, []float64, error) {
	n := len(b)
	if len(a) != n {
		return nil, nil, fmt.Errorf("%w: %d rows, %d values", ErrDimension, len(a), n)
	}
	m := make([][]float64, n)
	for i := range a {
		if len(a[i]) != n {
			return nil, nil, fmt.Errorf("%w: row %d has %d columns", ErrDimension, i, len(a[i]))
		}
		m[i] = make([]float64, n)
		copy(m[i], a[i])
	}
	rhs := make([]float64, n)
	copy(rhs, b)
	return m, rhs, nil
}

// backSubstitute solves the upper triangular system u*x = rhs.
func backSubstitute(u [][]float64, rhs []float64) ([]float64, error) {
	n := len(rhs)
	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := rhs[i]
		for j := i + 1; j < n; j++ {
			sum -= u[i][j] * x[j]
		}
		x[i] = sum / u[i][i]
		if math.IsNaN(x[i]) || math.IsInf(x[i], 0) {
			return nil, fmt.Errorf("%w at index %d", ErrNonFinite, i)
		}
	}
	return x, nil
}
