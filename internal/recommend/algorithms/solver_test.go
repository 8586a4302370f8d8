// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package algorithms

import (
	"errors"
	"math"
	"testing"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestSolvers(t *testing.T) {
	tests := []struct {
		name    string
		a       [][]float64
		b       []float64
		want    []float64
		wantErr map[string]error // per solver name; nil entry means success
	}{
		{
			name: "identity",
			a:    [][]float64{{1, 0}, {0, 1}},
			b:    []float64{3, -2},
			want: []float64{3, -2},
		},
		{
			name: "symmetric positive definite",
			a:    [][]float64{{4, 1}, {1, 3}},
			b:    []float64{1, 2},
			want: []float64{1.0 / 11, 7.0 / 11},
		},
		{
			name: "regularized zero system",
			a:    [][]float64{{0.01, 0, 0}, {0, 0.01, 0}, {0, 0, 0.01}},
			b:    []float64{0, 0, 0},
			want: []float64{0, 0, 0},
		},
		{
			name:    "zero leading pivot needs row swap",
			a:       [][]float64{{0, 1}, {1, 0}},
			b:       []float64{2, 5},
			want:    []float64{5, 2},
			wantErr: map[string]error{"gaussian": ErrZeroPivot},
		},
		{
			name:    "singular",
			a:       [][]float64{{1, 2}, {2, 4}},
			b:       []float64{1, 1},
			wantErr: map[string]error{"gaussian": ErrZeroPivot, "lu": ErrSingular},
		},
		{
			name:    "dimension mismatch",
			a:       [][]float64{{1, 0}, {0, 1}},
			b:       []float64{1, 2, 3},
			wantErr: map[string]error{"gaussian": ErrDimension, "lu": ErrDimension},
		},
	}

	solvers := map[string]Solver{"gaussian": SolveGaussian, "lu": SolveLU}

	for _, tt := range tests {
		for name, solve := range solvers {
			t.Run(tt.name+"/"+name, func(t *testing.T) {
				x, err := solve(tt.a, tt.b)
				if wantErr := tt.wantErr[name]; wantErr != nil {
					if !errors.Is(err, wantErr) {
						t.Fatalf("err = %v, want %v", err, wantErr)
					}
					return
				}
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				for i := range tt.want {
					if !approxEqual(x[i], tt.want[i], 1e-12) {
						t.Errorf("x[%d] = %v, want %v", i, x[i], tt.want[i])
					}
				}
			})
		}
	}
}

func TestSolvers_DoNotMutateInputs(t *testing.T) {
	for name, solve := range map[string]Solver{"gaussian": SolveGaussian, "lu": SolveLU} {
		t.Run(name, func(t *testing.T) {
			a := [][]float64{{2, 1, 0}, {1, 3, 1}, {0, 1, 4}}
			b := []float64{1, 2, 3}

			if _, err := solve(a, b); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			wantA := [][]float64{{2, 1, 0}, {1, 3, 1}, {0, 1, 4}}
			for i := range a {
				for j := range a[i] {
					if a[i][j] != wantA[i][j] {
						t.Fatalf("a[%d][%d] modified: %v", i, j, a[i][j])
					}
				}
			}
			if b[0] != 1 || b[1] != 2 || b[2] != 3 {
				t.Errorf("b modified: %v", b)
			}
		})
	}
}

func TestSolvers_AgreeOnNormalEquations(t *testing.T) {
	// sum of outer products plus lambda*I, as built by ALS
	vecs := [][]float64{{0.3, 0.9, 0.1}, {0.5, 0.2, 0.7}, {0.8, 0.4, 0.6}}
	a := make([][]float64, 3)
	for i := range a {
		a[i] = make([]float64, 3)
		a[i][i] = 0.01
	}
	for _, v := range vecs {
		for i := range v {
			for j := range v {
				a[i][j] += v[i] * v[j]
			}
		}
	}
	b := []float64{5, 3, 1}

	g, err := SolveGaussian(a, b)
	if err != nil {
		t.Fatalf("SolveGaussian: %v", err)
	}
	l, err := SolveLU(a, b)
	if err != nil {
		t.Fatalf("SolveLU: %v", err)
	}
	for i := range g {
		if !approxEqual(g[i], l[i], 1e-9) {
			t.Errorf("x[%d]: gaussian %v, lu %v", i, g[i], l[i])
		}
	}
}

func TestSolverByName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{name: "", wantErr: false},
		{name: "gaussian", wantErr: false},
		{name: "lu", wantErr: false},
		{name: "cholesky", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := SolverByName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && s == nil {
				t.Error("solver is nil")
			}
		})
	}
}
