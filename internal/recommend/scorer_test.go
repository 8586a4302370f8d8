// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package recommend

import (
	"errors"
	"slices"
	"testing"
)

// handModel builds a model with users {a, b} and items {100, 200, 300, 400}
// whose scores for user a are 1, 3, 3, 2 and for user b all equal.
func handModel(t *testing.T) *TrainedModel {
	t.Helper()
	mapping, err := MappingFromTables(
		map[string]int{"a": 0, "b": 1},
		map[int64]int{100: 0, 200: 1, 300: 2, 400: 3},
	)
	if err != nil {
		t.Fatal(err)
	}
	return &TrainedModel{
		ID: "hand",
		Factors: &FactorMatrices{
			User: [][]float64{{1, 0}, {0, 1}},
			Item: [][]float64{{1, 5}, {3, 5}, {3, 5}, {2, 5}},
			K:    2,
		},
		Mapping: mapping,
	}
}

func TestScore(t *testing.T) {
	model := handModel(t)

	tests := []struct {
		name string
		user string
		n    int
		want []int64
	}{
		{name: "ties by ascending index", user: "a", n: 4, want: []int64{200, 300, 400, 100}},
		{name: "top two", user: "a", n: 2, want: []int64{200, 300}},
		{name: "n larger than catalog", user: "a", n: 10, want: []int64{200, 300, 400, 100}},
		{name: "all tied", user: "b", n: 3, want: []int64{100, 200, 300}},
		{name: "zero n", user: "a", n: 0, want: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Score(model, tt.user, tt.n)
			if err != nil {
				t.Fatalf("Score() error = %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRank_Scores(t *testing.T) {
	ranked, err := Rank(handModel(t), "a", 2)
	if err != nil {
		t.Fatal(err)
	}
	if ranked[0].Score != 3 || ranked[0].Index != 1 || ranked[1].Index != 2 {
		t.Errorf("Rank() = %+v", ranked)
	}
}

func TestScore_Errors(t *testing.T) {
	if _, err := Score(handModel(t), "nobody", 3); !errors.Is(err, ErrUnknownUser) {
		t.Errorf("unknown user error = %v, want ErrUnknownUser", err)
	}
	if _, err := Score(nil, "a", 3); !errors.Is(err, ErrNoModel) {
		t.Errorf("nil model error = %v, want ErrNoModel", err)
	}
}
