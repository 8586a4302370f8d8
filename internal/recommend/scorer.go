// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package recommend

import (
	"cmp"
	"slices"
)

// ScoredItem pairs an item with its predicted affinity.
type ScoredItem struct {
	ItemID int64   `json:"item_id"`
	Index  int     `json:"-"`
	Score  float64 `json:"score"`
}

// Rank scores every item for userID by the dot product of the user and item
// factor vectors and returns the best n, highest first. Equal scores are
// ordered by ascending item index. It returns ErrUnknownUser if the model has
// no vector for userID. Nothing is filtered here; stock and preference
// filters are applied by the caller.
func Rank(model *TrainedModel, userID string, n int) ([]ScoredItem, error) {
	if model == nil {
		return nil, ErrNoModel
	}
	u, ok := model.Mapping.UserIndex(userID)
	if !ok {
		return nil, ErrUnknownUser
	}
	if n <= 0 {
		return []ScoredItem{}, nil
	}

	userVec := model.Factors.User[u]
	scored := make([]ScoredItem, len(model.Factors.Item))
	for i, itemVec := range model.Factors.Item {
		scored[i] = ScoredItem{
			ItemID: model.Mapping.ItemID(i),
			Index:  i,
			Score:  dot(userVec, itemVec),
		}
	}

	slices.SortFunc(scored, func(a, b ScoredItem) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})

	if n < len(scored) {
		scored = scored[:n]
	}
	return scored, nil
}

// Score is Rank without the scores.
func Score(model *TrainedModel, userID string, n int) ([]int64, error) {
	ranked, err := Rank(model, userID, n)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(ranked))
	for i := range ranked {
		ids[i] = ranked[i].ItemID
	}
	return ids, nil
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
