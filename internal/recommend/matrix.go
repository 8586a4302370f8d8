// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package recommend

// RatingMatrix is a dense users x items matrix. A zero cell means
// "unobserved", not "disliked".
type RatingMatrix struct {
	rows, cols int
	data       []float64 // row-major
}

// NewRatingMatrix returns an all-zero matrix.
func NewRatingMatrix(rows, cols int) *RatingMatrix {
	return &RatingMatrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// BuildRatingMatrix projects interactions onto the mapping. Each cell holds
// the effective rating of the last interaction for that (user, item) pair in
// slice order; earlier ones are overwritten, not summed. Interactions whose
// user or item is not in the mapping are skipped.
func BuildRatingMatrix(interactions []Interaction, mapping *IndexMapping) *RatingMatrix {
	m := NewRatingMatrix(mapping.NumUsers(), mapping.NumItems())
	for i := range interactions {
		u, ok := mapping.UserIndex(interactions[i].UserID)
		if !ok {
			continue
		}
		it, ok := mapping.ItemIndex(interactions[i].ItemID)
		if !ok {
			continue
		}
		m.Set(u, it, interactions[i].EffectiveRating())
	}
	return m
}

// Rows returns the number of users.
func (m *RatingMatrix) Rows() int { return m.rows }

// Cols returns the number of items.
func (m *RatingMatrix) Cols() int { return m.cols }

// At returns cell (u, i).
func (m *RatingMatrix) At(u, i int) float64 {
	return m.data[u*m.cols+i]
}

// Set overwrites cell (u, i).
func (m *RatingMatrix) Set(u, i int, v float64) {
	m.data[u*m.cols+i] = v
}

// Observed returns the number of nonzero cells.
func (m *RatingMatrix) Observed() int {
	n := 0
	for _, v := range m.data {
		if v != 0 {
			n++
		}
	}
	return n
}
