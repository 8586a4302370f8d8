// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package recommend

import "testing"

func TestBuildRatingMatrix(t *testing.T) {
	interactions := []Interaction{
		{UserID: "a", ItemID: 1, Kind: KindOrder, Quantity: ptr(2)},
		{UserID: "a", ItemID: 2, Kind: KindView},
		{UserID: "b", ItemID: 2, Kind: KindRating, Rating: ptr(4.0)},
	}
	mapping, err := BuildIndex(interactions)
	if err != nil {
		t.Fatal(err)
	}

	m := BuildRatingMatrix(interactions, mapping)
	if m.Rows() != 2 || m.Cols() != 2 {
		t.Fatalf("shape = %dx%d, want 2x2", m.Rows(), m.Cols())
	}

	tests := []struct {
		user string
		item int64
		want float64
	}{
		{"a", 1, 2},
		{"a", 2, 0.5},
		{"b", 1, 0},
		{"b", 2, 4},
	}
	for _, tt := range tests {
		u, _ := mapping.UserIndex(tt.user)
		i, _ := mapping.ItemIndex(tt.item)
		if got := m.At(u, i); got != tt.want {
			t.Errorf("At(%s, %d) = %v, want %v", tt.user, tt.item, got, tt.want)
		}
	}
	if got := m.Observed(); got != 3 {
		t.Errorf("Observed() = %d, want 3", got)
	}
}

func TestBuildRatingMatrix_LastWriteWins(t *testing.T) {
	tests := []struct {
		name         string
		interactions []Interaction
		want         float64
	}{
		{
			name: "two orders with different quantities",
			interactions: []Interaction{
				{UserID: "a", ItemID: 1, Kind: KindOrder, Quantity: ptr(5)},
				{UserID: "a", ItemID: 1, Kind: KindOrder, Quantity: ptr(2)},
			},
			want: 2,
		},
		{
			name: "order then view",
			interactions: []Interaction{
				{UserID: "a", ItemID: 1, Kind: KindOrder, Quantity: ptr(3)},
				{UserID: "a", ItemID: 1, Kind: KindView},
			},
			want: 0.5,
		},
		{
			name: "three writes",
			interactions: []Interaction{
				{UserID: "a", ItemID: 1, Kind: KindRating, Rating: ptr(1.0)},
				{UserID: "a", ItemID: 1, Kind: KindRating, Rating: ptr(5.0)},
				{UserID: "a", ItemID: 1, Kind: KindRating, Rating: ptr(3.0)},
			},
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapping, err := BuildIndex(tt.interactions)
			if err != nil {
				t.Fatal(err)
			}
			m := BuildRatingMatrix(tt.interactions, mapping)
			if got := m.At(0, 0); got != tt.want {
				t.Errorf("At(0, 0) = %v, want %v (last write, not aggregate)", got, tt.want)
			}
		})
	}
}

func TestBuildRatingMatrix_SkipsUnmappedIDs(t *testing.T) {
	known := []Interaction{{UserID: "a", ItemID: 1, Kind: KindOrder}}
	mapping, err := BuildIndex(known)
	if err != nil {
		t.Fatal(err)
	}

	m := BuildRatingMatrix(append(known,
		Interaction{UserID: "stranger", ItemID: 1, Kind: KindOrder, Quantity: ptr(9)},
		Interaction{UserID: "a", ItemID: 404, Kind: KindOrder, Quantity: ptr(9)},
	), mapping)

	if m.Rows() != 1 || m.Cols() != 1 {
		t.Fatalf("shape = %dx%d, want 1x1", m.Rows(), m.Cols())
	}
	if got := m.At(0, 0); got != DefaultOrderRating {
		t.Errorf("At(0, 0) = %v, want %v", got, DefaultOrderRating)
	}
}
