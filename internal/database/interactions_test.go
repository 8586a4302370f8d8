// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package database

import (
	"context"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/platewise/internal/recommend"
)

func ptr[T any](v T) *T { return &v }

func interaction(user string, item int64, kind recommend.InteractionKind, rating *float64, qty *int) recommend.Interaction {
	return recommend.Interaction{
		ID:        uuid.NewString(),
		UserID:    user,
		ItemID:    item,
		Kind:      kind,
		Rating:    rating,
		Quantity:  qty,
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRecordInteraction_RoundTrip(t *testing.T) {
	db := setupTestDB(t, false)
	ctx := context.Background()

	want := []recommend.Interaction{
		interaction("u2", 7, recommend.KindOrder, ptr(3.0), ptr(3)),
		interaction("u1", 4, recommend.KindView, nil, ptr(1)),
		interaction("u1", 7, recommend.KindRating, ptr(4.5), nil),
		interaction("u2", 4, recommend.KindOrder, nil, nil),
	}
	for _, in := range want {
		if err := db.RecordInteraction(ctx, in); err != nil {
			t.Fatalf("RecordInteraction(%s) error = %v", in.ID, err)
		}
	}

	got, err := db.ListAllInteractions(ctx)
	if err != nil {
		t.Fatalf("ListAllInteractions() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("ListAllInteractions() returned %d rows, want %d", len(got), len(want))
	}

	for i := range want {
		w, g := want[i], got[i]
		if g.ID != w.ID || g.UserID != w.UserID || g.ItemID != w.ItemID || g.Kind != w.Kind {
			t.Errorf("row %d = %+v, want %+v", i, g, w)
		}
		if (g.Rating == nil) != (w.Rating == nil) || (w.Rating != nil && *g.Rating != *w.Rating) {
			t.Errorf("row %d rating = %v, want %v", i, g.Rating, w.Rating)
		}
		if (g.Quantity == nil) != (w.Quantity == nil) || (w.Quantity != nil && *g.Quantity != *w.Quantity) {
			t.Errorf("row %d quantity = %v, want %v", i, g.Quantity, w.Quantity)
		}
		if !g.Timestamp.Equal(w.Timestamp) {
			t.Errorf("row %d timestamp = %v, want %v", i, g.Timestamp, w.Timestamp)
		}
		if g.EffectiveRating() != w.EffectiveRating() {
			t.Errorf("row %d EffectiveRating() = %v, want %v", i, g.EffectiveRating(), w.EffectiveRating())
		}
	}
}

func TestRecordInteraction_DuplicateIDIsNoop(t *testing.T) {
	db := setupTestDB(t, false)
	ctx := context.Background()

	in := interaction("u1", 1, recommend.KindOrder, nil, ptr(2))
	for i := 0; i < 3; i++ {
		if err := db.RecordInteraction(ctx, in); err != nil {
			t.Fatalf("RecordInteraction() attempt %d error = %v", i, err)
		}
	}

	n, err := db.CountInteractions(ctx)
	if err != nil {
		t.Fatalf("CountInteractions() error = %v", err)
	}
	if n != 1 {
		t.Errorf("CountInteractions() = %d, want 1", n)
	}
}

func TestListAllInteractions_OrdersByTimestamp(t *testing.T) {
	db := setupTestDB(t, false)
	ctx := context.Background()

	// A replayed older rating lands after the newer one.
	newer := interaction("u1", 5, recommend.KindRating, ptr(5.0), nil)
	newer.Timestamp = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	older := interaction("u1", 5, recommend.KindRating, ptr(1.0), nil)
	older.Timestamp = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tieA := interaction("u2", 5, recommend.KindView, nil, nil)
	tieB := interaction("u2", 6, recommend.KindView, nil, nil)
	tieA.Timestamp = newer.Timestamp
	tieB.Timestamp = newer.Timestamp

	for _, in := range []recommend.Interaction{newer, tieA, older, tieB} {
		if err := db.RecordInteraction(ctx, in); err != nil {
			t.Fatalf("RecordInteraction(%s) error = %v", in.ID, err)
		}
	}

	got, err := db.ListAllInteractions(ctx)
	if err != nil {
		t.Fatalf("ListAllInteractions() error = %v", err)
	}
	gotIDs := make([]string, len(got))
	for i := range got {
		gotIDs[i] = got[i].ID
	}
	want := []string{older.ID, newer.ID, tieA.ID, tieB.ID}
	if !slices.Equal(gotIDs, want) {
		t.Errorf("ListAllInteractions() ids = %v, want %v", gotIDs, want)
	}

	mapping, err := recommend.BuildIndex(got)
	if err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}
	m := recommend.BuildRatingMatrix(got, mapping)
	u, _ := mapping.UserIndex("u1")
	i, _ := mapping.ItemIndex(5)
	if r := m.At(u, i); r != 5.0 {
		t.Errorf("cell (u1, 5) = %v, want the newer 5", r)
	}
}

func TestRecordInteraction_Invalid(t *testing.T) {
	db := setupTestDB(t, false)

	tests := []struct {
		name string
		in   recommend.Interaction
	}{
		{"missing id", recommend.Interaction{UserID: "u", ItemID: 1, Kind: recommend.KindOrder}},
		{"unknown kind", recommend.Interaction{ID: "x", UserID: "u", ItemID: 1, Kind: "CLICK"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := db.RecordInteraction(context.Background(), tt.in); err == nil {
				t.Error("RecordInteraction() expected error")
			}
		})
	}
}

func TestCountOrders(t *testing.T) {
	db := setupTestDB(t, false)
	ctx := context.Background()

	for _, in := range []recommend.Interaction{
		interaction("alice", 1, recommend.KindOrder, nil, ptr(1)),
		interaction("alice", 2, recommend.KindOrder, nil, ptr(1)),
		interaction("alice", 3, recommend.KindView, nil, nil),
		interaction("bob", 1, recommend.KindRating, ptr(5.0), nil),
	} {
		if err := db.RecordInteraction(ctx, in); err != nil {
			t.Fatalf("RecordInteraction() error = %v", err)
		}
	}

	tests := []struct {
		user string
		want int
	}{
		{"alice", 2},
		{"bob", 0},
		{"nobody", 0},
	}
	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			got, err := db.CountOrders(ctx, tt.user)
			if err != nil {
				t.Fatalf("CountOrders() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CountOrders(%q) = %d, want %d", tt.user, got, tt.want)
			}
		})
	}
}

func TestListDistinctUserIDs(t *testing.T) {
	db := setupTestDB(t, false)
	ctx := context.Background()

	ids, err := db.ListDistinctUserIDs(ctx)
	if err != nil {
		t.Fatalf("ListDistinctUserIDs() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("ListDistinctUserIDs() on empty store = %v", ids)
	}

	for _, u := range []string{"carol", "alice", "bob", "alice"} {
		if err := db.RecordInteraction(ctx, interaction(u, 1, recommend.KindView, nil, nil)); err != nil {
			t.Fatalf("RecordInteraction() error = %v", err)
		}
	}

	ids, err = db.ListDistinctUserIDs(ctx)
	if err != nil {
		t.Fatalf("ListDistinctUserIDs() error = %v", err)
	}
	if want := []string{"alice", "bob", "carol"}; !slices.Equal(ids, want) {
		t.Errorf("ListDistinctUserIDs() = %v, want %v", ids, want)
	}
}

func TestListAllInteractions_FeedsIndexBuilder(t *testing.T) {
	db := setupTestDB(t, false)
	ctx := context.Background()

	// Same pair twice: the later one must win in the matrix.
	for _, in := range []recommend.Interaction{
		interaction("u1", 10, recommend.KindOrder, ptr(1.0), nil),
		interaction("u1", 10, recommend.KindOrder, ptr(4.0), nil),
		interaction("u2", 20, recommend.KindOrder, ptr(2.0), nil),
	} {
		if err := db.RecordInteraction(ctx, in); err != nil {
			t.Fatalf("RecordInteraction() error = %v", err)
		}
	}

	all, err := db.ListAllInteractions(ctx)
	if err != nil {
		t.Fatalf("ListAllInteractions() error = %v", err)
	}
	mapping, err := recommend.BuildIndex(all)
	if err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}
	m := recommend.BuildRatingMatrix(all, mapping)

	u, _ := mapping.UserIndex("u1")
	i, _ := mapping.ItemIndex(10)
	if got := m.At(u, i); got != 4.0 {
		t.Errorf("cell (u1, 10) = %v, want 4 (last write wins)", got)
	}
}

func TestRecordInteraction_Concurrent(t *testing.T) {
	db := setupTestDB(t, false)
	ctx := context.Background()

	const workers, perWorker = 4, 25
	errCh := make(chan error, workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			for i := 0; i < perWorker; i++ {
				in := interaction(fmt.Sprintf("user-%d", w), int64(i), recommend.KindOrder, nil, ptr(1))
				if err := db.RecordInteraction(ctx, in); err != nil {
					errCh <- err
					return
				}
			}
			errCh <- nil
		}(w)
	}
	for w := 0; w < workers; w++ {
		if err := <-errCh; err != nil {
			t.Fatalf("concurrent RecordInteraction() error = %v", err)
		}
	}

	n, err := db.CountInteractions(ctx)
	if err != nil {
		t.Fatalf("CountInteractions() error = %v", err)
	}
	if n != workers*perWorker {
		t.Errorf("CountInteractions() = %d, want %d", n, workers*perWorker)
	}
}
