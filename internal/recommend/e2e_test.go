// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package recommend_test

import (
	"compress/gzip"
	"context"
	"encoding/gob"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/platewise/internal/recommend"
	"github.com/tomtom215/platewise/internal/recommend/algorithms"
	"github.com/tomtom215/platewise/internal/recommend/storage"
)

// sliceStore is an in-memory InteractionStore.
type sliceStore struct {
	mu           sync.Mutex
	interactions []recommend.Interaction
}

func (s *sliceStore) ListAllInteractions(ctx context.Context) ([]recommend.Interaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.interactions), nil
}

func (s *sliceStore) CountOrders(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, in := range s.interactions {
		if in.UserID == userID && in.Kind == recommend.KindOrder {
			n++
		}
	}
	return n, nil
}

func (s *sliceStore) ListDistinctUserIDs(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, in := range s.interactions {
		if !slices.Contains(ids, in.UserID) {
			ids = append(ids, in.UserID)
		}
	}
	return ids, nil
}

func rated(user string, item int64, rating float64) recommend.Interaction {
	return recommend.Interaction{UserID: user, ItemID: item, Kind: recommend.KindOrder, Rating: &rating}
}

// threeUsersFourItems: user 0 rates {0:5, 1:3}, user 1 {1:4, 2:2},
// user 2 {2:5, 3:1}. Every interaction is an ORDER so all three users pass
// the eligibility gate.
func threeUsersFourItems() []recommend.Interaction {
	return []recommend.Interaction{
		rated("u0", 0, 5), rated("u0", 1, 3),
		rated("u1", 1, 4), rated("u1", 2, 2),
		rated("u2", 2, 5), rated("u2", 3, 1),
	}
}

func TestEndToEnd_TrainRecommendPersist(t *testing.T) {
	ctx := context.Background()
	store := &sliceStore{interactions: threeUsersFourItems()}
	models := storage.NewStore(filepath.Join(t.TempDir(), "ml-models"))
	als := algorithms.NewALS(algorithms.ALSConfig{
		NumFactors:     2,
		NumIterations:  20,
		Regularization: 0.01,
		Seed:           42,
	}, zerolog.Nop())

	coord, err := recommend.NewCoordinator(recommend.DefaultConfig(), store, nil, models, als, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	got := coord.Recommend(ctx, "u0", 2)
	if len(got) != 2 {
		t.Fatalf("Recommend(u0, 2) = %v, want 2 items", got)
	}
	for _, id := range got {
		if id < 0 || id > 3 {
			t.Errorf("Recommend() returned unknown item %d", id)
		}
	}
	if got[0] == got[1] {
		t.Errorf("Recommend() returned duplicate item %d", got[0])
	}

	// The order must match the dot products of the published model, with
	// ties broken by ascending item index.
	model := coord.Model()
	u, _ := model.Mapping.UserIndex("u0")
	type scored struct {
		id    int64
		idx   int
		score float64
	}
	var all []scored
	for i, vec := range model.Factors.Item {
		var s float64
		for f := range vec {
			s += model.Factors.User[u][f] * vec[f]
		}
		all = append(all, scored{id: model.Mapping.ItemID(i), idx: i, score: s})
	}
	slices.SortStableFunc(all, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		default:
			return a.idx - b.idx
		}
	})
	if want := []int64{all[0].id, all[1].id}; !slices.Equal(got, want) {
		t.Errorf("Recommend(u0, 2) = %v, want %v", got, want)
	}

	// Persisted blobs reload into an identical model that is not stale.
	for _, name := range []string{recommend.UserFactorsBlob, recommend.ItemFactorsBlob, recommend.MappingsBlob} {
		if !models.Exists(name) {
			t.Errorf("blob %s not persisted", name)
		}
	}
	restarted, err := recommend.NewCoordinator(recommend.DefaultConfig(), store, nil, models, als, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := restarted.LoadPersisted(ctx); err != nil {
		t.Fatalf("LoadPersisted() error = %v", err)
	}
	if s := restarted.State(); s != recommend.StateTrained {
		t.Fatalf("State() after restart = %v, want TRAINED", s)
	}
	if again := restarted.Recommend(ctx, "u0", 2); !slices.Equal(again, got) {
		t.Errorf("Recommend() after restart = %v, want %v", again, got)
	}

	// A new user makes the persisted model stale on the next restart.
	store.mu.Lock()
	store.interactions = append(store.interactions, rated("u3", 0, 4), rated("u3", 3, 2))
	store.mu.Unlock()

	stale, err := recommend.NewCoordinator(recommend.DefaultConfig(), store, nil, models, als, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := stale.LoadPersisted(ctx); err != nil {
		t.Fatal(err)
	}
	if s := stale.State(); s != recommend.StateStale {
		t.Errorf("State() with new user = %v, want STALE", s)
	}
}

func TestEndToEnd_RaggedBlobLeavesCoordinatorUntrained(t *testing.T) {
	ctx := context.Background()
	store := &sliceStore{interactions: threeUsersFourItems()}
	dir := filepath.Join(t.TempDir(), "ml-models")
	models := storage.NewStore(dir)
	als := algorithms.NewALS(algorithms.ALSConfig{
		NumFactors:     2,
		NumIterations:  5,
		Regularization: 0.01,
		Seed:           42,
	}, zerolog.Nop())

	first, err := recommend.NewCoordinator(recommend.DefaultConfig(), store, nil, models, als, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := first.TrainModel(ctx); err != nil {
		t.Fatal(err)
	}

	// Rewrite the item factors with a short row but the right row count.
	f, err := os.Create(filepath.Join(dir, recommend.ItemFactorsBlob))
	if err != nil {
		t.Fatal(err)
	}
	gzw := gzip.NewWriter(f)
	blob := struct {
		K    int
		Rows [][]float64
	}{K: 2, Rows: [][]float64{{1, 2}, {1}, {1, 2}, {1, 2}}}
	if err := gob.NewEncoder(gzw).Encode(blob); err != nil {
		t.Fatal(err)
	}
	if err := gzw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	restarted, err := recommend.NewCoordinator(recommend.DefaultConfig(), store, nil, models, als, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := restarted.LoadPersisted(ctx); err == nil {
		t.Fatal("LoadPersisted() accepted a ragged factor blob")
	}
	if s := restarted.State(); s != recommend.StateUntrained {
		t.Fatalf("State() = %v, want UNTRAINED", s)
	}

	// The next request retrains instead of scoring the broken model.
	if got := restarted.Recommend(ctx, "u0", 2); len(got) != 2 {
		t.Errorf("Recommend() after failed load = %v, want 2 items", got)
	}
}

func TestEndToEnd_Reproducible(t *testing.T) {
	ctx := context.Background()
	interactions := threeUsersFourItems()
	mapping, err := recommend.BuildIndex(interactions)
	if err != nil {
		t.Fatal(err)
	}
	ratings := recommend.BuildRatingMatrix(interactions, mapping)

	var previous []int64
	for run := 0; run < 3; run++ {
		als := algorithms.NewALS(algorithms.ALSConfig{NumFactors: 2, Seed: 42}, zerolog.Nop())
		factors, _, err := als.Factorize(ctx, ratings)
		if err != nil {
			t.Fatal(err)
		}
		ids, err := recommend.Score(&recommend.TrainedModel{Factors: factors, Mapping: mapping}, "u1", 4)
		if err != nil {
			t.Fatal(err)
		}
		if previous != nil && !slices.Equal(ids, previous) {
			t.Fatalf("run %d ranking %v differs from %v", run, ids, previous)
		}
		previous = ids
	}
}
