// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/platewise/internal/metrics"
)

// State is the coordinator's training state.
type State int32

const (
	// StateUntrained means no model is published.
	StateUntrained State = iota
	// StateTraining means a training pass is running.
	StateTraining
	// StateTrained means a model is published and considered current.
	StateTrained
	// StateStale means the persisted model no longer matches the store and
	// was discarded.
	StateStale
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUntrained:
		return "UNTRAINED"
	case StateTraining:
		return "TRAINING"
	case StateTrained:
		return "TRAINED"
	case StateStale:
		return "STALE"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Status is a point-in-time view of the coordinator for operators.
type Status struct {
	State            string      `json:"state"`
	ModelID          string      `json:"model_id,omitempty"`
	TrainedAt        *time.Time  `json:"trained_at,omitempty"`
	Users            int         `json:"users"`
	Items            int         `json:"items"`
	LastReport       *PassReport `json:"last_report,omitempty"`
	LastError        string      `json:"last_error,omitempty"`
	LastPersistError string      `json:"last_persist_error,omitempty"`
	LastDurationMS   int64       `json:"last_duration_ms"`
	MinOrdersForML   int         `json:"min_orders_for_ml"`
}

// RecommendedItem is a catalog item with its predicted score.
type RecommendedItem struct {
	Item
	Score float64 `json:"score"`
}

// Coordinator owns the single published model. It serializes training
// passes, publishes each result atomically, gates recommendations on order
// history and trains lazily when a recommendation is needed but no current
// model exists.
//
// Readers never lock: they load the published *TrainedModel once and score
// against that immutable snapshot.
type Coordinator struct {
	cfg        Config
	store      InteractionStore
	catalog    Catalog
	models     ModelStore // nil disables persistence
	factorizer Factorizer
	logger     zerolog.Logger

	trainMu    sync.Mutex
	model      atomic.Pointer[TrainedModel]
	state      atomic.Int32
	generation atomic.Uint64 // bumped on every publish

	statusMu       sync.RWMutex
	lastReport     *PassReport
	lastErr        error
	lastPersistErr error
	lastDuration   time.Duration
}

// NewCoordinator creates a coordinator in StateUntrained. models may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCoordinator(cfg Config, store InteractionStore, catalog Catalog, models ModelStore, factorizer Factorizer, logger zerolog.Logger) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if store == nil || factorizer == nil {
		return nil, errors.New("interaction store and factorizer are required")
	}

	c := &Coordinator{
		cfg:        cfg,
		store:      store,
		catalog:    catalog,
		models:     models,
		factorizer: factorizer,
		logger:     logger.With().Str("component", "recommend").Logger(),
	}
	c.setState(StateUntrained)
	return c, nil
}

// State returns the current state.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

func (c *Coordinator) setState(s State) {
	c.state.Store(int32(s))
	metrics.ModelState.Set(float64(s))
}

// Model returns the published model, or nil.
func (c *Coordinator) Model() *TrainedModel {
	return c.model.Load()
}

// TrainModel runs one full training pass, waiting for any pass already in
// progress to finish first. On success the new model is published and then
// persisted; a persistence failure is logged and recorded in Status but does
// not fail the call or unpublish the model.
func (c *Coordinator) TrainModel(ctx context.Context) error {
	c.trainMu.Lock()
	defer c.trainMu.Unlock()
	return c.train(ctx)
}

// TryTrainModel is TrainModel without waiting. It returns
// ErrTrainingInProgress if another pass holds the lock.
func (c *Coordinator) TryTrainModel(ctx context.Context) error {
	if !c.trainMu.TryLock() {
		return ErrTrainingInProgress
	}
	defer c.trainMu.Unlock()
	return c.train(ctx)
}

// train must be called with trainMu held.
func (c *Coordinator) train(ctx context.Context) error {
	start := time.Now()
	c.setState(StateTraining)
	c.logger.Info().Msg("starting model training")

	model, report, err := c.buildModel(ctx)
	duration := time.Since(start)
	if err != nil {
		c.failTraining(err, duration)
		return err
	}

	c.model.Store(model)
	c.generation.Add(1)
	c.setState(StateTrained)

	c.statusMu.Lock()
	c.lastReport = report
	c.lastErr = nil
	c.lastDuration = duration
	c.statusMu.Unlock()

	metrics.RecordTraining("success", duration,
		model.Mapping.NumUsers(), model.Mapping.NumItems(),
		report.UserFailures, report.ItemFailures)

	c.logger.Info().
		Str("model_id", model.ID).
		Int("users", model.Mapping.NumUsers()).
		Int("items", model.Mapping.NumItems()).
		Int("user_failures", report.UserFailures).
		Int("item_failures", report.ItemFailures).
		Float64("rmse", report.RMSE).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("model training complete")

	c.persist(ctx, model)
	return nil
}

func (c *Coordinator) buildModel(ctx context.Context) (*TrainedModel, *PassReport, error) {
	interactions, err := c.store.ListAllInteractions(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list interactions: %w", err)
	}

	mapping, err := BuildIndex(interactions)
	if err != nil {
		return nil, nil, err
	}
	ratings := BuildRatingMatrix(interactions, mapping)

	factors, report, err := c.factorizer.Factorize(ctx, ratings)
	if err != nil {
		return nil, nil, fmt.Errorf("factorize: %w", err)
	}

	return &TrainedModel{
		ID:        uuid.NewString(),
		TrainedAt: time.Now().UTC(),
		Factors:   factors,
		Mapping:   mapping,
	}, report, nil
}

// failTraining keeps any previously published model. Without one the
// coordinator returns to StateUntrained.
func (c *Coordinator) failTraining(err error, duration time.Duration) {
	if c.model.Load() != nil {
		c.setState(StateTrained)
	} else {
		c.setState(StateUntrained)
	}

	c.statusMu.Lock()
	c.lastErr = err
	c.lastDuration = duration
	c.statusMu.Unlock()

	if errors.Is(err, ErrNoInteractions) {
		metrics.RecordTraining("no_data", duration, 0, 0, 0, 0)
		c.logger.Info().Msg("no interactions recorded, skipping training")
		return
	}
	metrics.RecordTraining("error", duration, 0, 0, 0, 0)
	c.logger.Error().Err(err).Msg("model training failed")
}

func (c *Coordinator) persist(ctx context.Context, model *TrainedModel) {
	if c.models == nil {
		return
	}
	err := c.models.Save(ctx, model)

	c.statusMu.Lock()
	c.lastPersistErr = err
	c.statusMu.Unlock()

	if err != nil {
		metrics.ModelPersistErrors.WithLabelValues("save").Inc()
		c.logger.Error().Err(err).Str("model_id", model.ID).Msg("failed to persist model; in-memory model kept")
		return
	}
	c.logger.Debug().Str("model_id", model.ID).Msg("model persisted")
}

// LoadPersisted restores a model saved by a previous run. A missing model is
// not an error. A model that fails to load leaves the coordinator
// untrained; one that is stale against the live store is discarded and the
// state becomes StateStale. Either way the next recommendation trains lazily.
func (c *Coordinator) LoadPersisted(ctx context.Context) error {
	if c.models == nil {
		return nil
	}

	c.trainMu.Lock()
	defer c.trainMu.Unlock()

	if !c.models.Exists(UserFactorsBlob) {
		c.logger.Info().Msg("no persisted model found")
		return nil
	}

	model, err := c.models.Load(ctx)
	if err != nil {
		metrics.ModelPersistErrors.WithLabelValues("load").Inc()
		c.setState(StateUntrained)
		c.statusMu.Lock()
		c.lastPersistErr = err
		c.statusMu.Unlock()
		return fmt.Errorf("load persisted model: %w", err)
	}

	live, err := c.store.ListDistinctUserIDs(ctx)
	if err != nil {
		c.setState(StateUntrained)
		return fmt.Errorf("list users for staleness check: %w", err)
	}

	if IsStale(model.Mapping, live) {
		c.setState(StateStale)
		c.logger.Info().
			Str("model_id", model.ID).
			Int("model_users", model.Mapping.NumUsers()).
			Int("live_users", len(live)).
			Msg("persisted model is stale, discarding")
		return nil
	}

	c.model.Store(model)
	c.generation.Add(1)
	c.setState(StateTrained)
	metrics.ModelUsers.Set(float64(model.Mapping.NumUsers()))
	metrics.ModelItems.Set(float64(model.Mapping.NumItems()))

	c.logger.Info().
		Str("model_id", model.ID).
		Time("trained_at", model.TrainedAt).
		Int("users", model.Mapping.NumUsers()).
		Int("items", model.Mapping.NumItems()).
		Msg("loaded persisted model")
	return nil
}

// HasEnoughData reports whether userID has at least MinOrdersForML ORDER
// interactions. Store errors count as "not enough".
func (c *Coordinator) HasEnoughData(ctx context.Context, userID string) bool {
	n, err := c.store.CountOrders(ctx, userID)
	if err != nil {
		c.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to count orders")
		return false
	}
	return n >= c.cfg.MinOrdersForML
}

// ensureModel returns the published model, training first when there is
// none. While a scheduled pass runs, the previous model keeps serving.
// Callers that queued behind an in-flight pass reuse its result instead of
// training again.
func (c *Coordinator) ensureModel(ctx context.Context) *TrainedModel {
	// Read the generation before the model: publish stores the model first.
	seen := c.generation.Load()
	if m := c.model.Load(); m != nil {
		return m
	}

	c.trainMu.Lock()
	defer c.trainMu.Unlock()

	if c.generation.Load() != seen {
		if m := c.model.Load(); m != nil {
			return m
		}
	}

	c.logger.Info().Str("state", c.State().String()).Msg("training on demand")
	if err := c.train(ctx); err != nil {
		return nil
	}
	return c.model.Load()
}

// rank applies the eligibility gate and returns every item ranked for
// userID, or nil with the outcome label when there is nothing to serve.
func (c *Coordinator) rank(ctx context.Context, userID string, n int) ([]ScoredItem, string) {
	if !c.HasEnoughData(ctx, userID) {
		return nil, "insufficient_data"
	}

	model := c.ensureModel(ctx)
	if model == nil {
		return nil, "no_model"
	}

	ranked, err := Rank(model, userID, n)
	if err != nil {
		if errors.Is(err, ErrUnknownUser) {
			c.logger.Debug().Str("user_id", userID).Str("model_id", model.ID).Msg("user not in model")
			return nil, "unknown_user"
		}
		c.logger.Warn().Err(err).Str("user_id", userID).Msg("scoring failed")
		return nil, "no_model"
	}
	return ranked, "ml"
}

// Recommend returns up to topN item ids for userID, best first. It returns
// an empty slice, never an error, when the user has too little history,
// when no model can be trained or when the model does not know the user;
// the caller is expected to fall back to a non-ML strategy.
func (c *Coordinator) Recommend(ctx context.Context, userID string, topN int) []int64 {
	start := time.Now()
	ranked, outcome := c.rank(ctx, userID, topN)
	metrics.RecordRecommendation(outcome, time.Since(start))

	ids := make([]int64, len(ranked))
	for i := range ranked {
		ids[i] = ranked[i].ItemID
	}
	return ids
}

// RecommendItems is Recommend resolved through the catalog. Items the
// catalog no longer has, that are out of stock or that prefs rejects are
// skipped and the next-best items take their place. prefs may be nil.
func (c *Coordinator) RecommendItems(ctx context.Context, userID string, topN int, prefs *Preferences) []RecommendedItem {
	if topN <= 0 || c.catalog == nil {
		return []RecommendedItem{}
	}

	start := time.Now()
	ranked, outcome := c.rank(ctx, userID, int(^uint(0)>>1))
	metrics.RecordRecommendation(outcome, time.Since(start))

	out := make([]RecommendedItem, 0, min(topN, len(ranked)))
	for _, r := range ranked {
		if len(out) == topN {
			break
		}
		item, found, err := c.catalog.FindByID(ctx, r.ItemID)
		if err != nil {
			c.logger.Warn().Err(err).Int64("item_id", r.ItemID).Msg("catalog lookup failed")
			continue
		}
		if !found || !item.Available() {
			continue
		}
		if prefs != nil && !prefs.Allows(&item) {
			continue
		}
		out = append(out, RecommendedItem{Item: item, Score: r.Score})
	}
	return out
}

// Status returns a snapshot of the coordinator for operators.
func (c *Coordinator) Status() Status {
	st := Status{
		State:          c.State().String(),
		MinOrdersForML: c.cfg.MinOrdersForML,
	}
	if m := c.model.Load(); m != nil {
		trainedAt := m.TrainedAt
		st.ModelID = m.ID
		st.TrainedAt = &trainedAt
		st.Users = m.Mapping.NumUsers()
		st.Items = m.Mapping.NumItems()
	}

	c.statusMu.RLock()
	defer c.statusMu.RUnlock()
	if c.lastReport != nil {
		r := *c.lastReport
		st.LastReport = &r
	}
	if c.lastErr != nil {
		st.LastError = c.lastErr.Error()
	}
	if c.lastPersistErr != nil {
		st.LastPersistError = c.lastPersistErr.Error()
	}
	st.LastDurationMS = c.lastDuration.Milliseconds()
	return st
}
