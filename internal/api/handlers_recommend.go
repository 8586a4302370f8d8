// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/platewise/internal/logging"
	"github.com/tomtom215/platewise/internal/models"
	"github.com/tomtom215/platewise/internal/recommend"
)

// Recommendation sources.
const (
	SourceML       = "ml"
	SourceFallback = "fallback"
)

// DefaultRecommendationCount is used when ?n is absent.
const DefaultRecommendationCount = 5

// RecommendationsRequest holds the validated query of
// GET /recommendations/{userID}.
type RecommendationsRequest struct {
	UserID    string   `json:"user_id" validate:"required,userid"`
	N         int      `json:"n" validate:"gte=1,lte=50"`
	Diet      string   `json:"diet" validate:"omitempty,oneof=vegetarian vegan"`
	Allergens []string `json:"allergens" validate:"max=20,dive,min=1,max=40"`
	BudgetMin *float64 `json:"budget_min" validate:"omitempty,gte=0"`
	BudgetMax *float64 `json:"budget_max" validate:"omitempty,gte=0"`
	Cuisine   string   `json:"cuisine" validate:"max=40"`
}

// Preferences returns the request's filters.
func (req *RecommendationsRequest) Preferences() *recommend.Preferences {
	return &recommend.Preferences{
		Diet:      recommend.Diet(req.Diet),
		Allergens: req.Allergens,
		BudgetMin: req.BudgetMin,
		BudgetMax: req.BudgetMax,
		Cuisine:   req.Cuisine,
	}
}

// parseRecommendationsRequest reads the path and query of
// GET /recommendations/{userID}. It writes the 400 response itself and
// reports whether the handler should continue.
func parseRecommendationsRequest(w http.ResponseWriter, r *http.Request) (*RecommendationsRequest, bool) {
	n, ok := getIntParam(r, "n", DefaultRecommendationCount)
	if !ok {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "n must be an integer", nil)
		return nil, false
	}
	budgetMin, ok := getFloatParam(r, "budget_min")
	if !ok {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "budget_min must be a number", nil)
		return nil, false
	}
	budgetMax, ok := getFloatParam(r, "budget_max")
	if !ok {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "budget_max must be a number", nil)
		return nil, false
	}

	q := r.URL.Query()
	req := &RecommendationsRequest{
		UserID:    chi.URLParam(r, "userID"),
		N:         n,
		Diet:      strings.ToLower(strings.TrimSpace(q.Get("diet"))),
		Allergens: getListParam(r, "allergens"),
		BudgetMin: budgetMin,
		BudgetMax: budgetMax,
		Cuisine:   strings.TrimSpace(q.Get("cuisine")),
	}
	if apiErr := validateRequest(req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return nil, false
	}
	if req.BudgetMin != nil && req.BudgetMax != nil && *req.BudgetMin > *req.BudgetMax {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "budget_min must not exceed budget_max", nil)
		return nil, false
	}
	return req, true
}

// RecommendedItemResponse is one recommended item. Score is omitted for
// fallback results.
type RecommendedItemResponse struct {
	recommend.Item
	Score *float64 `json:"score,omitempty"`
}

// RecommendationsResponse is the body of GET /recommendations/{userID}.
type RecommendationsResponse struct {
	UserID string                    `json:"user_id"`
	Source string                    `json:"source"`
	Items  []RecommendedItemResponse `json:"items"`
}

// Recommendations serves ML recommendations for users with enough order
// history and the in-stock catalog otherwise. An ML result that comes back
// empty (too little history, unknown user, nothing left after the
// preference filters) also falls back. Both paths apply the same hard
// preference filters; cuisine only narrows the fallback.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, ok := parseRecommendationsRequest(w, r)
	if !ok {
		return
	}
	prefs := req.Preferences()

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	if h.recommender != nil {
		recs := h.recommender.RecommendItems(ctx, req.UserID, req.N, prefs)
		if len(recs) > 0 {
			items := make([]RecommendedItemResponse, len(recs))
			for i := range recs {
				score := recs[i].Score
				items[i] = RecommendedItemResponse{Item: recs[i].Item, Score: &score}
			}
			logging.Ctx(ctx).Debug().
				Str("user_id", sanitizeLogValue(req.UserID)).
				Int("count", len(items)).
				Msg("Served ML recommendations")
			respondSuccess(w, r, http.StatusOK, RecommendationsResponse{
				UserID: req.UserID,
				Source: SourceML,
				Items:  items,
			}, start)
			return
		}
	}

	available, err := h.catalog.ListItems(ctx, true)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to load catalog", err)
		return
	}
	available = prefs.FilterCatalog(available)
	if len(available) > req.N {
		available = available[:req.N]
	}
	items := make([]RecommendedItemResponse, len(available))
	for i := range available {
		items[i] = RecommendedItemResponse{Item: available[i]}
	}
	respondSuccess(w, r, http.StatusOK, RecommendationsResponse{
		UserID: req.UserID,
		Source: SourceFallback,
		Items:  items,
	}, start)
}

// RecommendationStatus serves the coordinator status.
func (h *Handler) RecommendationStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.recommender == nil {
		respondError(w, r, http.StatusServiceUnavailable, models.ErrCodeServiceDisabled, "Recommendations are disabled", nil)
		return
	}
	respondSuccess(w, r, http.StatusOK, h.recommender.Status(), start)
}

// TrainModel runs one training pass and responds when it finishes. A pass
// already in progress yields 409; nothing to train on yields 422.
func (h *Handler) TrainModel(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.recommender == nil {
		respondError(w, r, http.StatusServiceUnavailable, models.ErrCodeServiceDisabled, "Recommendations are disabled", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.trainTimeout)
	defer cancel()

	logging.Ctx(ctx).Info().Msg("Manual training requested")

	err := h.recommender.TryTrainModel(ctx)
	switch {
	case err == nil:
		respondSuccess(w, r, http.StatusOK, h.recommender.Status(), start)
	case errors.Is(err, recommend.ErrTrainingInProgress):
		respondError(w, r, http.StatusConflict, models.ErrCodeConflict, "Training already in progress", nil)
	case errors.Is(err, recommend.ErrNoInteractions):
		respondError(w, r, http.StatusUnprocessableEntity, models.ErrCodeTraining, "No interactions to train on", nil)
	default:
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeTraining, "Training failed", err)
	}
}
