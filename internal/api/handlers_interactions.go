// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/platewise/internal/database"
	"github.com/tomtom215/platewise/internal/logging"
	"github.com/tomtom215/platewise/internal/models"
	"github.com/tomtom215/platewise/internal/recommend"
)

// OrderLine is one line of an order.
type OrderLine struct {
	ItemID   int64 `json:"item_id" validate:"gt=0"`
	Quantity int   `json:"quantity" validate:"gt=0,lte=100"`
}

// OrderRequest is the body of POST /interactions/orders.
type OrderRequest struct {
	UserID string      `json:"user_id" validate:"required,userid"`
	Items  []OrderLine `json:"items" validate:"required,min=1,max=50,dive"`
}

// ViewRequest is the body of POST /interactions/views.
type ViewRequest struct {
	UserID string `json:"user_id" validate:"required,userid"`
	ItemID int64  `json:"item_id" validate:"gt=0"`
}

// RatingRequest is the body of POST /interactions/ratings. Rating is a
// pointer so an explicit 0 is distinguishable from a missing field.
type RatingRequest struct {
	UserID string   `json:"user_id" validate:"required,userid"`
	ItemID int64    `json:"item_id" validate:"gt=0"`
	Rating *float64 `json:"rating" validate:"required,gte=0,lte=5"`
}

// InteractionAccepted is returned by the tracking endpoints.
type InteractionAccepted struct {
	UserID       string `json:"user_id"`
	Kind         string `json:"kind"`
	Interactions int    `json:"interactions"`
}

// TrackOrder records one ORDER interaction per distinct item. Repeated lines
// for the same item are summed.
func (h *Handler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req OrderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	quantities := make(map[int64]int, len(req.Items))
	for _, line := range req.Items {
		quantities[line.ItemID] += line.Quantity
	}
	for itemID := range quantities {
		if !h.requireItem(ctx, w, r, itemID) {
			return
		}
	}

	if err := h.tracker.TrackOrder(ctx, req.UserID, quantities); err != nil {
		h.respondTrackError(w, r, err)
		return
	}

	logging.Ctx(ctx).Debug().
		Str("user_id", sanitizeLogValue(req.UserID)).
		Int("lines", len(quantities)).
		Msg("Order tracked")
	respondSuccess(w, r, http.StatusCreated, InteractionAccepted{
		UserID:       req.UserID,
		Kind:         string(recommend.KindOrder),
		Interactions: len(quantities),
	}, start)
}

// TrackView records a VIEW interaction.
func (h *Handler) TrackView(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req ViewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	if !h.requireItem(ctx, w, r, req.ItemID) {
		return
	}
	if err := h.tracker.TrackView(ctx, req.UserID, req.ItemID); err != nil {
		h.respondTrackError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusCreated, InteractionAccepted{
		UserID:       req.UserID,
		Kind:         string(recommend.KindView),
		Interactions: 1,
	}, start)
}

// TrackRating records an explicit RATING interaction.
func (h *Handler) TrackRating(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req RatingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	if !h.requireItem(ctx, w, r, req.ItemID) {
		return
	}
	if err := h.tracker.TrackRating(ctx, req.UserID, req.ItemID, *req.Rating); err != nil {
		h.respondTrackError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusCreated, InteractionAccepted{
		UserID:       req.UserID,
		Kind:         string(recommend.KindRating),
		Interactions: 1,
	}, start)
}

// requireItem writes 404 for unknown items and 500 for lookup failures.
func (h *Handler) requireItem(ctx context.Context, w http.ResponseWriter, r *http.Request, itemID int64) bool {
	_, err := h.catalog.GetItem(ctx, itemID)
	switch {
	case err == nil:
		return true
	case errors.Is(err, database.ErrItemNotFound):
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, fmt.Sprintf("Item %d not found", itemID), nil)
	default:
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to look up item", err)
	}
	return false
}

func (h *Handler) respondTrackError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, recommend.ErrInvalidInteraction) {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}
	respondError(w, r, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to record interaction", err)
}
