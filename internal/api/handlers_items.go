// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/platewise/internal/database"
	"github.com/tomtom215/platewise/internal/models"
)

// GetItem serves one catalog item.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil || itemID <= 0 {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "itemID must be a positive integer", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	item, err := h.catalog.GetItem(ctx, itemID)
	if errors.Is(err, database.ErrItemNotFound) {
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, "Item not found", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to load item", err)
		return
	}
	respondSuccess(w, r, http.StatusOK, item, start)
}

// ListItems serves the catalog in id order.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	items, err := h.catalog.ListItems(ctx, getBoolParam(r, "available", false))
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to load catalog", err)
		return
	}
	respondSuccess(w, r, http.StatusOK, items, start)
}
