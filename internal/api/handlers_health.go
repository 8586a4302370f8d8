// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/platewise/internal/logging"
)

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status         string  `json:"status"` // "healthy" or "degraded"
	DatabaseOK     bool    `json:"database_ok"`
	ModelState     string  `json:"model_state,omitempty"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
	RecommendReady bool    `json:"recommend_ready"`
}

// Health reports database reachability and model state. A failed ping
// answers 503 so load balancers drain the instance.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := HealthStatus{
		Status:        "healthy",
		DatabaseOK:    true,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}
	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Health check: database ping failed")
			status.Status = "degraded"
			status.DatabaseOK = false
		}
	}
	if h.recommender != nil {
		st := h.recommender.Status()
		status.ModelState = st.State
		status.RecommendReady = st.ModelID != ""
	}

	code := http.StatusOK
	if !status.DatabaseOK {
		code = http.StatusServiceUnavailable
	}
	respondSuccess(w, r, code, status, start)
}
