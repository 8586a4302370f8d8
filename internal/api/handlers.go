// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package api

import (
	"context"
	"time"

	"github.com/tomtom215/platewise/internal/recommend"
)

// Recommender is the part of recommend.Coordinator the handlers use.
type Recommender interface {
	RecommendItems(ctx context.Context, userID string, topN int, prefs *recommend.Preferences) []recommend.RecommendedItem
	TryTrainModel(ctx context.Context) error
	Status() recommend.Status
}

// InteractionTracker records user actions.
type InteractionTracker interface {
	TrackOrder(ctx context.Context, userID string, quantities map[int64]int) error
	TrackView(ctx context.Context, userID string, itemID int64) error
	TrackRating(ctx context.Context, userID string, itemID int64, rating float64) error
}

// ItemCatalog reads the menu.
type ItemCatalog interface {
	GetItem(ctx context.Context, itemID int64) (*recommend.Item, error)
	ListItems(ctx context.Context, availableOnly bool) ([]recommend.Item, error)
}

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves every API endpoint.
type Handler struct {
	recommender Recommender
	tracker     InteractionTracker
	catalog     ItemCatalog
	db          Pinger

	requestTimeout time.Duration
	trainTimeout   time.Duration
	startTime      time.Time
}

// HandlerOption customises a Handler.
type HandlerOption func(*Handler)

// WithRequestTimeout bounds database work per request. Default 10s.
func WithRequestTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) {
		if d > 0 {
			h.requestTimeout = d
		}
	}
}

// WithTrainTimeout bounds POST /admin/train. Default 10m.
func WithTrainTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) {
		if d > 0 {
			h.trainTimeout = d
		}
	}
}

// NewHandler creates a handler. recommender may be nil when recommendations
// are disabled; the recommendation endpoints then always serve the fallback
// and training returns 503.
func NewHandler(recommender Recommender, tracker InteractionTracker, catalog ItemCatalog, db Pinger, opts ...HandlerOption) *Handler {
	h := &Handler{
		recommender:    recommender,
		tracker:        tracker,
		catalog:        catalog,
		db:             db,
		requestTimeout: 10 * time.Second,
		trainTimeout:   10 * time.Minute,
		startTime:      time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}
