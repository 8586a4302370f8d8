// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package recommend

import (
	"context"
	"time"
)

// InteractionKind classifies a user-item interaction.
type InteractionKind string

const (
	// KindView is a menu item page view.
	KindView InteractionKind = "VIEW"
	// KindOrder is an item line in a placed order.
	KindOrder InteractionKind = "ORDER"
	// KindRating is an explicit user rating.
	KindRating InteractionKind = "RATING"
)

// Valid reports whether k is one of the known kinds.
func (k InteractionKind) Valid() bool {
	switch k {
	case KindView, KindOrder, KindRating:
		return true
	default:
		return false
	}
}

// Default ratings used when an interaction carries no explicit rating.
const (
	DefaultOrderRating = 1.0
	DefaultViewRating  = 0.5
)

// Interaction is an immutable record of a user touching a catalog item.
type Interaction struct {
	// ID is a unique event id. Stores use it to make inserts idempotent.
	ID string `json:"id"`

	UserID string          `json:"user_id"`
	ItemID int64           `json:"item_id"`
	Kind   InteractionKind `json:"kind"`

	// Rating is nil when absent; see EffectiveRating.
	Rating *float64 `json:"rating,omitempty"`

	// Quantity is nil when absent.
	Quantity *int `json:"quantity,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// EffectiveRating returns the explicit rating when present. Otherwise an
// ORDER is worth its quantity (1.0 without one) and anything else 0.5.
func (in *Interaction) EffectiveRating() float64 {
	if in.Rating != nil {
		return *in.Rating
	}
	if in.Kind == KindOrder {
		if in.Quantity != nil {
			return float64(*in.Quantity)
		}
		return DefaultOrderRating
	}
	return DefaultViewRating
}

// Item is a servable catalog entry.
type Item struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Quantity    int      `json:"quantity"` // units in stock
	Cuisine     string   `json:"cuisine"`
	Vegetarian  bool     `json:"vegetarian"`
	Vegan       bool     `json:"vegan"`
	Allergens   []string `json:"allergens"`
}

// Available reports whether the item can currently be ordered.
func (it *Item) Available() bool {
	return it.Quantity > 0
}

// FactorMatrices holds the latent vectors learned by a Factorizer.
// User has one row per user index, Item one row per item index, each of
// length K.
type FactorMatrices struct {
	User [][]float64
	Item [][]float64
	K    int
}

// PassReport summarizes one factorization run. Failed row solves keep
// their previous vector and are counted here instead of aborting training.
type PassReport struct {
	Iterations   int `json:"iterations"`
	UserSolves   int `json:"user_solves"`
	ItemSolves   int `json:"item_solves"`
	UserFailures int `json:"user_failures"`
	ItemFailures int `json:"item_failures"`

	// RMSE is the root mean squared error over observed cells after the
	// last iteration. It is informational only.
	RMSE float64 `json:"rmse"`
}

// Failures returns the total failed row solves.
func (r *PassReport) Failures() int {
	return r.UserFailures + r.ItemFailures
}

// Factorizer turns a rating matrix into factor matrices.
type Factorizer interface {
	Factorize(ctx context.Context, ratings *RatingMatrix) (*FactorMatrices, *PassReport, error)
}

// TrainedModel is one immutable training result. The coordinator publishes
// it as a whole; nothing mutates it afterwards.
type TrainedModel struct {
	ID        string
	TrainedAt time.Time
	Factors   *FactorMatrices
	Mapping   *IndexMapping
}

// Names of the persisted blobs inside the model directory.
const (
	UserFactorsBlob = "user-factors.bin"
	ItemFactorsBlob = "item-factors.bin"
	MappingsBlob    = "mappings.bin"
)

// InteractionStore is the read side of the interaction log.
type InteractionStore interface {
	// ListAllInteractions returns every interaction in recording order.
	ListAllInteractions(ctx context.Context) ([]Interaction, error)

	// CountOrders returns the number of ORDER interactions for userID.
	CountOrders(ctx context.Context, userID string) (int, error)

	// ListDistinctUserIDs returns every user id with at least one interaction.
	ListDistinctUserIDs(ctx context.Context) ([]string, error)
}

// InteractionRecorder is the write side of the interaction log.
type InteractionRecorder interface {
	RecordInteraction(ctx context.Context, in Interaction) error
}

// Catalog resolves item ids to items. found is false for unknown ids.
type Catalog interface {
	FindByID(ctx context.Context, itemID int64) (item Item, found bool, err error)
}

// ModelStore persists trained models.
type ModelStore interface {
	Save(ctx context.Context, model *TrainedModel) error
	Load(ctx context.Context) (*TrainedModel, error)
	Exists(name string) bool
}
