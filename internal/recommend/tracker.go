// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package recommend

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidInteraction is returned by Tracker for malformed input.
var ErrInvalidInteraction = errors.New("invalid interaction")

// Tracker turns user actions into interactions and records them.
type Tracker struct {
	recorder InteractionRecorder
	counter  InteractionStore
	now      func() time.Time
}

// NewTracker creates a tracker. counter backs OrderCount and may be nil.
func NewTracker(recorder InteractionRecorder, counter InteractionStore) *Tracker {
	return &Tracker{
		recorder: recorder,
		counter:  counter,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// TrackOrder records one ORDER interaction per order line, rated by
// quantity. Lines are recorded in ascending item id order.
func (t *Tracker) TrackOrder(ctx context.Context, userID string, quantities map[int64]int) error {
	if userID == "" || len(quantities) == 0 {
		return fmt.Errorf("%w: order needs a user and at least one line", ErrInvalidInteraction)
	}

	itemIDs := make([]int64, 0, len(quantities))
	for id, qty := range quantities {
		if qty <= 0 {
			return fmt.Errorf("%w: item %d has quantity %d", ErrInvalidInteraction, id, qty)
		}
		itemIDs = append(itemIDs, id)
	}
	slices.Sort(itemIDs)

	ts := t.now()
	for _, id := range itemIDs {
		qty := quantities[id]
		rating := float64(qty)
		if err := t.record(ctx, Interaction{
			UserID:    userID,
			ItemID:    id,
			Kind:      KindOrder,
			Rating:    &rating,
			Quantity:  &qty,
			Timestamp: ts,
		}); err != nil {
			return err
		}
	}
	return nil
}

// TrackView records a VIEW interaction.
func (t *Tracker) TrackView(ctx context.Context, userID string, itemID int64) error {
	if userID == "" {
		return fmt.Errorf("%w: view needs a user", ErrInvalidInteraction)
	}
	rating, qty := DefaultViewRating, 1
	return t.record(ctx, Interaction{
		UserID:    userID,
		ItemID:    itemID,
		Kind:      KindView,
		Rating:    &rating,
		Quantity:  &qty,
		Timestamp: t.now(),
	})
}

// TrackRating records an explicit RATING interaction.
func (t *Tracker) TrackRating(ctx context.Context, userID string, itemID int64, rating float64) error {
	if userID == "" {
		return fmt.Errorf("%w: rating needs a user", ErrInvalidInteraction)
	}
	if rating < 0 || rating > 5 {
		return fmt.Errorf("%w: rating %.2f outside [0, 5]", ErrInvalidInteraction, rating)
	}
	qty := 1
	return t.record(ctx, Interaction{
		UserID:    userID,
		ItemID:    itemID,
		Kind:      KindRating,
		Rating:    &rating,
		Quantity:  &qty,
		Timestamp: t.now(),
	})
}

// OrderCount returns the number of ORDER interactions recorded for userID.
func (t *Tracker) OrderCount(ctx context.Context, userID string) (int, error) {
	if t.counter == nil {
		return 0, errors.New("order counting not configured")
	}
	return t.counter.CountOrders(ctx, userID)
}

func (t *Tracker) record(ctx context.Context, in Interaction) error {
	in.ID = uuid.NewString()
	if err := t.recorder.RecordInteraction(ctx, in); err != nil {
		return fmt.Errorf("record %s interaction: %w", in.Kind, err)
	}
	return nil
}
