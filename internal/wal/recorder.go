// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package wal

import (
	"context"
	"fmt"

	"github.com/tomtom215/platewise/internal/logging"
	"github.com/tomtom215/platewise/internal/recommend"
)

// Recorder is a recommend.InteractionRecorder that logs each interaction
// to the WAL before handing it to sink, and confirms it afterwards.
//
// Once the WAL write succeeds the interaction is accepted: a sink failure
// is logged and left to the retry loop, and RecordInteraction returns nil.
type Recorder struct {
	wal  *BadgerWAL
	sink recommend.InteractionRecorder
}

// NewRecorder wraps sink with w.
func NewRecorder(w *BadgerWAL, sink recommend.InteractionRecorder) *Recorder {
	return &Recorder{wal: w, sink: sink}
}

// RecordInteraction implements recommend.InteractionRecorder.
func (r *Recorder) RecordInteraction(ctx context.Context, in recommend.Interaction) error {
	if in.ID == "" {
		return ErrEmptyEntryID
	}

	// Claim before writing so the retry loop cannot pick the entry up
	// between Write and the first insert.
	claimed := r.wal.TryClaimEntry(in.ID)
	if claimed {
		defer r.wal.ReleaseEntry(in.ID)
	}

	if _, err := r.wal.Write(ctx, in); err != nil {
		return fmt.Errorf("wal write: %w", err)
	}
	if !claimed {
		// Same id already in flight; the other holder will deliver it.
		return nil
	}

	if err := r.sink.RecordInteraction(ctx, in); err != nil {
		logging.Warn().
			Err(err).
			Str("entry_id", in.ID).
			Msg("Interaction insert failed, left in WAL for retry")
		if updateErr := r.wal.UpdateAttempt(ctx, in.ID, err.Error()); updateErr != nil {
			logging.Error().Err(updateErr).Str("entry_id", in.ID).Msg("WAL: failed to update attempt")
		}
		return nil
	}

	if err := r.wal.Confirm(ctx, in.ID); err != nil {
		// The row is in DuckDB; a replay is a no-op there.
		logging.Warn().Err(err).Str("entry_id", in.ID).Msg("WAL: failed to confirm entry")
	}
	return nil
}

// Ensure interface compliance.
var _ recommend.InteractionRecorder = (*Recorder)(nil)
