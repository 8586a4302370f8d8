// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package main

import (
	"context"

	"github.com/tomtom215/platewise/internal/config"
	"github.com/tomtom215/platewise/internal/logging"
	"github.com/tomtom215/platewise/internal/recommend"
	"github.com/tomtom215/platewise/internal/supervisor"
	"github.com/tomtom215/platewise/internal/supervisor/services"
	"github.com/tomtom215/platewise/internal/wal"
)

// WALComponents holds WAL-related components for lifecycle management.
type WALComponents struct {
	WAL      *wal.BadgerWAL
	Recorder *wal.Recorder
}

// Close closes the WAL. The retry loop and compactor are stopped by the
// supervisor before this runs.
func (c *WALComponents) Close() {
	if err := c.WAL.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing WAL")
	}
}

// initWAL opens the interaction WAL, replays entries left unconfirmed by a
// previous run into sink and registers the retry loop and compactor with the
// data layer. It returns nil, nil when the WAL is disabled.
func initWAL(ctx context.Context, cfg *config.Config, sink recommend.InteractionRecorder, tree *supervisor.SupervisorTree) (*WALComponents, error) {
	if !cfg.WAL.Enabled {
		logging.Warn().Msg("WAL disabled (WAL_ENABLED=false). Interactions are written directly to DuckDB.")
		return nil, nil
	}

	walCfg := wal.FromSettings(cfg.WAL)
	logging.Info().Str("path", walCfg.Path).Bool("sync_writes", walCfg.SyncWrites).Msg("Initializing WAL...")

	w, err := wal.Open(&walCfg)
	if err != nil {
		return nil, err
	}

	retryLoop := wal.NewRetryLoop(w, sink)

	logging.Info().Msg("Running WAL recovery for pending entries...")
	if _, err := retryLoop.RunOnce(ctx); err != nil {
		logging.Warn().Err(err).Msg("WAL recovery error")
	}

	tree.AddDataService(services.NewWALRetryService(retryLoop))
	tree.AddDataService(services.NewWALCompactorService(wal.NewCompactor(w)))
	logging.Info().Msg("WAL retry loop and compactor added to supervisor tree")

	return &WALComponents{
		WAL:      w,
		Recorder: wal.NewRecorder(w, sink),
	}, nil
}
