// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/platewise/internal/config"
	"github.com/tomtom215/platewise/internal/logging"
	"github.com/tomtom215/platewise/internal/recommend"
	"github.com/tomtom215/platewise/internal/recommend/algorithms"
	"github.com/tomtom215/platewise/internal/recommend/storage"
	"github.com/tomtom215/platewise/internal/supervisor"
	"github.com/tomtom215/platewise/internal/supervisor/services"
)

// initRecommend builds the training coordinator, restores the persisted
// model and adds the daily training service to the tree. It returns nil,
// nil when recommendations are disabled.
func initRecommend(ctx context.Context, cfg *config.Config, store recommend.InteractionStore, catalog recommend.Catalog, tree *supervisor.SupervisorTree) (*recommend.Coordinator, error) {
	logger := logging.WithComponent("recommend")

	if !cfg.Recommend.Enabled {
		logger.Info().Msg("Recommendation engine disabled (RECOMMEND_ENABLED=false)")
		return nil, nil
	}

	alsCfg, err := algorithms.ConfigFromSettings(&cfg.Recommend)
	if err != nil {
		return nil, err
	}
	als := algorithms.NewALS(alsCfg, logger)
	effective := als.Config()

	logger.Info().
		Int("factors", effective.NumFactors).
		Int("iterations", effective.NumIterations).
		Float64("regularization", effective.Regularization).
		Str("solver", cfg.Recommend.Solver).
		Str("model_dir", cfg.Recommend.ModelDir).
		Int("min_orders_for_ml", cfg.Recommend.MinOrdersForML).
		Msg("Initializing recommendation engine")

	coordinator, err := recommend.NewCoordinator(
		recommend.Config{MinOrdersForML: cfg.Recommend.MinOrdersForML},
		store,
		catalog,
		storage.NewStore(cfg.Recommend.ModelDir),
		als,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("create coordinator: %w", err)
	}

	// A model that fails to load is not fatal: the coordinator stays
	// untrained and trains on first use.
	if err := coordinator.LoadPersisted(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to load persisted model")
	}

	tree.AddTrainingService(services.NewRecommendService(coordinator, services.RecommendServiceConfig{
		TrainOnStartup: cfg.Recommend.TrainOnStartup,
		Hour:           cfg.Recommend.TrainHour,
		Minute:         cfg.Recommend.TrainMinute,
	}, logger))
	logger.Info().
		Int("hour", cfg.Recommend.TrainHour).
		Int("minute", cfg.Recommend.TrainMinute).
		Msg("Training service added to supervisor tree")

	return coordinator, nil
}
