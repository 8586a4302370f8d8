// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/platewise/internal/config"
	"github.com/tomtom215/platewise/internal/database"
	"github.com/tomtom215/platewise/internal/logging"
	"github.com/tomtom215/platewise/internal/recommend"
	"github.com/tomtom215/platewise/internal/recommend/algorithms"
	"github.com/tomtom215/platewise/internal/recommend/storage"
)

// env is everything a command needs, opened from config and flags.
type env struct {
	cfg         *config.Config
	db          *database.DB
	models      *storage.Store
	coordinator *recommend.Coordinator
}

func (e *env) Close() {
	if err := e.db.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing database")
	}
}

// openEnv loads configuration, applies flag overrides and opens the
// database. The catalog is never seeded from here.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if dir, _ := cmd.Flags().GetString("model-dir"); dir != "" {
		cfg.Recommend.ModelDir = dir
	}
	cfg.Database.SeedCatalog = false

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: "console",
		Output: cmd.ErrOrStderr(),
	})

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.Database.Path, err)
	}

	alsCfg, err := algorithms.ConfigFromSettings(&cfg.Recommend)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	logger := logging.WithComponent("platewisectl")
	models := storage.NewStore(cfg.Recommend.ModelDir)

	coordinator, err := recommend.NewCoordinator(
		recommend.Config{MinOrdersForML: cfg.Recommend.MinOrdersForML},
		db, db, models,
		algorithms.NewALS(alsCfg, logger),
		logger,
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &env{cfg: cfg, db: db, models: models, coordinator: coordinator}, nil
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
