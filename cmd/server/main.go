// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

// Package main is the entry point for the Platewise server.
//
// Platewise recommends menu items to food-ordering users with a matrix
// factorization model (ALS) trained on their orders, views and ratings.
//
// # Startup order
//
//  1. Configuration (Koanf v2: defaults, config.yaml, environment)
//  2. Logging (zerolog)
//  3. DuckDB catalog and interaction store, seeded with the default menu
//  4. BadgerDB write-ahead log for tracked interactions (optional), with
//     recovery of entries a previous run did not confirm
//  5. Training coordinator: load the persisted model and check it for
//     staleness against the store
//  6. Supervisor tree: WAL services, daily training and the HTTP server
//
// # Signal handling
//
// SIGINT and SIGTERM cancel the root context. The supervisor stops the HTTP
// server (10s drain), the training service and the WAL loops, after which
// the WAL and DuckDB are closed.
//
// # Example
//
//	export HTTP_PORT=8080
//	export RECOMMEND_MODEL_DIR=/data/ml-models
//	export WAL_ENABLED=true
//	./platewise
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/platewise/internal/api"
	"github.com/tomtom215/platewise/internal/config"
	"github.com/tomtom215/platewise/internal/database"
	"github.com/tomtom215/platewise/internal/logging"
	"github.com/tomtom215/platewise/internal/recommend"
	"github.com/tomtom215/platewise/internal/supervisor"
	"github.com/tomtom215/platewise/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server failed")
	}
	logging.Info().Msg("Application stopped gracefully")
}

//nolint:gocyclo // sequential startup wiring
func run(cfg *config.Config) error {
	logging.Info().
		Str("db_path", cfg.Database.Path).
		Bool("wal_enabled", cfg.WAL.Enabled).
		Bool("recommend_enabled", cfg.Recommend.Enabled).
		Msg("Starting Platewise with supervisor tree")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: 15 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	// Writes go through the WAL when it is enabled, straight to DuckDB
	// otherwise.
	var recorder recommend.InteractionRecorder = db
	walComponents, err := initWAL(ctx, cfg, db, tree)
	if err != nil {
		return fmt.Errorf("initialize WAL: %w", err)
	}
	if walComponents != nil {
		defer walComponents.Close()
		recorder = walComponents.Recorder
	}

	reads := database.NewBreakerStore(db, cfg.Breaker)
	tracker := recommend.NewTracker(recorder, reads)

	// Per-item lookups on the recommendation and tracking paths go through
	// the LRU; list queries always hit DuckDB.
	catalog := database.NewCachedCatalog(db, database.DefaultCatalogCacheSize, database.DefaultCatalogCacheTTL)

	coordinator, err := initRecommend(ctx, cfg, reads, catalog, tree)
	if err != nil {
		return fmt.Errorf("initialize recommendations: %w", err)
	}

	// A nil *Coordinator must not become a non-nil interface.
	var recommender api.Recommender
	if coordinator != nil {
		recommender = coordinator
	}

	handler := api.NewHandler(recommender, tracker, catalog, db,
		api.WithRequestTimeout(cfg.Server.Timeout))
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromServer(&cfg.Server)))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      writeTimeout(cfg),
		IdleTimeout:       60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport() //nolint:errcheck // report is best effort
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
	return nil
}

// writeTimeout leaves room for POST /admin/train, which blocks until the
// pass finishes.
func writeTimeout(cfg *config.Config) time.Duration {
	if !cfg.Recommend.Enabled {
		return cfg.Server.Timeout
	}
	return max(cfg.Server.Timeout, 10*time.Minute)
}
