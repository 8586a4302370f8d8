// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

// Package recommend implements collaborative-filtering recommendations using
// Alternating Least Squares matrix factorization.
//
// # Pipeline
//
//	interactions -> BuildIndex -> BuildRatingMatrix -> Factorizer -> TrainedModel
//	                                                                 |-> ModelStore (persist)
//	                                                                 |-> Score (serve)
//
// The Coordinator sits above the pipeline. It decides when to run it
// (scheduled or lazily on the first eligible request) and owns the single
// published TrainedModel.
//
// # Determinism
//
// User and item ids are sorted before indices are assigned, the factor
// matrices are initialized from a seeded generator, and ties in scoring are
// broken by ascending item index. Training the same interactions with the
// same seed produces the same model, bit for bit.
//
// # Thread Safety
//
// Training is serialized by a mutex. A finished model is published through
// an atomic pointer and never mutated afterwards, so scoring runs without
// locks and never observes a half-trained model.
//
// # Usage
//
//	coord, err := recommend.NewCoordinator(cfg, store, catalog, models,
//	    algorithms.NewALS(algorithms.DefaultALSConfig(), logger), logger)
//	if err != nil {
//	    return err
//	}
//	if err := coord.LoadPersisted(ctx); err != nil {
//	    logger.Warn().Err(err).Msg("Persisted model not loaded")
//	}
//	ids := coord.Recommend(ctx, "alice", 5)
package recommend
