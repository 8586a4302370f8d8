// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

// Package services adapts application components to suture.Service.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Trainer runs one training pass. Satisfied by *recommend.Coordinator.
type Trainer interface {
	TrainModel(ctx context.Context) error
}

// RecommendServiceConfig holds configuration for the training service.
type RecommendServiceConfig struct {
	// TrainOnStartup runs a pass as soon as the service starts.
	TrainOnStartup bool

	// Hour and Minute set the daily training time on the local clock.
	Hour   int
	Minute int

	// Interval replaces the daily schedule with a fixed period when > 0.
	Interval time.Duration

	// Timeout bounds a single pass. Default: 30m
	Timeout time.Duration
}

// RecommendService retrains the model on a daily schedule. Failures are
// logged and retried at the next slot; the previous model keeps serving.
type RecommendService struct {
	trainer Trainer
	config  RecommendServiceConfig
	logger  zerolog.Logger
	name    string

	// now is replaceable in tests.
	now func() time.Time
}

// NewRecommendService creates a new training service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRecommendService(trainer Trainer, cfg RecommendServiceConfig, logger zerolog.Logger) *RecommendService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}
	return &RecommendService{
		trainer: trainer,
		config:  cfg,
		logger:  logger.With().Str("service", "recommend").Logger(),
		name:    "recommend-service",
		now:     time.Now,
	}
}

// Serve implements suture.Service.
func (s *RecommendService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("train_on_startup", s.config.TrainOnStartup).
		Int("hour", s.config.Hour).
		Int("minute", s.config.Minute).
		Dur("interval", s.config.Interval).
		Msg("recommendation service starting")

	if s.config.TrainOnStartup {
		s.train(ctx, "startup")
	}

	for {
		wait := s.nextDelay()
		s.logger.Debug().Dur("wait", wait).Msg("next training scheduled")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info().Msg("recommendation service shutting down")
			return ctx.Err()
		case <-timer.C:
			s.train(ctx, "scheduled")
		}
	}
}

func (s *RecommendService) nextDelay() time.Duration {
	if s.config.Interval > 0 {
		return s.config.Interval
	}
	now := s.now()
	return NextRun(now, s.config.Hour, s.config.Minute).Sub(now)
}

// NextRun returns the first hour:minute strictly after now, in now's
// location.
func NextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (s *RecommendService) train(ctx context.Context, trigger string) {
	trainCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	if err := s.trainer.TrainModel(trainCtx); err != nil {
		s.logger.Warn().Err(err).Str("trigger", trigger).Msg("model training failed")
		return
	}
	s.logger.Info().
		Str("trigger", trigger).
		Dur("duration", time.Since(start)).
		Msg("model training complete")
}

// String returns the service name for logging.
func (s *RecommendService) String() string {
	return s.name
}
