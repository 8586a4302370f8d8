// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package database

import (
	"context"
	"errors"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/platewise/internal/config"
	"github.com/tomtom215/platewise/internal/logging"
	"github.com/tomtom215/platewise/internal/metrics"
	"github.com/tomtom215/platewise/internal/recommend"
)

// BreakerStore guards interaction store reads with a circuit breaker.
// Training and eligibility checks fail fast while DuckDB is unhealthy
// instead of queueing behind 30s query timeouts.
type BreakerStore struct {
	store recommend.InteractionStore

	interactions *gobreaker.CircuitBreaker[[]recommend.Interaction]
	users        *gobreaker.CircuitBreaker[[]string]
	counts       *gobreaker.CircuitBreaker[int]
}

// NewBreakerStore wraps store. Each read method has its own breaker so a
// failing full scan does not block the cheap order count.
func NewBreakerStore(store recommend.InteractionStore, cfg config.BreakerConfig) *BreakerStore {
	return &BreakerStore{
		store:        store,
		interactions: newBreaker[[]recommend.Interaction]("interactions-list", cfg),
		users:        newBreaker[[]string]("interactions-users", cfg),
		counts:       newBreaker[int]("interactions-count", cfg),
	}
}

func newBreaker[T any](name string, cfg config.BreakerConfig) *gobreaker.CircuitBreaker[T] {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation says nothing about the database.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})
}

func execute[T any](cb *gobreaker.CircuitBreaker[T], fn func() (T, error)) (T, error) {
	result, err := cb.Execute(fn)
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(cb.Name(), "success").Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(cb.Name(), "rejected").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(cb.Name(), "failure").Inc()
	}
	return result, err
}

// ListAllInteractions implements recommend.InteractionStore.
func (b *BreakerStore) ListAllInteractions(ctx context.Context) ([]recommend.Interaction, error) {
	return execute(b.interactions, func() ([]recommend.Interaction, error) {
		return b.store.ListAllInteractions(ctx)
	})
}

// CountOrders implements recommend.InteractionStore.
func (b *BreakerStore) CountOrders(ctx context.Context, userID string) (int, error) {
	return execute(b.counts, func() (int, error) {
		return b.store.CountOrders(ctx, userID)
	})
}

// ListDistinctUserIDs implements recommend.InteractionStore.
func (b *BreakerStore) ListDistinctUserIDs(ctx context.Context) ([]string, error) {
	return execute(b.users, func() ([]string, error) {
		return b.store.ListDistinctUserIDs(ctx)
	})
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// Ensure interface compliance.
var _ recommend.InteractionStore = (*BreakerStore)(nil)
