// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package wal

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/tomtom215/platewise/internal/logging"
	"github.com/tomtom215/platewise/internal/metrics"
	"github.com/tomtom215/platewise/internal/recommend"
)

type retryResult int

const (
	retryResultSuccess retryResult = iota
	retryResultFailed
	retryResultExpired
	retryResultMaxRetried
	retryResultSkipped
)

// RecoveryResult summarizes one pass over the pending entries.
type RecoveryResult struct {
	TotalPending int           `json:"total_pending"`
	Recovered    int           `json:"recovered"`
	Failed       int           `json:"failed"`
	Expired      int           `json:"expired"`
	MaxRetried   int           `json:"max_retried"`
	Skipped      int           `json:"skipped"`
	Duration     time.Duration `json:"duration"`
}

func (r *RecoveryResult) add(res retryResult) {
	switch res {
	case retryResultSuccess:
		r.Recovered++
	case retryResultFailed:
		r.Failed++
	case retryResultExpired:
		r.Expired++
	case retryResultMaxRetried:
		r.MaxRetried++
	case retryResultSkipped:
		r.Skipped++
	}
}

// RetryLoop replays pending entries into sink on a fixed interval.
type RetryLoop struct {
	wal    *BadgerWAL
	sink   recommend.InteractionRecorder
	config Config

	// now is replaceable in tests.
	now func() time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewRetryLoop creates a retry loop for w.
func NewRetryLoop(w *BadgerWAL, sink recommend.InteractionRecorder) *RetryLoop {
	return &RetryLoop{
		wal:    w,
		sink:   sink,
		config: w.GetConfig(),
		now:    time.Now,
	}
}

// Start runs the loop in the background until Stop or ctx cancellation.
func (r *RetryLoop) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.running = true
	go r.run(loopCtx, r.done)

	logging.Info().
		Dur("interval", r.config.RetryInterval).
		Int("max_retries", r.config.MaxRetries).
		Msg("WAL retry loop started")
	return nil
}

// Stop cancels the loop and waits for it to exit.
func (r *RetryLoop) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.cancel()
	done := r.done
	r.running = false
	r.mu.Unlock()

	<-done
	logging.Info().Msg("WAL retry loop stopped")
}

// IsRunning reports whether the loop is active.
func (r *RetryLoop) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *RetryLoop) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.config.RetryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
				logging.Error().Err(err).Msg("WAL retry pass failed")
			}
		}
	}
}

// RunOnce processes every pending entry once. It is also the startup
// recovery pass.
func (r *RetryLoop) RunOnce(ctx context.Context) (*RecoveryResult, error) {
	start := r.now()
	result := &RecoveryResult{}

	entries, err := r.wal.GetPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("get pending entries: %w", err)
	}
	result.TotalPending = len(entries)

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			result.Duration = r.now().Sub(start)
			return result, err
		}
		result.add(r.processEntry(ctx, entry))
	}
	result.Duration = r.now().Sub(start)

	if result.Recovered+result.Failed+result.Expired+result.MaxRetried > 0 {
		logging.Info().
			Int("pending", result.TotalPending).
			Int("recovered", result.Recovered).
			Int("failed", result.Failed).
			Int("expired", result.Expired).
			Int("max_retried", result.MaxRetried).
			Dur("duration", result.Duration).
			Msg("WAL retry complete")
	}
	return result, nil
}

func (r *RetryLoop) processEntry(ctx context.Context, entry *Entry) retryResult {
	if !r.wal.TryClaimEntry(entry.ID) {
		return retryResultSkipped
	}
	defer r.wal.ReleaseEntry(entry.ID)

	if r.config.EntryTTL > 0 && r.now().Sub(entry.CreatedAt) > r.config.EntryTTL {
		logging.Warn().Str("entry_id", entry.ID).Msg("WAL retry: entry expired, removing")
		r.drop(ctx, entry.ID)
		metrics.WALRetries.WithLabelValues("dropped").Inc()
		return retryResultExpired
	}

	if entry.Attempts >= r.config.MaxRetries {
		logging.Error().
			Str("entry_id", entry.ID).
			Str("user_id", entry.Interaction.UserID).
			Int("attempts", entry.Attempts).
			Str("last_error", entry.LastError).
			Msg("WAL retry: entry exceeded max retries, removing")
		r.drop(ctx, entry.ID)
		metrics.WALRetries.WithLabelValues("dropped").Inc()
		return retryResultMaxRetried
	}

	if !r.isReadyForRetry(entry) {
		return retryResultSkipped
	}

	insertCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err := r.sink.RecordInteraction(insertCtx, entry.Interaction)
	cancel()
	if err != nil {
		logging.Warn().
			Err(err).
			Str("entry_id", entry.ID).
			Int("attempt", entry.Attempts+1).
			Msg("WAL retry: insert failed")
		if updateErr := r.wal.UpdateAttempt(ctx, entry.ID, err.Error()); updateErr != nil {
			logging.Error().Err(updateErr).Str("entry_id", entry.ID).Msg("WAL retry: failed to update attempt")
		}
		metrics.WALRetries.WithLabelValues("failed").Inc()
		return retryResultFailed
	}

	if err := r.wal.Confirm(ctx, entry.ID); err != nil {
		logging.Error().Err(err).Str("entry_id", entry.ID).Msg("WAL retry: failed to confirm entry")
		metrics.WALRetries.WithLabelValues("failed").Inc()
		return retryResultFailed
	}
	metrics.WALRetries.WithLabelValues("success").Inc()
	return retryResultSuccess
}

func (r *RetryLoop) drop(ctx context.Context, entryID string) {
	if err := r.wal.DeleteEntry(ctx, entryID); err != nil {
		logging.Error().Err(err).Str("entry_id", entryID).Msg("WAL retry: failed to delete entry")
	}
}

func (r *RetryLoop) isReadyForRetry(entry *Entry) bool {
	if entry.LastAttemptAt.IsZero() {
		return true
	}
	return r.now().Sub(entry.LastAttemptAt) >= r.calculateBackoff(entry.Attempts)
}

// calculateBackoff returns base * 2^(attempts-1), capped at 5 minutes.
func (r *RetryLoop) calculateBackoff(attempts int) time.Duration {
	const maxBackoff = 5 * time.Minute
	base := r.config.RetryBackoff
	if attempts <= 0 {
		return 0
	}
	if attempts > 50 {
		return maxBackoff
	}

	backoff := time.Duration(float64(base) * math.Pow(2, float64(attempts-1)))
	if backoff < 0 || backoff > maxBackoff {
		return maxBackoff
	}
	return backoff
}
