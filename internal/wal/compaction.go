// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package wal

import (
	"context"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/platewise/internal/logging"
)

// Compactor periodically deletes confirmed entries and runs value log GC.
// Expired pending entries are left to BadgerDB's TTL.
type Compactor struct {
	wal    *BadgerWAL
	config Config

	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	lastRun  time.Time
	lastSize int64
}

// CompactorStats describes the last compaction run.
type CompactorStats struct {
	LastRun     time.Time `json:"last_run"`
	LastDeleted int64     `json:"last_deleted"`
}

// NewCompactor creates a compactor for w.
func NewCompactor(w *BadgerWAL) *Compactor {
	return &Compactor{wal: w, config: w.GetConfig()}
}

// Start runs compaction every CompactInterval until Stop or ctx ends.
func (c *Compactor) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.running = true

	c.wg.Add(1)
	go c.run(loopCtx)

	logging.Info().Dur("interval", c.config.CompactInterval).Msg("WAL compactor started")
	return nil
}

// Stop ends the loop and waits for it.
func (c *Compactor) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.cancel()
	c.running = false
	c.mu.Unlock()

	c.wg.Wait()
	logging.Info().Msg("WAL compactor stopped")
}

// IsRunning reports whether the loop is active.
func (c *Compactor) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Compactor) run(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CompactInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.RunNow(); err != nil {
				logging.Error().Err(err).Msg("WAL compaction failed")
			}
		}
	}
}

// RunNow compacts immediately and returns the number of confirmed entries
// removed.
func (c *Compactor) RunNow() (int64, error) {
	start := time.Now()

	deleted, err := c.deleteConfirmedEntries()
	if err != nil {
		return 0, err
	}
	if err := c.wal.RunGC(); err != nil {
		logging.Warn().Err(err).Msg("WAL compaction GC error")
	}

	c.wal.mu.Lock()
	c.wal.lastCompaction = time.Now()
	c.wal.mu.Unlock()

	c.mu.Lock()
	c.lastRun = time.Now()
	c.lastSize = deleted
	c.mu.Unlock()

	if deleted > 0 {
		logging.Info().
			Int64("deleted", deleted).
			Dur("duration", time.Since(start)).
			Msg("WAL compaction removed entries")
	}
	return deleted, nil
}

func (c *Compactor) deleteConfirmedEntries() (int64, error) {
	if err := c.wal.checkOpen(); err != nil {
		return 0, err
	}

	var keys [][]byte
	err := c.wal.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixConfirmed)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	// WriteBatch splits large deletes across transactions.
	wb := c.wal.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			return 0, err
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, err
	}
	return int64(len(keys)), nil
}

// GetStats returns the last run's statistics.
func (c *Compactor) GetStats() CompactorStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CompactorStats{LastRun: c.lastRun, LastDeleted: c.lastSize}
}
