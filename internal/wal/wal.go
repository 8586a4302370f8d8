// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package wal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/goccy/go-json"

	"github.com/tomtom215/platewise/internal/logging"
	"github.com/tomtom215/platewise/internal/metrics"
	"github.com/tomtom215/platewise/internal/recommend"
)

// Entry is one logged interaction and its delivery state.
type Entry struct {
	// ID is the interaction id. Reusing it makes replays idempotent on the
	// DuckDB side.
	ID string `json:"id"`

	Interaction recommend.Interaction `json:"interaction"`

	CreatedAt     time.Time  `json:"created_at"`
	Attempts      int        `json:"attempts"`
	LastAttemptAt time.Time  `json:"last_attempt_at,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
	Confirmed     bool       `json:"confirmed"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
}

// Stats contains WAL counters for monitoring.
type Stats struct {
	PendingCount   int64     `json:"pending_count"`
	ConfirmedCount int64     `json:"confirmed_count"`
	TotalWrites    int64     `json:"total_writes"`
	TotalConfirms  int64     `json:"total_confirms"`
	TotalRetries   int64     `json:"total_retries"`
	LastCompaction time.Time `json:"last_compaction"`
	DBSizeBytes    int64     `json:"db_size_bytes"`
}

// BadgerWAL stores entries in BadgerDB under a pending or confirmed prefix.
type BadgerWAL struct {
	db     *badger.DB
	config Config

	totalWrites   atomic.Int64
	totalConfirms atomic.Int64
	totalRetries  atomic.Int64

	mu             sync.RWMutex
	closed         bool
	lastCompaction time.Time

	// processing tracks entry ids claimed by the recorder, recovery or the
	// retry loop so only one of them inserts a given entry at a time.
	processing sync.Map
}

const (
	prefixPending   = "pending:"
	prefixConfirmed = "confirmed:"
)

// Open validates cfg and opens (or creates) the BadgerDB at cfg.Path.
func Open(cfg *Config) (*BadgerWAL, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid WAL config: %w", err)
	}
	return open(cfg)
}

// OpenForTesting opens a WAL without validation so tests can use short
// intervals. Do not use in production code.
func OpenForTesting(cfg *Config) (*BadgerWAL, error) {
	if cfg.NumCompactors < 2 {
		cfg.NumCompactors = 2
	}
	if cfg.GCRatio == 0 {
		cfg.GCRatio = 0.5
	}
	if cfg.CloseTimeout == 0 {
		cfg.CloseTimeout = 30 * time.Second
	}
	if cfg.MemTableSize == 0 {
		cfg.MemTableSize = 16 * 1024 * 1024
	}
	if cfg.ValueLogFileSize == 0 {
		cfg.ValueLogFileSize = 16 * 1024 * 1024
	}
	return open(cfg)
}

func open(cfg *Config) (*BadgerWAL, error) {
	opts := badger.DefaultOptions(cfg.Path)
	opts.SyncWrites = cfg.SyncWrites
	opts.MemTableSize = cfg.MemTableSize
	opts.ValueLogFileSize = cfg.ValueLogFileSize
	opts.NumCompactors = cfg.NumCompactors
	opts.Compression = options.Snappy
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("sync_writes", cfg.SyncWrites).
		Msg("WAL opened")

	return &BadgerWAL{
		db:             db,
		config:         *cfg,
		lastCompaction: time.Now(),
	}, nil
}

func (w *BadgerWAL) checkOpen() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return ErrWALClosed
	}
	return nil
}

// Write persists an interaction as a pending entry and returns the entry
// id, which is the interaction id.
func (w *BadgerWAL) Write(ctx context.Context, in recommend.Interaction) (string, error) {
	if err := w.checkOpen(); err != nil {
		return "", err
	}
	if in.ID == "" {
		return "", ErrEmptyEntryID
	}

	entry := &Entry{
		ID:          in.ID,
		Interaction: in,
		CreatedAt:   time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("marshal entry: %w", err)
	}

	err = w.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(prefixPending+entry.ID), data)
		if w.config.EntryTTL > 0 {
			e = e.WithTTL(w.config.EntryTTL)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return "", fmt.Errorf("write to BadgerDB: %w", err)
	}

	w.totalWrites.Add(1)
	metrics.WALWrites.Inc()
	return entry.ID, nil
}

// Confirm moves an entry from pending to confirmed. Confirmed entries are
// removed by the next compaction.
func (w *BadgerWAL) Confirm(ctx context.Context, entryID string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if entryID == "" {
		return ErrEmptyEntryID
	}

	pendingKey := []byte(prefixPending + entryID)
	err := w.db.Update(func(txn *badger.Txn) error {
		entry, err := getEntry(txn, pendingKey)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		entry.Confirmed = true
		entry.ConfirmedAt = &now

		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshal confirmed entry: %w", err)
		}
		if err := txn.Set([]byte(prefixConfirmed+entryID), data); err != nil {
			return fmt.Errorf("set confirmed entry: %w", err)
		}
		if err := txn.Delete(pendingKey); err != nil {
			return fmt.Errorf("delete pending entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	w.totalConfirms.Add(1)
	metrics.WALConfirms.Inc()
	return nil
}

// GetPending returns all unconfirmed entries from a consistent snapshot.
func (w *BadgerWAL) GetPending(ctx context.Context) ([]*Entry, error) {
	if err := w.checkOpen(); err != nil {
		return nil, err
	}

	var entries []*Entry
	err := w.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixPending)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			item := it.Item()
			var entry Entry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				logging.Warn().Err(err).Str("key", string(item.Key())).Msg("WAL failed to unmarshal entry")
				continue
			}
			entries = append(entries, &entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate pending entries: %w", err)
	}

	metrics.WALPending.Set(float64(len(entries)))
	return entries, nil
}

// UpdateAttempt records a failed insert attempt on a pending entry.
func (w *BadgerWAL) UpdateAttempt(ctx context.Context, entryID, lastError string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}

	key := []byte(prefixPending + entryID)
	err := w.db.Update(func(txn *badger.Txn) error {
		entry, err := getEntry(txn, key)
		if err != nil {
			return err
		}

		entry.Attempts++
		entry.LastAttemptAt = time.Now().UTC()
		entry.LastError = lastError

		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshal entry: %w", err)
		}
		e := badger.NewEntry(key, data)
		if w.config.EntryTTL > 0 {
			// Keep the original deadline rather than extending it.
			if remaining := w.config.EntryTTL - time.Since(entry.CreatedAt); remaining > 0 {
				e = e.WithTTL(remaining)
			}
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return err
	}

	w.totalRetries.Add(1)
	return nil
}

// DeleteEntry removes an entry in either state.
func (w *BadgerWAL) DeleteEntry(ctx context.Context, entryID string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}

	return w.db.Update(func(txn *badger.Txn) error {
		pendingKey := []byte(prefixPending + entryID)
		if _, err := txn.Get(pendingKey); err == nil {
			return txn.Delete(pendingKey)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("get pending entry: %w", err)
		}

		confirmedKey := []byte(prefixConfirmed + entryID)
		if _, err := txn.Get(confirmedKey); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrEntryNotFound
			}
			return fmt.Errorf("get confirmed entry: %w", err)
		}
		return txn.Delete(confirmedKey)
	})
}

// TryClaimEntry claims exclusive processing of entryID within this process.
// The caller must call ReleaseEntry when it returns true.
func (w *BadgerWAL) TryClaimEntry(entryID string) bool {
	_, already := w.processing.LoadOrStore(entryID, time.Now())
	return !already
}

// ReleaseEntry releases a claim taken with TryClaimEntry.
func (w *BadgerWAL) ReleaseEntry(entryID string) {
	w.processing.Delete(entryID)
}

// Stats counts entries by state and reports totals since Open.
func (w *BadgerWAL) Stats() Stats {
	w.mu.RLock()
	closed := w.closed
	lastCompaction := w.lastCompaction
	w.mu.RUnlock()
	if closed {
		return Stats{}
	}

	var pending, confirmed int64
	if err := w.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for p, n := range map[string]*int64{prefixPending: &pending, prefixConfirmed: &confirmed} {
			prefix := []byte(p)
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				*n++
			}
		}
		return nil
	}); err != nil {
		logging.Warn().Err(err).Msg("WAL Stats failed to count entries")
	}

	lsm, vlog := w.db.Size()
	metrics.WALPending.Set(float64(pending))

	return Stats{
		PendingCount:   pending,
		ConfirmedCount: confirmed,
		TotalWrites:    w.totalWrites.Load(),
		TotalConfirms:  w.totalConfirms.Load(),
		TotalRetries:   w.totalRetries.Load(),
		LastCompaction: lastCompaction,
		DBSizeBytes:    lsm + vlog,
	}
}

// GetConfig returns the WAL configuration.
func (w *BadgerWAL) GetConfig() Config {
	return w.config
}

// RunGC runs BadgerDB value log GC until nothing is rewritten.
func (w *BadgerWAL) RunGC() error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	for {
		err := w.db.RunValueLogGC(w.config.GCRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Close shuts the database down, giving up after CloseTimeout.
func (w *BadgerWAL) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	timeout := w.config.CloseTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	w.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- w.db.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("close BadgerDB: %w", err)
		}
		logging.Info().Msg("WAL closed")
		return nil
	case <-time.After(timeout):
		logging.Warn().Dur("timeout", timeout).Msg("BadgerDB close timed out")
		return fmt.Errorf("badgerdb close timeout after %v", timeout)
	}
}

func getEntry(txn *badger.Txn, key []byte) (*Entry, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}

	var entry Entry
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &entry)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal entry: %w", err)
	}
	return &entry, nil
}

// Errors
var (
	// ErrWALClosed is returned when the WAL is closed.
	ErrWALClosed = errors.New("WAL is closed")

	// ErrEmptyEntryID is returned when an entry or interaction id is empty.
	ErrEmptyEntryID = errors.New("entry ID cannot be empty")

	// ErrEntryNotFound is returned when an entry doesn't exist.
	ErrEntryNotFound = errors.New("entry not found")
)
