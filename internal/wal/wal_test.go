// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package wal

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/platewise/internal/config"
	"github.com/tomtom215/platewise/internal/recommend"
)

func createTestConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Path = filepath.Join(t.TempDir(), "wal")
	cfg.SyncWrites = false
	cfg.RetryInterval = time.Second
	cfg.MaxRetries = 3
	cfg.RetryBackoff = time.Second
	cfg.CompactInterval = time.Minute
	cfg.EntryTTL = time.Hour
	cfg.ValueLogFileSize = 16 * 1024 * 1024
	return cfg
}

func setupWAL(t *testing.T) *BadgerWAL {
	t.Helper()
	cfg := createTestConfig(t)
	w, err := Open(&cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func testInteraction(id string) recommend.Interaction {
	qty := 2
	return recommend.Interaction{
		ID:        id,
		UserID:    "user-" + id,
		ItemID:    7,
		Kind:      recommend.KindOrder,
		Quantity:  &qty,
		Timestamp: time.Date(2026, 5, 1, 18, 30, 0, 0, time.UTC),
	}
}

func assertPendingCount(t *testing.T, w *BadgerWAL, want int) {
	t.Helper()
	entries, err := w.GetPending(context.Background())
	if err != nil {
		t.Fatalf("GetPending() error = %v", err)
	}
	if len(entries) != want {
		t.Fatalf("GetPending() = %d entries, want %d", len(entries), want)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"disabled skips checks", func(c *Config) { c.Enabled = false; c.Path = "" }, ""},
		{"empty path", func(c *Config) { c.Path = "" }, "Path"},
		{"fast retry", func(c *Config) { c.RetryInterval = time.Millisecond }, "RetryInterval"},
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }, "MaxRetries"},
		{"fast backoff", func(c *Config) { c.RetryBackoff = 0 }, "RetryBackoff"},
		{"fast compaction", func(c *Config) { c.CompactInterval = time.Second }, "CompactInterval"},
		{"short ttl", func(c *Config) { c.EntryTTL = time.Minute }, "EntryTTL"},
		{"one compactor", func(c *Config) { c.NumCompactors = 1 }, "NumCompactors"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) || cfgErr.Field != tt.wantErr {
				t.Errorf("Validate() error = %v, want field %s", err, tt.wantErr)
			}
		})
	}
}

func TestFromSettings(t *testing.T) {
	cfg := FromSettings(config.WALConfig{
		Enabled:       true,
		Path:          "/tmp/wal",
		RetryInterval: 10 * time.Second,
	})
	if !cfg.Enabled || cfg.Path != "/tmp/wal" || cfg.RetryInterval != 10*time.Second {
		t.Errorf("FromSettings() = %+v", cfg)
	}
	if cfg.MaxRetries != DefaultConfig().MaxRetries {
		t.Errorf("MaxRetries = %d, want default", cfg.MaxRetries)
	}
}

func TestWAL_WriteConfirm(t *testing.T) {
	w := setupWAL(t)
	ctx := context.Background()

	in := testInteraction("a")
	id, err := w.Write(ctx, in)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if id != in.ID {
		t.Errorf("Write() id = %q, want interaction id %q", id, in.ID)
	}

	entries, err := w.GetPending(ctx)
	if err != nil {
		t.Fatalf("GetPending() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("GetPending() = %d entries, want 1", len(entries))
	}
	got := entries[0].Interaction
	if got.UserID != in.UserID || got.ItemID != in.ItemID || got.Kind != in.Kind ||
		got.Quantity == nil || *got.Quantity != 2 || !got.Timestamp.Equal(in.Timestamp) {
		t.Errorf("pending interaction = %+v, want %+v", got, in)
	}

	if err := w.Confirm(ctx, id); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	assertPendingCount(t, w, 0)

	stats := w.Stats()
	if stats.ConfirmedCount != 1 || stats.TotalWrites != 1 || stats.TotalConfirms != 1 {
		t.Errorf("Stats() = %+v", stats)
	}

	if err := w.Confirm(ctx, id); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("second Confirm() error = %v, want ErrEntryNotFound", err)
	}
}

func TestWAL_Errors(t *testing.T) {
	w := setupWAL(t)
	ctx := context.Background()

	if _, err := w.Write(ctx, recommend.Interaction{}); !errors.Is(err, ErrEmptyEntryID) {
		t.Errorf("Write(no id) error = %v, want ErrEmptyEntryID", err)
	}
	if err := w.Confirm(ctx, ""); !errors.Is(err, ErrEmptyEntryID) {
		t.Errorf("Confirm(\"\") error = %v, want ErrEmptyEntryID", err)
	}
	if err := w.DeleteEntry(ctx, "missing"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("DeleteEntry(missing) error = %v, want ErrEntryNotFound", err)
	}
	if err := w.UpdateAttempt(ctx, "missing", "x"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("UpdateAttempt(missing) error = %v, want ErrEntryNotFound", err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := w.Write(ctx, testInteraction("b")); !errors.Is(err, ErrWALClosed) {
		t.Errorf("Write after Close error = %v, want ErrWALClosed", err)
	}
	if _, err := w.GetPending(ctx); !errors.Is(err, ErrWALClosed) {
		t.Errorf("GetPending after Close error = %v, want ErrWALClosed", err)
	}
	if s := w.Stats(); s != (Stats{}) {
		t.Errorf("Stats after Close = %+v, want zero", s)
	}
}

func TestWAL_UpdateAttemptAndDelete(t *testing.T) {
	w := setupWAL(t)
	ctx := context.Background()

	id, err := w.Write(ctx, testInteraction("a"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := w.UpdateAttempt(ctx, id, "db down"); err != nil {
			t.Fatalf("UpdateAttempt() error = %v", err)
		}
	}

	entries, err := w.GetPending(ctx)
	if err != nil {
		t.Fatalf("GetPending() error = %v", err)
	}
	if entries[0].Attempts != 2 || entries[0].LastError != "db down" || entries[0].LastAttemptAt.IsZero() {
		t.Errorf("entry after attempts = %+v", entries[0])
	}

	if err := w.DeleteEntry(ctx, id); err != nil {
		t.Fatalf("DeleteEntry() error = %v", err)
	}
	assertPendingCount(t, w, 0)
}

func TestWAL_SurvivesReopen(t *testing.T) {
	cfg := createTestConfig(t)
	ctx := context.Background()

	w, err := Open(&cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := w.Write(ctx, testInteraction(fmt.Sprintf("e%d", i))); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := w.Confirm(ctx, "e1"); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	w, err = Open(&cfg)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer w.Close()
	assertPendingCount(t, w, 2)
}

func TestWAL_TryClaimEntry(t *testing.T) {
	w := setupWAL(t)

	if !w.TryClaimEntry("x") {
		t.Fatal("first TryClaimEntry() = false")
	}
	if w.TryClaimEntry("x") {
		t.Fatal("second TryClaimEntry() = true while claimed")
	}
	w.ReleaseEntry("x")
	if !w.TryClaimEntry("x") {
		t.Fatal("TryClaimEntry() after release = false")
	}
}

func TestWAL_ConcurrentWrites(t *testing.T) {
	w := setupWAL(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := w.Write(ctx, testInteraction(fmt.Sprintf("c%d", i))); err != nil {
				t.Errorf("Write() error = %v", err)
			}
		}(i)
	}
	wg.Wait()
	assertPendingCount(t, w, 20)
}
