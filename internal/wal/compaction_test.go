// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package wal

import (
	"context"
	"fmt"
	"testing"
)

func TestCompactor_RunNow(t *testing.T) {
	w := setupWAL(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		id, err := w.Write(ctx, testInteraction(fmt.Sprintf("e%d", i)))
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if i < 3 {
			if err := w.Confirm(ctx, id); err != nil {
				t.Fatalf("Confirm() error = %v", err)
			}
		}
	}

	c := NewCompactor(w)
	deleted, err := c.RunNow()
	if err != nil {
		t.Fatalf("RunNow() error = %v", err)
	}
	if deleted != 3 {
		t.Errorf("RunNow() deleted %d, want 3", deleted)
	}

	stats := w.Stats()
	if stats.ConfirmedCount != 0 || stats.PendingCount != 2 {
		t.Errorf("Stats() after compaction = %+v", stats)
	}
	if cs := c.GetStats(); cs.LastDeleted != 3 || cs.LastRun.IsZero() {
		t.Errorf("GetStats() = %+v", cs)
	}

	deleted, err = c.RunNow()
	if err != nil || deleted != 0 {
		t.Errorf("second RunNow() = %d, %v", deleted, err)
	}
}

func TestCompactor_StartStop(t *testing.T) {
	w := setupWAL(t)
	c := NewCompactor(w)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !c.IsRunning() {
		t.Fatal("IsRunning() = false after Start")
	}
	c.Stop()
	if c.IsRunning() {
		t.Fatal("IsRunning() = true after Stop")
	}
}

func TestCompactor_ClosedWAL(t *testing.T) {
	w := setupWAL(t)
	c := NewCompactor(w)
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := c.RunNow(); err == nil {
		t.Error("RunNow() on closed WAL should fail")
	}
}
