// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

/*
database_schema.go - Database Schema Management

Tables:
  - interactions: append-only log of user/item events (VIEW, ORDER, RATING).
    id is the event id assigned by the tracker and is the primary key, so
    replaying an event from the write-ahead log is a no-op. Reads order by
    ts and break ties on seq, so a late WAL replay of an older event does
    not override a newer one in the rating matrix (last write wins).
  - items: the food catalog. quantity is units in stock.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the tables and indexes if they do not exist.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		`CREATE SEQUENCE IF NOT EXISTS interactions_seq START 1`,
		`CREATE TABLE IF NOT EXISTS interactions (
			id VARCHAR PRIMARY KEY,
			seq BIGINT NOT NULL DEFAULT nextval('interactions_seq'),
			user_id VARCHAR NOT NULL,
			item_id BIGINT NOT NULL,
			kind VARCHAR NOT NULL,
			rating DOUBLE,
			quantity INTEGER,
			ts TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_user ON interactions(user_id)`,
		`CREATE TABLE IF NOT EXISTS items (
			id BIGINT PRIMARY KEY,
			name VARCHAR NOT NULL,
			description VARCHAR NOT NULL DEFAULT '',
			price DOUBLE NOT NULL,
			quantity INTEGER NOT NULL DEFAULT 0,
			cuisine VARCHAR NOT NULL DEFAULT '',
			vegetarian BOOLEAN NOT NULL DEFAULT false,
			vegan BOOLEAN NOT NULL DEFAULT false,
			allergens VARCHAR NOT NULL DEFAULT ''
		)`,
	}

	for _, q := range queries {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
