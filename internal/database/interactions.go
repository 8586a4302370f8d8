// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/platewise/internal/metrics"
	"github.com/tomtom215/platewise/internal/recommend"
)

// RecordInteraction inserts an interaction. Inserting an id that already
// exists is a no-op, so replays are safe.
func (db *DB) RecordInteraction(ctx context.Context, in recommend.Interaction) (err error) {
	if in.ID == "" {
		return fmt.Errorf("interaction id is required")
	}
	if !in.Kind.Valid() {
		return fmt.Errorf("invalid interaction kind %q", in.Kind)
	}

	start := time.Now()
	defer func() { metrics.RecordDBQuery("INSERT", "interactions", time.Since(start), err) }()

	ctx, cancel := queryContext(ctx)
	defer cancel()

	var rating sql.NullFloat64
	if in.Rating != nil {
		rating = sql.NullFloat64{Float64: *in.Rating, Valid: true}
	}
	var quantity sql.NullInt64
	if in.Quantity != nil {
		quantity = sql.NullInt64{Int64: int64(*in.Quantity), Valid: true}
	}
	ts := in.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO interactions (id, user_id, item_id, kind, rating, quantity, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		in.ID, in.UserID, in.ItemID, string(in.Kind), rating, quantity, ts.UTC())
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	return nil
}

// ListAllInteractions returns every interaction ordered by event time.
// Events with the same timestamp keep recording order.
func (db *DB) ListAllInteractions(ctx context.Context) (result []recommend.Interaction, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("SELECT", "interactions", time.Since(start), err) }()

	ctx, cancel := queryContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, user_id, item_id, kind, rating, quantity, ts
		FROM interactions
		ORDER BY ts, seq`)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer rows.Close()

	var interactions []recommend.Interaction
	for rows.Next() {
		var (
			in       recommend.Interaction
			kind     string
			rating   sql.NullFloat64
			quantity sql.NullInt64
		)
		if err := rows.Scan(&in.ID, &in.UserID, &in.ItemID, &kind, &rating, &quantity, &in.Timestamp); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		in.Kind = recommend.InteractionKind(kind)
		if rating.Valid {
			r := rating.Float64
			in.Rating = &r
		}
		if quantity.Valid {
			q := int(quantity.Int64)
			in.Quantity = &q
		}
		interactions = append(interactions, in)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}
	return interactions, nil
}

// CountOrders returns the number of ORDER interactions recorded for userID.
func (db *DB) CountOrders(ctx context.Context, userID string) (n int, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("COUNT", "interactions", time.Since(start), err) }()

	ctx, cancel := queryContext(ctx)
	defer cancel()

	err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM interactions WHERE user_id = ? AND kind = ?`,
		userID, string(recommend.KindOrder)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

// ListDistinctUserIDs returns every user id with at least one interaction,
// sorted.
func (db *DB) ListDistinctUserIDs(ctx context.Context) (ids []string, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("SELECT", "interactions", time.Since(start), err) }()

	ctx, cancel := queryContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT DISTINCT user_id FROM interactions ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return ids, nil
}

// CountInteractions returns the total number of recorded interactions.
func (db *DB) CountInteractions(ctx context.Context) (int, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM interactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count interactions: %w", err)
	}
	return n, nil
}

// Ensure interface compliance.
var (
	_ recommend.InteractionStore    = (*DB)(nil)
	_ recommend.InteractionRecorder = (*DB)(nil)
)
