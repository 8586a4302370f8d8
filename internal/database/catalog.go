// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/platewise/internal/metrics"
	"github.com/tomtom215/platewise/internal/recommend"
)

// DefaultCatalog is the menu inserted by SeedCatalog. IDs are assigned on
// insert.
var DefaultCatalog = []recommend.Item{
	{Name: "Ham Burger", Description: "Classic ham burger with fresh vegetables", Price: 12.99, Quantity: 23, Cuisine: "American", Allergens: []string{"gluten", "dairy"}},
	{Name: "Cheese Burger", Description: "Delicious cheese burger with melted cheese", Price: 10.99, Quantity: 13, Cuisine: "American", Allergens: []string{"gluten", "dairy"}},
	{Name: "Veggie Sandwich", Description: "Fresh vegetable sandwich", Price: 7.99, Quantity: 8, Cuisine: "American", Vegetarian: true, Vegan: true, Allergens: []string{"gluten"}},
	{Name: "KFC Wings", Description: "Crispy fried chicken wings", Price: 8.99, Quantity: 46, Cuisine: "American", Allergens: []string{"gluten"}},
	{Name: "Margherita Pizza", Description: "Classic pizza with tomato and mozzarella", Price: 14.99, Quantity: 30, Cuisine: "Italian", Vegetarian: true, Allergens: []string{"gluten", "dairy"}},
	{Name: "Pasta Primavera", Description: "Vegetarian pasta with seasonal vegetables", Price: 13.99, Quantity: 25, Cuisine: "Italian", Vegetarian: true, Allergens: []string{"gluten", "dairy"}},
	{Name: "French Fries", Description: "Crispy golden french fries", Price: 4.99, Quantity: 34, Cuisine: "American", Vegetarian: true, Vegan: true},
	{Name: "Caesar Salad", Description: "Fresh romaine with parmesan and croutons", Price: 9.99, Quantity: 20, Cuisine: "American", Vegetarian: true, Allergens: []string{"gluten", "dairy"}},
	{Name: "Veggie Burger", Description: "Plant-based burger with fresh toppings", Price: 11.99, Quantity: 15, Cuisine: "American", Vegetarian: true, Allergens: []string{"gluten"}},
	{Name: "Caprese Salad", Description: "Tomato, mozzarella, and basil", Price: 10.99, Quantity: 18, Cuisine: "Italian", Vegetarian: true, Allergens: []string{"dairy"}},
}

const itemColumns = `id, name, description, price, quantity, cuisine, vegetarian, vegan, allergens`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (recommend.Item, error) {
	var (
		it        recommend.Item
		allergens string
	)
	if err := row.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.Quantity,
		&it.Cuisine, &it.Vegetarian, &it.Vegan, &allergens); err != nil {
		return recommend.Item{}, err
	}
	if allergens != "" {
		it.Allergens = strings.Split(allergens, ",")
	}
	return it, nil
}

// FindByID returns the catalog item with itemID. found is false when there
// is no such item.
func (db *DB) FindByID(ctx context.Context, itemID int64) (item recommend.Item, found bool, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("SELECT", "items", time.Since(start), err) }()

	ctx, cancel := queryContext(ctx)
	defer cancel()

	item, err = scanItem(db.conn.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, itemID))
	if errors.Is(err, sql.ErrNoRows) {
		return recommend.Item{}, false, nil
	}
	if err != nil {
		return recommend.Item{}, false, fmt.Errorf("find item %d: %w", itemID, err)
	}
	return item, true, nil
}

// GetItem is FindByID returning ErrItemNotFound for missing items.
func (db *DB) GetItem(ctx context.Context, itemID int64) (*recommend.Item, error) {
	item, found, err := db.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %d", ErrItemNotFound, itemID)
	}
	return &item, nil
}

// ListItems returns the catalog ordered by id. With availableOnly set, items
// that are out of stock are left out.
func (db *DB) ListItems(ctx context.Context, availableOnly bool) (items []recommend.Item, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("SELECT", "items", time.Since(start), err) }()

	ctx, cancel := queryContext(ctx)
	defer cancel()

	query := `SELECT ` + itemColumns + ` FROM items`
	if availableOnly {
		query += ` WHERE quantity > 0`
	}
	query += ` ORDER BY id`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// UpsertItem inserts item, or replaces the row with the same id. An item
// with ID 0 gets the next free id. It returns the stored id.
func (db *DB) UpsertItem(ctx context.Context, item recommend.Item) (id int64, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("UPSERT", "items", time.Since(start), err) }()

	db.itemMu.Lock()
	defer db.itemMu.Unlock()

	ctx, cancel := queryContext(ctx)
	defer cancel()

	return db.upsertItemLocked(ctx, db.conn, item)
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (db *DB) upsertItemLocked(ctx context.Context, q execQuerier, item recommend.Item) (int64, error) {
	if item.ID == 0 {
		if err := q.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM items`).Scan(&item.ID); err != nil {
			return 0, fmt.Errorf("allocate item id: %w", err)
		}
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			quantity = EXCLUDED.quantity,
			cuisine = EXCLUDED.cuisine,
			vegetarian = EXCLUDED.vegetarian,
			vegan = EXCLUDED.vegan,
			allergens = EXCLUDED.allergens`,
		item.ID, item.Name, item.Description, item.Price, item.Quantity,
		item.Cuisine, item.Vegetarian, item.Vegan, strings.Join(item.Allergens, ","))
	if err != nil {
		return 0, fmt.Errorf("upsert item %d: %w", item.ID, err)
	}
	return item.ID, nil
}

// SeedCatalog inserts DefaultCatalog if the items table is empty. It
// returns the number of items inserted.
func (db *DB) SeedCatalog(ctx context.Context) (int, error) {
	db.itemMu.Lock()
	defer db.itemMu.Unlock()

	ctx, cancel := queryContext(ctx)
	defer cancel()

	var existing int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&existing); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	if existing > 0 {
		return 0, nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after commit

	for _, item := range DefaultCatalog {
		if _, err := db.upsertItemLocked(ctx, tx, item); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return len(DefaultCatalog), nil
}

// Ensure interface compliance.
var _ recommend.Catalog = (*DB)(nil)
