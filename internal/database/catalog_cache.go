// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package database

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/tomtom215/platewise/internal/cache"
	"github.com/tomtom215/platewise/internal/metrics"
	"github.com/tomtom215/platewise/internal/recommend"
)

const (
	// DefaultCatalogCacheSize bounds the number of cached items.
	DefaultCatalogCacheSize = 1024

	// DefaultCatalogCacheTTL is how long a cached item may be served. Stock
	// counts shown by GetItem can lag by up to this much.
	DefaultCatalogCacheTTL = 30 * time.Second
)

// CachedCatalog serves single-item lookups from an LRU in front of the DB.
// Only hits are cached; a missing id always goes to DuckDB so a newly
// inserted item is visible immediately. ListItems is never cached because
// the fallback recommendation path depends on current stock.
type CachedCatalog struct {
	db    *DB
	items *cache.LRU[int64, recommend.Item]
}

// NewCachedCatalog wraps db. Non-positive size or ttl select the package
// defaults.
func NewCachedCatalog(db *DB, size int, ttl time.Duration) *CachedCatalog {
	if size <= 0 {
		size = DefaultCatalogCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCatalogCacheTTL
	}
	return &CachedCatalog{
		db:    db,
		items: cache.NewLRU[int64, recommend.Item](size, ttl),
	}
}

// FindByID returns the item with itemID, consulting the cache first.
func (c *CachedCatalog) FindByID(ctx context.Context, itemID int64) (recommend.Item, bool, error) {
	if it, ok := c.items.Get(itemID); ok {
		metrics.RecordCacheLookup("catalog", true)
		return cloneItem(it), true, nil
	}
	metrics.RecordCacheLookup("catalog", false)

	it, found, err := c.db.FindByID(ctx, itemID)
	if err != nil || !found {
		return it, found, err
	}
	c.items.Add(itemID, cloneItem(it))
	return it, true, nil
}

// GetItem is FindByID returning ErrItemNotFound for missing items.
func (c *CachedCatalog) GetItem(ctx context.Context, itemID int64) (*recommend.Item, error) {
	it, found, err := c.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %d", ErrItemNotFound, itemID)
	}
	return &it, nil
}

// ListItems reads through to the DB.
func (c *CachedCatalog) ListItems(ctx context.Context, availableOnly bool) ([]recommend.Item, error) {
	return c.db.ListItems(ctx, availableOnly)
}

// UpsertItem writes through to the DB and drops the cached copy.
func (c *CachedCatalog) UpsertItem(ctx context.Context, item recommend.Item) (int64, error) {
	id, err := c.db.UpsertItem(ctx, item)
	if err != nil {
		return 0, err
	}
	c.items.Remove(id)
	return id, nil
}

// Invalidate drops every cached item.
func (c *CachedCatalog) Invalidate() {
	c.items.Clear()
}

// cloneItem copies the allergen slice so callers cannot mutate the cached
// value.
func cloneItem(it recommend.Item) recommend.Item {
	it.Allergens = slices.Clone(it.Allergens)
	return it
}
