// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

/*
Package cache provides a thread-safe, bounded LRU cache with TTL support.

It fronts hot catalog lookups so that the interaction endpoints, which check
item existence on every write, do not each cost a DuckDB round trip.

# Semantics

  - Get, Add and Remove are O(1).
  - When the cache is full, Add evicts the least recently used entry.
  - Entries expire lazily: an expired entry is dropped on the next Get.
  - CleanupExpired sweeps every expired entry at once.

# Usage

	c := cache.NewLRU[int64, recommend.Item](1024, 30*time.Second)
	c.Add(item.ID, item)
	if it, ok := c.Get(item.ID); ok {
		...
	}

# Thread Safety

All methods are safe for concurrent use.
*/
package cache
