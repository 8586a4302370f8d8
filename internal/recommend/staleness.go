// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package recommend

// IsStale decides whether a persisted mapping still matches the live
// interaction store. It is stale when the store knows a user the mapping
// does not, or when the store is empty but the mapping has users (the store
// was reset underneath the model). An empty mapping against an empty store
// is not stale. There is no partial repair: a stale model is retrained.
func IsStale(mapping *IndexMapping, liveUserIDs []string) bool {
	if mapping == nil {
		return true
	}
	if len(liveUserIDs) == 0 {
		return mapping.NumUsers() > 0
	}
	for _, id := range liveUserIDs {
		if _, ok := mapping.UserIndex(id); !ok {
			return true
		}
	}
	return false
}
